// Package extract is the deterministic field extractor: raw listing text in,
// partial field mapping out. It never fails — malformed structure degrades to
// absent fields so one bad listing cannot abort a run.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/listing-etl/internal/model"
)

var (
	priceLineRe = regexp.MustCompile(`\$?\s*([0-9][0-9,]*)`)
	yearRe      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	urlPostIDRe = regexp.MustCompile(`/([0-9]{8,12})\.html`)
)

// Parse scans the line-oriented text convention the scraper emits:
//
//	Title: 2016 Honda Civic LX
//	Price: $9,900
//	Neighborhood: West Haven
//	URL: https://.../123456789.html
//	Posted: 2025-10-21T09:00:08Z
//	Attributes:
//	- odometer: 95,000
//	- clean title
//	BODY:
//	free text...
//
// Unrecognized lines are ignored. Everything after the BODY: marker is the
// body verbatim; it is never re-scanned for labeled fields.
func Parse(text string) model.FieldMap {
	fm := model.FieldMap{"attrs_json": map[string]any{}}
	lines := strings.Split(text, "\n")

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, "Title:"):
			setNonEmpty(fm, "title", after(line, "Title:"))
		case strings.HasPrefix(line, "Price:"):
			if m := priceLineRe.FindStringSubmatch(after(line, "Price:")); m != nil {
				if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
					fm["price"] = n
				}
			}
		case strings.HasPrefix(line, "Neighborhood:"):
			setNonEmpty(fm, "location", after(line, "Neighborhood:"))
		case strings.HasPrefix(line, "URL:"):
			setNonEmpty(fm, "url", after(line, "URL:"))
		case strings.HasPrefix(line, "Posted:"):
			setNonEmpty(fm, "posted_iso", after(line, "Posted:"))
		case strings.HasPrefix(line, "Attributes:"):
			i = parseAttrs(fm, lines, i+1)
			continue
		case line == "BODY:" || strings.HasSuffix(line, "BODY:"):
			if body := strings.TrimSpace(strings.Join(lines[i+1:], "\n")); body != "" {
				fm["body"] = body
			}
			applyTitleHeuristics(fm)
			applyURLPostID(fm)
			return fm
		}
		i++
	}

	applyTitleHeuristics(fm)
	applyURLPostID(fm)
	return fm
}

// parseAttrs consumes the "- key: value" block following an Attributes:
// line and returns the index of the first line past it. Marker lines without
// a colon are bare flags collected under the misc sequence.
func parseAttrs(fm model.FieldMap, lines []string, start int) int {
	attrs, _ := fm["attrs_json"].(map[string]any)
	if attrs == nil {
		attrs = map[string]any{}
		fm["attrs_json"] = attrs
	}

	i := start
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "-") {
			return i
		}
		kv := strings.TrimSpace(strings.TrimPrefix(line, "-"))
		if k, v, ok := strings.Cut(kv, ":"); ok {
			attrs[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		} else if kv != "" {
			// Bare flag. The misc sequence is created on first use and
			// never overwritten by a scalar.
			misc, _ := attrs["misc"].([]string)
			attrs["misc"] = append(misc, kv)
		}
		i++
	}
	return i
}

// applyTitleHeuristics pulls year/make/model out of the title: a 4-digit
// year in 1900-2099, then the first remaining token as make and the next one
// or two as model.
func applyTitleHeuristics(fm model.FieldMap) {
	title := fm.StringField("title")
	if title == "" {
		return
	}

	if y := yearRe.FindString(title); y != "" {
		if n, err := strconv.Atoi(y); err == nil {
			fm["year"] = n
		}
	}

	tail := strings.Fields(strings.TrimSpace(yearRe.ReplaceAllString(title, "")))
	if len(tail) > 0 {
		fm["make"] = titleCase(tail[0])
	}
	if len(tail) > 1 {
		model := titleCase(tail[1])
		// Short model tokens like "F" carry their series number with them.
		if len(model) <= 2 && len(tail) > 2 {
			model += " " + titleCase(tail[2])
		}
		fm["model"] = model
	}
}

// applyURLPostID derives post_id from the trailing numeric segment of the
// listing URL, when one was found.
func applyURLPostID(fm model.FieldMap) {
	url := fm.StringField("url")
	if url == "" {
		return
	}
	if m := urlPostIDRe.FindStringSubmatch(url); m != nil {
		fm["post_id"] = m[1]
	}
}

func after(line, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, prefix))
}

func setNonEmpty(fm model.FieldMap, key, val string) {
	if val != "" {
		fm[key] = val
	}
}

// titleCase uppercases the first rune and lowercases the rest.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
