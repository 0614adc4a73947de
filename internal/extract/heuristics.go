package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Price fallback plausibility band for a retail vehicle price. Candidates
// outside it are rejected rather than clamped.
const (
	priceFloor   = 500
	priceCeiling = 150000
)

var (
	priceFallbackRe = regexp.MustCompile(`\$?\s*([0-9]{1,3}(?:[, ][0-9]{3})+|[0-9]{3,6})\b`)
	nonDigitRe      = regexp.MustCompile(`[^0-9]`)

	mileageLabelRe = regexp.MustCompile(`(?i)(?:mileage|odometer)\s*[:\-]?\s*([0-9,]+)`)
	mileageKRe     = regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?)\s*k\s*(?:mi|mile|miles)\b`)
	mileageBareRe  = regexp.MustCompile(`(?i)([0-9]{1,3}(?:[,0-9]{3})*)\s*(?:mi|mile|miles)\b`)

	digitRunRe = regexp.MustCompile(`[0-9]{8,12}`)
)

// PriceFallback scans the title, then the body, for a monetary pattern and
// returns the first candidate inside the plausibility band. Titles are the
// most reliable price placement in the source convention, so they win.
func PriceFallback(title, body string) *int {
	for _, s := range []string{title, body} {
		m := priceFallbackRe.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(nonDigitRe.ReplaceAllString(m[1], ""))
		if err != nil {
			continue
		}
		if n >= priceFloor && n <= priceCeiling {
			return &n
		}
	}
	return nil
}

// MileageFallback tries, in fixed priority order: an explicit
// mileage/odometer label, the "<n>k miles" shorthand, then a bare digit run
// followed by a mile unit. Parse failures fall through to the next priority.
func MileageFallback(text string) *int {
	if m := mileageLabelRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			return &n
		}
	}

	if m := mileageKRe.FindStringSubmatch(text); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			n := int(f * 1000)
			return &n
		}
	}

	if m := mileageBareRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(nonDigitRe.ReplaceAllString(m[1], "")); err == nil {
			return &n
		}
	}

	return nil
}

// ResolvePostID finds an 8-12 digit run in, in order, the source key, the
// URL, and the body. Returns "" when nothing matches; the caller must then
// skip the item — identifiers are never synthesized.
func ResolvePostID(key, url, body string) string {
	for _, s := range []string{key, url, body} {
		if m := digitRunRe.FindString(s); m != "" {
			return m
		}
	}
	return ""
}
