// Package validate coerces a merged field mapping into the canonical
// listing record, enforcing the schema bounds the downstream training job
// relies on.
package validate

import (
	"fmt"
	"strings"

	"github.com/sells-group/listing-etl/internal/model"
)

// Numeric bounds of the canonical schema.
const (
	yearMin = 1950
	yearMax = 2100
)

// SchemaViolationError reports a field that failed validation. It is a hard
// per-item failure: the item is counted as an error and retried on the next
// invocation, never silently clamped.
type SchemaViolationError struct {
	Field  string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation: %s: %s", e.Field, e.Reason)
}

func violation(field, format string, args ...any) error {
	return &SchemaViolationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Record validates fm into a ListingRecord. post_id must be present and
// non-empty; price and mileage must be non-negative; year must be within
// [1950, 2100]. VIN is normalized and attrs_json coerced before return.
func Record(fm model.FieldMap) (*model.ListingRecord, error) {
	postID := fm.StringField("post_id")
	if postID == "" {
		return nil, violation("post_id", "missing or empty")
	}

	rec := &model.ListingRecord{
		PostID:       postID,
		URL:          optString(fm, "url"),
		Title:        optString(fm, "title"),
		Make:         optString(fm, "make"),
		Model:        optString(fm, "model"),
		Trim:         optString(fm, "trim"),
		Color:        optString(fm, "color"),
		Transmission: optString(fm, "transmission"),
		Condition:    optString(fm, "condition"),
		Location:     optString(fm, "location"),
		PostedISO:    optString(fm, "posted_iso"),
		Body:         optString(fm, "body"),
	}

	if p, ok := fm.IntField("price"); ok {
		if p < 0 {
			return nil, violation("price", "negative value %d", p)
		}
		rec.Price = &p
	}
	if y, ok := fm.IntField("year"); ok {
		if y < yearMin || y > yearMax {
			return nil, violation("year", "%d outside [%d, %d]", y, yearMin, yearMax)
		}
		rec.Year = &y
	}
	if mi, ok := fm.IntField("mileage"); ok {
		if mi < 0 {
			return nil, violation("mileage", "negative value %d", mi)
		}
		rec.Mileage = &mi
	}

	if vin := fm.StringField("vin"); vin != "" {
		n := NormalizeVIN(vin)
		rec.VIN = &n
	}

	rec.Attrs = NormalizeAttrs(fm["attrs_json"])

	return rec, nil
}

func optString(fm model.FieldMap, key string) *string {
	if s := fm.StringField(key); s != "" {
		return &s
	}
	return nil
}

// NormalizeVIN uppercases and strips spaces and hyphens. Idempotent.
func NormalizeVIN(vin string) string {
	vin = strings.ToUpper(vin)
	vin = strings.ReplaceAll(vin, " ", "")
	return strings.ReplaceAll(vin, "-", "")
}

// NormalizeAttrs coerces the attrs mapping to its canonical shape: keys
// lowercased, and misc always a sequence. A prior run serialized misc as a
// bare string once; that drift is repaired here rather than propagated.
func NormalizeAttrs(raw any) map[string]any {
	attrs := map[string]any{}

	m, ok := raw.(map[string]any)
	if !ok {
		return attrs
	}

	for k, v := range m {
		attrs[strings.ToLower(strings.TrimSpace(k))] = v
	}

	if misc, present := attrs["misc"]; present {
		attrs["misc"] = coerceMisc(misc)
	}

	return attrs
}

func coerceMisc(v any) []string {
	switch misc := v.(type) {
	case []string:
		return misc
	case []any:
		out := make([]string, 0, len(misc))
		for _, item := range misc {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if misc == "" {
			return []string{}
		}
		return []string{misc}
	default:
		return []string{}
	}
}
