package model

import "time"

// FieldMap is the open intermediate mapping produced by the extractor, the
// enrichment client, and the fallback resolvers before validation. Values are
// strings, ints, nested mappings, or nil.
type FieldMap map[string]any

// StringField returns the named value as a string. Nil, absent, and
// non-string values yield "".
func (fm FieldMap) StringField(key string) string {
	if v, ok := fm[key].(string); ok {
		return v
	}
	return ""
}

// IntField returns the named value as an int, tolerating the float64 that
// encoding/json produces for numbers. The second return reports presence.
func (fm FieldMap) IntField(key string) (int, bool) {
	switch v := fm[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Clone returns a shallow copy, with attrs_json copied one level deep so a
// merge never aliases the source mapping.
func (fm FieldMap) Clone() FieldMap {
	out := make(FieldMap, len(fm))
	for k, v := range fm {
		if m, ok := v.(map[string]any); ok {
			mc := make(map[string]any, len(m))
			for mk, mv := range m {
				mc[mk] = mv
			}
			out[k] = mc
			continue
		}
		out[k] = v
	}
	return out
}

// ListingRecord is the canonical validated record written for each source
// item. Optional fields are pointers so null survives the JSON round trip.
type ListingRecord struct {
	PostID       string         `json:"post_id"`
	URL          *string        `json:"url"`
	Title        *string        `json:"title"`
	Price        *int           `json:"price"`
	Year         *int           `json:"year"`
	Make         *string        `json:"make"`
	Model        *string        `json:"model"`
	Trim         *string        `json:"trim"`
	Mileage      *int           `json:"mileage"`
	VIN          *string        `json:"vin"`
	Color        *string        `json:"color"`
	Transmission *string        `json:"transmission"`
	Condition    *string        `json:"condition"`
	Location     *string        `json:"location"`
	PostedISO    *string        `json:"posted_iso"`
	Body         *string        `json:"body"`
	Attrs        map[string]any `json:"attrs_json"`
}

// LineRecord is the one-line NDJSON output shape: the listing plus
// provenance for downstream training jobs.
type LineRecord struct {
	ListingRecord
	RunID     string `json:"run_id"`
	SourceTxt string `json:"source_txt"`
	ScrapedAt string `json:"scraped_at"`
}

// RunSummary is the per-invocation result. It is returned to the caller and
// logged, never persisted.
type RunSummary struct {
	OK        bool   `json:"ok"`
	RunID     string `json:"run_id"`
	Variant   string `json:"variant,omitempty"`
	Processed int    `json:"processed"`
	Written   int    `json:"written_json"`
	Skipped   int    `json:"skipped_existing"`
	Errors    int    `json:"errors"`
}

// runIDLayout matches timestamp-derived run identifiers like
// "20251021T090008Z". Lexicographic order on these equals time order.
const runIDLayout = "20060102T150405Z"

// RunIDTimestamp parses a run ID into its UTC timestamp. Run IDs that do not
// follow the timestamp convention fall back to the current time.
func RunIDTimestamp(runID string) time.Time {
	if ts, err := time.Parse(runIDLayout, runID); err == nil {
		return ts
	}
	return time.Now().UTC()
}
