package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldMapStringField(t *testing.T) {
	fm := FieldMap{"title": "a car", "price": 9900, "nil": nil}

	assert.Equal(t, "a car", fm.StringField("title"))
	assert.Equal(t, "", fm.StringField("price"))
	assert.Equal(t, "", fm.StringField("nil"))
	assert.Equal(t, "", fm.StringField("absent"))
}

func TestFieldMapIntField(t *testing.T) {
	fm := FieldMap{"a": 1, "b": int64(2), "c": float64(3), "d": "4"}

	v, ok := fm.IntField("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = fm.IntField("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	// encoding/json numbers arrive as float64.
	v, ok = fm.IntField("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = fm.IntField("d")
	assert.False(t, ok)
	_, ok = fm.IntField("absent")
	assert.False(t, ok)
}

func TestFieldMapCloneIsolatesAttrs(t *testing.T) {
	fm := FieldMap{
		"title":      "original",
		"attrs_json": map[string]any{"condition": "good"},
	}

	cp := fm.Clone()
	cp["title"] = "changed"
	cp["attrs_json"].(map[string]any)["condition"] = "bad"

	assert.Equal(t, "original", fm.StringField("title"))
	assert.Equal(t, "good", fm["attrs_json"].(map[string]any)["condition"])
}

func TestListingRecordJSONShape(t *testing.T) {
	price := 9900
	title := "2016 Honda Civic LX"
	rec := ListingRecord{
		PostID: "123456789",
		Title:  &title,
		Price:  &price,
		Attrs:  map[string]any{"misc": []string{"clean title"}},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, "123456789", m["post_id"])
	assert.Equal(t, float64(9900), m["price"])
	// Absent optionals serialize as explicit nulls.
	assert.Contains(t, m, "year")
	assert.Nil(t, m["year"])
	// attrs_json is the wire name for the attributes mapping.
	assert.Contains(t, m, "attrs_json")
}

func TestRunSummaryJSONKeys(t *testing.T) {
	data, err := json.Marshal(RunSummary{OK: true, RunID: "r", Processed: 3, Written: 2, Skipped: 1})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	for _, key := range []string{"ok", "run_id", "processed", "written_json", "skipped_existing", "errors"} {
		assert.Contains(t, m, key)
	}
}

func TestRunIDTimestamp(t *testing.T) {
	ts := RunIDTimestamp("20251021T090008Z")
	assert.Equal(t, time.Date(2025, 10, 21, 9, 0, 8, 0, time.UTC), ts)

	// Non-timestamp run IDs fall back to roughly now.
	fallback := RunIDTimestamp("custom-run")
	assert.WithinDuration(t, time.Now().UTC(), fallback, time.Minute)
}
