package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/listing-etl/internal/model"
)

func TestMergeEnrichedOverrides(t *testing.T) {
	det := model.FieldMap{"title": "raw title", "price": 9900, "make": "honda"}
	enr := model.FieldMap{"make": "Honda", "trim": "LX"}

	out := Merge(det, enr)

	assert.Equal(t, "Honda", out.StringField("make"))
	assert.Equal(t, "LX", out.StringField("trim"))
	price, _ := out.IntField("price")
	assert.Equal(t, 9900, price)
	assert.Equal(t, "raw title", out.StringField("title"))
}

func TestMergeNullsNeverOverride(t *testing.T) {
	det := model.FieldMap{"price": 9900}
	enr := model.FieldMap{"price": nil, "year": nil}

	out := Merge(det, enr)

	price, ok := out.IntField("price")
	assert.True(t, ok)
	assert.Equal(t, 9900, price)
	_, hasYear := out.IntField("year")
	assert.False(t, hasYear)
}

func TestMergePostIDAuthoritative(t *testing.T) {
	det := model.FieldMap{"post_id": "123456789"}
	enr := model.FieldMap{"post_id": "999999999"}

	out := Merge(det, enr)
	assert.Equal(t, "123456789", out.StringField("post_id"))
}

func TestMergeURLFillsGapOnly(t *testing.T) {
	out := Merge(
		model.FieldMap{"url": "https://det.example/1.html"},
		model.FieldMap{"url": "https://enr.example/2.html"},
	)
	assert.Equal(t, "https://det.example/1.html", out.StringField("url"))

	out = Merge(
		model.FieldMap{},
		model.FieldMap{"url": "https://enr.example/2.html"},
	)
	assert.Equal(t, "https://enr.example/2.html", out.StringField("url"))
}

func TestMergeMiscStaysSequenceAllOrderings(t *testing.T) {
	cases := []struct {
		name     string
		det, enr model.FieldMap
	}{
		{
			name: "deterministic sequence, enriched string",
			det:  model.FieldMap{"attrs_json": map[string]any{"misc": []string{"clean title"}}},
			enr:  model.FieldMap{"attrs_json": map[string]any{"misc": "one owner"}},
		},
		{
			name: "deterministic string, enriched sequence",
			det:  model.FieldMap{"attrs_json": map[string]any{"misc": "one owner"}},
			enr:  model.FieldMap{"attrs_json": map[string]any{"misc": []any{"clean title"}}},
		},
		{
			name: "enriched only, string",
			det:  model.FieldMap{},
			enr:  model.FieldMap{"attrs_json": map[string]any{"misc": "solo"}},
		},
		{
			name: "deterministic only, sequence",
			det:  model.FieldMap{"attrs_json": map[string]any{"misc": []string{"kept"}}},
			enr:  model.FieldMap{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Merge(tc.det, tc.enr)
			attrs, ok := out["attrs_json"].(map[string]any)
			assert.True(t, ok)
			assert.IsType(t, []string{}, attrs["misc"])
		})
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	det := model.FieldMap{"attrs_json": map[string]any{"misc": "bare"}, "price": 1000}
	enr := model.FieldMap{"price": 2000}

	_ = Merge(det, enr)

	// The source mappings are untouched.
	assert.Equal(t, "bare", det["attrs_json"].(map[string]any)["misc"])
	price, _ := det.IntField("price")
	assert.Equal(t, 1000, price)
}
