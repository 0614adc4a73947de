package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecoverLabeledLines(t *testing.T) {
	fm := Parse(`Title: 2016 Honda Civic LX - clean
Price: $9,900
Neighborhood: West Haven
URL: https://x.org/d/123456789.html
Posted: 2025-10-21T09:00:08-0700
`)

	assert.Equal(t, "2016 Honda Civic LX - clean", fm.StringField("title"))
	assert.Equal(t, "West Haven", fm.StringField("location"))
	assert.Equal(t, "https://x.org/d/123456789.html", fm.StringField("url"))
	assert.Equal(t, "2025-10-21T09:00:08-0700", fm.StringField("posted_iso"))
	price, ok := fm.IntField("price")
	require.True(t, ok)
	assert.Equal(t, 9900, price)
}

func TestParseEndToEnd(t *testing.T) {
	fm := Parse("Title: 2016 Honda Civic LX\nPrice: $9,900\nURL: https://x/123456789.html\n")

	assert.Equal(t, "123456789", fm.StringField("post_id"))
	year, _ := fm.IntField("year")
	assert.Equal(t, 2016, year)
	assert.Equal(t, "Honda", fm.StringField("make"))
	assert.Equal(t, "Civic", fm.StringField("model"))
	price, _ := fm.IntField("price")
	assert.Equal(t, 9900, price)
}

func TestParseShortModelKeepsSeriesToken(t *testing.T) {
	fm := Parse("Title: 2019 Ford F 150 XLT\n")
	assert.Equal(t, "Ford", fm.StringField("make"))
	assert.Equal(t, "F 150", fm.StringField("model"))
}

func TestParseAttributesBlock(t *testing.T) {
	fm := Parse(`Title: 2010 Toyota Corolla
Attributes:
- condition: Excellent
- odometer: 95,000
- title status: clean
- clean title
- one owner
Posted: 2025-01-01T00:00:00Z
`)

	attrs, ok := fm["attrs_json"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Excellent", attrs["condition"])
	assert.Equal(t, "95,000", attrs["odometer"])
	assert.Equal(t, "clean", attrs["title status"])
	assert.Equal(t, []string{"clean title", "one owner"}, attrs["misc"])

	// The scan resumes after the block.
	assert.Equal(t, "2025-01-01T00:00:00Z", fm.StringField("posted_iso"))
}

func TestParseBareAttributeOnly(t *testing.T) {
	fm := Parse("Attributes:\n- clean title\n")
	attrs := fm["attrs_json"].(map[string]any)
	assert.Equal(t, []string{"clean title"}, attrs["misc"])
}

func TestParseBodyStopsScanning(t *testing.T) {
	fm := Parse(`Title: 2015 Mazda 3
BODY:
Price: $1 (not a real price line)
URL: https://x.org/99999999.html
second body line
`)

	_, hasPrice := fm.IntField("price")
	assert.False(t, hasPrice)
	assert.Empty(t, fm.StringField("url"))
	assert.Equal(t, "Price: $1 (not a real price line)\nURL: https://x.org/99999999.html\nsecond body line",
		fm.StringField("body"))
}

func TestParseBodySuffixMarker(t *testing.T) {
	fm := Parse("Title: bike\n=== BODY:\ntext here\n")
	assert.Equal(t, "text here", fm.StringField("body"))
}

func TestParseMalformedPriceIsAbsent(t *testing.T) {
	fm := Parse("Title: car\nPrice: call me\n")
	_, ok := fm.IntField("price")
	assert.False(t, ok)
}

func TestParseUnrecognizedLinesIgnored(t *testing.T) {
	fm := Parse("garbage line\nTitle: 2011 Kia Soul\nanother stray\n")
	assert.Equal(t, "2011 Kia Soul", fm.StringField("title"))
}

func TestParseYearBoundsRespected(t *testing.T) {
	// 2150 is outside the 1900-2099 title-year window.
	fm := Parse("Title: 2150 Flying Car\n")
	_, ok := fm.IntField("year")
	assert.False(t, ok)
}
