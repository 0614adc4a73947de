package enrich

import "fmt"

// systemPrompt carries the normalization rules the extraction service must
// follow. They are deliberately test-like: each rule states one invariant of
// the canonical record.
const systemPrompt = `You extract car-listing data as STRICT JSON that matches the provided schema.
If a field is unknown, use null — never fabricate a value. Follow these rules:
1) price: integer USD with no symbols or commas; prefer an explicit 'Price:' line over an inferred one; otherwise use a $#### pattern in the text. Example: '$3,900' -> 3900. Ignore phone numbers and ZIP codes; prefer a single plausible car-sale price.
2) mileage: integer miles with no symbols or commas.
3) year: 4-digit vehicle year (1950-2100), prefer the listing title, else attributes/body.
4) make: manufacturer (e.g., Honda, Hyundai, Toyota). Only the brand name.
5) model: vehicle family ONLY (e.g., Civic, Sonata, Camry). DO NOT include trim (e.g., LX, SE), currency symbols, location names, mileage, or the year.
6) trim: optional submodel/grade (e.g., LX, SE, Limited). Put trims here, not in model.
7) location: prefer the 'Neighborhood' field if present; otherwise a clear location token from text.
8) posted_iso: if a timestamp is present, keep ISO-8601 (UTC or with offset).
9) body: include the free-text description (or best available body text).
10) attrs_json: any bullet attributes as an object; if none, use {} (empty object), not a string.
Return ONLY JSON — no prose.`

// responseSchema names the same fields as the canonical record; post_id is
// the only required field.
const responseSchema = `{
  "type": "object",
  "properties": {
    "post_id": {"type": "string"},
    "url": {"type": ["string", "null"]},
    "title": {"type": ["string", "null"]},
    "price": {"type": ["integer", "null"]},
    "year": {"type": ["integer", "null"]},
    "make": {"type": ["string", "null"]},
    "model": {"type": ["string", "null"]},
    "trim": {"type": ["string", "null"]},
    "mileage": {"type": ["integer", "null"]},
    "vin": {"type": ["string", "null"]},
    "color": {"type": ["string", "null"]},
    "transmission": {"type": ["string", "null"]},
    "condition": {"type": ["string", "null"]},
    "location": {"type": ["string", "null"]},
    "posted_iso": {"type": ["string", "null"]},
    "body": {"type": ["string", "null"]},
    "attrs_json": {"type": ["object", "null"]}
  },
  "required": ["post_id"]
}`

// fewshot anchors the make/model/trim/price/location split with two worked
// examples.
const fewshot = `EXAMPLE 1 TITLE: 2016 Honda Civic LX - $9,900 - West Haven
-> price=9900, year=2016, make=Honda, model=Civic, trim=LX, location=West Haven
EXAMPLE 2 TITLE: 2013 Hyundai Sonata GLS $3,900 Milford
-> price=3900, year=2013, make=Hyundai, model=Sonata, trim=GLS, location=Milford`

// buildUserPrompt assembles the per-item message: examples, schema,
// identifiers, and the raw listing text.
func buildUserPrompt(req Request) string {
	return fmt.Sprintf(`%s

Output JSON schema:
%s

POST_ID: %s
URL: %s

LISTING TEXT:
%s

Return ONLY JSON that conforms to the schema.`, fewshot, responseSchema, req.PostID, req.URL, req.Text)
}
