package enrich

import (
	"github.com/sells-group/listing-etl/internal/model"
	"github.com/sells-group/listing-etl/internal/validate"
)

// Merge combines the deterministic and model-derived field mappings. Every
// non-null enriched field overrides the deterministic value, with two
// exemptions:
//
//   - post_id: the resolved deterministic identifier is always authoritative;
//   - url: the deterministic value wins, the enriched one only fills a gap.
//
// attrs_json.misc survives every merge ordering as a sequence.
func Merge(det, enr model.FieldMap) model.FieldMap {
	out := det.Clone()

	for k, v := range enr {
		if v == nil {
			continue
		}
		switch k {
		case "post_id":
			// Resolved identifier is authoritative.
		case "url":
			if out.StringField("url") == "" {
				out[k] = v
			}
		default:
			out[k] = v
		}
	}

	if _, present := out["attrs_json"]; present {
		out["attrs_json"] = validate.NormalizeAttrs(out["attrs_json"])
	}

	return out
}
