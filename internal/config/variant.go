package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Variant is one named extraction profile. The source tree this replaces
// carried several near-duplicate extractor programs; they collapse into one
// pipeline driven by these knobs.
type Variant struct {
	// Name is the profile key, e.g. "basic" or "llm".
	Name string `yaml:"-"`
	// Enrich enables the generative enrichment pass.
	Enrich bool `yaml:"enrich"`
	// Sink is the output shape: "json" or "jsonl".
	Sink string `yaml:"sink"`
	// OutputSubdir is the per-run subdirectory output lands in.
	OutputSubdir string `yaml:"output_subdir"`
	// Provenance adds run_id/source_txt/scraped_at to each record.
	Provenance bool `yaml:"provenance"`
}

type variantsFile struct {
	Variants map[string]Variant `yaml:"variants"`
}

// defaultVariantsYAML mirrors the historical extractor programs.
const defaultVariantsYAML = `
variants:
  basic:
    enrich: false
    sink: json
    output_subdir: structured/json
  llm:
    enrich: true
    sink: json
    output_subdir: structured/json
  regex2:
    enrich: false
    sink: json
    output_subdir: structured/json2
  jsonl:
    enrich: false
    sink: jsonl
    output_subdir: jsonl
    provenance: true
`

// LoadVariants returns the variant table: the built-in profiles, overlaid by
// the YAML file at path if one is given.
func LoadVariants(path string) (map[string]Variant, error) {
	var base variantsFile
	if err := yaml.Unmarshal([]byte(defaultVariantsYAML), &base); err != nil {
		return nil, eris.Wrap(err, "config: parse built-in variants")
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "config: read variants file %s", path)
		}
		var override variantsFile
		if err := yaml.Unmarshal(raw, &override); err != nil {
			return nil, eris.Wrapf(err, "config: parse variants file %s", path)
		}
		for name, v := range override.Variants {
			base.Variants[name] = v
		}
	}

	for name, v := range base.Variants {
		v.Name = name
		base.Variants[name] = v
	}
	return base.Variants, nil
}

// ResolveVariant looks up name in the variant table. An empty name selects
// the basic profile.
func ResolveVariant(variants map[string]Variant, name string) (Variant, error) {
	if name == "" {
		name = "basic"
	}
	v, ok := variants[name]
	if !ok {
		return Variant{}, eris.Errorf("config: unknown variant %q", name)
	}
	return v, nil
}
