package config

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"
)

func newReflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		// Unknown keys are rejected; every field is optional.
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		FieldNameTag:               "yaml",
		DoNotReference:             true,
	}
}

// GenerateSchema reflects Config into a JSON schema document. extensions maps
// extra top-level keys (e.g. "logging") to the types that decode them.
func GenerateSchema(extensions map[string]interface{}) ([]byte, error) {
	r := newReflector()

	schema := r.Reflect(&Config{})
	schema.Title = "Luminashot Configuration"
	schema.Description = "Schema for luminashot.yml / luminashot.toml configuration files."

	keys := make([]string, 0, len(extensions))
	for key := range extensions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		ext := r.Reflect(extensions[key])
		ext.Version = ""
		schema.Properties.Set(key, ext)
	}

	return json.MarshalIndent(schema, "", "  ")
}
