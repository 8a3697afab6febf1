package config

// mergeDocuments overlays override onto base. Nested sections are merged key
// by key; any other value in override replaces the one in base.
func mergeDocuments(base, override map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		overrideSection, ok := v.(map[string]interface{})
		if !ok {
			result[k] = v
			continue
		}
		baseSection, ok := result[k].(map[string]interface{})
		if !ok {
			result[k] = overrideSection
			continue
		}
		result[k] = mergeDocuments(baseSection, overrideSection)
	}

	return result
}
