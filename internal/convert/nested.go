package convert

// mapOf returns v as a map, or nil when v is not a map.
func mapOf(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// stringOf returns v as a string, or "" when v is not a string.
func stringOf(v interface{}) string {
	s, _ := v.(string)
	return s
}

// firstNonEmpty returns the first map holding at least one entry.
func firstNonEmpty(candidates ...map[string]interface{}) map[string]interface{} {
	for _, m := range candidates {
		if len(m) > 0 {
			return m
		}
	}

	return nil
}

// valueOr returns m[key] when present and non-nil, else fallback.
func valueOr(m map[string]interface{}, key string, fallback interface{}) interface{} {
	if v, ok := m[key]; ok && v != nil {
		return v
	}

	return fallback
}
