// Package normalize canonicalizes federation-config payloads ahead of schema
// validation. Normalization owns its output: the caller's value is deep
// copied first and never touched.
package normalize

import "strings"

// Normalize returns a canonical deep copy of payload: domain hostnames are
// trimmed and lowercased, the optional metadata strings are trimmed, and
// every attribute rule has its canonical name trimmed and its source list
// trimmed with empty entries dropped. Fields outside these rules pass through
// unchanged. Normalize is idempotent.
func Normalize(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}

	out, _ := Clone(payload).(map[string]any)

	if saml, ok := out["saml"].(map[string]any); ok {
		trimField(saml, "metadata_url")
		trimField(saml, "metadata_xml")
		normalizeAttributeMapping(saml)
	}

	if domains, ok := out["domains"].([]any); ok {
		for _, entry := range domains {
			binding, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if domain, ok := binding["domain"].(string); ok {
				binding["domain"] = strings.ToLower(strings.TrimSpace(domain))
			}
		}
	}

	return out
}

// Clone deep copies a JSON-decoded value. Scalars are returned as-is.
func Clone(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, entry := range v {
			out[key] = Clone(entry)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, entry := range v {
			out[i] = Clone(entry)
		}
		return out
	default:
		return v
	}
}

func normalizeAttributeMapping(saml map[string]any) {
	mapping, ok := saml["attribute_mapping"].(map[string]any)
	if !ok {
		return
	}
	keys, ok := mapping["keys"].(map[string]any)
	if !ok {
		return
	}

	for _, entry := range keys {
		rule, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		trimField(rule, "name")

		sources, ok := rule["sources"].([]any)
		if !ok {
			continue
		}
		cleaned := make([]any, 0, len(sources))
		for _, source := range sources {
			s, ok := source.(string)
			if !ok {
				// Leave non-strings for the validator to reject.
				cleaned = append(cleaned, source)
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			cleaned = append(cleaned, s)
		}
		rule["sources"] = cleaned
	}
}

func trimField(object map[string]any, field string) {
	if value, ok := object[field].(string); ok {
		object[field] = strings.TrimSpace(value)
	}
}
