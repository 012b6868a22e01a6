package bol

import "github.com/PatrickRutledge/bill-of-lading-automation/constants"

// RecordSchema returns the JSON Schema a marshalled Record must satisfy
// before it is persisted.
func RecordSchema() map[string]any {
	props := map[string]any{}
	required := make([]string, 0, len(constants.AllFields())+2)

	for _, f := range constants.AllFields() {
		required = append(required, string(f))
		switch KindOf(f) {
		case KindDecimal:
			p := map[string]any{"type": []string{"number", "null"}}
			if f == constants.TotalWeight {
				p["exclusiveMinimum"] = MinWeight
			} else {
				p["minimum"] = 0
			}
			props[string(f)] = p
		case KindInteger:
			props[string(f)] = map[string]any{
				"type":             []string{"integer", "null"},
				"exclusiveMinimum": 0,
				"exclusiveMaximum": MaxPieces,
			}
		default:
			props[string(f)] = map[string]any{
				"type":      []string{"string", "null"},
				"minLength": 1,
			}
		}
	}

	props["raw_text_excerpt"] = map[string]any{"type": "string", "maxLength": ExcerptLimit}
	props["extracted_field_count"] = map[string]any{
		"type":    "integer",
		"minimum": 0,
		"maximum": len(constants.AllFields()),
	}
	required = append(required, "raw_text_excerpt", "extracted_field_count")

	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}
