// Package validation checks aggregated submission payloads against a JSON
// schema contract before they are sent anywhere.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// GetErrorMessages flattens validation errors for logging.
func (r *ValidationResult) GetErrorMessages() []string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return msgs
}

// PayloadSchema builds the JSON schema for an aggregated submission record
// from the configured required-field list. Required fields must be present
// and non-empty strings or numbers.
func PayloadSchema(requiredFields []string) map[string]interface{} {
	properties := map[string]interface{}{
		"submissionTimestamp": map[string]interface{}{"type": "string"},
		"formVersion":         map[string]interface{}{"type": "string"},
	}
	for _, f := range requiredFields {
		properties[f] = map[string]interface{}{
			"type": []interface{}{"string", "number"},
		}
	}

	required := append([]string{"submissionTimestamp", "formVersion"}, requiredFields...)

	return map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": true,
	}
}

// ValidatePayload validates a document against a schema map.
func ValidatePayload(document map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	if !result.Valid() {
		for _, desc := range result.Errors() {
			out.Errors = append(out.Errors, ValidationError{
				Field:   desc.Field(),
				Message: desc.Description(),
			})
		}
	}

	return out, nil
}
