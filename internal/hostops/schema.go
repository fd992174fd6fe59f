package hostops

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Violation is one schema-validation failure, in the shape the planner
// attaches to a failed artifact's error.
type Violation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidateAgainstSchema validates data (any JSON-marshalable Go value, in
// particular an *jsvalue.OrderedMap) against the JSON Schema document in
// schemaBytes. It returns the violations found, or none if data is valid.
func ValidateAgainstSchema(schemaBytes []byte, data any) ([]Violation, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal data for schema validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(dataBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, item := range result.Errors() {
		violations = append(violations, Violation{
			Field:       item.Field(),
			Description: item.Description(),
		})
	}
	return violations, nil
}
