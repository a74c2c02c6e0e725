// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// searchRequestSchema validates the /api/search payload before it
// reaches the recommendation pipeline. The core itself tolerates any
// input; this schema exists to give clients actionable 400s.
const searchRequestSchema = `{
	"type": "object",
	"properties": {
		"query": {
			"type": "string",
			"minLength": 1,
			"maxLength": 1000
		},
		"filters": {
			"type": "object",
			"properties": {
				"category":  {"type": "string"},
				"price_min": {"type": "number", "minimum": 0},
				"price_max": {"type": "number", "minimum": 0},
				"age":       {"type": "integer", "minimum": 0, "maximum": 120}
			},
			"additionalProperties": false
		},
		"limit": {"type": "integer", "minimum": 1, "maximum": 50}
	},
	"required": ["query"],
	"additionalProperties": false
}`

var compiledSearchSchema *gojsonschema.Schema

func init() {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(searchRequestSchema))
	if err != nil {
		panic(fmt.Sprintf("invalid search request schema: %v", err))
	}
	compiledSearchSchema = schema
}

// ValidationError describes one failed constraint.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult aggregates schema validation output.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidateSearchRequest checks a raw JSON body against the search
// request schema. The returned error covers unreadable documents only;
// constraint failures land in the result.
func ValidateSearchRequest(body []byte) (*ValidationResult, error) {
	result, err := compiledSearchSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("validate search request: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, resErr := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   resErr.Field(),
			Message: resErr.Description(),
		})
	}
	return out, nil
}
