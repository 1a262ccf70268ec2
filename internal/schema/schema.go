// Package schema validates externally supplied profile hints against an
// embedded JSON Schema before they reach the normalizer.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/hire-engine/internal/model"
)

//go:embed schemas/profile_hint.schema.json
var profileHintSchema string

var hintSchemaLoader = gojsonschema.NewStringLoader(profileHintSchema)

// ValidationError lists every schema violation with its field path.
type ValidationError struct {
	Errors []FieldError
}

type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "profile hint does not match schema: " + strings.Join(parts, "; ")
}

// ValidateHint checks raw JSON against the profile hint schema.
func ValidateHint(raw []byte) error {
	result, err := gojsonschema.Validate(hintSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &model.MalformedInputError{Source: "profile hint", Reason: err.Error()}
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}

// DecodeHint validates raw JSON and decodes it. Empty input yields a nil hint.
func DecodeHint(raw []byte) (*model.ProfileHint, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	if err := ValidateHint(raw); err != nil {
		return nil, err
	}

	var hint model.ProfileHint
	if err := json.Unmarshal(raw, &hint); err != nil {
		return nil, &model.MalformedInputError{Source: "profile hint", Reason: err.Error()}
	}
	return &hint, nil
}
