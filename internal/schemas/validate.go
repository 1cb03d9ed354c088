// Package schemas provides JSON Schema validation for request payloads.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
	payloads "github.com/nkagan-1326/onboarding-plan-generator/schemas"
)

// Embedded schema names.
const (
	SubmissionSchema    = "submission.schema.json"
	ExportRequestSchema = "export_request.schema.json"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// FieldErrors converts the schema errors to the form used for input validation.
func (ve *ValidationError) FieldErrors() []types.FieldError {
	out := make([]types.FieldError, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		out = append(out, types.FieldError{Field: e.Field, Message: e.Message})
	}
	return out
}

type compiled struct {
	schema *gojsonschema.Schema
	err    error
}

var (
	cacheMu sync.Mutex
	cache   = map[string]compiled{}
)

// load compiles an embedded schema once.
func load(name string) (*gojsonschema.Schema, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if c, ok := cache[name]; ok {
		return c.schema, c.err
	}

	var c compiled
	data, err := payloads.FS.ReadFile(name)
	if err != nil {
		c.err = &SchemaLoadError{Path: name, Message: "schema not embedded", Cause: err}
	} else {
		c.schema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			c.err = &SchemaLoadError{Path: name, Message: "invalid schema", Cause: err}
		}
	}
	cache[name] = c
	return c.schema, c.err
}

// Validate validates a JSON document against an embedded schema. Malformed JSON is
// reported as a ValidationError on the root.
func Validate(name string, document []byte) error {
	schema, err := load(name)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: fmt.Sprintf("invalid JSON: %v", err)}}}
	}
	return toValidationError(result)
}

// ValidateSubmission validates a submission payload.
func ValidateSubmission(document []byte) error {
	return Validate(SubmissionSchema, document)
}

// ValidateExportRequest validates an export request payload.
func ValidateExportRequest(document []byte) error {
	return Validate(ExportRequestSchema, document)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	// Build structured error
	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
