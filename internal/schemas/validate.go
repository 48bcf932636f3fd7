// Package schemas provides JSON Schema validation for structured API payloads.
package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	rootschemas "github.com/jonathan/hr-console/schemas"
	"github.com/jonathan/hr-console/internal/types"
	"github.com/xeipuuv/gojsonschema"
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

var reviewSnapshotSchema = gojsonschema.NewStringLoader(rootschemas.ReviewSnapshot)

// ValidateReviewSnapshot checks a snapshot against the review snapshot schema.
func ValidateReviewSnapshot(snapshot types.ReviewSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal review snapshot: %w", err)
	}
	return validate("review_snapshot.schema.json", reviewSnapshotSchema, gojsonschema.NewBytesLoader(data))
}

// ValidateReviewSnapshotFile checks a JSON file against the review snapshot
// schema and returns the decoded snapshot when it is valid.
func ValidateReviewSnapshotFile(path string) (*types.ReviewSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := validate("review_snapshot.schema.json", reviewSnapshotSchema, gojsonschema.NewBytesLoader(data)); err != nil {
		return nil, err
	}
	var snapshot types.ReviewSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode review snapshot: %w", err)
	}
	return &snapshot, nil
}

func validate(name string, schema, document gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schema, document)
	if err != nil {
		return &SchemaLoadError{
			Path:    name,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

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
