package schemas

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared across all schemas; the validator instance is safe for
// concurrent use.
var validate = validator.New()

// ValidationError carries a field -> reason mapping for a payload that failed
// to load. Route handlers map it to 400 for client input and 500 for stored
// data that no longer matches its schema; the detail is logged, never returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// asValidationError converts decode and validator failures into a
// ValidationError with per-field reasons.
func asValidationError(err error) *ValidationError {
	if verr, ok := err.(validator.ValidationErrors); ok {
		fields := make(map[string]string, len(verr))
		for _, fe := range verr {
			fields[fe.Field()] = fe.Tag()
		}
		return &ValidationError{Fields: fields}
	}
	return newValidationError("_schema", err.Error())
}
