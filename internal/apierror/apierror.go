// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package so the envelope is the
// same on every route and internal details (stack traces, DB errors) never leak.
package apierror

import (
	"sort"
	"strings"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors (422).
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

// DefaultValidationDetail is the generic message used when field errors are present.
const DefaultValidationDetail = "Error de validacion"

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: DefaultValidationDetail, Fields: fields}
}

// FieldErrors maps a wire field name to a Spanish message. Domain validators
// return it as an error; handlers render it as a 422 ValidationError.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return strings.Join(parts, "; ")
}

// Add records msg for field unless the field already carries an error.
func (f FieldErrors) Add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

// Err returns nil when there are no field errors, so callers can write
// `return errs.Err()` without a typed-nil surprise.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}
