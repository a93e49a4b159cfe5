package validation

import (
	"fmt"
	"strings"
)

// FieldError describes a single rejected request field.
type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Message
}

// Error collects field errors found while validating a request.
// A nil *Error means the request passed.
type Error struct {
	Fields []FieldError
}

// Add records a failure for field.
func (e *Error) Add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Merge appends the field errors of other, if any.
func (e *Error) Merge(other *Error) {
	if other == nil {
		return
	}
	e.Fields = append(e.Fields, other.Fields...)
}

// OrNil returns e when it holds failures and nil otherwise, so callers can
// return it directly as an error.
func (e *Error) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// New returns an error holding a single field failure.
func New(field, format string, args ...any) *Error {
	e := &Error{}
	e.Add(field, format, args...)
	return e
}
