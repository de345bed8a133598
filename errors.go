package svcspec

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by validation, reachable with errors.Is
var (
	// ErrMissingField indicates a mandatory field was absent or empty
	ErrMissingField = errors.New("svcspec: missing field")

	// ErrInvalidValue indicates a field value failed its format check
	ErrInvalidValue = errors.New("svcspec: invalid value")

	// ErrConflict indicates two mutually exclusive options were combined
	ErrConflict = errors.New("svcspec: conflicting options")

	// ErrUnrecognized indicates an enumerated field held an unknown value
	ErrUnrecognized = errors.New("svcspec: unrecognized value")
)

// ValidationError reports a field of a service specification that failed validation
type ValidationError struct {
	// Service is the name of the service being compiled
	Service string
	// Field is the offending field
	Field string
	// Value is the offending value, if any
	Value any
	// Reason is a short human-readable description
	Reason string
	// Err is the sentinel classifying the failure
	Err error
}

// Error returns a formatted error message
func (e *ValidationError) Error() string {
	return fmt.Sprintf("service %q: %s", e.Service, e.Reason)
}

// Unwrap returns the sentinel for error chain inspection
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ConflictError reports mutually exclusive options set together.
// It carries every conflicting field name.
type ConflictError struct {
	// Service is the name of the service being compiled
	Service string
	// Fields lists the conflicting fields
	Fields []string
	// Reason is a short human-readable description
	Reason string
}

// Error returns a formatted error message
func (e *ConflictError) Error() string {
	return fmt.Sprintf("service %q: %s (%s)", e.Service, e.Reason, strings.Join(e.Fields, ", "))
}

// Unwrap returns ErrConflict
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// UnrecognizedEnumError reports an enumerated field holding an unknown value.
// The value is echoed verbatim.
type UnrecognizedEnumError struct {
	// Service is the name of the service being compiled
	Service string
	// Field is the enumerated field
	Field string
	// Value is the received value
	Value any
}

// Error returns a formatted error message
func (e *UnrecognizedEnumError) Error() string {
	return fmt.Sprintf("service %q: invalid value for %s: %v", e.Service, e.Field, e.Value)
}

// Unwrap returns ErrUnrecognized
func (e *UnrecognizedEnumError) Unwrap() error {
	return ErrUnrecognized
}

// IsValidationError reports whether err stems from validating a service
// specification. Conflict and unrecognized-value errors count as validation
// errors.
func IsValidationError(err error) bool {
	var (
		verr *ValidationError
		cerr *ConflictError
		uerr *UnrecognizedEnumError
	)
	return errors.As(err, &verr) || errors.As(err, &cerr) || errors.As(err, &uerr)
}

// ErrorField returns the field an error is about, or "" when err carries none.
// A conflict reports its first field.
func ErrorField(err error) string {
	var (
		verr *ValidationError
		cerr *ConflictError
		uerr *UnrecognizedEnumError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Field
	case errors.As(err, &cerr):
		if len(cerr.Fields) > 0 {
			return cerr.Fields[0]
		}
	case errors.As(err, &uerr):
		return uerr.Field
	}
	return ""
}

// MultiError aggregates multiple errors from bulk operations
type MultiError struct {
	// Errors contains all accumulated errors
	Errors []error
}

// Error returns a summary of the accumulated errors
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(m.Errors))
}

// Add appends an error to the collection if it's not nil
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Unwrap exposes the accumulated errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Err returns nil if no errors occurred, otherwise returns the MultiError itself
func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}
