package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing failures
const (
	ErrConfig   = "CONFIG"
	ErrSample   = "SAMPLE"
	ErrJob      = "JOB"
	ErrPoll     = "POLL"
	ErrConflict = "CONFLICT"
	ErrInvalid  = "INVALID"
	ErrNotFound = "NOT_FOUND"
	ErrInternal = "INTERNAL"
)

// Error is a structured error carrying a code, a short message, an
// optional fix-it suggestion, and an optional cause.
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message under the INTERNAL code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrInternal,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface. Multi-line output is intended for
// startup and CLI failures; API handlers should use Message instead.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var cvErr *Error
	if errors.As(err, &cvErr) {
		return cvErr.Code == code
	}
	return false
}

// Message returns the short single-line message of a structured Error, or
// the plain Error() text for anything else. Used for JSON error bodies.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var cvErr *Error
	if errors.As(err, &cvErr) {
		return cvErr.Message
	}
	return err.Error()
}
