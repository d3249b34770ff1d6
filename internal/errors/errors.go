package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig  = "CONFIG"
	ErrAuth    = "AUTH"
	ErrServer  = "SERVER"
	ErrParse   = "PARSE"
	ErrNetwork = "NETWORK"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	// Status is the HTTP status that produced the error, or 0.
	Status int
	Cause  error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrNetwork code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrNetwork,
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

// NewServer creates a SERVER error for a non-2xx response.
func NewServer(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("API error: %d", status)
	}
	return &Error{
		Code:    ErrServer,
		Message: message,
		Status:  status,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
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
	var fErr *Error
	if errors.As(err, &fErr) {
		return fErr.Code == code
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var fErr *Error
	if errors.As(err, &fErr) {
		return fErr.Status
	}
	return 0
}

// Summary returns the one-line message of a structured error, or err.Error()
// for anything else. Used where the multi-line rendering does not fit (toasts).
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var fErr *Error
	if errors.As(err, &fErr) {
		return fErr.Message
	}
	return err.Error()
}
