// Package errors defines the structured error type used across portalmon.
//
// Every error that crosses a package boundary carries a code naming its
// category. The dashboard never treats these as fatal; the code decides how a
// failure is logged and counted.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrNetwork = "NETWORK" // historical fetch transport failure or non-2xx reply
	ErrDecode  = "DECODE"  // malformed payload from either channel
	ErrChannel = "CHANNEL" // live stream degradation
	ErrConfig  = "CONFIG"
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
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
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

// Network wraps a transport failure of the historical endpoint.
func Network(err error, message string) *Error {
	return WrapWithCode(err, ErrNetwork, message,
		"Check that the status service is running and base_url points at it")
}

// Decode wraps a payload that could not be parsed.
func Decode(err error, message string) *Error {
	return WrapWithCode(err, ErrDecode, message, "")
}

// Channel wraps a live stream failure.
func Channel(err error, message string) *Error {
	return WrapWithCode(err, ErrChannel, message, "The stream reconnects on its own")
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

// Short returns a single-line "message: cause" rendering for log lines and
// the dashboard header.
func (e *Error) Short() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + firstLine(e.Cause.Error())
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
	var pmErr *Error
	if errors.As(err, &pmErr) {
		return pmErr.Code == code
	}
	return false
}

// Summary renders any error on one line, using Short for structured errors.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var pmErr *Error
	if errors.As(err, &pmErr) {
		return pmErr.Short()
	}
	return firstLine(err.Error())
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
