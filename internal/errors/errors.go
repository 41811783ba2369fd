package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig  = "CONFIG"
	ErrGateway = "GATEWAY"
	ErrParse   = "PARSE"
	ErrTimeout = "TIMEOUT"
	ErrLimit   = "LIMIT"
	ErrFilter  = "FILTER"
	ErrProcess = "PROCESS"
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

// Wrap wraps an existing error with a message, defaulting to ErrGateway code.
// Most wrapped errors in procmon come out of external tool calls.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrGateway,
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

// NewUnsupported creates an error for a data source that has no
// implementation on the current platform.
func NewUnsupported(source, platform string) *Error {
	return &Error{
		Code:       ErrGateway,
		Message:    fmt.Sprintf("%s metrics are not available on %s", source, platform),
		Suggestion: "The column will show N/A for the rest of this session",
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
	var pmErr *Error
	if errors.As(err, &pmErr) {
		return pmErr.Code == code
	}
	return false
}

// Code returns the code of the first structured Error in the chain, or "".
func Code(err error) string {
	var pmErr *Error
	if errors.As(err, &pmErr) {
		return pmErr.Code
	}
	return ""
}

// Headline returns the message of the first structured Error in the chain,
// or the plain error text. Single-line displays use it.
func Headline(err error) string {
	if err == nil {
		return ""
	}
	var pmErr *Error
	if errors.As(err, &pmErr) {
		return pmErr.Message
	}
	return err.Error()
}

// ExitError carries a process exit code out of a command without printing
// an additional error message.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError for the given exit code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the exit code from an ExitError anywhere in the chain.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
