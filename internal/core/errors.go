// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Request errors
	ErrInvalidInput = &Error{Code: "INVALID_INPUT", Message: "invalid input"}
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}

	// Data errors
	ErrKeywordNotFound = &Error{Code: "KEYWORD_NOT_FOUND", Message: "keyword not found"}
	ErrUnknownPlatform = &Error{Code: "UNKNOWN_PLATFORM", Message: "unknown platform"}
	ErrNoData          = &Error{Code: "NO_DATA", Message: "no data available"}

	// Snapshot loading errors
	ErrDataDirMissing    = &Error{Code: "DATA_DIR_MISSING", Message: "snapshot directory missing"}
	ErrSnapshotMalformed = &Error{Code: "SNAPSHOT_MALFORMED", Message: "malformed snapshot file"}

	// Upstream errors
	ErrUpstreamUnavailable = &Error{Code: "UPSTREAM_UNAVAILABLE", Message: "upstream service unavailable"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// LLM errors
	ErrLLMDisabled = &Error{Code: "LLM_DISABLED", Message: "no LLM provider configured"}
	ErrLLMFailed   = &Error{Code: "LLM_FAILED", Message: "LLM request failed"}
)
