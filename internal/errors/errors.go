// Package errors provides structured error types for the background remover.
//
// Every failure the engine, the pipeline and the transports can report to a
// user carries a machine-readable Code and a human-readable message. The
// transports map codes to JSON-RPC and HTTP responses; callers decide whether
// to retry by inspecting the code.
//
// # Error Codes
//
//   - DECODE_FAILURE: input is not a valid or supported image
//   - ENCODE_FAILURE: output serialization failed
//   - UNSUPPORTED_METHOD: removal method is recognised but not implemented
//   - UNSUPPORTED_REPLACEMENT: replacement kind is recognised but not implemented
//   - INVALID_REPLACEMENT_COLOR: replacement colour string does not parse
//   - INVALID_THRESHOLD: threshold outside 0-100
//   - INVALID_INPUT: any other invalid argument
//   - INTERNAL_ERROR: unexpected failure
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnsupportedMethod, "method %q is coming soon", m)
//	if errors.Is(err, errors.ErrCodeUnsupportedMethod) {
//	    // show "coming soon"
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure taxonomy.
const (
	ErrCodeDecode                  Code = "DECODE_FAILURE"
	ErrCodeEncode                  Code = "ENCODE_FAILURE"
	ErrCodeUnsupportedMethod       Code = "UNSUPPORTED_METHOD"
	ErrCodeUnsupportedReplacement  Code = "UNSUPPORTED_REPLACEMENT"
	ErrCodeInvalidReplacementColor Code = "INVALID_REPLACEMENT_COLOR"
	ErrCodeInvalidThreshold        Code = "INVALID_THRESHOLD"
	ErrCodeInvalidInput            Code = "INVALID_INPUT"
	ErrCodeInternal                Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message suitable for showing to an end user.
// Structured errors yield their Message without the code prefix or cause;
// anything else yields err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Retryable reports whether the same input may succeed with different
// options. Decode failures need a different file; everything else in the
// taxonomy is fixed by adjusting options and resubmitting.
func Retryable(err error) bool {
	switch GetCode(err) {
	case ErrCodeDecode, ErrCodeInternal, "":
		return false
	default:
		return true
	}
}
