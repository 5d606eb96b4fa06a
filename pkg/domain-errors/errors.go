// Package domainerrors defines the coded error taxonomy surfaced by ledger
// operations. Stores return sentinel errors; services wrap them into one of
// these codes before they cross a transport boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a failed operation. Every mutating entry point aborts
// atomically and reports exactly one of these.
type Code string

const (
	// CodeInvalidArgument covers malformed input: zero addresses, mismatched
	// batch lengths, out-of-range votes.
	CodeInvalidArgument Code = "invalid_argument"
	// CodeNotFound means a referenced namespace or identity does not exist.
	CodeNotFound Code = "not_found"
	// CodeAlreadyExists means the caller already owns an identity in the
	// target namespace.
	CodeAlreadyExists Code = "already_exists"
	// CodeUnauthorized means the caller is not the required controller,
	// issuer, or owner.
	CodeUnauthorized Code = "unauthorized"
	// CodeSystemPaused means the global pause switch is on.
	CodeSystemPaused Code = "system_paused"
	// CodeReentrancyBlocked means a guarded operation was re-entered before
	// the outer call completed.
	CodeReentrancyBlocked Code = "reentrancy_blocked"
	// CodeBadRequest covers transport-level request problems.
	CodeBadRequest Code = "bad_request"
	// CodeInternal covers unexpected infrastructure failures. Details are
	// never exposed to callers.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. It wraps an optional cause so errors.Is
// still reaches store sentinels.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors and the empty code for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Message extracts the caller-safe message from err, if any.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
