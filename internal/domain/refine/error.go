package refine

import (
	"errors"
	"fmt"
)

// Kind classifies a refinement failure
type Kind string

const (
	// KindValidation means the input note was empty. No outbound call was made.
	KindValidation Kind = "VALIDATION"
	// KindUpstream covers transport failures, non-success responses and unusable
	// content from the generation collaborator.
	KindUpstream Kind = "UPSTREAM"
	// KindTimeout means the collaborator did not answer before the deadline.
	KindTimeout Kind = "TIMEOUT"
)

// User-facing messages. Collaborator detail never appears in these.
const (
	MsgNoteRequired  = "Note is required."
	MsgRefineFailed  = "Failed to refine note."
	MsgRefineTimeout = "The refinement request timed out."
)

// Error is the typed failure returned by refinement. Message is safe to show
// to an end user; the cause is kept for operator logs and errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause
func (e *Error) Unwrap() error {
	return e.cause
}

// Detail returns the operator-facing description including the cause.
func (e *Error) Detail() string {
	if e.cause == nil {
		return e.Error()
	}
	return fmt.Sprintf("%s: %v", e.Error(), e.cause)
}

// Validation creates a validation error
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Upstream wraps a collaborator failure behind the generic message
func Upstream(cause error) *Error {
	return &Error{Kind: KindUpstream, Message: MsgRefineFailed, cause: cause}
}

// Timeout wraps a deadline failure
func Timeout(cause error) *Error {
	return &Error{Kind: KindTimeout, Message: MsgRefineTimeout, cause: cause}
}

// KindOf returns the kind of err, or "" when err is not a refinement error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsUpstream checks if the error is an upstream error
func IsUpstream(err error) bool {
	return KindOf(err) == KindUpstream
}

// IsTimeout checks if the error is a timeout error
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}
