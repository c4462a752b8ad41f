// Package apperrors defines the error taxonomy the clinic core reports
// to callers. Every failed precondition maps to exactly one Kind; the
// HTTP layer translates kinds to status codes and never inspects
// message text.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the outcomes a caller can act on.
type Kind int

const (
	// KindUnknown is the zero value and maps to an internal error.
	KindUnknown Kind = iota
	// KindUnauthenticated means no valid identity accompanied the request.
	KindUnauthenticated
	// KindPermissionDenied means the caller's role is not allowed the operation.
	KindPermissionDenied
	// KindInvalidInput means a missing or malformed field, including non-numeric ids.
	KindInvalidInput
	// KindNotFound means a referenced doctor, centro, paciente or cita is absent.
	KindNotFound
	// KindConflict means the request collides with current state: inactive
	// patient, double booking, or an already-cancelled appointment.
	KindConflict
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with a human-readable reason.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted reason.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and reason to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from an error chain. Unclassified errors
// report KindUnknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}
