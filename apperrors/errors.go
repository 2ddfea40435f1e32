package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error so controllers can map it to
// an HTTP status without inspecting message strings.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidState
	KindAlreadyJoined
	KindAlreadyRecorded
	KindForbidden
	KindDeadlinePassed
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindAlreadyJoined:
		return "already_joined"
	case KindAlreadyRecorded:
		return "already_recorded"
	case KindForbidden:
		return "forbidden"
	case KindDeadlinePassed:
		return "deadline_passed"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// HTTPStatus returns the response status code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindDeadlinePassed:
		return http.StatusUnprocessableEntity
	case KindAlreadyJoined, KindAlreadyRecorded, KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may retry the same request.
// Only lock contention is retryable; everything else is terminal.
func (k Kind) Retryable() bool {
	return k == KindConflict
}

// Error is a structured application error with a kind, a caller-facing
// message and an optional wrapped internal error.
type Error struct {
	Kind     Kind
	Message  string
	Internal error
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Internal)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Internal
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Internal: err}
}

// KindOf extracts the kind from an error chain, defaulting to internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf extracts the caller-facing message from an error chain.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "An unexpected error occurred"
}
