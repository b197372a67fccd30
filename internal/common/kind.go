package common

import (
	"errors"
	"fmt"
)

// Kind is the outcome class of a failed operation. It decides the HTTP status
// a failure is reported with.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindUpstream
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstream:
		return "upstream_unavailable"
	case KindForbidden:
		return "forbidden"
	default:
		return "unexpected"
	}
}

// sentinel returns the package-level error that matches k under errors.Is.
func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrorValidation
	case KindNotFound:
		return ErrorNotFound
	case KindConflict:
		return ErrorConflict
	case KindUnauthorized:
		return ErrorUnauthorized
	case KindUpstream:
		return ErrorUpstreamUnavailable
	case KindForbidden:
		return ErrorForbidden
	default:
		return ErrorInternal
	}
}

// Error is a classified failure. Message is safe to show to clients; Err is
// the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's kind, so that
// errors.Is(err, ErrorConflict) holds for every conflict outcome.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Validation builds a client input failure.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound builds a missing-entity failure.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict builds a uniqueness failure.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Unauthorized builds an authentication failure.
func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Forbidden builds a failure of an authenticated caller lacking permission.
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// Upstream builds a remote collaborator failure.
func Upstream(op, msg string, err error) error {
	return &Error{Kind: KindUpstream, Op: op, Message: msg, Err: err}
}

// Unexpected builds a failure the caller could not anticipate, typically a
// store error.
func Unexpected(op string, err error) error {
	return &Error{Kind: KindUnexpected, Op: op, Message: "internal error", Err: err}
}

// KindOf classifies err. A tagged *Error wins; otherwise the sentinels are
// consulted; anything else is KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrorValidation):
		return KindValidation
	case errors.Is(err, ErrorNotFound):
		return KindNotFound
	case errors.Is(err, ErrorConflict):
		return KindConflict
	case errors.Is(err, ErrorUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return KindUnauthorized
	case errors.Is(err, ErrorUpstreamUnavailable):
		return KindUpstream
	case errors.Is(err, ErrorForbidden):
		return KindForbidden
	default:
		return KindUnexpected
	}
}

// MessageOf returns the client-facing message of err. Unexpected failures
// are reported generically.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindUnexpected && e.Message != "" {
		return e.Message
	}
	switch KindOf(err) {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation error"
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstream:
		return "upstream service unavailable"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal error"
	}
}
