package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure. Kinds are stable wire identifiers.
type Kind string

const (
	KindValidation             Kind = "validation"
	KindNotFound               Kind = "not_found"
	KindDuplicateCode          Kind = "duplicate_code"
	KindInvalidStateTransition Kind = "invalid_state_transition"
	KindStore                  Kind = "store"
	KindProtocol               Kind = "protocol"
	KindConflict               Kind = "conflict"
)

// Conflict reasons, machine-readable.
const (
	ReasonAlreadyClaimed = "already_claimed"
	ReasonWrongState     = "wrong_state"
	ReasonNotOwner       = "not_owner"
	ReasonSessionOpen    = "session_open"
	ReasonSessionClosed  = "session_closed"
)

// JSONRPCCode returns the wire error code for the kind.
func (k Kind) JSONRPCCode() int {
	switch k {
	case KindNotFound:
		return -32001
	case KindValidation:
		return -32002
	case KindDuplicateCode:
		return -32003
	case KindInvalidStateTransition:
		return -32004
	case KindStore:
		return -32005
	case KindProtocol:
		return -32006
	case KindConflict:
		return -32007
	default:
		return -32005
	}
}

// Error is a typed operation failure. Message is safe to show to clients;
// the wrapped cause, when present, is for logs only.
type Error struct {
	Kind    Kind
	Reason  string // set for conflicts
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// Validationf builds a validation error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// DuplicateCodef builds a duplicate-code error.
func DuplicateCodef(format string, args ...any) *Error {
	return &Error{Kind: KindDuplicateCode, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionf builds an invalid-state-transition error.
func InvalidTransitionf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidStateTransition, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a conflict error with a machine-readable reason.
func Conflictf(reason, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Protocolf builds a protocol-state error.
func Protocolf(format string, args ...any) *Error {
	return &Error{Kind: KindProtocol, Message: fmt.Sprintf(format, args...)}
}

// WrapStore wraps an unexpected storage failure. The message is what clients
// see; err stays attached for logging.
func WrapStore(err error, format string, args ...any) *Error {
	return &Error{Kind: KindStore, Message: fmt.Sprintf(format, args...), cause: err}
}

// AsError extracts a typed error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == k
}
