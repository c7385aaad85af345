// Package apperr defines the error taxonomy shared by the stores, the
// assignment engine, and the HTTP features.
//
// Every error carries a Kind and a caller-facing Message. Callers match on
// kind with errors.Is against the exported sentinels:
//
//	if errors.Is(err, apperr.ErrNotFound) { ... }
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindDuplicateAssignment Kind = "duplicate_assignment"
	KindNoResourceAvailable Kind = "no_resource_available"
	KindInvalidState        Kind = "invalid_state"
	KindValidation          Kind = "validation"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrDuplicateAssignment = &Error{Kind: KindDuplicateAssignment}
	ErrNoResourceAvailable = &Error{Kind: KindNoResourceAvailable}
	ErrInvalidState        = &Error{Kind: KindInvalidState}
	ErrValidation          = &Error{Kind: KindValidation}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches by kind so wrapped and unwrapped errors of the same kind compare
// equal to the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NotFound reports that a referenced entity does not exist.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// DuplicateAssignment reports a violated unique-scope constraint.
func DuplicateAssignment(format string, args ...any) *Error {
	return &Error{Kind: KindDuplicateAssignment, Message: fmt.Sprintf(format, args...)}
}

// NoResourceAvailable reports that no eligible projector could be claimed.
func NoResourceAvailable(format string, args ...any) *Error {
	return &Error{Kind: KindNoResourceAvailable, Message: fmt.Sprintf(format, args...)}
}

// InvalidState reports an unknown target state, an illegal transition, or a
// transition attempted by a non-administrator.
func InvalidState(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// Validation reports a missing or malformed field.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the caller-facing message of err. Unclassified errors get
// a generic message so internal details are not leaked.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}
