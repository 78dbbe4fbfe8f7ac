package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service wraps exactly one of them,
// so handlers can map it with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrEventConflict = errors.New("event conflict")
	ErrInvalidDate   = errors.New("invalid date")
	ErrBadRequest    = errors.New("bad request")
	ErrForbidden     = errors.New("forbidden")
)

// Error is a domain failure with a message for the client.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func eventConflict(format string, args ...any) error {
	return newError(ErrEventConflict, format, args...)
}

func invalidDate(format string, args ...any) error {
	return newError(ErrInvalidDate, format, args...)
}

func badRequest(format string, args ...any) error {
	return newError(ErrBadRequest, format, args...)
}

func forbidden(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}
