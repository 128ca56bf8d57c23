package service

import (
	"errors"

	"floreria/internal/apierror"
)

// Kind classifies a service error so handlers can pick the status code.
type Kind int

const (
	KindBusiness Kind = iota
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindConflict
)

// Error carries a client-facing Spanish message and its kind.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works for every not-found message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Kind == e.Kind
}

var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrBusiness     = &Error{Kind: KindBusiness}
)

func notFound(msg string) error     { return &Error{Kind: KindNotFound, Msg: msg} }
func forbidden(msg string) error    { return &Error{Kind: KindForbidden, Msg: msg} }
func unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }
func conflict(msg string) error     { return &Error{Kind: KindConflict, Msg: msg} }
func business(msg string) error     { return &Error{Kind: KindBusiness, Msg: msg} }

// KindOf returns the kind of a service error and whether err is one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// fieldError is a single-field validation failure rendered as 422.
func fieldError(field, msg string) error {
	return apierror.FieldErrors{field: msg}
}
