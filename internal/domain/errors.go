package domain

import (
	"errors"
	"fmt"
)

// Storage level sentinels. Adapters return these (possibly wrapped);
// the app layer turns them into *Error values with a user facing message.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is an error that knows which client facing category it belongs to.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error { return E(KindNotFound, format, args...) }

func BadRequestf(format string, args ...any) *Error { return E(KindBadRequest, format, args...) }

func Unauthorizedf(format string, args ...any) *Error { return E(KindUnauthorized, format, args...) }

func Forbiddenf(format string, args ...any) *Error { return E(KindForbidden, format, args...) }

// Internal wraps an unexpected failure; msg is what the client sees.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// AlreadyExists is the creation-time rejection for a second hotel.
func AlreadyExists(format string, args ...any) *Error { return E(KindBadRequest, format, args...) }

// KindOf classifies any error, including bare storage sentinels and
// validation failures.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	var ve ValidationErrors
	switch {
	case errors.As(err, &ve):
		return KindBadRequest
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicate):
		return KindBadRequest
	}
	return KindInternal
}

// PublicMessage is the text placed in the error envelope.
func PublicMessage(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Error()
	}
	var ve ValidationErrors
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, ErrNotFound):
		return "Resource not found"
	case errors.Is(err, ErrDuplicate):
		return "Duplicate field value entered"
	}
	return "Server Error"
}
