// Package apperr classifies errors so transports can map them to responses.
package apperr

import "errors"

type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindState         Kind = "state"
	KindAuthorization Kind = "authorization"
	KindPersistence   Kind = "persistence"
	KindInternal      Kind = "internal"
)

// Error carries a stable snake_case code and a kind. Sentinels are compared by
// identity, so declare them once per package.
type Error struct {
	kind  Kind
	code  string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.code + ": " + e.cause.Error()
	}
	return e.code
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Code() string { return e.code }

func New(kind Kind, code string) *Error {
	return &Error{kind: kind, code: code}
}

func Validation(code string) *Error    { return New(KindValidation, code) }
func NotFound(code string) *Error      { return New(KindNotFound, code) }
func State(code string) *Error         { return New(KindState, code) }
func Authorization(code string) *Error { return New(KindAuthorization, code) }

// Persistence wraps a store failure. A nil err stays nil.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{kind: KindPersistence, code: "persistence_error", cause: err}
}

// KindOf returns the kind of the first classified error in the chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind
	}
	return KindInternal
}

// CodeOf returns the code of the first classified error in the chain.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.code
	}
	return "internal_error"
}

func IsValidation(err error) bool {
	k := KindOf(err)
	return k == KindValidation || k == KindNotFound
}

func IsState(err error) bool { return KindOf(err) == KindState }
