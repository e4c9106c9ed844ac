package core

import "github.com/pkg/errors"

// Error kinds. Every domain error unwraps to exactly one of them;
// the API layer picks the response status from the kind alone.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalid         = errors.New("invalid")
)

// Error is a domain error of a given kind. Msg is safe to show to API callers.
type Error struct {
	Kind error
	Msg  string
}

func (err *Error) Error() string { return err.Msg }
func (err *Error) Unwrap() error { return err.Kind }

func NewUnauthenticatedError(msg string) error { return &Error{Kind: ErrUnauthenticated, Msg: msg} }
func NewForbiddenError(msg string) error       { return &Error{Kind: ErrForbidden, Msg: msg} }
func NewNotFoundError(msg string) error        { return &Error{Kind: ErrNotFound, Msg: msg} }
func NewConflictError(msg string) error        { return &Error{Kind: ErrConflict, Msg: msg} }
func NewInvalidError(msg string) error         { return &Error{Kind: ErrInvalid, Msg: msg} }

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err *ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

func (err *ValidationError) Unwrap() error {
	if err.Err == nil {
		return ErrInvalid
	}
	return err.Err
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	var sd *shutdown
	return errors.As(err, &sd)
}
