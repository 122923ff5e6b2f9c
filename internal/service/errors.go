package service

import "errors"

// Error kinds. Every error returned by a domain service either is one of
// these or unwraps to one.
var (
	ErrNotFound            = errors.New("Resource not found")
	ErrValidation          = errors.New("Validation failed")
	ErrConstraintViolation = errors.New("Constraint violation")
	ErrInsufficientFunds   = errors.New("Insufficient balance")
	ErrCapacityExceeded    = errors.New("Capacity exceeded")
	ErrUnauthorized        = errors.New("Unauthorized")
)

// Error is a domain failure with a message fit to show to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error {
	return NewError(ErrNotFound, message)
}

func Validation(message string) *Error {
	return NewError(ErrValidation, message)
}

func Constraint(message string) *Error {
	return NewError(ErrConstraintViolation, message)
}

// Kind returns the kind err belongs to, or nil for unexpected errors.
func Kind(err error) error {
	for _, kind := range []error{
		ErrNotFound,
		ErrValidation,
		ErrConstraintViolation,
		ErrInsufficientFunds,
		ErrCapacityExceeded,
		ErrUnauthorized,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
