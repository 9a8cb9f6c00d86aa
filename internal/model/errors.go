package model

import "errors"

var (
	ErrNotFound           = errors.New("entity not found")
	ErrConflict           = errors.New("entity already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateUser      = errors.New("user with given email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrPartialSignup      = errors.New("signup did not complete")
	ErrStorageUnavailable = errors.New("content storage is not configured")
)

// InputError describes a request that failed boundary validation.
// It matches ErrInvalidInput with errors.Is.
type InputError struct {
	Msg string
}

// NewInputError creates InputError with the given message.
func NewInputError(msg string) *InputError {
	return &InputError{Msg: msg}
}

func (e *InputError) Error() string {
	return e.Msg
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}
