package domain

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUserNotFound    = errors.New("user not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrInternal        = errors.New("internal server error")
)
