package domain

import "errors"

var (
	ErrValidation         = errors.New("required field is empty")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownEmail       = errors.New("no account with that email")
	ErrUserNotFound       = errors.New("user not found")
	ErrPromptNotFound     = errors.New("prompt not found")
	ErrForbidden          = errors.New("caller does not own this prompt")
)
