package domain

import "errors"

// Sentinel errors for the whole core. The HTTP layer maps each of these to a
// deterministic status code; anything else is treated as unexpected and
// surfaces as a generic 500.
var (
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("username or email already taken")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrCorruptCredential  = errors.New("corrupt stored credential")
)
