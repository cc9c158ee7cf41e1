package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("access forbidden")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrConflict           = errors.New("concurrent modification")
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskTypeNotFound   = errors.New("task type not found")
	ErrWorkflowNotFound   = errors.New("workflow not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Invalid returns an error wrapping ErrValidation with a client-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
