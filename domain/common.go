package domain

import (
	"errors"
	"fmt"
)

const (
	RoleUser = "user"
)

var (
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"

	ErrParseUUID     = errors.New("failed to parse UUID")
	ErrTokenNotFound = errors.New("failed to token not found")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenExpired  = errors.New("token expired")
)

// ValidationError is a client-side check that failed before anything was
// written. Its message is meant to be shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
