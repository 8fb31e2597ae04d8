package domain

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoginPath is where callers are sent when an operation needs a session.
const LoginPath = "/login"

var (
	ErrAuthRequired         = errors.New("please log in to continue")
	ErrForbidden            = errors.New("access denied")
	ErrSubmissionInProgress = errors.New("an order is already being placed")
)

// ValidationError is a missing or invalid user-supplied field. It blocks the
// operation locally and never reaches the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// NewRemoteError builds the error returned for a failed collaborator call.
func NewRemoteError(code codes.Code, message string) error {
	return status.Error(code, message)
}

// IsRemoteError reports whether err came from a collaborator.
func IsRemoteError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := status.FromError(err)
	return ok
}

// RemoteCode returns the status code carried by a collaborator error, or codes.Unknown.
func RemoteCode(err error) codes.Code {
	return status.Code(err)
}
