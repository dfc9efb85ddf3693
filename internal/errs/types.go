package errs

import (
	"errors"
	"fmt"
	"time"
)

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type AlreadyExistsError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

// UnauthorizedError means the caller has to (re)establish identity or finish
// the step-up check. Redirect names the client route to send the user to.
type UnauthorizedError struct {
	ErrorMessage
	Redirect string
}

// ForbiddenError is an authenticated caller without the required role.
type ForbiddenError struct {
	ErrorMessage
	Redirect string
}

type RateLimitedError struct {
	ErrorMessage
	RetryAfter time.Duration
}

type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// OperationFailedError is a failed write whose Message is safe to show as-is.
// The cause stays in Err for logging.
type OperationFailedError struct {
	ErrorMessage
	Err error
}

func (e *OperationFailedError) Unwrap() error { return e.Err }

type EncryptionError struct {
	ErrorMessage
	Err error
}

func (e *EncryptionError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewUnauthorizedError(message, redirect string) *UnauthorizedError {
	return &UnauthorizedError{
		ErrorMessage: ErrorMessage{Message: message},
		Redirect:     redirect,
	}
}

func NewForbiddenError(message, redirect string) *ForbiddenError {
	return &ForbiddenError{
		ErrorMessage: ErrorMessage{Message: message},
		Redirect:     redirect,
	}
}

func NewRateLimitedError(message string, retryAfter time.Duration) *RateLimitedError {
	return &RateLimitedError{
		ErrorMessage: ErrorMessage{Message: message},
		RetryAfter:   retryAfter,
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("%s: %v", message, err)},
		Operation:    operation,
		Err:          err,
	}
}

func NewExternalServiceError(service, message string, transient bool, err error) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("%s: %v", message, err)},
		Service:      service,
		Transient:    transient,
		Err:          err,
	}
}

func NewOperationFailedError(message string, err error) *OperationFailedError {
	return &OperationFailedError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}

func NewEncryptionError(message string, err error) *EncryptionError {
	return &EncryptionError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("%s: %v", message, err)},
		Err:          err,
	}
}

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
