package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a client-side failure
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Failure taxonomy: auth failures redirect to login, network failures
// notify and abort, application failures surface the server message,
// validation failures never reach the network, timeouts clear loading state.
const (
	ErrAuth ErrorCode = iota + 1000
	ErrNetwork
	ErrApplication
	ErrValidation
	ErrTimeout
	ErrNotFound
)

func NewAuth(message string, err error) *AppError {
	return &AppError{
		Code:    ErrAuth,
		Message: message,
		Err:     err,
	}
}

func NewNetwork(err error) *AppError {
	return &AppError{
		Code:    ErrNetwork,
		Message: "connection error",
		Err:     err,
	}
}

func NewApplication(message string, err error) *AppError {
	return &AppError{
		Code:    ErrApplication,
		Message: message,
		Err:     err,
	}
}

func NewValidation(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

func NewTimeout(err error) *AppError {
	return &AppError{
		Code:    ErrTimeout,
		Message: "request timed out",
		Err:     err,
	}
}

func NewNotFound(resource string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// CodeOf extracts the error code, ErrApplication for unclassified errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrApplication
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	return CodeOf(err) == ErrAuth
}

// IsNetwork reports whether err is a network-level failure.
func IsNetwork(err error) bool {
	return CodeOf(err) == ErrNetwork
}
