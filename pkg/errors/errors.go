package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidCredentials      = errors.New("incorrect email or password")
	ErrInvalidToken            = errors.New("invalid token. Please log in again")
	ErrTokenExpired            = errors.New("your token has expired! Please log in again")
	ErrUnauthorized            = errors.New("you are not logged in! Please log in to get access")
	ErrInsufficientPermissions = errors.New("you do not have permission to perform this action")
	ErrPasswordChanged         = errors.New("user recently changed password! Please log in again")

	ErrInvalidInput = errors.New("invalid input data")
	ErrEmptyUpdate  = errors.New("no fields to update")
)

// AppError is an operational error that carries the HTTP status it should be
// reported with. Anything that is not an AppError is treated as a programming
// error by the terminal error handler.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
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

// Status returns "fail" for client errors and "error" for server errors.
func (e *AppError) Status() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return "fail"
	}
	return "error"
}

func NewAppError(statusCode int, code, message string, err error) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Err:        err,
	}
}

func BadRequest(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, "BAD_REQUEST", message, err)
}

func Validation(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", message, err)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "FORBIDDEN", message, nil)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message, nil)
}

func Conflict(message string, err error) *AppError {
	return NewAppError(http.StatusConflict, "CONFLICT", message, err)
}

func TooManyRequests(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, "RATE_LIMITED", message, nil)
}

func Internal(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", message, err)
}

// InvalidID reports an identifier that cannot be converted to the store's key type.
func InvalidID(id string) *AppError {
	return NewAppError(http.StatusBadRequest, "INVALID_ID", fmt.Sprintf("Invalid id: %s.", id), nil)
}
