package utils

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Origin  error // underlying driver error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

func (appErr *AppError) Unwrap() error {
	return appErr.Origin
}

// Error codes shared by the store and the handlers
const (
	ErrUserNotFound  = "USER_NOT_FOUND"
	ErrPostNotFound  = "POST_NOT_FOUND"
	ErrUsernameTaken = "USERNAME_TAKEN"
	ErrInvalidInput  = "INVALID_INPUT"

	ErrDatabase = "database_error"
)

func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

func NewUserNotFoundError(userID string) *AppError {
	return &AppError{
		Code:    ErrUserNotFound,
		Message: "User not found: " + userID,
	}
}

func NewPostNotFoundError(postID string) *AppError {
	return &AppError{
		Code:    ErrPostNotFound,
		Message: "Post not found: " + postID,
	}
}

func NewUsernameTakenError() *AppError {
	return &AppError{
		Code:    ErrUsernameTaken,
		Message: "username already taken",
	}
}

func NewInvalidInputError(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: message,
	}
}

func NewDatabaseError(message string, originalErr error) *AppError {
	return NewAppError(ErrDatabase, message, originalErr)
}

// IsErrorCode reports whether err, or anything it wraps, is an AppError with the given code.
func IsErrorCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrUserNotFound, ErrPostNotFound:
		return http.StatusNotFound
	case ErrInvalidInput:
		return http.StatusBadRequest
	case ErrUsernameTaken:
		return http.StatusConflict
	case ErrDatabase:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus resolves the status for any error; non-AppErrors are 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return AppErrorToHTTPStatus(appErr.Code)
	}
	return http.StatusInternalServerError
}
