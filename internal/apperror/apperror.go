// Package apperror defines the error taxonomy shared by the stores and the HTTP layer.
//
// TWO LEVELS OF SENTINELS:
// The broad category sentinels (ErrNotFound, ErrValidation, ...) are what the HTTP
// layer maps to a status code. The taxonomy sentinels (ErrInvalidCredentials, ...)
// name the exact failure and wrap a category, so both checks work:
//
//	errors.Is(err, apperror.ErrInvalidCredentials) // exact failure
//	errors.Is(err, apperror.ErrUnauthorized)       // category
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrNotAuthenticated   = fmt.Errorf("not authenticated: %w", ErrUnauthorized)
	ErrDuplicateAccount   = fmt.Errorf("duplicate account: %w", ErrConflict)
	ErrAccountNotFound    = fmt.Errorf("account not found: %w", ErrNotFound)
	ErrWrongPassword      = fmt.Errorf("wrong current password: %w", ErrForbidden)
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// InvalidCredentials is returned by login for an unknown email OR a wrong password.
// The message is identical in both cases so callers can't probe which accounts exist.
func InvalidCredentials() *AppError {
	return &AppError{Err: ErrInvalidCredentials, Message: "Invalid email or password"}
}

// NotAuthenticated is returned by operations that need a signed-in session.
func NotAuthenticated() *AppError {
	return &AppError{Err: ErrNotAuthenticated, Message: "Not authenticated"}
}

// DuplicateAccount is returned by signup when the email is already registered.
func DuplicateAccount() *AppError {
	return &AppError{Err: ErrDuplicateAccount, Message: "User with this email already exists", Field: "email"}
}

// AccountNotFound is returned by the password-reset request for an unknown email.
func AccountNotFound() *AppError {
	return &AppError{Err: ErrAccountNotFound, Message: "No account found with this email address", Field: "email"}
}

// WrongPassword is returned by change-password when the current password doesn't match.
func WrongPassword() *AppError {
	return &AppError{Err: ErrWrongPassword, Message: "Current password is incorrect", Field: "currentPassword"}
}
