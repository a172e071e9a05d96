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
	ErrUpstream     = errors.New("upstream service error")
)

type AppError struct {
	Err     error  // sentinel category, matched with errors.Is
	Message string // human-readable error message
	Field   string // optional: field causing the error
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

// UsernameTaken is returned by registration when the username already exists.
// The match is case-sensitive and exact.
func UsernameTaken(username string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("username %q is already taken", username),
		Field:   "username",
	}
}

// InvalidCredentials is returned on login failure. It deliberately does not
// say whether the username or the password was wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "invalid username or password",
	}
}

// AlreadyClaimed is returned when the mastery chest for a module has already
// been claimed by this user. Re-claiming is safe but reports this outcome
// rather than silently succeeding.
func AlreadyClaimed(moduleID string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("mastery chest for module %q already claimed", moduleID),
	}
}

// NotEligible is returned when a chest claim is attempted before every topic
// and project of the module is marked complete.
func NotEligible(moduleID string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: fmt.Sprintf("module %q is not fully complete", moduleID),
	}
}

// Upstream wraps a failure from the generative-language service. The
// underlying error stays in the chain for logging; the message shown to
// clients is fixed and generic.
func Upstream(err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %v", ErrUpstream, err),
		Message: "the mentor service is temporarily unavailable",
	}
}
