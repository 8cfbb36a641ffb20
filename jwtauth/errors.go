package jwtauth

import (
	"errors"
	"fmt"
)

// ErrorCode represents a validation error code
type ErrorCode string

const (
	ErrInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrConfigError  ErrorCode = "CONFIG_ERROR"
)

const (
	// invalidTokenMessage is the only message Decode ever reports
	invalidTokenMessage = "invalid token"

	// UnauthorizedMessage is the only message a rejected request ever sees
	UnauthorizedMessage = "could not validate credentials"
)

// ValidationError represents an authentication error with a code and message.
// Internal keeps the underlying cause for server-side logs only.
type ValidationError struct {
	Code     ErrorCode
	Message  string
	Internal error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *ValidationError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(code ErrorCode, message string, internal error) *ValidationError {
	return &ValidationError{
		Code:     code,
		Message:  message,
		Internal: internal,
	}
}

func invalidToken(internal error) *ValidationError {
	return NewValidationError(ErrInvalidToken, invalidTokenMessage, internal)
}

func unauthorized(internal error) *ValidationError {
	return NewValidationError(ErrUnauthorized, UnauthorizedMessage, internal)
}

// IsInvalidToken reports whether err is a codec rejection
func IsInvalidToken(err error) bool {
	return hasCode(err, ErrInvalidToken)
}

// IsUnauthorized reports whether err is a guard rejection
func IsUnauthorized(err error) bool {
	return hasCode(err, ErrUnauthorized)
}

// hasCode checks only the outermost ValidationError in the chain
func hasCode(err error, code ErrorCode) bool {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Code == code
	}
	return false
}
