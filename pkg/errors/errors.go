// Package errors defines the typed error taxonomy for the authcore service.
// Every failure a component can return is a discriminated AuthError so that
// callers branch on kind instead of matching strings.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/turtacn/authcore/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AuthError represents a structured error with additional metadata.
type AuthError interface {
	error

	// Code returns the machine-readable error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code this error maps to
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) AuthError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) AuthError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// baseError is the internal implementation of AuthError.
type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

func (e *baseError) Error() string {
	if e.message != "" {
		return e.message
	}
	return e.description
}

func (e *baseError) Code() constants.ErrorCode { return e.code }

func (e *baseError) HTTPStatus() int { return e.httpStatus }

func (e *baseError) Description() string { return e.description }

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) WithCause(cause error) AuthError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) AuthError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} { return e.metadata }

// NewError creates a new AuthError with the specified parameters.
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) AuthError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Token-Layer Errors (recoverable by re-login)
// ================================================================================

// ErrTokenExpired creates a token expired error.
func ErrTokenExpired(tokenType string) AuthError {
	return NewError(
		constants.ErrCodeTokenExpired,
		http.StatusUnauthorized,
		"The token is past its expiry and can no longer be used.",
		fmt.Sprintf("%s has expired", tokenType),
	).WithMetadata("token_type", tokenType)
}

// ErrTokenMalformed creates a token malformed error.
func ErrTokenMalformed(reason string) AuthError {
	return NewError(
		constants.ErrCodeTokenMalformed,
		http.StatusUnauthorized,
		"The token failed structural or signature validation.",
		fmt.Sprintf("token is malformed: %s", reason),
	).WithMetadata("reason", reason)
}

// ErrTokenRevoked creates a token revoked error.
func ErrTokenRevoked(jti string) AuthError {
	return NewError(
		constants.ErrCodeTokenRevoked,
		http.StatusUnauthorized,
		"The token has been revoked.",
		fmt.Sprintf("token %s has been revoked", jti),
	).WithMetadata("jti", jti)
}

// ================================================================================
// Security-Significant Errors (must trigger client-side full logout)
// ================================================================================

// ErrFamilyRevoked creates a family revoked error.
func ErrFamilyRevoked(familyID, reason string) AuthError {
	return NewError(
		constants.ErrCodeFamilyRevoked,
		http.StatusUnauthorized,
		"The refresh-token family has been revoked; re-authentication is required.",
		fmt.Sprintf("refresh token family %s is revoked", familyID),
	).WithMetadata("family_id", familyID).
		WithMetadata("revoke_reason", reason)
}

// ErrTokenReuseDetected creates a reuse-detected error. The whole family is
// already revoked by the time this error is returned.
func ErrTokenReuseDetected(familyID, jti string) AuthError {
	return NewError(
		constants.ErrCodeTokenReuseDetected,
		http.StatusUnauthorized,
		"A superseded refresh token was replayed; the family has been revoked.",
		fmt.Sprintf("reuse of rotated token %s detected in family %s", jti, familyID),
	).WithMetadata("family_id", familyID).
		WithMetadata("jti", jti)
}

// ================================================================================
// Session Errors
// ================================================================================

// ErrSessionNotFound creates a session not found error.
func ErrSessionNotFound(sessionID string) AuthError {
	return NewError(
		constants.ErrCodeSessionNotFound,
		http.StatusUnauthorized,
		"No session exists for the given identifier.",
		fmt.Sprintf("session %s not found", sessionID),
	).WithMetadata("session_id", sessionID)
}

// ErrSessionExpired creates a session expired error. The which argument names
// the timeout that triggered ("idle" or "absolute").
func ErrSessionExpired(sessionID, which string) AuthError {
	return NewError(
		constants.ErrCodeSessionExpired,
		http.StatusUnauthorized,
		"The session exceeded its idle or absolute timeout.",
		fmt.Sprintf("session %s expired (%s timeout)", sessionID, which),
	).WithMetadata("session_id", sessionID).
		WithMetadata("timeout", which)
}

// ================================================================================
// Infrastructure Errors
// ================================================================================

// ErrStoreUnavailable creates a store unavailability error. Components apply
// their documented fail-open/fail-closed policy before surfacing it.
func ErrStoreUnavailable(cause error) AuthError {
	e := NewError(
		constants.ErrCodeStoreUnavailable,
		http.StatusServiceUnavailable,
		"The shared store could not be reached within the configured timeout.",
		"store unavailable",
	)
	if cause != nil {
		e = e.WithCause(cause)
	}
	return e
}

// ErrRateLimitExceeded creates a rate limit exceeded error carrying the wait hint.
func ErrRateLimitExceeded(operation string, limit int, retryAfter time.Duration) AuthError {
	return NewError(
		constants.ErrCodeRateLimitExceeded,
		http.StatusTooManyRequests,
		"Too many requests for this operation; retry after the indicated delay.",
		fmt.Sprintf("rate limit of %d exceeded for operation %q", limit, operation),
	).WithMetadata("operation", operation).
		WithMetadata("limit", limit).
		WithMetadata("retry_after_seconds", int(retryAfter.Seconds())+1)
}

// ErrInvalidRequest creates an invalid request error.
func ErrInvalidRequest(message string) AuthError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter or is otherwise malformed.",
		message,
	)
}

// ErrUnauthorized creates a generic unauthorized error.
func ErrUnauthorized(message string) AuthError {
	return NewError(
		constants.ErrCodeUnauthorized,
		http.StatusUnauthorized,
		"Authentication is required to access this resource.",
		message,
	)
}

// ErrInternal creates an internal server error.
func ErrInternal(message string) AuthError {
	return NewError(
		constants.ErrCodeInternal,
		http.StatusInternalServerError,
		"The service encountered an unexpected condition.",
		message,
	)
}

// ================================================================================
// Error Validation Utilities
// ================================================================================

// AsAuthError attempts to cast an error to AuthError, unwrapping as needed.
func AsAuthError(err error) (AuthError, bool) {
	var ae AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// CodeOf returns the error code, or ErrCodeInternal for untyped errors.
func CodeOf(err error) constants.ErrorCode {
	if ae, ok := AsAuthError(err); ok {
		return ae.Code()
	}
	return constants.ErrCodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code constants.ErrorCode) bool {
	return CodeOf(err) == code
}

// IsStoreUnavailable reports whether err is a store availability fault.
func IsStoreUnavailable(err error) bool {
	return HasCode(err, constants.ErrCodeStoreUnavailable)
}

// IsSecurityEvent reports whether err must emit a security-audit event
// regardless of configuration.
func IsSecurityEvent(err error) bool {
	code := CodeOf(err)
	return code == constants.ErrCodeTokenReuseDetected ||
		code == constants.ErrCodeFamilyRevoked
}

// IsRecoverableByReauth reports whether the client can clear the error by
// logging in again.
func IsRecoverableByReauth(err error) bool {
	switch CodeOf(err) {
	case constants.ErrCodeTokenExpired,
		constants.ErrCodeTokenRevoked,
		constants.ErrCodeFamilyRevoked,
		constants.ErrCodeTokenReuseDetected,
		constants.ErrCodeSessionNotFound,
		constants.ErrCodeSessionExpired:
		return true
	}
	return false
}

// HTTPStatusOf returns the HTTP status an error maps to, defaulting to 500.
func HTTPStatusOf(err error) int {
	if ae, ok := AsAuthError(err); ok {
		return ae.HTTPStatus()
	}
	return http.StatusInternalServerError
}
