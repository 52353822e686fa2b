// Package errors defines the service error taxonomy used across the gateway.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies the class of a service error.
type ErrorCode string

const (
	CodeConfiguration  ErrorCode = "CONFIGURATION_ERROR"
	CodeClientInput    ErrorCode = "CLIENT_INPUT_ERROR"
	CodeAuthentication ErrorCode = "AUTHENTICATION_ERROR"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeUpstream       ErrorCode = "UPSTREAM_ERROR"
	CodeRateLimit      ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeInvalidToken   ErrorCode = "INVALID_TOKEN"
)

// ServiceError is an error with an HTTP status and a stable code.
type ServiceError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	cause      error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *ServiceError) Unwrap() error { return e.cause }

// WithDetails attaches a key/value detail and returns the error.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Configuration reports missing or invalid server configuration. Fatal for
// the request (500) and never retried.
func Configuration(message string) *ServiceError {
	return &ServiceError{Code: CodeConfiguration, Message: message, HTTPStatus: http.StatusInternalServerError}
}

// InvalidInput reports a missing or malformed request field (400).
func InvalidInput(message string) *ServiceError {
	return &ServiceError{Code: CodeClientInput, Message: message, HTTPStatus: http.StatusBadRequest}
}

// InvalidFormat reports a field that fails format validation (400).
func InvalidFormat(field, requirement string) *ServiceError {
	return (&ServiceError{
		Code:       CodeClientInput,
		Message:    fmt.Sprintf("invalid %s", field),
		HTTPStatus: http.StatusBadRequest,
	}).WithDetails("requirement", requirement)
}

// Unauthorized reports a missing or malformed credential (401).
func Unauthorized(message string) *ServiceError {
	return &ServiceError{Code: CodeAuthentication, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// InvalidToken reports a credential that failed validation (401).
func InvalidToken(cause error) *ServiceError {
	return &ServiceError{
		Code:       CodeInvalidToken,
		Message:    "invalid or expired token",
		HTTPStatus: http.StatusUnauthorized,
		cause:      cause,
	}
}

// Forbidden reports an authenticated caller without permission (403).
func Forbidden(message string) *ServiceError {
	return &ServiceError{Code: CodeForbidden, Message: message, HTTPStatus: http.StatusForbidden}
}

// NotFound reports a missing resource (404).
func NotFound(resource string) *ServiceError {
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// Upstream reports a third-party API failure. The upstream status code is
// passed through to the caller.
func Upstream(message string, status int, cause error) *ServiceError {
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	return &ServiceError{Code: CodeUpstream, Message: message, HTTPStatus: status, cause: cause}
}

// RateLimitExceeded reports that the caller exceeded the request budget (429).
func RateLimitExceeded(limit int, window string) *ServiceError {
	return (&ServiceError{
		Code:       CodeRateLimit,
		Message:    "rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
	}).WithDetails("limit", limit).WithDetails("window", window)
}

// Internal reports an unexpected server-side failure (500).
func Internal(message string, cause error) *ServiceError {
	return &ServiceError{Code: CodeInternal, Message: message, HTTPStatus: http.StatusInternalServerError, cause: cause}
}

// GetServiceError returns the ServiceError in err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}
