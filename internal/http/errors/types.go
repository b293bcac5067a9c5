// Package errors writes failures raised outside the services (bad JSON, missing
// bearer token, rate limits, panics) in the same envelope the services use.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an HTTP-layer failure.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	// Err is the cause, for logs only.
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// FromError returns err as an AppError, or ErrInternalServerError wrapping it.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail returns a copy carrying detail.
func (e *AppError) WithDetail(detail string) *AppError {
	c := *e
	c.Detail = detail
	return &c
}

// WithCause returns a copy carrying err.
func (e *AppError) WithCause(err error) *AppError {
	c := *e
	c.Err = err
	return &c
}

var (
	ErrBadRequest           = New(http.StatusBadRequest, "bad_request", "The request is malformed.")
	ErrInvalidJSON          = New(http.StatusBadRequest, "invalid_json", "The request body is not valid JSON.")
	ErrUnsupportedMediaType = New(http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json.")
	ErrBodyTooLarge         = New(http.StatusRequestEntityTooLarge, "body_too_large", "The request body is too large.")

	ErrUnauthorized = New(http.StatusUnauthorized, "unauthorized", "Authentication is required.")
	ErrTokenExpired = New(http.StatusUnauthorized, "token_expired", "The access token has expired.")
	ErrForbidden    = New(http.StatusForbidden, "forbidden", "You do not have access to this resource.")

	ErrNotFound         = New(http.StatusNotFound, "not_found", "The resource does not exist.")
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed.")

	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "too_many_requests", "Too many requests. Try again later.")

	ErrInternalServerError = New(http.StatusInternalServerError, "internal_error", "An unexpected error occurred.")
	ErrServiceUnavailable  = New(http.StatusServiceUnavailable, "service_unavailable", "The service is not ready.")
)
