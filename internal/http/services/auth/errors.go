package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a failure for callers and maps it onto an HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
	KindValidation
	KindDependency
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTooManyRequests:
		return "too_many_requests"
	case KindValidation:
		return "validation_error"
	case KindDependency:
		return "dependency_error"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// HTTPStatus is the response status for the kind. Conflict is reported as 400.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindValidation:
		return http.StatusBadRequest
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified service failure with a stable machine code.
// Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func newErr(k Kind, code, msg string) *Error { return &Error{Kind: k, Code: code, Message: msg} }

var (
	ErrInvalidCredentials   = newErr(KindUnauthorized, "invalid_credentials", "Invalid email or password.")
	ErrAccountDisabled      = newErr(KindForbidden, "account_disabled", "This account has been deactivated.")
	ErrEmailTaken           = newErr(KindConflict, "email_taken", "An account with this email already exists.")
	ErrInvalidRefreshToken  = newErr(KindUnauthorized, "invalid_refresh_token", "Refresh token is invalid or expired.")
	ErrRefreshTokenNotFound = newErr(KindUnauthorized, "refresh_token_not_found", "Refresh token not found.")
	ErrUserNotFound         = newErr(KindNotFound, "user_not_found", "User not found.")
	ErrTooManyResetRequests = newErr(KindTooManyRequests, "too_many_requests", "Too many password reset requests today. Try again tomorrow.")
	ErrOTPInvalidOrExpired  = newErr(KindUnauthorized, "otp_invalid_or_expired", "The code is invalid or has expired.")
	ErrEmailDelivery        = newErr(KindDependency, "email_delivery_failed", "The reset code could not be delivered. Try again later.")
	ErrValidation           = newErr(KindValidation, "validation_error", "One or more fields are invalid.")
	ErrStoreUnavailable     = newErr(KindDependency, "dependency_unavailable", "A required service is unavailable. Try again later.")
	ErrTimeout              = newErr(KindTimeout, "timeout", "The operation timed out.")
	ErrInternal             = newErr(KindInternal, "internal_error", "An unexpected error occurred.")
)

// FieldError names one rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries per-field reasons. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (v *ValidationError) Error() string { return ErrValidation.Error() + " (" + v.Detail() + ")" }

func (v *ValidationError) Is(target error) bool { return target == ErrValidation }

func (v *ValidationError) Unwrap() error { return ErrValidation }

// Detail renders the field reasons as "field: reason; field: reason".
func (v *ValidationError) Detail() string {
	parts := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return strings.Join(parts, "; ")
}

func (v *ValidationError) add(field, reason string) { v.Fields = append(v.Fields, FieldError{field, reason}) }

func (v *ValidationError) orNil() error {
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

// Classify returns the service Error behind err. Deadlines win over everything else;
// anything unclassified is ErrInternal.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal
}

// KindOf is Classify(err).Kind.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	return Classify(err).Kind
}

func asValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
