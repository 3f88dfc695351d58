package errors

import (
	"fmt"
	"maps"
	"net/http"
)

// AppError is the error type every package returns across its public API.
// Code drives both the retry hint and the HTTP status the server answers with.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause == nil {
		return msg
	}
	return msg + " (cause: " + e.Cause.Error() + ")"
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches on Code alone, so a package-level AppError works as a sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause attaches the underlying error and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into e and returns e.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

// New builds an AppError whose retry hint follows the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// registryFailure records the app and, when a response arrived, its status.
func registryFailure(code ErrorCode, message, app string, status int) *AppError {
	e := New(code, message, http.StatusBadGateway).WithDetail("app", app)
	if status > 0 {
		e.Details["status"] = status
	}
	return e
}

// RegisterFailed reports a registration the registry did not accept. status
// is the HTTP status received, or 0 when no response arrived.
func RegisterFailed(app string, status int) *AppError {
	return registryFailure(ErrCodeRegisterFailed, "Could not register with Eureka.", app, status)
}

// DeregisterFailed reports a de-registration the registry did not accept.
func DeregisterFailed(app string, status int) *AppError {
	return registryFailure(ErrCodeDeregisterFailed, "Could not de-register from Eureka.", app, status)
}

// InstanceNotFound reports an application no source could resolve.
func InstanceNotFound(app, message string) *AppError {
	return New(ErrCodeInstanceNotFound, message, http.StatusNotFound).WithDetail("app", app)
}

// ServiceUnavailable reports a backing store the agent depends on being down.
func ServiceUnavailable(service string) *AppError {
	msg := fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service)
	return New(ErrCodeServiceUnavailable, msg, http.StatusServiceUnavailable).WithDetail("service", service)
}

func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, "Missing required field: "+field, http.StatusBadRequest).
		WithDetail("field", field)
}

// Internal hides cause behind a generic message; only logs see the cause.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.",
		http.StatusInternalServerError).WithCause(cause)
}
