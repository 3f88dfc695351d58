package errors

import (
	stderrors "errors"
	"net/http"
)

// ErrorResponse is the JSON body the agent sends for a failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the code, message and retry hint of an AppError.
// RequestID is echoed so a caller can find the matching request log line.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	RequestID string         `json:"requestId,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Response builds the body sent for e. The cause is never included.
func (e *AppError) Response(requestID string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		RequestID: requestID,
		Details:   e.Details,
	}}
}

// Status is the HTTP status to answer with, 500 when none was set.
func (e *AppError) Status() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// AsAppError reports whether err wraps an *AppError and returns it.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}
