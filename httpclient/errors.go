package httpclient

import "errors"

// ErrNoResponse is the cause recorded when a transport reports neither a
// response nor an error.
var ErrNoResponse = errors.New("no response received")

// ErrorCode classifies why no usable response arrived. HTTP status codes are
// never errors at this layer.
type ErrorCode int

const (
	ErrCodeTimeout    ErrorCode = iota + 1 // deadline hit or caller cancelled
	ErrCodeConnection                      // refused, DNS, reset, truncated body
	ErrCodeValidation                      // the request could not be built
)

var codeNames = map[ErrorCode]string{
	ErrCodeTimeout:    "timeout",
	ErrCodeConnection: "connection",
	ErrCodeValidation: "validation",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// Error is a classified transport failure.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	return "httpclient: " + e.Code.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Retryable: true, Err: err}
}

func NewTimeoutError(err error) *Error { return wrap(ErrCodeTimeout, err) }

func NewConnectionError(err error) *Error { return wrap(ErrCodeConnection, err) }

// NewValidationError is never retryable: the same request fails the same way.
func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

// CodeOf returns the code err carries, or 0 for errors from elsewhere.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

func IsTimeout(err error) bool { return CodeOf(err) == ErrCodeTimeout }

func IsConnection(err error) bool { return CodeOf(err) == ErrCodeConnection }

func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
