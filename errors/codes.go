package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registry lifecycle errors
const (
	// ErrCodeRegisterFailed indicates the registry rejected or never received a registration.
	ErrCodeRegisterFailed ErrorCode = "REGISTER_FAILED"
	// ErrCodeDeregisterFailed indicates the registry rejected a de-registration.
	ErrCodeDeregisterFailed ErrorCode = "DEREGISTER_FAILED"
	// ErrCodeInstanceNotFound indicates no instance could be resolved for an application.
	ErrCodeInstanceNotFound ErrorCode = "INSTANCE_NOT_FOUND"
	// ErrCodeNoInstances indicates a selection was attempted over an empty instance list.
	ErrCodeNoInstances ErrorCode = "NO_INSTANCES"
)

// Connection/Availability errors (retryable)
const (
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
)

// Validation errors
const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Registration and resolution failures are retryable: the next heartbeat
// tick or the next lookup may succeed once the registry is back.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeRegisterFailed:     true,
	ErrCodeInstanceNotFound:   true,
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
