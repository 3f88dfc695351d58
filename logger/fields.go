package logger

import "slices"

// Field keys shared by every package so records can be filtered uniformly.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldApp        = "app"
	FieldInstanceID = "instance_id"
)

// Fields pairs up alternating keys and values. Non-string keys and a
// trailing key without a value are dropped.
//
//	log.Info("registered", logger.Fields(logger.FieldApp, "BILLING", logger.FieldStatus, 204))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for pair := range slices.Chunk(kvs, 2) {
		if key, ok := pair[0].(string); ok && len(pair) == 2 {
			m[key] = pair[1]
		}
	}
	return m
}

// ErrorFields tags a failed operation by name.
func ErrorFields(op string, err error) map[string]interface{} {
	return Fields(FieldOperation, op, FieldError, err.Error())
}
