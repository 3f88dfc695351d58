// Package errors provides unified error handling for the Eureka client.
//
// AppError carries a machine-readable code, an HTTP status mapping and a
// retryable flag. Registry failures (register, de-register, instance
// resolution) each have their own code so callers can branch with errors.Is
// against the sentinels exported by package eureka.
package errors
