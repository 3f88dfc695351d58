// Package resilience retries operations that fail transiently.
//
// Retry runs a function until it succeeds, the attempts run out, RetryIf
// rejects the error or the context ends. Delays grow exponentially from
// InitialBackoff, capped at MaxBackoff, with optional jitter:
//
//	err := resilience.RetryFunc(ctx, resilience.DefaultRetryConfig(), func() error {
//	    return client.Register(ctx)
//	})
package resilience
