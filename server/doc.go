// Package server provides the agent's HTTP server: a Gin engine served over
// HTTP/1.1 and h2c, wrapped as a component for the lifecycle registry.
//
// Server-level middleware (server/middleware) wraps every request:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - RequestLogger: request logging with duration
//
// Metrics is a Gin middleware that records requests by route template.
//
// Handlers for probes and the instance lookup API live in server/endpoint.
package server
