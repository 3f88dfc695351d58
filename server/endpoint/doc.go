// Package endpoint provides the agent's Gin handlers: health, readiness and
// liveness probes, build version, and the instance lookup API backed by a
// Discovery.
package endpoint
