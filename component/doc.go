// Package component defines the lifecycle contract shared by the long-lived
// parts of an agent process (the Eureka registration, the status server)
// and a Registry that starts them in order and stops them in reverse.
package component
