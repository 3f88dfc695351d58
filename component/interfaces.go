package component

import "context"

type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is what a component reports to /health, /ready and the startup
// banner. Message explains a non-healthy status.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a part of the agent with a start/stop lifecycle: the Eureka
// client, the Redis fallback store and the HTTP server.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	// Stop must return once ctx is done even if cleanup is unfinished.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is the one-line banner entry for a component, e.g.
// {Type: "discovery", Details: "registry=http://eureka:8761 app=ORDERS"}.
// A blank Name means the component's Name(); Port 0 means none.
type Description struct {
	Name    string
	Type    string
	Details string
	Port    int
}

// Describable components appear in the startup banner.
type Describable interface {
	Describe() Description
}

// Route is one HTTP route listed in the startup banner.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by the server component.
type RouteProvider interface {
	Routes() []Route
}
