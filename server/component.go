package server

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/eurekaclient/component"
)

const componentName = "http-server"

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// Probe routes sort after the API routes in the banner.
var probePaths = []string{"/alive", "/health", "/ready"}

// methodRank orders routes sharing a path; unlisted methods go last.
var methodRank = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// Component runs the Server under the component registry; it is registered
// last so it stops first and no request outlives the Eureka client.
type Component struct {
	server *Server
}

func NewComponent(s *Server) *Component { return &Component{server: s} }

func (sc *Component) Name() string { return componentName }

func (sc *Component) Server() *Server { return sc.server }

func (sc *Component) Start(ctx context.Context) error { return sc.server.Start(ctx) }

func (sc *Component) Stop(ctx context.Context) error { return sc.server.Stop(ctx) }

// Health follows the listener: unhealthy before Start and after Stop.
func (sc *Component) Health(context.Context) component.Health {
	h := component.Health{Name: componentName, Status: component.StatusHealthy}
	if !sc.server.Listening() {
		h.Status, h.Message = component.StatusUnhealthy, "HTTP server not listening"
	}
	return h
}

func (sc *Component) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: sc.server.Addr(),
		Port:    sc.server.config.Port,
	}
}

// Routes lists API routes before probes, each group by path then method.
func (sc *Component) Routes() []component.Route {
	ginRoutes := sc.server.engine.Routes()
	slices.SortFunc(ginRoutes, func(a, b gin.RouteInfo) int {
		return cmp.Or(
			compareBool(slices.Contains(probePaths, a.Path), slices.Contains(probePaths, b.Path)),
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(rank(a.Method), rank(b.Method)),
		)
	})
	routes := make([]component.Route, len(ginRoutes))
	for i, r := range ginRoutes {
		routes[i] = component.Route{Method: r.Method, Path: r.Path, Handler: handlerName(r.Handler)}
	}
	return routes
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

func rank(method string) int {
	if i := slices.Index(methodRank, method); i >= 0 {
		return i
	}
	return len(methodRank)
}

// handlerName shortens Gin's handler name:
// "github.com/kbukum/eurekaclient/server/endpoint.Instances.func1" -> "endpoint.Instances".
func handlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	parts := strings.Split(name, ".")
	for len(parts) > 2 && strings.HasPrefix(parts[len(parts)-1], "func") {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}
