package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/eurekaclient/component"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// overall is the worst status in hs: unhealthy beats degraded beats healthy.
func overall(hs []component.Health) component.HealthStatus {
	worst := component.StatusHealthy
	for _, h := range hs {
		switch h.Status {
		case component.StatusUnhealthy:
			return component.StatusUnhealthy
		case component.StatusDegraded:
			worst = component.StatusDegraded
		}
	}
	return worst
}

func check(ctx context.Context, checker HealthChecker) []component.Health {
	if checker == nil {
		return nil
	}
	return checker(ctx)
}

func codeFor(status component.HealthStatus) int {
	if status == component.StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// Health lists every component. A degraded component still answers 200:
// the agent serves lookups from its fallback chain while the registry or
// Redis is down.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := check(c.Request.Context(), checker)
		status := overall(components)
		c.JSON(codeFor(status), gin.H{
			"status":     status,
			"service":    serviceName,
			"timestamp":  now(),
			"components": components,
		})
	}
}

// Readiness answers 503 "not_ready" while any component is unhealthy.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := codeFor(overall(check(c.Request.Context(), checker)))
		status := "ready"
		if code != http.StatusOK {
			status = "not_ready"
		}
		c.JSON(code, gin.H{"status": status, "service": serviceName, "timestamp": now()})
	}
}
