package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestRecorder receives one observation per handled request.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, method, route string, status int, elapsed time.Duration)
}

// Metrics records every request routed by Gin. The route is the matched
// template (e.g. /apps/:app) so application names do not inflate label
// cardinality; unmatched requests are recorded as "unmatched".
func Metrics(rec RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.RecordRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
