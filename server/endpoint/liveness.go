package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type livenessView struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// Liveness answers 200 as long as the process serves HTTP. It checks no
// component, so a registry outage never gets the agent restarted.
func Liveness(serviceName string, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, livenessView{
			Status:  "alive",
			Service: serviceName,
			Uptime:  time.Since(started).Truncate(time.Second).String(),
		})
	}
}
