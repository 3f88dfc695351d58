package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/eurekaclient/version"
)

// Version reports the build of the running binary.
func Version(serviceName string) gin.HandlerFunc {
	info := version.Get()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": serviceName,
			"build":   info,
		})
	}
}
