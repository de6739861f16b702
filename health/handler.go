package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts /health (full report, 503 when unhealthy) and
// /health/liveness.
func RegisterRoutes(r gin.IRouter, a *Aggregator) {
	r.GET("/health", func(c *gin.Context) {
		resp := a.Check(c.Request.Context())
		status := http.StatusOK
		if resp.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	})
	r.GET("/health/liveness", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	})
}
