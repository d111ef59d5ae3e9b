package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes registers health check endpoints.
func RegisterHealthRoutes(r *gin.Engine) {
	started := time.Now()
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"service":        "bgloop",
			"uptime_seconds": int(time.Since(started).Seconds()),
		})
	})
}
