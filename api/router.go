package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter builds the Gin engine serving the background layer endpoints.
func NewRouter(svc BackgroundAPI) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	RegisterBackgroundRoutes(r, svc)
	RegisterHealthRoutes(r)
	return r
}
