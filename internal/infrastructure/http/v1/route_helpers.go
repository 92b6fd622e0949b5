// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockbook/internal/domain/auth"
	"stockbook/internal/infrastructure/http/v1/middleware"
)

// NumberingRouteHandler defines the interface for numbering handlers.
type NumberingRouteHandler interface {
	Series(c *gin.Context)
	Next(c *gin.Context)
	Counters(c *gin.Context)
	Advance(c *gin.Context)
	Import(c *gin.Context)
}

// RegisterNumberingRoutes registers the numbering endpoints of one group.
// Counter maintenance requires the numbering admin role.
//
// Usage:
//
//	handler := handlers.NewNumberingHandler(baseHandler, service)
//	RegisterNumberingRoutes(protected.Group("/numbering"), handler, authEnabled)
func RegisterNumberingRoutes(group *gin.RouterGroup, handler NumberingRouteHandler, authEnabled bool) {
	admin := middleware.RequireRole(authEnabled, auth.RoleNumberingAdmin)

	group.GET("/series", handler.Series)
	group.POST("/:type/next", handler.Next)
	group.GET("/:type/counters", handler.Counters)
	group.POST("/:type/advance", admin, handler.Advance)
	group.POST("/:type/import", admin, handler.Import)
}
