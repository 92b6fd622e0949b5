package v1

import (
	"github.com/gin-gonic/gin"

	"stockbook/internal/core/numerator"
	"stockbook/internal/domain/documents"
	"stockbook/internal/infrastructure/http/v1/handlers"
	"stockbook/internal/infrastructure/http/v1/middleware"
	"stockbook/internal/infrastructure/metrics"
	"stockbook/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation. Nil disables authentication.
	JWTValidator middleware.JWTValidator

	// Numbering allocates document numbers
	Numbering *documents.Service

	// Store backs health checks
	Store numerator.AtomicCounterStore

	// Metrics backs /metrics and request instrumentation. Optional.
	Metrics *metrics.Metrics

	// Info is reported by /health/info
	Info handlers.AppInfo

	// Debug enables gin debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Metrics(cfg.Metrics))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth, no tenant required)
	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.Info)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Protected endpoints - Auth runs first, then tenant resolution
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator)) // 1. Validate JWT
		protected.Use(middleware.Tenant())               // 2. Resolve tenant from claim or header

		baseHandler := handlers.NewBaseHandler()
		numberingHandler := handlers.NewNumberingHandler(baseHandler, cfg.Numbering)
		RegisterNumberingRoutes(protected.Group("/numbering"), numberingHandler, cfg.JWTValidator != nil)
	}

	return router
}
