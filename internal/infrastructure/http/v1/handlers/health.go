// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/numerator"
)

// readyTimeout bounds the store ping of a readiness probe.
const readyTimeout = 2 * time.Second

// AppInfo describes the running service.
type AppInfo struct {
	Name    string `json:"app"`
	Version string `json:"version"`
	Env     string `json:"env"`
	Driver  string `json:"storage_driver"`
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	store   numerator.AtomicCounterStore
	info    AppInfo
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store numerator.AtomicCounterStore, info AppInfo) *HealthHandler {
	return &HealthHandler{store: store, info: info, started: time.Now()}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (can the counter store be reached?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if p, ok := h.store.(numerator.Pinger); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"checks": map[string]string{
					"counter_store": "unhealthy: " + err.Error(),
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"counter_store": "healthy",
		},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":            h.info.Name,
		"version":        h.info.Version,
		"env":            h.info.Env,
		"storage_driver": h.info.Driver,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}
