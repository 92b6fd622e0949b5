package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/infrastructure/metrics"
)

// Metrics records request count and latency per matched route.
// Unmatched paths are folded into one label to bound cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
