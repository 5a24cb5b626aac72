package apiutil

import (
	"strconv"
	"time"

	"github.com/Aidin1998/usersapi/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// UnmatchedRoute labels requests that matched no route, keeping label cardinality bounded.
const UnmatchedRoute = "unmatched"

// MetricsMiddleware records HTTP request counts and durations per route template
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = UnmatchedRoute
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(path, method, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(path, method).Observe(time.Since(start).Seconds())
	}
}
