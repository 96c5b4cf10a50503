package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"speite/internal/app/metrics"
)

// Metrics records request counts and latencies. Paths are the route templates,
// so unmatched requests share one "unmatched" label.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
