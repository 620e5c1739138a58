package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/journey-app/server/internal/shared/metrics"
)

// Metrics records request count, latency, and in-flight gauge per
// route. The route pattern (e.g. /api/v1/crews/:id) is used as the
// path label so crew and challenge IDs do not explode cardinality;
// unmatched routes fall back to the raw path.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
