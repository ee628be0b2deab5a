package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"fieldops-service/internal/metrics"
)

// Metrics records HTTP request metrics labelled by route pattern.
// basePath is the service prefix (e.g. "/api") used to skip probe endpoints.
func Metrics(m *metrics.Metrics, basePath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics.ShouldSkipEndpoint(c.Request.URL.Path, basePath) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// 매칭되지 않은 경로는 하나의 라벨로 묶음
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}
