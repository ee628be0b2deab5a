package metrics

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.safeExecute("RecordHTTPRequest", func() {
		m.HTTPRequestsTotal.WithLabelValues(method, endpoint, CategorizeStatus(statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	})
}

// CategorizeStatus converts a status code to its class (2xx, 3xx, 4xx, 5xx)
func CategorizeStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// skipPaths are probe and scrape endpoints excluded from HTTP metrics
var skipPaths = []string{"/metrics", "/health", "/health/live", "/health/ready"}

// ShouldSkipEndpoint checks if the path is a probe or scrape endpoint,
// with or without the service base path.
func ShouldSkipEndpoint(path, basePath string) bool {
	for _, skip := range skipPaths {
		if path == skip || (basePath != "" && path == basePath+skip) {
			return true
		}
	}
	return false
}

// NormalizeEndpoint replaces uuid segments with :id so label cardinality stays bounded.
// /api/activities/<uuid>/survey -> /api/activities/:id/survey
func NormalizeEndpoint(path string) string {
	path = strings.TrimSuffix(path, "/")
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if len(part) == 36 {
			if _, err := uuid.Parse(part); err == nil {
				parts[i] = ":id"
			}
		}
	}
	return strings.Join(parts, "/")
}
