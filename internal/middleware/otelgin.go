package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// OTELTracing returns otelgin middleware that creates a server span per request.
// Health probes and the metrics scrape endpoint are not traced.
func OTELTracing(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName,
		otelgin.WithFilter(TracingFilter),
		otelgin.WithSpanNameFormatter(SpanNameFormatter),
	)
}

// TracingFilter returns true for requests that should be traced
func TracingFilter(r *http.Request) bool {
	path := r.URL.Path
	return path != "/metrics" && !strings.HasPrefix(path, "/health")
}

// SpanNameFormatter names spans "METHOD /path"
func SpanNameFormatter(r *http.Request) string {
	return r.Method + " " + r.URL.Path
}
