package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fieldops-service/internal/logger"
	"fieldops-service/internal/response"
	"fieldops-service/internal/telemetry"
)

// Recovery turns a handler panic into a 500 INTERNAL_ERROR envelope.
// Headers already written cannot be replaced; only the log entry is emitted then.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			ctx := c.Request.Context()
			telemetry.SetSpanError(ctx, fmt.Errorf("panic: %v", recovered))

			fields := []zap.Field{
				zap.String(logger.FieldRequestID, GetRequestID(c)),
				zap.String(logger.FieldHTTPMethod, c.Request.Method),
				zap.String(logger.FieldHTTPRoute, c.Request.URL.Path),
				zap.Any("panic", recovered),
				zap.Stack("stack"),
			}
			if traceID := telemetry.TraceID(ctx); traceID != "" {
				fields = append(fields, zap.String("trace_id", traceID))
			}
			log.Error("Panic recovered", fields...)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.InternalError(c, "Internal server error")
			c.Abort()
		}()

		c.Next()
	}
}
