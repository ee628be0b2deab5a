package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldops-service/internal/logger"
	"fieldops-service/internal/telemetry"
)

// 성공 응답일 때 로깅하지 않는 경로
var quietPaths = []string{"/health", "/health/live", "/health/ready", "/metrics"}

// Logger는 HTTP 요청을 구조화된 로그로 기록하는 미들웨어를 반환합니다.
// 상태 코드에 따라 로그 레벨이 결정됩니다:
//   - 5xx: Error
//   - 4xx: Warn
//   - 그 외: Info
//
// health, metrics 경로의 성공 응답은 기록하지 않습니다.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(logger.FieldRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		if isQuietPath(path) && status < 400 {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = path
		}

		fields := append(logger.HTTPFields(c.Request.Method, route, status, time.Since(start)),
			zap.String(logger.FieldRequestID, requestID),
			zap.String(logger.FieldHTTPClientIP, c.ClientIP()),
			zap.String(logger.FieldHTTPUserAgent, c.Request.UserAgent()),
		)
		if userID, ok := GetUserID(c); ok {
			fields = append(fields, zap.String(logger.FieldUserID, userID.String()))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		fields = append(fields, telemetry.TraceFields(c.Request.Context())...)

		switch {
		case status >= 500:
			log.Error("Server error", fields...)
		case status >= 400:
			log.Warn("Client error", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}

func isQuietPath(path string) bool {
	for _, quiet := range quietPaths {
		if path == quiet || strings.HasSuffix(path, quiet) {
			return true
		}
	}
	return false
}

// GetRequestID returns the request id set by Logger, or "" outside a logged request
func GetRequestID(c *gin.Context) string {
	return c.GetString(logger.FieldRequestID)
}
