package ratelimit

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldops-service/internal/apperrors"
	"fieldops-service/internal/response"
)

// KeyFunc extracts the rate limit key from a request
type KeyFunc func(c *gin.Context) string

// UserKey uses the authenticated user id, falling back to the client IP
func UserKey(c *gin.Context) string {
	if value, ok := c.Get("user_id"); ok {
		if id, ok := value.(uuid.UUID); ok && id != uuid.Nil {
			return "user:" + id.String()
		}
	}
	return "ip:" + c.ClientIP()
}

// Middleware rejects requests over the limit with 429 and sets X-RateLimit-* headers.
// Limiter failures follow cfg.FailOpen.
func Middleware(limiter Limiter, keyFunc KeyFunc, cfg Config, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if !cfg.Enabled || cfg.IsExcluded(c.Request.URL.Path) {
			c.Next()
			return
		}

		key := keyFunc(c)
		result, err := limiter.Allow(c.Request.Context(), key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit()))
		if result.Remaining >= 0 && err == nil {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		}
		c.Header("X-RateLimit-Reset", strconv.Itoa(ceilSeconds(result.ResetAfter.Seconds())))

		if err != nil {
			if cfg.FailOpen {
				c.Next()
				return
			}
			logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			response.Error(c, apperrors.New(apperrors.ErrCodeServiceUnavailable, "Rate limiter unavailable", ""))
			c.Abort()
			return
		}

		if !result.Allowed {
			retryAfter := max(ceilSeconds(result.RetryAfter.Seconds()), 1)
			logger.Info("rate limit exceeded",
				zap.String("key", key),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.TooManyRequests(c, retryAfter)
			c.Abort()
			return
		}

		c.Next()
	}
}

func ceilSeconds(s float64) int {
	return int(math.Ceil(s))
}
