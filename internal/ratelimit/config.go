package ratelimit

import (
	"strings"
	"time"

	"fieldops-service/internal/config"
)

// Config holds the rate limiting configuration
type Config struct {
	Enabled           bool
	RequestsPerMinute int
	// BurstSize is added on top of RequestsPerMinute
	BurstSize  int
	WindowSize time.Duration
	KeyPrefix  string
	// FailOpen allows requests when Redis is unavailable
	FailOpen bool
	// ExcludePaths supports exact match and prefix match with a trailing *
	ExcludePaths []string
}

// DefaultConfig returns 60 requests per minute, fail-open, probes excluded
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		RequestsPerMinute: 60,
		WindowSize:        time.Minute,
		KeyPrefix:         "fieldops:rl:",
		FailOpen:          true,
		ExcludePaths:      []string{"/health*", "/api/health*", "/metrics", "/api/metrics"},
	}
}

// FromAppConfig builds the limiter config from the rate_limit section
func FromAppConfig(cfg config.RateLimitConfig) Config {
	c := DefaultConfig()
	c.Enabled = cfg.Enabled
	if cfg.RequestsPerMinute > 0 {
		c.RequestsPerMinute = cfg.RequestsPerMinute
	}
	if cfg.BurstSize > 0 {
		c.BurstSize = cfg.BurstSize
	}
	return c
}

// Limit is the number of requests allowed per window
func (c Config) Limit() int {
	return c.RequestsPerMinute + c.BurstSize
}

// IsExcluded checks if the path bypasses rate limiting
func (c Config) IsExcluded(path string) bool {
	for _, pattern := range c.ExcludePaths {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return true
			}
			continue
		}
		if pattern == path {
			return true
		}
	}
	return false
}
