// Package health는 K8s liveness/readiness 엔드포인트를 제공합니다.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const readinessTimeout = 5 * time.Second

// Pinger checks one dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f(ctx)
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// DBPinger pings the database behind a gorm handle
func DBPinger(db *gorm.DB) Pinger {
	return PingFunc(func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}

// RedisPinger pings a Redis client. The getter is read on every probe so a
// client that connects later is picked up.
func RedisPinger(getClient func() *redis.Client) Pinger {
	return PingFunc(func(ctx context.Context) error {
		client := getClient()
		if client == nil {
			return redis.ErrClosed
		}
		return client.Ping(ctx).Err()
	})
}

type dependency struct {
	name     string
	pinger   Pinger
	required bool
}

// Checker serves the health endpoints
type Checker struct {
	deps []dependency
}

// NewChecker creates a checker without dependencies
func NewChecker() *Checker {
	return &Checker{}
}

// Require adds a dependency whose failure makes the service not ready
func (h *Checker) Require(name string, p Pinger) *Checker {
	h.deps = append(h.deps, dependency{name: name, pinger: p, required: true})
	return h
}

// Optional adds a dependency that is reported but never fails readiness.
// Redis is optional: permission caching and rate limiting degrade without it.
func (h *Checker) Optional(name string, p Pinger) *Checker {
	h.deps = append(h.deps, dependency{name: name, pinger: p})
	return h
}

// RegisterRoutes registers /health, /health/live and /health/ready at the root
// and, when basePath is set, again under basePath for ingress routing.
func (h *Checker) RegisterRoutes(router gin.IRouter, basePath string) {
	router.GET("/health/live", h.Liveness)
	router.GET("/health/ready", h.Readiness)
	router.GET("/health", h.Readiness)

	if basePath != "" {
		group := router.Group(basePath)
		group.GET("/health/live", h.Liveness)
		group.GET("/health/ready", h.Readiness)
		group.GET("/health", h.Readiness)
	}
}

// Liveness always returns 200 while the process runs
func (h *Checker) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness pings every dependency; 503 when a required one fails
func (h *Checker) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	checks := gin.H{}
	ready := true
	for _, dep := range h.deps {
		if err := dep.pinger.Ping(ctx); err != nil {
			checks[dep.name] = "disconnected"
			if dep.required {
				ready = false
			}
			continue
		}
		checks[dep.name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
