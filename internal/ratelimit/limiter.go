// Package ratelimit은 Redis 슬라이딩 윈도우 기반의 요청 제한을 제공합니다.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Result describes one rate limit decision
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is only set when the request is denied
	RetryAfter time.Duration
	ResetAfter time.Duration
}

// Limiter decides whether a request for key may proceed.
// The error is returned only for infrastructure failures.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter implements a sliding window log in a Redis sorted set
type RedisLimiter struct {
	client *redis.Client
	config Config
	logger *zap.Logger
}

// NewRedisLimiter creates a Redis backed limiter
func NewRedisLimiter(client *redis.Client, cfg Config, logger *zap.Logger) *RedisLimiter {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "fieldops:rl:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{client: client, config: cfg, logger: logger}
}

// Allow records the request and counts the requests inside the window
func (r *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	limit := r.config.Limit()
	fullKey := r.config.KeyPrefix + key
	now := time.Now()
	windowStart := now.Add(-r.config.WindowSize).UnixMilli()

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, fullKey, "0", strconv.FormatInt(windowStart, 10))
	// 같은 밀리초의 요청이 서로 덮어쓰지 않도록 member에 uuid를 붙임
	pipe.ZAdd(ctx, fullKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()),
	})
	countCmd := pipe.ZCard(ctx, fullKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, fullKey, 0, 0)
	pipe.Expire(ctx, fullKey, r.config.WindowSize+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("rate limiter redis error", zap.String("key", key), zap.Error(err))
		return Result{
			Allowed:    r.config.FailOpen,
			Limit:      limit,
			Remaining:  -1,
			ResetAfter: r.config.WindowSize,
		}, err
	}

	count := int(countCmd.Val())
	result := Result{
		Allowed:    count <= limit,
		Limit:      limit,
		Remaining:  max(limit-count, 0),
		ResetAfter: r.config.WindowSize,
	}

	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		expiresAt := time.UnixMilli(int64(oldest[0].Score)).Add(r.config.WindowSize)
		result.ResetAfter = max(time.Until(expiresAt), 0)
	}

	if !result.Allowed {
		result.RetryAfter = max(result.ResetAfter, time.Second)
		r.logger.Debug("rate limit exceeded",
			zap.String("key", key),
			zap.Int("count", count),
			zap.Int("limit", limit),
		)
	}
	return result, nil
}

// Reset clears the window of the key
func (r *RedisLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.config.KeyPrefix+key).Err()
}
