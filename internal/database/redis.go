package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fieldops-service/internal/config"
)

var redisClient *redis.Client

// InitRedis initializes the Redis connection.
// 연결 실패 시 서비스는 Redis 없이 계속 동작합니다 (권한 캐시, rate limit 비활성).
func InitRedis(cfg config.RedisConfig, log *zap.Logger) error {
	var client *redis.Client

	// redis:// 형식 URL 있으면 우선 사용
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return err
		}
		client = redis.NewClient(opts)
	} else {
		// "NONE" 플레이스홀더는 빈 비밀번호로 처리
		password := cfg.Password
		if password == "NONE" {
			password = ""
		}

		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr(),
			Password: password,
			DB:       cfg.DB,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis connection failed, service will continue without Redis", zap.Error(err))
		_ = client.Close()
		redisClient = nil
		return err
	}

	redisClient = client
	log.Info("Redis connected successfully",
		zap.String("addr", client.Options().Addr),
		zap.Int("db", client.Options().DB),
	)
	return nil
}

// GetRedis returns the Redis client, or nil when Redis is unavailable
func GetRedis() *redis.Client {
	return redisClient
}

// CloseRedis closes the Redis connection if one is open
func CloseRedis() error {
	if redisClient == nil {
		return nil
	}
	err := redisClient.Close()
	redisClient = nil
	return err
}
