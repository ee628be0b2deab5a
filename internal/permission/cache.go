package permission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"fieldops-service/internal/domain"
)

// DefaultCacheTTL bounds how long a memoized set lives when no TTL is configured
const DefaultCacheTTL = 10 * time.Minute

// Cache memoizes resolved permission sets
type Cache interface {
	Load(ctx context.Context, key string) (Set, bool, error)
	Store(ctx context.Context, key string, set Set) error
}

// CacheKey builds the memo key from everything the resolution depends on.
// Any activity mutation bumps UpdatedAt, so stale sets are never read back.
// UpdatedAt is cut to microseconds, the precision Postgres stores, so the key
// written right after a save matches the key of the row read back later.
// ok is false for inputs that resolve fail-closed; those are not cached.
func CacheKey(user *domain.User, activity *domain.Activity) (string, bool) {
	if user == nil || user.ID == uuid.Nil || activity == nil || activity.ID == uuid.Nil {
		return "", false
	}
	return fmt.Sprintf("%s:%s:%s:%d",
		user.ID.String(),
		user.Role,
		activity.ID.String(),
		activity.UpdatedAt.UTC().Truncate(time.Microsecond).UnixNano(),
	), true
}

// RedisCache stores permission sets as JSON strings in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a Redis backed cache
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		prefix: "perm:",
	}
}

// Load reads a memoized set. A missing key is not an error.
func (c *RedisCache) Load(ctx context.Context, key string) (Set, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Set{}, false, nil
	}
	if err != nil {
		return Set{}, false, err
	}

	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return Set{}, false, fmt.Errorf("decode cached permission set: %w", err)
	}
	if set.AllowedTabs == nil {
		set.AllowedTabs = []Tab{}
	}
	return set, true, nil
}

// Store memoizes a set with the configured TTL
func (c *RedisCache) Store(ctx context.Context, key string, set Set) error {
	data, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
}
