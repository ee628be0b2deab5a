package permission

import (
	"context"

	"go.uber.org/zap"

	"fieldops-service/internal/domain"
)

// Recorder receives resolution metrics
type Recorder interface {
	RecordPermissionResolution(outcome string)
	RecordPermissionCache(result string)
}

// CachedResolver wraps Resolve with an optional memo cache.
// Cache errors are logged and the set is computed directly; they never change the decision.
type CachedResolver struct {
	cache    Cache
	recorder Recorder
	logger   *zap.Logger
}

// NewCachedResolver creates a resolver. cache and recorder may be nil.
func NewCachedResolver(cache Cache, recorder Recorder, logger *zap.Logger) *CachedResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedResolver{
		cache:    cache,
		recorder: recorder,
		logger:   logger,
	}
}

// Resolve returns the permission set of the user on the activity
func (r *CachedResolver) Resolve(ctx context.Context, user *domain.User, activity *domain.Activity) Set {
	key, cacheable := CacheKey(user, activity)
	if !cacheable || r.cache == nil {
		return r.compute(user, activity)
	}

	set, hit, err := r.cache.Load(ctx, key)
	switch {
	case err != nil:
		r.logger.Warn("permission cache read failed", zap.String("key", key), zap.Error(err))
		r.recordCache("error")
	case hit:
		r.recordCache("hit")
		r.recordOutcome(set)
		return set
	default:
		r.recordCache("miss")
	}

	set = r.compute(user, activity)
	if err := r.cache.Store(ctx, key, set); err != nil {
		r.logger.Warn("permission cache write failed", zap.String("key", key), zap.Error(err))
	}
	return set
}

func (r *CachedResolver) compute(user *domain.User, activity *domain.Activity) Set {
	set := Resolve(user, activity)
	r.recordOutcome(set)
	return set
}

func (r *CachedResolver) recordOutcome(set Set) {
	if r.recorder != nil {
		r.recorder.RecordPermissionResolution(set.Outcome())
	}
}

func (r *CachedResolver) recordCache(result string) {
	if r.recorder != nil {
		r.recorder.RecordPermissionCache(result)
	}
}
