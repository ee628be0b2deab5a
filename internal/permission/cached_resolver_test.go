package permission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"fieldops-service/internal/domain"
)

// ============================================================
// Fake 구현
// ============================================================

type fakeCache struct {
	mu       sync.Mutex
	entries  map[string]Set
	loadErr  error
	storeErr error
	loads    int
	stores   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]Set)}
}

func (c *fakeCache) Load(_ context.Context, key string) (Set, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	if c.loadErr != nil {
		return Set{}, false, c.loadErr
	}
	set, ok := c.entries[key]
	return set, ok, nil
}

func (c *fakeCache) Store(_ context.Context, key string, set Set) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stores++
	if c.storeErr != nil {
		return c.storeErr
	}
	c.entries[key] = set
	return nil
}

type fakeRecorder struct {
	outcomes []string
	cache    []string
}

func (r *fakeRecorder) RecordPermissionResolution(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func (r *fakeRecorder) RecordPermissionCache(result string) {
	r.cache = append(r.cache, result)
}

// ============================================================
// CacheKey 테스트
// ============================================================

func TestCacheKey(t *testing.T) {
	user := newTestUser(domain.RoleTechnician)
	activity := newTestActivity()
	activity.UpdatedAt = time.Unix(1700000000, 42000)

	key, ok := CacheKey(user, activity)

	require.True(t, ok)
	assert.Equal(t, user.ID.String()+":technician:"+activity.ID.String()+":1700000000000042000", key)
}

func TestCacheKey_MatchesRowReadBackAtMicrosecondPrecision(t *testing.T) {
	// Given: 저장 직후 메모리의 나노초 시각과 DB에서 다시 읽은 마이크로초 시각
	user := newTestUser(domain.RoleTechnician)
	saved := newTestActivity()
	saved.UpdatedAt = time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.UTC)

	reloaded := *saved
	reloaded.UpdatedAt = time.Date(2026, 3, 1, 18, 30, 0, 123456000, time.FixedZone("KST", 9*60*60))

	// When
	afterSave, _ := CacheKey(user, saved)
	afterRead, _ := CacheKey(user, &reloaded)

	// Then
	assert.Equal(t, afterSave, afterRead)
}

func TestCacheKey_ChangesWithRoleAndUpdatedAt(t *testing.T) {
	user := newTestUser(domain.RoleTechnician)
	activity := newTestActivity()
	activity.UpdatedAt = time.Now()

	before, _ := CacheKey(user, activity)

	activity.UpdatedAt = activity.UpdatedAt.Add(time.Millisecond)
	afterUpdate, _ := CacheKey(user, activity)

	user.Role = domain.RoleManager
	afterRole, _ := CacheKey(user, activity)

	assert.NotEqual(t, before, afterUpdate)
	assert.NotEqual(t, afterUpdate, afterRole)
}

func TestCacheKey_FailClosedInputsAreNotCacheable(t *testing.T) {
	_, ok := CacheKey(nil, newTestActivity())
	assert.False(t, ok)

	_, ok = CacheKey(newTestUser(domain.RoleAdmin), &domain.Activity{})
	assert.False(t, ok)
}

// ============================================================
// CachedResolver 테스트
// ============================================================

func TestCachedResolver_MissThenHit(t *testing.T) {
	// Given
	cache := newFakeCache()
	recorder := &fakeRecorder{}
	resolver := NewCachedResolver(cache, recorder, zap.NewNop())

	user := newTestUser(domain.RoleTechnician)
	activity := newTestActivity()
	activity.Tasks = datatypes.NewJSONType(domain.ActivityTasks{
		AssignSurveyTo: domain.RefIDs(user.ID.String()),
	})

	// When
	first := resolver.Resolve(context.Background(), user, activity)
	second := resolver.Resolve(context.Background(), user, activity)

	// Then
	assert.Equal(t, Resolve(user, activity), first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.stores)
	assert.Equal(t, []string{"miss", "hit"}, recorder.cache)
	assert.Equal(t, []string{"partial", "partial"}, recorder.outcomes)
}

func TestCachedResolver_LoadErrorFallsBackToCompute(t *testing.T) {
	cache := newFakeCache()
	cache.loadErr = errors.New("connection refused")
	recorder := &fakeRecorder{}
	resolver := NewCachedResolver(cache, recorder, zap.NewNop())

	user := newTestUser(domain.RoleAdmin)
	activity := newTestActivity()

	set := resolver.Resolve(context.Background(), user, activity)

	assert.Equal(t, TabOrder, set.AllowedTabs)
	assert.Equal(t, []string{"error"}, recorder.cache)
}

func TestCachedResolver_StoreErrorKeepsDecision(t *testing.T) {
	cache := newFakeCache()
	cache.storeErr = errors.New("read only replica")
	resolver := NewCachedResolver(cache, nil, zap.NewNop())

	user := newTestUser(domain.RoleViewer)
	activity := newTestActivity()

	set := resolver.Resolve(context.Background(), user, activity)

	assert.Equal(t, None(), set)
}

func TestCachedResolver_SkipsCacheForFailClosedInput(t *testing.T) {
	cache := newFakeCache()
	resolver := NewCachedResolver(cache, nil, nil)

	set := resolver.Resolve(context.Background(), nil, newTestActivity())

	assert.True(t, set.IsEmpty())
	assert.Zero(t, cache.loads)
	assert.Zero(t, cache.stores)
}

func TestCachedResolver_NilCache(t *testing.T) {
	recorder := &fakeRecorder{}
	resolver := NewCachedResolver(nil, recorder, zap.NewNop())

	set := resolver.Resolve(context.Background(), newTestUser(domain.RoleManager), newTestActivity())

	assert.Equal(t, "full", set.Outcome())
	assert.Empty(t, recorder.cache)
	assert.Equal(t, []string{"full"}, recorder.outcomes)
}

func TestCachedResolver_UnreachableRedis(t *testing.T) {
	// Given: 연결할 수 없는 Redis
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	recorder := &fakeRecorder{}
	resolver := NewCachedResolver(NewRedisCache(client, time.Minute), recorder, zap.NewNop())

	user := newTestUser(domain.RoleTechnician)
	activity := newTestActivity()
	activity.Assignment = datatypes.NewJSONType(domain.Assignment{
		AssignedTo: []domain.UserRef{domain.RefID(uuid.NewString()), domain.RefID(user.ID.String())},
	})

	// When
	set := resolver.Resolve(context.Background(), user, activity)

	// Then: 캐시 실패와 무관하게 같은 결과
	assert.Equal(t, Resolve(user, activity), set)
	assert.Equal(t, []string{"error"}, recorder.cache)
}
