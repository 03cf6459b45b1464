package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL applies when Set is used without an explicit TTL
	DefaultCacheTTL = time.Hour
)

// CacheService stores JSON values in Redis.
type CacheService struct {
	rdb *redis.Client
}

func NewCacheService(rdb *redis.Client) *CacheService {
	return &CacheService{rdb: rdb}
}

// Get loads key into dest. A miss returns (false, nil).
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.rdb.Get(ctx, CacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value in cache with default TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, DefaultCacheTTL)
}

func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, CacheKeyPrefix+key, data, ttl).Err()
}

func (c *CacheService) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, CacheKeyPrefix+key).Err()
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}

// CachedUserStore serves FindByID from Redis. Cached users carry no password
// hash, so only profile reads go through the cache.
type CachedUserStore struct {
	UserStore
	cache  *CacheService
	logger *zap.Logger
}

func NewCachedUserStore(next UserStore, cache *CacheService, logger *zap.Logger) *CachedUserStore {
	return &CachedUserStore{UserStore: next, cache: cache, logger: logger}
}

func (s *CachedUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	key := CacheKey("user", id)

	var cached models.User
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return &cached, nil
	}

	u, err := s.UserStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// best effort: the next read falls through to the store again
	if err := s.cache.Set(ctx, key, u); err != nil {
		s.logger.Debug("cache user profile failed", zap.String("user_id", id), zap.Error(err))
	}
	return u, nil
}
