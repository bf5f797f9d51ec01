package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
)

var _ domain.KVStore = (*CachedKVStore)(nil)

const defaultCacheTTL = 30 * time.Minute

var ErrCacheStale = errors.New("cached copy could not be updated")

// CachedKVStore puts a Redis read-through cache in front of a durable store.
// Writes go to the durable store first, then to the cache.
type CachedKVStore struct {
	next   domain.KVStore
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedKVStore(next domain.KVStore, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedKVStore {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedKVStore{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *CachedKVStore) cacheKey(key string) string {
	return "kv:" + key
}

func (r *CachedKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	ck := r.cacheKey(key)

	val, err := r.cache.Get(ctx, ck).Bytes()
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, redis.Nil) {
		r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := r.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if setErr := r.cache.Set(ctx, ck, value, r.ttl).Err(); setErr != nil {
		r.logger.Warn("cache fill failed", zap.String("key", key), zap.Error(setErr))
	}

	return value, nil
}

// Set writes the durable store, then replaces the cached copy with the new value.
// When the cache can be neither updated nor cleared, ErrCacheStale is returned: the
// durable write stands, but a later Get could still serve the old blob.
func (r *CachedKVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.next.Set(ctx, key, value); err != nil {
		return err
	}

	ck := r.cacheKey(key)
	setErr := r.cache.Set(ctx, ck, value, r.ttl).Err()
	if setErr == nil {
		return nil
	}

	r.logger.Warn("cache update failed, dropping cached copy", zap.String("key", key), zap.Error(setErr))
	if delErr := r.cache.Del(ctx, ck).Err(); delErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrCacheStale, key, errors.Join(setErr, delErr))
	}
	return nil
}
