package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
	"github.com/DezMoon/habit-tracker/internal/metrics"
)

var _ domain.KVStore = (*RedisKVStore)(nil)

// RedisKVStore uses Redis itself as the persistence medium. Keys never expire.
type RedisKVStore struct {
	client *redis.Client
	prefix string
}

func NewRedisKVStore(client *redis.Client, prefix string) *RedisKVStore {
	return &RedisKVStore{client: client, prefix: prefix}
}

func (s *RedisKVStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer func() { metrics.RecordKVOperation("redis", "get", time.Since(start)) }()

	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set is a single SET command, which Redis applies atomically.
func (s *RedisKVStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	defer func() { metrics.RecordKVOperation("redis", "set", time.Since(start)) }()

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
