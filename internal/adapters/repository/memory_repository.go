package repository

import (
	"context"
	"sync"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
)

var _ domain.KVStore = (*InMemoryKVStore)(nil)

type InMemoryKVStore struct {
	store map[string][]byte

	mu sync.RWMutex
}

func NewInMemoryKVStore() *InMemoryKVStore {
	return &InMemoryKVStore{
		store: make(map[string][]byte),
	}
}

func (r *InMemoryKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.store[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return cloneBytes(value), nil
}

func (r *InMemoryKVStore) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[key] = cloneBytes(value)
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
