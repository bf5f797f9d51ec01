package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
)

func TestInMemoryKVStore(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryKVStore()

	t.Run("Missing key", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("Set then Get returns an independent copy", func(t *testing.T) {
		value := []byte(`["2024-01-01"]`)
		require.NoError(t, repo.Set(ctx, domain.CompletedDatesKey, value))
		value[0] = 'X'

		got, err := repo.Get(ctx, domain.CompletedDatesKey)
		require.NoError(t, err)
		assert.Equal(t, `["2024-01-01"]`, string(got))

		got[0] = 'Y'
		again, _ := repo.Get(ctx, domain.CompletedDatesKey)
		assert.Equal(t, `["2024-01-01"]`, string(again))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "k", []byte("one")))
		require.NoError(t, repo.Set(ctx, "k", []byte("two")))

		got, err := repo.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "two", string(got))
	})

	t.Run("Concurrent Access", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				key := fmt.Sprintf("concurrent_%d", id)
				assert.NoError(t, repo.Set(ctx, key, []byte("val")))
				_, err := repo.Get(ctx, key)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()
	})
}
