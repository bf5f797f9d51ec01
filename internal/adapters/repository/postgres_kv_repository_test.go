package repository

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupTestDB(t *testing.T, driver string) *sqlx.DB {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "habits_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "habits_db"),
	)

	db, err := ConnectPostgres(driver, dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}
	return db
}

func TestPostgresKVStore_Integration(t *testing.T) {
	for _, driver := range []string{"pgx", "postgres"} {
		t.Run(driver, func(t *testing.T) {
			db := setupTestDB(t, driver)
			defer db.Close()

			ctx := context.Background()
			_, err := db.Exec("DROP TABLE IF EXISTS kv_store")
			require.NoError(t, err)

			repo := NewPostgresKVStore(db)

			t.Run("Missing table reads as missing key", func(t *testing.T) {
				_, err := repo.Get(ctx, domain.HabitsKey)
				assert.ErrorIs(t, err, domain.ErrKeyNotFound)
			})

			require.NoError(t, repo.EnsureSchema(ctx))

			t.Run("Upsert and read back", func(t *testing.T) {
				require.NoError(t, repo.Set(ctx, domain.HabitsKey, []byte(`[]`)))
				require.NoError(t, repo.Set(ctx, domain.HabitsKey, []byte(`[{"id":"a"}]`)))

				got, err := repo.Get(ctx, domain.HabitsKey)
				require.NoError(t, err)
				assert.Equal(t, `[{"id":"a"}]`, string(got))
			})

			t.Run("Missing key", func(t *testing.T) {
				_, err := repo.Get(ctx, "nope")
				assert.ErrorIs(t, err, domain.ErrKeyNotFound)
			})

			assert.NoError(t, repo.Ping(ctx))
		})
	}
}
