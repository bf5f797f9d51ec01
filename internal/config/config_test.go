package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "data/habits.db", cfg.Storage.SQLitePath)
	assert.Equal(t, time.Minute, cfg.Rollover.Interval)
	assert.Equal(t, "pgx", cfg.Storage.Postgres.Driver)
	assert.False(t, cfg.RequiresRedis())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, `
server:
  port: "9090"
storage:
  backend: postgres
  cache: true
  cache_ttl: 5m
  postgres:
    user: habits
    password: secret
    host: db
    port: "5433"
    name: tracker
    sslmode: require
auth:
  secret: s3cret
  token_ttl: 1h
rollover:
  interval: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.True(t, cfg.Storage.Cache)
	assert.Equal(t, 5*time.Minute, cfg.Storage.CacheTTL)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.Rollover.Interval)
	assert.Equal(t, "habit-tracker", cfg.Auth.Issuer, "unset fields keep defaults")
	assert.Equal(t, "postgres://habits:secret@db:5433/tracker?sslmode=require", cfg.PostgresDSN())
	assert.True(t, cfg.RequiresRedis())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, `
server:
  port: "9090"
storage:
  backend: postgres
`)

	t.Setenv("PORT", "7070")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("ROLLOVER_INTERVAL", "10s")
	t.Setenv("STORAGE_CACHE", "true")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 10*time.Second, cfg.Rollover.Interval)
	assert.True(t, cfg.Storage.Cache)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "localhost", cfg.Redis.Host)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "unknown backend",
			env:     map[string]string{"STORAGE_BACKEND": "mongo"},
			wantErr: ErrUnknownBackend,
		},
		{
			name: "bad duration",
			env:  map[string]string{"ROLLOVER_INTERVAL": "soon"},
		},
		{
			name: "bad int",
			env:  map[string]string{"RATE_LIMIT": "many"},
		},
		{
			name: "bad bool",
			env:  map[string]string{"STORAGE_CACHE": "maybe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeFile(t, "server: [not, a, map")
	_, err := Load(path)
	assert.Error(t, err)
}
