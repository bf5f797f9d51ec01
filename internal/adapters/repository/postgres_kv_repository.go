package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
)

var _ domain.KVStore = (*PostgresKVStore)(nil)

const pgUndefinedTable = "42P01"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// ConnectPostgres opens a pooled connection. driver is "pgx" or "postgres" (lib/pq).
func ConnectPostgres(driver, dsn string) (*sqlx.DB, error) {
	if driver == "" {
		driver = "pgx"
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

type PostgresKVStore struct {
	db *sqlx.DB
}

func NewPostgresKVStore(db *sqlx.DB) *PostgresKVStore {
	return &PostgresKVStore{db: db}
}

func (r *PostgresKVStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return nil
}

func (r *PostgresKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	defer observe("postgres", "get", time.Now())

	var value []byte
	err := r.db.GetContext(ctx, &value, `SELECT value FROM kv_store WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUndefinedTable(err) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, nil
}

func (r *PostgresKVStore) Set(ctx context.Context, key string, value []byte) error {
	defer observe("postgres", "set", time.Now())

	query := `
        INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

func (r *PostgresKVStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// isUndefinedTable recognises a missing kv_store table from either driver.
func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUndefinedTable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}

	return false
}
