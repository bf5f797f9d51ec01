package domain

import (
	"context"
	"errors"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrPersistence = errors.New("persistence failed")
)

// Fixed keys under which the habit store keeps its state.
const (
	HabitsKey         = "habit-tracker-data"
	CompletedDatesKey = "habit-streak-dates"
	LastResetKey      = "habit-last-reset"
)

type KVStore interface {
	// Get returns the blob stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the blob stored under key.
	// Implementations must make the write atomic: a reader never sees a partial value.
	Set(ctx context.Context, key string, value []byte) error
}

type IDGenerator interface {
	// Generate returns an opaque token with negligible collision probability.
	Generate() string
}
