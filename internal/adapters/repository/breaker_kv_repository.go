package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/DezMoon/habit-tracker/internal/core/domain"
)

var _ domain.KVStore = (*BreakerKVStore)(nil)

var ErrStorageUnavailable = errors.New("storage temporarily unavailable")

type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	Timeout          time.Duration
	MaxRequests      uint32
}

// BreakerKVStore fails fast while a remote backend keeps erroring.
// A missing key is a normal answer and never trips the breaker.
type BreakerKVStore struct {
	next    domain.KVStore
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewBreakerKVStore(next domain.KVStore, cfg BreakerConfig, logger *zap.Logger) *BreakerKVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrKeyNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("storage circuit breaker state changed",
				zap.String("backend", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &BreakerKVStore{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

func (r *BreakerKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.breaker.Execute(func() ([]byte, error) {
		return r.next.Get(ctx, key)
	})
	return value, r.translate(err)
}

func (r *BreakerKVStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.breaker.Execute(func() ([]byte, error) {
		return nil, r.next.Set(ctx, key, value)
	})
	return r.translate(err)
}

func (r *BreakerKVStore) State() gobreaker.State {
	return r.breaker.State()
}

func (r *BreakerKVStore) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return err
}
