package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DezMoon/habit-tracker/internal/adapters/cache"
	"github.com/DezMoon/habit-tracker/internal/adapters/repository"
	"github.com/DezMoon/habit-tracker/internal/config"
	"github.com/DezMoon/habit-tracker/internal/core/domain"
)

type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Storage is the KV backend selected by configuration plus everything that must be closed with it.
type Storage struct {
	KV     domain.KVStore
	Redis  *redis.Client
	Probes []Probe

	closers []io.Closer
}

func (s *Storage) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func OpenStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Storage{}

	if cfg.RequiresRedis() {
		rdb, err := connectRedis(cfg)
		if err != nil {
			return nil, err
		}
		s.attachRedis(rdb)
	} else if cfg.Server.RateLimit > 0 {
		rdb, err := connectRedis(cfg)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			s.attachRedis(rdb)
		}
	}

	kv, err := s.openBackend(ctx, cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	if cfg.Storage.Cache {
		kv = repository.NewCachedKVStore(kv, s.Redis, cfg.Storage.CacheTTL, logger)
	}

	s.KV = kv
	logger.Info("storage ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.Bool("cache", cfg.Storage.Cache))

	return s, nil
}

func (s *Storage) attachRedis(rdb *redis.Client) {
	s.Redis = rdb
	s.closers = append(s.closers, rdb)
	s.Probes = append(s.Probes, Probe{
		Name:  "redis",
		Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})
}

func (s *Storage) openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.KVStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return repository.NewInMemoryKVStore(), nil

	case config.BackendSQLite:
		db, err := repository.OpenSQLite(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db)
		s.Probes = append(s.Probes, Probe{Name: "sqlite", Check: db.PingContext})

		store := repository.NewSQLiteKVStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendPostgres:
		db, err := repository.ConnectPostgres(cfg.Storage.Postgres.Driver, cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db)

		store := repository.NewPostgresKVStore(db)
		s.Probes = append(s.Probes, Probe{Name: "database", Check: store.Ping})
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repository.NewBreakerKVStore(store, breakerConfig("postgres"), logger), nil

	case config.BackendRedis:
		store := cache.NewRedisKVStore(s.Redis, cfg.Storage.RedisPrefix)
		return repository.NewBreakerKVStore(store, breakerConfig("redis"), logger), nil
	}

	return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Storage.Backend)
}

func connectRedis(cfg *config.Config) (*redis.Client, error) {
	return cache.NewRedisClient(cache.ClientOptions{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func breakerConfig(name string) repository.BreakerConfig {
	return repository.BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}
