package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	adapterHTTP "github.com/DezMoon/habit-tracker/internal/adapters/handler/http"
	"github.com/DezMoon/habit-tracker/internal/adapters/idgen"
	"github.com/DezMoon/habit-tracker/internal/bootstrap"
	"github.com/DezMoon/habit-tracker/internal/config"
	"github.com/DezMoon/habit-tracker/internal/core/services"
	"github.com/DezMoon/habit-tracker/internal/core/workers"
	"github.com/DezMoon/habit-tracker/internal/logger"
)

type application struct {
	server   *http.Server
	store    *services.HabitStore
	rollover *workers.RolloverWorker
	storage  *bootstrap.Storage
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Critical: invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Critical: failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to start habit tracker", zap.Error(err))
	}
	defer app.storage.Close()

	app.rollover.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zlog.Info("habit tracker listening", zap.String("addr", app.server.Addr))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("stop signal received, shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return app.server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zlog.Error("server stopped with error", zap.Error(err))
	}
	stop()
	<-app.rollover.Done()

	zlog.Info("server stopped gracefully")
}

func newApplication(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (*application, error) {
	startTime := time.Now()

	storage, err := bootstrap.OpenStorage(ctx, cfg, zlog)
	if err != nil {
		return nil, err
	}

	store, err := services.NewHabitStore(ctx, storage.KV, idgen.NewUUIDGenerator(), services.WithLogger(zlog))
	if err != nil {
		storage.Close()
		return nil, err
	}

	var tokens *services.TokenService
	if cfg.Auth.Secret != "" {
		tokens = services.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Owner, cfg.Auth.TokenTTL)
	} else {
		zlog.Warn("JWT_SECRET not set, API is unauthenticated")
	}

	checks := make([]adapterHTTP.HealthCheck, 0, len(storage.Probes))
	for _, p := range storage.Probes {
		checks = append(checks, adapterHTTP.HealthCheck{Name: p.Name, Check: p.Check})
	}

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler: adapterHTTP.NewHabitHandler(store, zlog),
		StatsHandler: adapterHTTP.NewStatsHandler(store),
		TokenService: tokens,
		Redis:        storage.Redis,
		RateLimit:    cfg.Server.RateLimit,
		HealthChecks: checks,
		Logger:       zlog,
		StartTime:    startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &application{
		server:   srv,
		store:    store,
		rollover: workers.NewRolloverWorker(store, cfg.Rollover.Interval, zlog),
		storage:  storage,
	}, nil
}
