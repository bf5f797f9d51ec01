package workers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type DayResetter interface {
	ResetIfNewDay(ctx context.Context) error
}

// RolloverWorker calls ResetIfNewDay on a fixed interval so a long-running
// server resets habit statuses after midnight.
type RolloverWorker struct {
	store    DayResetter
	interval time.Duration
	logger   *zap.Logger
	trigger  chan struct{}
	done     chan struct{}
}

func NewRolloverWorker(store DayResetter, interval time.Duration, logger *zap.Logger) *RolloverWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RolloverWorker{
		store:    store,
		interval: interval,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

func (w *RolloverWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.logger.Info("rollover worker started", zap.Duration("interval", w.interval))
		for {
			select {
			case <-ticker.C:
				w.check(ctx)
			case <-w.trigger:
				w.check(ctx)
			case <-ctx.Done():
				w.logger.Info("rollover worker shutting down")
				return
			}
		}
	}()
}

// Trigger asks for an immediate check. It never blocks; a pending request absorbs it.
func (w *RolloverWorker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Done is closed once the worker goroutine has exited.
func (w *RolloverWorker) Done() <-chan struct{} {
	return w.done
}

func (w *RolloverWorker) check(ctx context.Context) {
	if err := w.store.ResetIfNewDay(ctx); err != nil {
		w.logger.Error("daily reset failed, will retry", zap.Error(err))
	}
}
