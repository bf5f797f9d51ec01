package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mutations applied by the habit store, by operation.
	HabitMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_store_mutations_total",
			Help: "Total number of habit store mutations",
		},
		[]string{"operation"},
	)

	// Failed persistence writes, by storage key.
	PersistenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_store_persistence_failures_total",
			Help: "Total number of failed persistence writes",
		},
		[]string{"key"},
	)

	// Persisted payloads that could not be decoded and were replaced by a default.
	RecoveredPayloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_store_recovered_payloads_total",
			Help: "Total number of malformed persisted payloads replaced by empty defaults",
		},
		[]string{"key"},
	)

	DailyResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "habit_store_daily_resets_total",
			Help: "Total number of new-day status resets",
		},
	)

	CurrentStreak = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "habit_store_current_streak_days",
			Help: "Current streak of fully completed days",
		},
	)

	// Backend latency per key-value operation.
	KVOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kv_operation_duration_seconds",
			Help:    "Key-value store operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"backend", "operation"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)
)

func IncrementMutation(operation string) {
	HabitMutations.WithLabelValues(operation).Inc()
}

func IncrementPersistenceFailure(key string) {
	PersistenceFailures.WithLabelValues(key).Inc()
}

func IncrementRecoveredPayload(key string) {
	RecoveredPayloads.WithLabelValues(key).Inc()
}

func IncrementDailyReset() {
	DailyResets.Inc()
}

func SetCurrentStreak(days int) {
	CurrentStreak.Set(float64(days))
}

func RecordKVOperation(backend, operation string, duration time.Duration) {
	KVOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
