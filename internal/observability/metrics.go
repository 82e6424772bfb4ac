package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostsPublishedTotal counts scheduled posts promoted to published, by
	// what triggered the sweep.
	PostsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_posts_published_total",
		Help: "Total number of scheduled posts promoted to published",
	}, []string{"trigger"})

	// PublisherSweepsTotal counts publisher sweeps by trigger and outcome.
	PublisherSweepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_publisher_sweeps_total",
		Help: "Total number of publisher sweeps by trigger and outcome",
	}, []string{"trigger", "outcome"})

	// PublisherSweepDuration records how long each sweep took.
	PublisherSweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inkwell_publisher_sweep_duration_seconds",
		Help:    "Publisher sweep duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// Sweep trigger labels.
const (
	SweepTriggerTicker = "ticker"
	SweepTriggerList   = "list"
	SweepTriggerManual = "manual"
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// RecordSweep records one publisher sweep's outcome and promoted count.
func RecordSweep(trigger string, promoted int64, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PublisherSweepsTotal.WithLabelValues(trigger, outcome).Inc()
	PublisherSweepDuration.Observe(duration.Seconds())
	if promoted > 0 {
		PostsPublishedTotal.WithLabelValues(trigger).Add(float64(promoted))
	}
}
