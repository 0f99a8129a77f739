package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botwall_ingest_events_total",
			Help: "Total number of bot-request events accepted, by classification",
		},
		[]string{"classification"},
	)

	IngestRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botwall_ingest_rejected_total",
			Help: "Total number of ingest calls rejected, by reason",
		},
		[]string{"reason"},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "botwall_ingest_duration_seconds",
			Help:    "Duration of ingest calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Key validation metrics
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "botwall_key_validations_total",
			Help: "Total number of key validations, by outcome",
		},
		[]string{"outcome"},
	)

	KeyCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "botwall_key_cache_hits_total",
			Help: "Total number of key cache hits",
		},
	)

	KeyCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "botwall_key_cache_misses_total",
			Help: "Total number of key cache misses",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "botwall_rate_limit_hits_total",
			Help: "Total number of ingest calls refused by the rate limiter",
		},
	)

	// Rollup worker metrics
	RollupsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "botwall_rollups_applied_total",
			Help: "Total number of rollup deltas applied",
		},
	)

	RollupErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "botwall_rollup_errors_total",
			Help: "Total number of rollup apply failures",
		},
	)
)
