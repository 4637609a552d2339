package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TriggerOutcomesTotal counts trigger executions by terminal outcome
	// (triggered, failed, timed_out).
	TriggerOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trigger_executions_total",
			Help: "Total number of trigger executions by outcome",
		},
		[]string{"outcome"},
	)

	// TriggerDuration observes the wall time of the outbound HTTP call.
	TriggerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trigger_request_duration_seconds",
			Help:    "Duration of outbound trigger HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// TokenCacheHitsTotal counts bearer tokens served from the cache.
	TokenCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "token_cache_hits_total",
			Help: "Total number of bearer tokens served from the cache",
		},
	)

	// TokenCacheMissesTotal counts token requests sent to a token endpoint.
	TokenCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "token_cache_misses_total",
			Help: "Total number of token requests sent to a token endpoint",
		},
	)

	// RetentionDeletedTotal counts executions pruned by the retention sweep.
	RetentionDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_deleted_executions_total",
			Help: "Total number of executions deleted by retention",
		},
	)
)
