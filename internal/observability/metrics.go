package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "murmur_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// NoticesCommitted counts successfully committed notices by device.
	NoticesCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_notices_committed_total",
		Help: "Total number of notices committed, labeled by posting device",
	}, []string{"device"})

	// TimelineQueryLatency records visibility query latency by mode
	// (profile, timeline, public, tag, group).
	TimelineQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "murmur_timeline_query_latency_seconds",
		Help:    "Timeline visibility query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
)

// ObserveTimelineQuery records the latency of a visibility query.
func ObserveTimelineQuery(mode string, start time.Time) {
	TimelineQueryLatency.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}
