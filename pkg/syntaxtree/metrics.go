package syntaxtree

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// tracerName is the OTel tracer name used by the cache.
const tracerName = "altree.syntaxtree"

// Package-level Prometheus metrics for cache operations.
// Auto-registered via promauto.
//
//nolint:gochecknoglobals // Metric collectors are process-wide by nature.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "altree",
		Subsystem: "syntaxtree",
		Name:      "cache_hits_total",
		Help:      "Tree requests served from a snapshot-identical cache entry.",
	})

	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "altree",
		Subsystem: "syntaxtree",
		Name:      "cache_misses_total",
		Help:      "Tree requests that needed a fetch.",
	})

	cacheEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "altree",
		Subsystem: "syntaxtree",
		Name:      "evictions_total",
		Help:      "Explicit cache evictions.",
	})

	// fetchDuration labels:
	//   - status: "success" or "error"
	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "altree",
		Subsystem: "syntaxtree",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of syntax tree fetches from the language service.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"status"})
)

func recordFetch(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	fetchDuration.WithLabelValues(status).Observe(duration.Seconds())
}
