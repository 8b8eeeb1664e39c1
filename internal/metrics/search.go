package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric of the service.
const Namespace = "facetsearch"

// Search backend and rendering metrics.
var (
	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"op", "status"},
	)

	FacetCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "facet_cache_total",
			Help:      "Facet bucket cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	FacetBucketsRenderedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "facet_buckets_rendered_total",
			Help:      "Facet bucket controls rendered",
		},
		[]string{"outcome"}, // "ok" / "malformed"
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers the search metrics. Safe to call more than once.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(BackendRequestDuration)
		prometheus.MustRegister(FacetCacheTotal)
		prometheus.MustRegister(FacetBucketsRenderedTotal)
	})
}
