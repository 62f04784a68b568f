package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatherKindDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kubinv_gather_kind_duration_seconds",
			Help:    "Time taken to list and ingest one resource kind",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
	)

	gatherKindTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kubinv_gather_kind_total",
			Help: "Total number of kind gather attempts",
		},
		[]string{"status"}, // available, unavailable or fatal
	)

	gatherCacheKinds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kubinv_gather_cache_kinds",
			Help: "Number of kinds in the last populated resource cache",
		},
	)

	componentsAggregated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kubinv_components_aggregated_total",
			Help: "Total number of root pods aggregated into components",
		},
	)
)
