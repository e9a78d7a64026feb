package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search resolution Prometheus metrics.
var (
	SearchResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "keepson",
			Name:      "search_resolutions_total",
			Help:      "Total resolved searches by final strategy",
		},
		[]string{"strategy"},
	)

	SearchResolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "keepson",
			Name:      "search_resolution_duration_seconds",
			Help:      "End-to-end search resolution duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"strategy"},
	)

	SearchEmptyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "keepson",
			Name:      "search_empty_total",
			Help:      "Total searches resolved with zero results",
		},
		[]string{"strategy"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchResolutionsTotal)
	prometheus.MustRegister(SearchResolutionDuration)
	prometheus.MustRegister(SearchEmptyTotal)
	searchMetricsRegistered = true
}
