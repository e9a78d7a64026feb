package metrics

import "github.com/prometheus/client_golang/prometheus"

// Oracle Prometheus metrics, shared by query analysis and summarization.
var (
	OracleRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "keepson",
			Name:      "oracle_requests_total",
			Help:      "Total number of oracle requests",
		},
		[]string{"model", "operation", "status"},
	)

	OracleRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "keepson",
			Name:      "oracle_request_duration_seconds",
			Help:      "Oracle request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"model", "operation"},
	)

	OracleTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "keepson",
			Name:      "oracle_tokens_total",
			Help:      "Total oracle tokens consumed",
		},
		[]string{"model", "operation", "type"},
	)

	OracleErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "keepson",
			Name:      "oracle_errors_total",
			Help:      "Total oracle errors",
		},
		[]string{"model", "operation", "error_type"},
	)

	OracleBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "keepson",
			Name:      "oracle_budget_tokens_remaining",
			Help:      "Tokens remaining in the oracle budget (-1 when unlimited)",
		},
		[]string{"period"},
	)

	OracleCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "keepson",
			Name:      "oracle_cache_total",
			Help:      "Oracle hint cache lookups by result",
		},
		[]string{"result"},
	)
)

var oracleMetricsRegistered bool

// RegisterOracleMetrics registers oracle metrics. Must be called once from main.
func RegisterOracleMetrics() {
	if oracleMetricsRegistered {
		return
	}
	prometheus.MustRegister(OracleRequestsTotal)
	prometheus.MustRegister(OracleRequestDuration)
	prometheus.MustRegister(OracleTokensTotal)
	prometheus.MustRegister(OracleErrorsTotal)
	prometheus.MustRegister(OracleBudgetTokensRemaining)
	prometheus.MustRegister(OracleCacheTotal)
	oracleMetricsRegistered = true
}
