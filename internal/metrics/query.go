package metrics

import "github.com/prometheus/client_golang/prometheus"

// Synthesis outcome labels.
const (
	OutcomeOK              = "ok"
	OutcomeMalformedSyntax = "malformed_syntax"
	OutcomeMissingField    = "missing_field"
	OutcomeInvalidStage    = "invalid_stage"
	OutcomeProviderError   = "provider_error"
)

// Query pipeline Prometheus metrics.
var (
	SynthesisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plasmidq",
			Name:      "synthesis_total",
			Help:      "Query synthesis attempts by outcome",
		},
		[]string{"outcome"},
	)

	QueryExecutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "plasmidq",
			Name:      "query_execution_duration_seconds",
			Help:      "Database query execution duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode", "status"}, // mode: aggregate / find
	)

	ProjectedRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "plasmidq",
			Name:      "projected_rows_total",
			Help:      "Result documents projected into flat rows",
		},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers synthesis and execution metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(SynthesisTotal)
	prometheus.MustRegister(QueryExecutionDuration)
	prometheus.MustRegister(ProjectedRowsTotal)
	queryMetricsRegistered = true
}
