package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fantacalcio_stats"

var (
	// Dataset cache
	DatasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset category fetches by outcome (ok, empty, error).",
		},
		[]string{"category", "outcome"},
	)

	DatasetLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of dataset category fetches in seconds.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"category"},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows held per loaded dataset category.",
		},
		[]string{"category"},
	)

	// Result cache
	ResultCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_lookups_total",
			Help:      "Result cache lookups by result (hit, miss).",
		},
		[]string{"result"},
	)

	// Queries
	PlayerQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "player_queries_total",
			Help:      "Player stats queries by outcome.",
		},
		[]string{"outcome"},
	)

	// Upstream
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the stats provider by status class.",
		},
		[]string{"provider", "status"},
	)

	CircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_open",
			Help:      "1 while the named circuit breaker is open or half-open.",
		},
		[]string{"name"},
	)
)

func ObserveDatasetLoad(category, outcome string, rows int, elapsed time.Duration) {
	DatasetLoadsTotal.WithLabelValues(category, outcome).Inc()
	DatasetLoadDuration.WithLabelValues(category).Observe(elapsed.Seconds())
	DatasetRows.WithLabelValues(category).Set(float64(rows))
}

func ObserveResultCache(hit bool) {
	if hit {
		ResultCacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	ResultCacheLookupsTotal.WithLabelValues("miss").Inc()
}

func ObserveQuery(outcome string) {
	PlayerQueriesTotal.WithLabelValues(outcome).Inc()
}

func ObserveUpstream(provider, status string) {
	UpstreamRequestsTotal.WithLabelValues(provider, status).Inc()
}

func SetCircuitOpen(name string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	CircuitState.WithLabelValues(name).Set(v)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
