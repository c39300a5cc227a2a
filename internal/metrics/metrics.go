// Package metrics exposes Prometheus collectors for the forecasting cycles.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockwise"

var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycles_total",
		Help:      "Cycles run, by kind and final state.",
	}, []string{"kind", "state"})

	cycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Wall time of each cycle.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
	}, []string{"kind"})

	alertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_total",
		Help:      "Alert rule outcomes, by alert type and outcome.",
	}, []string{"type", "outcome"})

	anomaliesFlagged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "anomalies_flagged_total",
		Help:      "Transactions newly flagged as anomalous.",
	})

	materialsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "materials_skipped_total",
		Help:      "Materials left out of a cycle, by cycle kind.",
	}, []string{"kind"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests, by method, route and status.",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	historySynthesized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_synthesized_total",
		Help:      "Forecast cycles that had to synthesize demo history.",
	})
)

// ObserveCycle records one finished cycle.
func ObserveCycle(kind, state string, elapsed time.Duration) {
	cyclesTotal.WithLabelValues(kind, state).Inc()
	cycleDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveAlert records one alert rule outcome.
func ObserveAlert(alertType, outcome string) {
	alertsTotal.WithLabelValues(alertType, outcome).Inc()
}

// AddAnomalies adds newly flagged transactions.
func AddAnomalies(n int) {
	if n > 0 {
		anomaliesFlagged.Add(float64(n))
	}
}

// AddSkipped adds materials skipped by a cycle.
func AddSkipped(kind string, n int) {
	if n > 0 {
		materialsSkipped.WithLabelValues(kind).Add(float64(n))
	}
}

// MarkHistorySynthesized counts a cycle that ran on synthetic history.
func MarkHistorySynthesized() {
	historySynthesized.Inc()
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
