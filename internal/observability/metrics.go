// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Request metrics
	AnalyzeRequestsTotal *prometheus.CounterVec
	AnalyzeDuration      prometheus.Histogram

	// Pipeline metrics
	HoldersFetched  prometheus.Histogram
	HoldersSelected prometheus.Counter

	// Source metrics
	PagesFetched prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "holder_sampler"
	}

	return &Metrics{
		AnalyzeRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "analyze_requests_total",
			Help:      "Total number of analyze requests by outcome",
		}, []string{"outcome"}),
		AnalyzeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "analyze_duration_seconds",
			Help:      "End-to-end analyze request duration",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		HoldersFetched: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "holders_fetched",
			Help:      "Distribution of raw holder accounts fetched per request",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		}),
		HoldersSelected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "holders_selected_total",
			Help:      "Total number of holders selected across requests",
		}),
		PagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "pages_fetched_total",
			Help:      "Total number of token account pages fetched",
		}),
	}
}

// RecordAnalyze records one analyze request outcome with its duration.
func (m *Metrics) RecordAnalyze(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.AnalyzeRequestsTotal.WithLabelValues(outcome).Inc()
	m.AnalyzeDuration.Observe(seconds)
}

// RecordResults records the fetched/selected holder counts of a
// successful analysis.
func (m *Metrics) RecordResults(totalHolders, selected int) {
	if m == nil {
		return
	}
	m.HoldersFetched.Observe(float64(totalHolders))
	m.HoldersSelected.Add(float64(selected))
}

// RecordPage counts one fetched token account page.
func (m *Metrics) RecordPage() {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
