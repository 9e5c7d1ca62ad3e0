package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the aggregation pipeline.
type Metrics struct {
	FetchRequests *prometheus.CounterVec // labels: source, outcome={success,error,skipped}
	FetchDuration *prometheus.HistogramVec
	EventsEmitted *prometheus.CounterVec // labels: source

	AggregationDuration prometheus.Histogram
	MonitorRunning      prometheus.Gauge
}

// NewMetrics creates and registers all instruments with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(prometheus.NewRegistry())
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_sentinel",
			Name:      "fetch_requests_total",
			Help:      "Upstream feed fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "disaster_sentinel",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream feed fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		EventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_sentinel",
			Name:      "events_emitted_total",
			Help:      "Normalized disaster events emitted per source.",
		}, []string{"source"}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "disaster_sentinel",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of a complete fan-out, merge, and filter cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_sentinel",
			Name:      "monitor_running",
			Help:      "1 when the background monitor is active, 0 when stopped.",
		}),
	}

	reg.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.EventsEmitted,
		m.AggregationDuration,
		m.MonitorRunning,
	)

	return m
}
