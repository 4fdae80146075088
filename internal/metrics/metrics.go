// Package metrics exposes Prometheus instrumentation for the monitor.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all tapewatch Prometheus metrics.
type Registry struct {
	registry *prometheus.Registry

	TradesIngested prometheus.Counter
	TradesRejected prometheus.Counter
	BookUpdates    prometheus.Counter
	Anomalies      *prometheus.CounterVec
	IngestDuration prometheus.Histogram
	SnapshotsTaken prometheus.Counter
	EWMAVolatility prometheus.Gauge
	WindowSize     prometheus.Gauge
}

// NewRegistry creates an isolated registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		TradesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tapewatch_trades_ingested_total",
			Help: "Total number of accepted trade prints",
		}),
		TradesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tapewatch_trades_rejected_total",
			Help: "Total number of trades rejected as invalid input",
		}),
		BookUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tapewatch_book_updates_total",
			Help: "Total number of order book replacements",
		}),
		Anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tapewatch_anomalies_total",
			Help: "Total anomalies flagged by type",
		}, []string{"type"}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tapewatch_ingest_duration_seconds",
			Help:    "Duration of ingest-then-classify for one trade",
			Buckets: []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		}),
		SnapshotsTaken: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tapewatch_snapshots_total",
			Help: "Total number of metric snapshots computed",
		}),
		EWMAVolatility: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tapewatch_ewma_volatility",
			Help: "Latest per-trade EWMA volatility estimate",
		}),
		WindowSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tapewatch_window_size",
			Help: "Current rolling window occupancy",
		}),
	}

	r.registry.MustRegister(
		r.TradesIngested,
		r.TradesRejected,
		r.BookUpdates,
		r.Anomalies,
		r.IngestDuration,
		r.SnapshotsTaken,
		r.EWMAVolatility,
		r.WindowSize,
	)
	return r
}

// RecordAnomalies bumps the per-type anomaly counters.
func (r *Registry) RecordAnomalies(price, size, volatility bool) {
	if price {
		r.Anomalies.WithLabelValues("price").Inc()
	}
	if size {
		r.Anomalies.WithLabelValues("size").Inc()
	}
	if volatility {
		r.Anomalies.WithLabelValues("volatility").Inc()
	}
}

// Handler returns the scrape endpoint for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
