// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts highlight requests by outcome
	// (rendered or engine_error).
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pigd_requests_total",
			Help: "Total number of highlight requests processed by the worker pool.",
		},
		[]string{"outcome"},
	)

	// RenderDuration observes wall time spent inside the rendering engine.
	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pigd_render_duration_seconds",
			Help:    "Time spent rendering a single request.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// OrphanedRepliesTotal counts replies dropped because the client had
	// already disconnected.
	OrphanedRepliesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pigd_orphaned_replies_total",
			Help: "Replies dropped because no live connection matched the correlation token.",
		},
	)

	// OpenConnections tracks currently accepted client connections.
	OpenConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pigd_open_connections",
			Help: "Number of currently open client connections.",
		},
	)

	// BusyWorkers tracks workers currently rendering a request.
	BusyWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pigd_busy_workers",
			Help: "Number of pool workers currently rendering.",
		},
	)
)
