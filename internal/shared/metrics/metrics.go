package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio"

var (
	// RegistryOperations counts registry operations.
	// Labels: registry (files, projects, experience, skills), op, result (ok, error, not_found)
	RegistryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "operations_total",
			Help:      "Registry operations by outcome",
		},
		[]string{"registry", "op", "result"},
	)

	// CacheSize tracks how many records each registry currently caches.
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "cache_records",
			Help:      "Records held in each registry cache",
		},
		[]string{"registry"},
	)

	// UploadsInFlight is the number of uploads currently running.
	UploadsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "files",
			Name:      "uploads_in_flight",
			Help:      "Uploads currently in progress",
		},
	)

	// UploadBytes records uploaded blob sizes.
	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "files",
			Name:      "upload_bytes",
			Help:      "Size of uploaded blobs in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	// CompensatingRemovals counts blobs removed after a failed record insert.
	// Labels: result (ok, error)
	CompensatingRemovals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "files",
			Name:      "compensating_removals_total",
			Help:      "Blob removals issued to roll back a failed upload",
		},
		[]string{"result"},
	)

	// SessionChecks counts session resolutions.
	// Labels: state (authenticated, unauthenticated, loading)
	SessionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "checks_total",
			Help:      "Session checks by resolved state",
		},
		[]string{"state"},
	)

	// GateDecisions counts access gate outcomes on guarded API routes.
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Access gate decisions by kind",
		},
		[]string{"kind"},
	)

	// CacheResyncs counts cache re-derivations triggered by change events or the schedule.
	// Labels: collection, trigger (event, schedule), result
	CacheResyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "resyncs_total",
			Help:      "Cache re-fetches by collection, trigger and result",
		},
		[]string{"collection", "trigger", "result"},
	)

	// HTTPRequestDuration tracks request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Result maps an operation error to a result label.
func Result(err error, notFound func(error) bool) string {
	switch {
	case err == nil:
		return "ok"
	case notFound != nil && notFound(err):
		return "not_found"
	default:
		return "error"
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
