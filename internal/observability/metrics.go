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
	// Refresh metrics
	RefreshRunsTotal      *prometheus.CounterVec
	RefreshDuration       prometheus.Histogram
	LastSuccessfulRefresh prometheus.Gauge

	// Artifact metrics
	ArtifactFetchErrors *prometheus.CounterVec

	// Snapshot metrics
	SnapshotSeriesPoints prometheus.Gauge
	SnapshotDailyDays    prometheus.Gauge

	// Stream metrics
	StreamClients prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "spotwatch"
	}

	return &Metrics{
		RefreshRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Total number of refresh cycles by status",
		}, []string{"status"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Duration of refresh cycles in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		LastSuccessfulRefresh: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful refresh",
		}),
		ArtifactFetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "artifact",
			Name:      "fetch_errors_total",
			Help:      "Total number of artifact fetch failures by artifact and kind",
		}, []string{"artifact", "kind"}),
		SnapshotSeriesPoints: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "series_points",
			Help:      "Number of points in the current merged price series",
		}),
		SnapshotDailyDays: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "daily_average_days",
			Help:      "Number of complete local days in the current snapshot",
		}),
		StreamClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Number of connected snapshot stream clients",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRefreshRun records a completed refresh cycle.
func RecordRefreshRun(status string, durationSeconds float64) {
	DefaultMetrics.RefreshRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.RefreshDuration.Observe(durationSeconds)
}

// RecordRefreshSuccess marks the time of the last good refresh.
func RecordRefreshSuccess(unixSeconds float64) {
	DefaultMetrics.LastSuccessfulRefresh.Set(unixSeconds)
}

// RecordArtifactError records a failed artifact fetch.
func RecordArtifactError(artifactName, kind string) {
	DefaultMetrics.ArtifactFetchErrors.WithLabelValues(artifactName, kind).Inc()
}

// UpdateSnapshotGauges updates the snapshot size gauges.
func UpdateSnapshotGauges(seriesPoints, dailyDays int) {
	DefaultMetrics.SnapshotSeriesPoints.Set(float64(seriesPoints))
	DefaultMetrics.SnapshotDailyDays.Set(float64(dailyDays))
}

// UpdateStreamClients updates the connected stream clients gauge.
func UpdateStreamClients(n int) {
	DefaultMetrics.StreamClients.Set(float64(n))
}
