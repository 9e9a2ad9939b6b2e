// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	SpinsIngested   *prometheus.CounterVec
	IngestRejected  *prometheus.CounterVec
	LastIngestionTs prometheus.Gauge

	// Analysis metrics
	AnalysisRequests *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	ClassifiedSpins  prometheus.Counter

	// Cache metrics
	CacheLookups      *prometheus.CounterVec
	CacheErrors       *prometheus.CounterVec
	LockContention    prometheus.Counter
	StatsSnapshots    prometheus.Counter
	PrecomputeRuns    *prometheus.CounterVec
	PrecomputeRows    prometheus.Counter
	LastPrecomputeRun prometheus.Gauge

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance registered on reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "roulette_lab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		// Ingestion metrics
		SpinsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "spins_ingested_total",
			Help:      "Total number of spins stored by roulette",
		}, []string{"roulette"}),
		IngestRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "batches_rejected_total",
			Help:      "Total number of rejected spin batches by reason",
		}, []string{"reason"}),
		LastIngestionTs: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion",
		}),

		// Analysis metrics
		AnalysisRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Total number of analysis requests by operation and status",
		}, []string{"operation", "status"}),
		AnalysisDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Analysis duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		ClassifiedSpins: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "classified_spins_total",
			Help:      "Total number of spins passed through the classifier",
		}),

		// Cache metrics
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Daily streak cache lookups by result (hit, miss, bypass)",
		}, []string{"result"}),
		CacheErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Daily streak cache errors by operation",
		}, []string{"operation"}),
		LockContention: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lock_contention_total",
			Help:      "Cache misses computed while another caller held the key lock",
		}),
		StatsSnapshots: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "stats_snapshots_total",
			Help:      "Total number of persisted strategy stats snapshots",
		}),
		PrecomputeRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "precompute_runs_total",
			Help:      "Total number of precompute runs by status",
		}, []string{"status"}),
		PrecomputeRows: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "precompute_rows_total",
			Help:      "Total number of daily streak rows written by precompute",
		}),
		LastPrecomputeRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_precompute_timestamp",
			Help:      "Unix timestamp of last successful precompute run",
		}),

		// HTTP metrics
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint of the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns an HTTP handler serving metrics gathered from g.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordAnalysis records one analysis call.
func (m *Metrics) RecordAnalysis(operation string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.AnalysisRequests.WithLabelValues(operation, status).Inc()
	m.AnalysisDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordCacheLookup records a cache lookup result: "hit", "miss" or "bypass".
func (m *Metrics) RecordCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheError records a cache error for operation ("get", "upsert", "lock").
func (m *Metrics) RecordCacheError(operation string) {
	m.CacheErrors.WithLabelValues(operation).Inc()
}

// RecordIngest records a stored spin batch.
func (m *Metrics) RecordIngest(rouletteID string, n int, unixTs int64) {
	m.SpinsIngested.WithLabelValues(rouletteID).Add(float64(n))
	m.LastIngestionTs.Set(float64(unixTs))
}

// RecordPrecompute records a precompute run.
func (m *Metrics) RecordPrecompute(rows int, unixTs int64, err error) {
	if err != nil {
		m.PrecomputeRuns.WithLabelValues("error").Inc()
		return
	}
	m.PrecomputeRuns.WithLabelValues("ok").Inc()
	m.PrecomputeRows.Add(float64(rows))
	m.LastPrecomputeRun.Set(float64(unixTs))
}

// RecordHTTP records an HTTP request.
func (m *Metrics) RecordHTTP(route string, code int, seconds float64) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(seconds)
}
