// Package metrics provides Prometheus metrics for the idea priority service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exposed by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	rankedBuckets    []float64
	registry         prometheus.Registerer

	// Ranking
	rankingRequests  *prometheus.CounterVec
	rankingLatency   *prometheus.HistogramVec
	rankedIdeas      prometheus.Histogram
	signalsStale     prometheus.Counter
	signalsMissing   prometheus.Counter
	weightUpdates    prometheus.Counter
	weightClamped    prometheus.Counter
	repositoryQuery  *prometheus.HistogramVec
	errorsByCategory *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // custom registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ideas",
		subsystem:        "priority",
		histogramBuckets: prometheus.DefBuckets,
		rankedBuckets:    []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collector definitions
	auto := promauto.With(m.registry)

	m.rankingRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_requests_total",
		Help:      "Total number of priority computations by path (batch or single)",
	}, []string{"path"})

	m.rankingLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_latency_milliseconds",
		Help:      "Latency of a priority computation including store reads",
		Buckets:   m.histogramBuckets,
	}, []string{"path"})

	m.rankedIdeas = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranked_ideas",
		Help:      "Number of ideas returned by a batch ranking",
		Buckets:   m.rankedBuckets,
	})

	m.signalsStale = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signals_stale_total",
		Help:      "Opportunity signals that were decayed because they were older than the staleness threshold",
	})

	m.signalsMissing = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signals_missing_total",
		Help:      "Ideas scored by votes only because no signal row or no opportunity score exists",
	})

	m.weightUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weight_updates_total",
		Help:      "Total number of priority weight writes",
	})

	m.weightClamped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weight_clamped_total",
		Help:      "Priority weight writes whose input was outside the allowed range",
	})

	m.repositoryQuery = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Repository operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"driver", "op"})

	m.errorsByCategory = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Errors by component and type",
	}, []string{"component", "error_type"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordRankingRequest counts one computation on path ("batch" or "single").
func RecordRankingRequest(path string, latencyMs float64) {
	globalManager.rankingRequests.WithLabelValues(path).Inc()
	globalManager.rankingLatency.WithLabelValues(path).Observe(latencyMs)
}

// RecordRankedIdeas observes the size of a batch ranking result.
func RecordRankedIdeas(n int) {
	globalManager.rankedIdeas.Observe(float64(n))
}

// RecordStaleSignal increments the stale signal counter.
func RecordStaleSignal() {
	globalManager.signalsStale.Inc()
}

// RecordMissingSignal increments the missing signal counter.
func RecordMissingSignal() {
	globalManager.signalsMissing.Inc()
}

// RecordWeightUpdate counts a weight write; clamped reports whether the input was corrected.
func RecordWeightUpdate(clamped bool) {
	globalManager.weightUpdates.Inc()
	if clamped {
		globalManager.weightClamped.Inc()
	}
}

// RecordRepositoryQueryLatency records a repository operation latency.
func RecordRepositoryQueryLatency(driver, op string, latencyMs float64) {
	globalManager.repositoryQuery.WithLabelValues(driver, op).Observe(latencyMs)
}

// RecordError counts an error for component.
func RecordError(component, errorType string) {
	globalManager.errorsByCategory.WithLabelValues(component, errorType).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
