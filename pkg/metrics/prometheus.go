// Package metrics provides Prometheus metrics for the readiness service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Assessment metrics
	evaluations    prometheus.Counter
	saves          *prometheus.CounterVec
	historyQueries *prometheus.CounterVec
	overallScores  prometheus.Histogram
	invalidInputs  prometheus.Counter
	duplicateSaves prometheus.Counter

	// History store metrics
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Access gate metrics
	authAttempts   *prometheus.CounterVec
	activeSessions prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "readiness",
		subsystem:        "radar",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.evaluations = auto.NewCounter(m.counter("evaluations_total", "Total number of questionnaire evaluations"))
	m.saves = auto.NewCounterVec(m.counter("saves_total", "Assessment save attempts by outcome"), []string{"outcome"})
	m.historyQueries = auto.NewCounterVec(m.counter("history_queries_total", "History queries by outcome"), []string{"outcome"})
	m.overallScores = auto.NewHistogram(m.histogram("overall_score", "Distribution of saved overall scores",
		[]float64{1.5, 2.5, 3.5, 4.5, 5}))
	m.invalidInputs = auto.NewCounter(m.counter("invalid_input_total", "Requests rejected for malformed responses"))
	m.duplicateSaves = auto.NewCounter(m.counter("duplicate_saves_total", "Saves skipped because the idempotency key was already used"))

	m.storeLatency = auto.NewHistogramVec(m.histogram("store_latency_milliseconds", "History store call latency in milliseconds", m.histogramBuckets),
		[]string{"op"})
	m.storeErrors = auto.NewCounterVec(m.counter("store_errors_total", "History store failures by operation and kind"), []string{"op", "kind"})

	m.authAttempts = auto.NewCounterVec(m.counter("auth_attempts_total", "Sign-in attempts by method and outcome"), []string{"method", "outcome"})
	m.activeSessions = auto.NewGauge(m.gauge("active_sessions", "Number of live sessions held by the access gate"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total", "Errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordEvaluation increments the evaluations counter.
func RecordEvaluation() {
	globalManager.evaluations.Inc()
}

// RecordSave counts a save attempt. outcome is one of saved, duplicate,
// unavailable, disabled, invalid.
func RecordSave(outcome string) {
	globalManager.saves.WithLabelValues(outcome).Inc()
}

// RecordHistoryQuery counts a history read. outcome is ok, empty, disabled or unavailable.
func RecordHistoryQuery(outcome string) {
	globalManager.historyQueries.WithLabelValues(outcome).Inc()
}

// ObserveOverallScore records the overall score of a saved assessment.
func ObserveOverallScore(score float64) {
	globalManager.overallScores.Observe(score)
}

// RecordInvalidInput counts a rejected questionnaire submission.
func RecordInvalidInput() {
	globalManager.invalidInputs.Inc()
}

// RecordDuplicateSave counts a save skipped by idempotency tracking.
func RecordDuplicateSave() {
	globalManager.duplicateSaves.Inc()
}

// RecordStoreLatency records history store latency for op (append, query).
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a history store failure.
func RecordStoreError(op, kind string) {
	globalManager.storeErrors.WithLabelValues(op, kind).Inc()
}

// RecordAuthAttempt counts a sign-in attempt.
func RecordAuthAttempt(method, outcome string) {
	globalManager.authAttempts.WithLabelValues(method, outcome).Inc()
}

// UpdateActiveSessions sets the live session gauge.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
