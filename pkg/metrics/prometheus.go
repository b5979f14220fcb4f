// Package metrics provides Prometheus metrics for the HackWreck service and client.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for HackWreck.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Catalogue metrics
	projectsTotal    prometheus.Gauge
	projectsArchived *prometheus.CounterVec
	projectsDeleted  prometheus.Counter
	duplicateSubmits prometheus.Counter

	// LLM metrics
	llmLatency *prometheus.HistogramVec
	llmErrors  *prometheus.CounterVec

	// Repository metrics
	repositoryQueryLatency *prometheus.HistogramVec

	// Cache metrics
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// Ingest queue and worker metrics
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueueErrors      prometheus.Counter
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Client-side interaction metrics
	sectionTransitions   *prometheus.CounterVec
	readAloudTransitions *prometheus.CounterVec
	clientRequestLatency *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hackwreck",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Disabled managers keep working collectors that are never registered,
	// so recorders stay safe to call and nothing is exported.
	var reg prometheus.Registerer
	if m.enabled {
		reg = m.registry
	}
	auto := promauto.With(reg)
	labels := prometheus.Labels(m.customLabels)

	m.projectsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("projects_total"),
		Help:        "Number of archived hackathon projects",
		ConstLabels: labels,
	})

	m.projectsArchived = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("projects_archived_total"),
		Help:        "Projects archived, by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.projectsDeleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("projects_deleted_total"),
		Help:        "Projects removed from the catalogue",
		ConstLabels: labels,
	})

	m.duplicateSubmits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("duplicate_submissions_total"),
		Help:        "Submissions rejected because the repository is already archived or in flight",
		ConstLabels: labels,
	})

	m.llmLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("llm_latency_milliseconds"),
		Help:        "Latency of language-model calls by operation",
		Buckets:     []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		ConstLabels: labels,
	}, []string{"operation"})

	m.llmErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("llm_errors_total"),
		Help:        "Failed language-model calls by operation",
		ConstLabels: labels,
	}, []string{"operation"})

	m.repositoryQueryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("repository_query_latency_milliseconds"),
		Help:        "Repository query latency by query name",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"query"})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_hits_total"),
		Help:        "Narrative cache hits",
		ConstLabels: labels,
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cache_misses_total"),
		Help:        "Narrative cache misses",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_errors_total"),
		Help:        "HTTP errors by endpoint, method and error type",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ingest_queue_size"),
		Help:        "Pending batch ingest jobs",
		ConstLabels: labels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ingest_queue_capacity"),
		Help:        "Capacity of the batch ingest queue",
		ConstLabels: labels,
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ingest_enqueue_errors_total"),
		Help:        "Batch entries rejected by the ingest queue",
		ConstLabels: labels,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ingest_workers"),
		Help:        "Number of ingest workers",
		ConstLabels: labels,
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ingest_processing_latency_milliseconds"),
		Help:        "Time spent ingesting one batch entry",
		Buckets:     []float64{100, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		ConstLabels: labels,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ingest_errors_total"),
		Help:        "Batch entries that failed to ingest",
		ConstLabels: labels,
	})

	m.sectionTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("section_transitions_total"),
		Help:        "Client section phase transitions",
		ConstLabels: labels,
	}, []string{"section", "phase"})

	m.readAloudTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("read_aloud_transitions_total"),
		Help:        "Read-aloud lifecycle transitions",
		ConstLabels: labels,
	}, []string{"state"})

	m.clientRequestLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("client_request_latency_milliseconds"),
		Help:        "API client request latency by path and outcome",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"path", "outcome"})
}

// UpdateProjectsTotal sets the number of archived projects.
func UpdateProjectsTotal(count int) {
	globalManager.projectsTotal.Set(float64(count))
}

// RecordProjectArchived counts a newly archived project.
func RecordProjectArchived(outcome string) {
	globalManager.projectsArchived.WithLabelValues(outcome).Inc()
}

// RecordProjectDeleted counts a removed project.
func RecordProjectDeleted() {
	globalManager.projectsDeleted.Inc()
}

// RecordDuplicateSubmission counts a rejected duplicate submission.
func RecordDuplicateSubmission() {
	globalManager.duplicateSubmits.Inc()
}

// RecordLLMLatency records the latency of one language-model call.
func RecordLLMLatency(operation string, latencyMs float64) {
	globalManager.llmLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordLLMError counts a failed language-model call.
func RecordLLMError(operation string) {
	globalManager.llmErrors.WithLabelValues(operation).Inc()
}

// RecordRepositoryQueryLatency records repository query latency.
func RecordRepositoryQueryLatency(query string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(query).Observe(latencyMs)
}

// RecordCacheHit counts a cache hit.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss counts a cache miss.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
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

// UpdateQueueSize sets the current ingest queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the ingest queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of ingest workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordSectionTransition counts a section entering phase.
func RecordSectionTransition(section, phase string) {
	globalManager.sectionTransitions.WithLabelValues(section, phase).Inc()
}

// RecordReadAloudTransition counts the read-aloud lifecycle entering state.
func RecordReadAloudTransition(state string) {
	globalManager.readAloudTransitions.WithLabelValues(state).Inc()
}

// RecordClientRequest records the latency of one API client request.
func RecordClientRequest(path, outcome string, latencyMs float64) {
	globalManager.clientRequestLatency.WithLabelValues(path, outcome).Observe(latencyMs)
}

// Init rebuilds the global metrics on a fresh registry with opts. Call it at
// startup, before any recorder runs or GetRegistry is read.
func Init(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// Enabled reports whether the global metrics are registered for export.
func Enabled() bool {
	return globalManager.enabled
}

// RefreshInterval is how often periodically sampled gauges should be updated.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
