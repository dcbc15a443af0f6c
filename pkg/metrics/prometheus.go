// Package metrics provides Prometheus metrics for the badge service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Dataset
	datasetRows         *prometheus.CounterVec
	datasetDuplicates   prometheus.Counter
	datasetUsers        prometheus.Gauge
	datasetItems        prometheus.Gauge
	datasetLoadDuration prometheus.Histogram

	// Badges
	badgeBuildDuration *prometheus.HistogramVec
	badgePopulation    *prometheus.GaugeVec
	badgeCount         prometheus.Gauge
	badgeBuildErrors   prometheus.Counter

	// Pre-passes
	contributionCredits *prometheus.GaugeVec
	podiumBuckets       prometheus.Gauge
	prePassDuration     *prometheus.HistogramVec

	// Queries
	queryLatency *prometheus.HistogramVec
	queryErrors  *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	rateLimited         *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // exposed by /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "medallion",
		subsystem:        "badges",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.datasetRows = m.counterVec("dataset_rows_total", "Rows read from the dataset archive by file", "file")
	m.datasetDuplicates = m.counter("dataset_duplicate_scores_total", "Individual score rows that replaced an earlier row")
	m.datasetUsers = m.gauge("dataset_users", "Users known to the loaded dataset")
	m.datasetItems = m.gauge("dataset_items", "Items known to the loaded dataset")
	m.datasetLoadDuration = m.histogram("dataset_load_duration_milliseconds", "Time spent reading and indexing the dataset", m.histogramBuckets)

	m.badgeBuildDuration = m.histogramVec("badge_build_duration_milliseconds", "Time spent sampling a badge population and computing its tiers", "badge")
	m.badgePopulation = m.gaugeVec("badge_population", "Users with a positive score per badge", "badge")
	m.badgeCount = m.gauge("badge_count", "Badge models currently served")
	m.badgeBuildErrors = m.counter("badge_build_errors_total", "Badge models that failed to build")

	m.contributionCredits = m.gaugeVec("contribution_credits", "Contribution credits handed out by kind", "kind")
	m.podiumBuckets = m.gauge("podium_buckets", "Time buckets ranked by the weekly podium")
	m.prePassDuration = m.histogramVec("prepass_duration_milliseconds", "Duration of the classifier and podium passes", "pass")

	m.queryLatency = m.histogramVec("query_latency_milliseconds", "Latency of service queries", "query")
	m.queryErrors = m.counterVec("query_errors_total", "Failed service queries by kind", "query", "error_type")

	m.queueSize = m.gauge("queue_size", "Jobs waiting in the build queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum build queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Build queue utilization ratio (size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Jobs rejected by the queue")

	m.workerCount = m.gauge("worker_count", "Workers in the build pool")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently building a badge")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time a worker spends on one job", m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Jobs that failed in a worker")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "HTTP errors by endpoint", "endpoint", "method", "error_type")
	m.rateLimited = m.counterVec("rate_limited_total", "Requests rejected by the rate limiter", "endpoint")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Dataset

// RecordDatasetRows adds n rows read from file.
func RecordDatasetRows(file string, n int) {
	globalManager.datasetRows.WithLabelValues(file).Add(float64(n))
}

// RecordDatasetDuplicates adds n replaced individual score rows.
func RecordDatasetDuplicates(n int) {
	globalManager.datasetDuplicates.Add(float64(n))
}

// UpdateDatasetSize sets the user and item gauges.
func UpdateDatasetSize(users, items int) {
	globalManager.datasetUsers.Set(float64(users))
	globalManager.datasetItems.Set(float64(items))
}

// RecordDatasetLoadDuration records the dataset load time in milliseconds.
func RecordDatasetLoadDuration(ms float64) {
	globalManager.datasetLoadDuration.Observe(ms)
}

// Badges

// RecordBadgeBuild records the build time and population of a badge.
func RecordBadgeBuild(badge string, ms float64, population int) {
	globalManager.badgeBuildDuration.WithLabelValues(badge).Observe(ms)
	globalManager.badgePopulation.WithLabelValues(badge).Set(float64(population))
}

// UpdateBadgeCount sets the number of served badge models.
func UpdateBadgeCount(n int) {
	globalManager.badgeCount.Set(float64(n))
}

// RecordBadgeBuildError increments the badge build error counter.
func RecordBadgeBuildError() {
	globalManager.badgeBuildErrors.Inc()
}

// Pre-passes

// UpdateContributionCredits sets the credit gauges.
func UpdateContributionCredits(first, early, follow int) {
	globalManager.contributionCredits.WithLabelValues("first").Set(float64(first))
	globalManager.contributionCredits.WithLabelValues("early").Set(float64(early))
	globalManager.contributionCredits.WithLabelValues("follow").Set(float64(follow))
}

// UpdatePodiumBuckets sets the number of ranked buckets.
func UpdatePodiumBuckets(n int) {
	globalManager.podiumBuckets.Set(float64(n))
}

// RecordPrePassDuration records the duration of a named pre-pass.
func RecordPrePassDuration(pass string, ms float64) {
	globalManager.prePassDuration.WithLabelValues(pass).Observe(ms)
}

// Queries

// RecordQueryLatency records the latency of a service query.
func RecordQueryLatency(query string, ms float64) {
	globalManager.queryLatency.WithLabelValues(query).Observe(ms)
}

// RecordQueryError increments the failed query counter.
func RecordQueryError(query, errorType string) {
	globalManager.queryErrors.WithLabelValues(query, errorType).Inc()
}

// Queue

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Workers

// UpdateWorkerCount sets the pool size.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records how long one job took.
func RecordWorkerProcessingLatency(ms float64) {
	globalManager.workerProcessingLatency.Observe(ms)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// HTTP

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

// RecordRateLimited increments the rejected request counter.
func RecordRateLimited(endpoint string) {
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// System

// UpdateSystemMemoryUsage sets the heap memory in use.
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
