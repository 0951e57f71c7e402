// Package metrics provides Prometheus metrics for the draftsim service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default histogram layouts.
var (
	defaultSimulationBuckets = []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 30000, 120000} //nolint:gochecknoglobals // read-only default
	defaultEntrantBuckets    = []float64{2, 3, 4, 6, 8, 12}                                 //nolint:gochecknoglobals // read-only default
)

// Manager manages all Prometheus metrics for the draftsim service.
type Manager struct {
	namespace         string
	subsystem         string
	latencyBuckets    []float64
	simulationBuckets []float64
	entrantBuckets    []float64
	customLabels      map[string]string
	metricPrefix      string
	registry          prometheus.Registerer

	// Simulation metrics
	simulationsSubmitted prometheus.Counter
	simulationsCompleted prometheus.Counter
	simulationsFailed    prometheus.Counter
	simulationDuration   prometheus.Histogram
	roundsCompleted      prometheus.Counter
	picks                *prometheus.CounterVec

	// Scoring metrics
	scoringLatency     prometheus.Histogram
	voteFetchFailures  prometheus.Counter
	duplicateChecks    prometheus.Counter
	duplicatesDetected prometheus.Counter

	// Lottery metrics
	lotteryPhases   *prometheus.CounterVec
	lotteryDraws    prometheus.Counter
	lotteryEntrants prometheus.Histogram

	// Queue and worker metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	workerActiveCount  prometheus.Gauge
	workerErrorRate    prometheus.Counter

	// Storage metrics
	runStoreSize prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:         "draftsim",
		subsystem:         "draft",
		latencyBuckets:    prometheus.DefBuckets,
		simulationBuckets: defaultSimulationBuckets,
		entrantBuckets:    defaultEntrantBuckets,
		customLabels:      make(map[string]string),
		registry:          prometheus.DefaultRegisterer,
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
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.simulationsSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("simulations_submitted_total"),
		Help:        "Total number of simulations accepted for processing",
		ConstLabels: labels,
	})

	m.simulationsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("simulations_completed_total"),
		Help:        "Total number of simulations that ran to completion",
		ConstLabels: labels,
	})

	m.simulationsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("simulations_failed_total"),
		Help:        "Total number of simulations that ended with an error or cancellation",
		ConstLabels: labels,
	})

	m.simulationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("simulation_duration_milliseconds"),
		Help:        "Wall-clock duration of a simulation run in milliseconds",
		Buckets:     m.simulationBuckets,
		ConstLabels: labels,
	})

	m.roundsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rounds_completed_total"),
		Help:        "Total number of draft rounds completed",
		ConstLabels: labels,
	})

	m.picks = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("picks_total"),
			Help:        "Total number of picks by source",
			ConstLabels: labels,
		},
		[]string{"source"},
	)

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("scoring_latency_milliseconds"),
		Help:        "Histogram of candidate ranking latency in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: labels,
	})

	m.voteFetchFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("vote_fetch_failures_total"),
		Help:        "Total number of failed vote aggregate fetches",
		ConstLabels: labels,
	})

	m.duplicateChecks = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("duplicate_checks_total"),
		Help:        "Total number of candidate duplicate checks",
		ConstLabels: labels,
	})

	m.duplicatesDetected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("duplicates_detected_total"),
		Help:        "Total number of likely duplicate candidates reported",
		ConstLabels: labels,
	})

	m.lotteryPhases = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("lottery_phases_total"),
			Help:        "Total number of lottery reveal phases emitted",
			ConstLabels: labels,
		},
		[]string{"phase"},
	)

	m.lotteryDraws = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("lottery_draws_total"),
		Help:        "Total number of contested lottery draws",
		ConstLabels: labels,
	})

	m.lotteryEntrants = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("lottery_entrants"),
		Help:        "Number of teams competing in a lottery draw",
		Buckets:     m.entrantBuckets,
		ConstLabels: labels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_size"),
		Help:        "Current number of simulations waiting in the queue",
		ConstLabels: labels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_capacity"),
		Help:        "Maximum queue capacity",
		ConstLabels: labels,
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_enqueue_total"),
		Help:        "Total number of simulations enqueued",
		ConstLabels: labels,
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_enqueue_errors_total"),
		Help:        "Total number of rejected enqueues",
		ConstLabels: labels,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_count"),
		Help:        "Number of simulation workers started",
		ConstLabels: labels,
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_active_count"),
		Help:        "Number of workers currently running a simulation",
		ConstLabels: labels,
	})

	m.workerErrorRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_errors_total"),
		Help:        "Total number of worker errors",
		ConstLabels: labels,
	})

	m.runStoreSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("run_store_size"),
		Help:        "Number of simulation runs held in the run store",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.latencyBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)
}

// RecordSimulationSubmitted increments the accepted simulations counter.
func RecordSimulationSubmitted() {
	globalManager.simulationsSubmitted.Inc()
}

// RecordSimulationCompleted records a finished simulation and its duration.
func RecordSimulationCompleted(durationMs float64) {
	globalManager.simulationsCompleted.Inc()
	globalManager.simulationDuration.Observe(durationMs)
}

// RecordSimulationFailed increments the failed simulations counter.
func RecordSimulationFailed() {
	globalManager.simulationsFailed.Inc()
}

// RecordRoundCompleted increments the completed rounds counter.
func RecordRoundCompleted() {
	globalManager.roundsCompleted.Inc()
}

// RecordPick counts a pick by its source (auto, human, fallback, lottery).
func RecordPick(source string) {
	globalManager.picks.WithLabelValues(source).Inc()
}

// RecordScoringLatency records ranking latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordVoteFetchFailure counts a failed vote aggregate fetch.
func RecordVoteFetchFailure() {
	globalManager.voteFetchFailures.Inc()
}

// RecordDuplicateCheck counts a duplicate check and the matches it reported.
func RecordDuplicateCheck(matches int) {
	globalManager.duplicateChecks.Inc()
	if matches > 0 {
		globalManager.duplicatesDetected.Add(float64(matches))
	}
}

// RecordLotteryPhase counts an emitted reveal phase.
func RecordLotteryPhase(phase string) {
	globalManager.lotteryPhases.WithLabelValues(phase).Inc()
}

// RecordLotteryDraw records a contested draw among n teams.
func RecordLotteryDraw(n int) {
	globalManager.lotteryDraws.Inc()
	globalManager.lotteryEntrants.Observe(float64(n))
}

// UpdateQueueSize updates the queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity updates the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount updates the worker count gauge.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount updates the active worker gauge.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// UpdateRunStoreSize updates the run store size gauge.
func UpdateRunStoreSize(size int) {
	globalManager.runStoreSize.Set(float64(size))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom registry for metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
