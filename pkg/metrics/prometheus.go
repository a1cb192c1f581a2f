// Package metrics provides Prometheus metrics for the Spotline engagement
// engine.
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

// Manager owns all Prometheus instruments for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Reaction pipeline
	reactionsProcessed prometheus.Counter
	reactionsDuplicate prometheus.Counter
	reactionsRejected  *prometheus.CounterVec
	scoringLatency     prometheus.Histogram

	// Reputation ledger
	reputationEvents *prometheus.CounterVec

	// Signal dispatch
	signalsEvaluated prometheus.Counter
	signalsMatched   prometheus.Counter
	evaluationRuns   *prometheus.CounterVec

	// Flair consensus
	suggestionsCreated prometheus.Counter
	suggestionsApplied prometheus.Counter
	flairsAssigned     *prometheus.CounterVec

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueues          prometheus.Counter
	queueDequeues          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Scale
	trackedSightings prometheus.Gauge
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
		namespace:        "spotline",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus instruments.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.reactionsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reactions_processed_total",
		Help:      "Total number of reaction events applied to sightings",
	})

	m.reactionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reactions_duplicate_total",
		Help:      "Total number of duplicate reaction events dropped before processing",
	})

	m.reactionsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "reactions_rejected_total",
			Help:      "Total number of reaction mutations rejected, by fault code",
		},
		[]string{"code"},
	)

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Histogram of score recomputation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.reputationEvents = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "reputation_events_total",
			Help:      "Total number of reputation ledger events, by reason",
		},
		[]string{"reason"},
	)

	m.signalsEvaluated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signals_evaluated_total",
		Help:      "Total number of signals considered across all evaluations",
	})

	m.signalsMatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "signals_matched_total",
		Help:      "Total number of signals that matched a sighting event",
	})

	m.evaluationRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "signal_evaluation_runs_total",
			Help:      "Total number of dispatcher runs, by trigger type",
		},
		[]string{"trigger"},
	)

	m.suggestionsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flair_suggestions_created_total",
		Help:      "Total number of flair suggestions opened",
	})

	m.suggestionsApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flair_suggestions_applied_total",
		Help:      "Total number of flair suggestions applied by consensus",
	})

	m.flairsAssigned = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "flairs_assigned_total",
			Help:      "Total number of flair assignments, by method",
		},
		[]string{"method"},
	)

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the reaction event queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum reaction queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of reaction events enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of reaction events dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue failures",
	})

	m.queueProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_processing_latency_milliseconds",
		Help:      "Queue operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active reaction workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Worker end-to-end event processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker processing errors",
	})

	m.trackedSightings = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_sightings",
		Help:      "Total number of sightings tracked by the engine",
	})
}

// RecordReactionProcessed increments the reactions processed counter.
func RecordReactionProcessed() {
	globalManager.reactionsProcessed.Inc()
}

// RecordReactionDuplicate increments the duplicate reactions counter.
func RecordReactionDuplicate() {
	globalManager.reactionsDuplicate.Inc()
}

// RecordReactionRejected counts a rejected reaction mutation by fault code.
func RecordReactionRejected(code string) {
	globalManager.reactionsRejected.WithLabelValues(code).Inc()
}

// RecordScoringLatency records score recomputation latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordReputationEvent counts one reputation ledger event by reason.
func RecordReputationEvent(reason string) {
	globalManager.reputationEvents.WithLabelValues(reason).Inc()
}

// RecordSignalEvaluation records one dispatcher run: the trigger, how many
// signals were considered and how many matched.
func RecordSignalEvaluation(trigger string, evaluated, matched int) {
	globalManager.evaluationRuns.WithLabelValues(trigger).Inc()
	globalManager.signalsEvaluated.Add(float64(evaluated))
	globalManager.signalsMatched.Add(float64(matched))
}

// RecordSuggestionCreated increments the suggestions created counter.
func RecordSuggestionCreated() {
	globalManager.suggestionsCreated.Inc()
}

// RecordSuggestionApplied increments the suggestions applied counter.
func RecordSuggestionApplied() {
	globalManager.suggestionsApplied.Inc()
}

// RecordFlairAssigned counts one flair assignment by method.
func RecordFlairAssigned(method string) {
	globalManager.flairsAssigned.WithLabelValues(method).Inc()
}

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
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue operation latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateTrackedSightings sets the tracked sightings gauge.
func UpdateTrackedSightings(count int) {
	globalManager.trackedSightings.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by the engine.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
