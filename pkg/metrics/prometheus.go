// Package metrics provides Prometheus metrics for the podium data gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the podium service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Cache metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// Upstream metrics
	upstreamRequests prometheus.Counter
	upstreamRetries  prometheus.Counter
	upstreamFailures prometheus.Counter
	upstreamLatency  prometheus.Histogram
	pagesFetched     prometheus.Counter

	// Season index metrics
	indexRebuildDuration prometheus.Histogram
	indexRebuildLastUnix prometheus.Gauge
	indexRebuilds        prometheus.Counter
	indexRebuildsSkipped prometheus.Counter
	indexSeasonCount     prometheus.Gauge

	// Presentation metrics
	chunkSplits prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "gateway",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.cacheHits = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits per resource kind",
		},
		[]string{"resource"},
	)

	m.cacheMisses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses per resource kind (includes fail-open store errors)",
		},
		[]string{"resource"},
	)

	m.upstreamRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_requests_total",
		Help:      "Total number of upstream HTTP requests issued",
	})

	m.upstreamRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_retries_total",
		Help:      "Total number of transport-level retries",
	})

	m.upstreamFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_failures_total",
		Help:      "Total number of fetches that exhausted their retry budget",
	})

	m.upstreamLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_latency_milliseconds",
		Help:      "Histogram of upstream request latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.pagesFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pages_fetched_total",
		Help:      "Total number of collection pages fetched",
	})

	m.indexRebuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "index_rebuild_duration_milliseconds",
		Help:      "Season index rebuild duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.indexRebuildLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "index_rebuild_last_unix",
		Help:      "Unix timestamp of the last season index snapshot swap",
	})

	m.indexRebuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "index_rebuilds_total",
		Help:      "Total number of season index rebuilds completed",
	})

	m.indexRebuildsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "index_rebuilds_skipped_total",
		Help:      "Total number of rebuild triggers skipped because one was running",
	})

	m.indexSeasonCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "index_season_count",
		Help:      "Number of seasons in the current index snapshot",
	})

	m.chunkSplits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chunk_splits_total",
		Help:      "Total number of documents split into more than one chunk",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Package level helpers acting on the global manager.

// RecordCacheHit increments the cache hit counter for a resource kind.
func RecordCacheHit(resource string) {
	globalManager.cacheHits.WithLabelValues(resource).Inc()
}

// RecordCacheMiss increments the cache miss counter for a resource kind.
func RecordCacheMiss(resource string) {
	globalManager.cacheMisses.WithLabelValues(resource).Inc()
}

// RecordUpstreamRequest increments the upstream request counter.
func RecordUpstreamRequest() {
	globalManager.upstreamRequests.Inc()
}

// RecordUpstreamRetry increments the transport retry counter.
func RecordUpstreamRetry() {
	globalManager.upstreamRetries.Inc()
}

// RecordUpstreamFailure increments the retry-exhaustion counter.
func RecordUpstreamFailure() {
	globalManager.upstreamFailures.Inc()
}

// RecordUpstreamLatency records one upstream request latency sample.
func RecordUpstreamLatency(latencyMs float64) {
	globalManager.upstreamLatency.Observe(latencyMs)
}

// RecordPageFetched increments the fetched page counter.
func RecordPageFetched() {
	globalManager.pagesFetched.Inc()
}

// RecordIndexRebuild records a completed index rebuild and its duration.
func RecordIndexRebuild(durationMs float64, seasons int, lastUnix int64) {
	globalManager.indexRebuilds.Inc()
	globalManager.indexRebuildDuration.Observe(durationMs)
	globalManager.indexSeasonCount.Set(float64(seasons))
	globalManager.indexRebuildLastUnix.Set(float64(lastUnix))
}

// RecordIndexRebuildSkipped increments the skipped-rebuild counter.
func RecordIndexRebuildSkipped() {
	globalManager.indexRebuildsSkipped.Inc()
}

// RecordChunkSplit increments the multi-chunk document counter.
func RecordChunkSplit() {
	globalManager.chunkSplits.Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records one HTTP request duration sample.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
