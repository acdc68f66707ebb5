// Package metrics implements the observability hooks with Prometheus
// collectors.
//
// Collectors are registered on a caller-supplied registry rather than the
// global default, so short-lived CLI runs and tests each get a clean set.
// A CLI run can persist its metrics for the node exporter textfile collector
// with [WriteTextfile].
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/KirillBaranov/kb-labs-quality-plugin-sub000/pkg/observability"
)

const namespace = "wsgraph"

// Metrics records pipeline and cache events as Prometheus metrics. It
// implements both [observability.PipelineHooks] and
// [observability.CacheHooks].
type Metrics struct {
	loads         *prometheus.CounterVec
	loadSeconds   *prometheus.HistogramVec
	records       prometheus.Gauge
	diagnostics   prometheus.Gauge
	packages      prometheus.Gauge
	edges         prometheus.Gauge
	buildSeconds  prometheus.Histogram
	queries       *prometheus.CounterVec
	querySeconds  *prometheus.HistogramVec
	cycles        prometheus.Gauge
	cacheRequests *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Record loads by source and outcome.",
		}, []string{"source", "outcome"}),
		loadSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent reading package records.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Package records returned by the last load.",
		}),
		diagnostics: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "diagnostics",
			Help:      "Diagnostics reported by the last load.",
		}),
		packages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_packages",
			Help:      "Packages in the last built graph.",
		}),
		edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Dependency edges in the last built graph.",
		}),
		buildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time spent building graphs.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Graph queries by name and outcome.",
		}, []string{"query", "outcome"}),
		querySeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time spent answering graph queries.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"query"}),
		cycles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycles",
			Help:      "Dependency cycles reported by the last query.",
		}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by query and result.",
		}, []string{"query", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by query.",
		}, []string{"query"}),
	}

	reg.MustRegister(
		m.loads, m.loadSeconds, m.records, m.diagnostics,
		m.packages, m.edges, m.buildSeconds,
		m.queries, m.querySeconds, m.cycles,
		m.cacheRequests, m.cacheBytes,
	)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// =============================================================================
// observability.PipelineHooks
// =============================================================================

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, source string, records, diagnostics int, d time.Duration, err error) {
	m.loads.WithLabelValues(source, outcome(err)).Inc()
	m.loadSeconds.WithLabelValues(source).Observe(d.Seconds())
	if err == nil {
		m.records.Set(float64(records))
		m.diagnostics.Set(float64(diagnostics))
	}
}

func (m *Metrics) OnBuildComplete(_ context.Context, packages, edges int, d time.Duration, err error) {
	m.buildSeconds.Observe(d.Seconds())
	if err == nil {
		m.packages.Set(float64(packages))
		m.edges.Set(float64(edges))
	}
}

func (m *Metrics) OnQueryStart(context.Context, string) {}

func (m *Metrics) OnQueryComplete(_ context.Context, query string, d time.Duration, err error) {
	m.queries.WithLabelValues(query, outcome(err)).Inc()
	m.querySeconds.WithLabelValues(query).Observe(d.Seconds())
}

func (m *Metrics) OnCyclesDetected(_ context.Context, cycles int) {
	m.cycles.Set(float64(cycles))
}

// =============================================================================
// observability.CacheHooks
// =============================================================================

func (m *Metrics) OnCacheHit(_ context.Context, query string) {
	m.cacheRequests.WithLabelValues(query, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, query string) {
	m.cacheRequests.WithLabelValues(query, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, query string, size int) {
	m.cacheBytes.WithLabelValues(query).Add(float64(size))
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, replacing the file atomically.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	return prometheus.WriteToTextfile(path, g)
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
)
