// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

// Package metrics wires github.com/prometheus/client_golang into the
// parse pipeline and analyzer dispatcher. Each Metrics value owns a
// private *prometheus.Registry rather than registering on the global
// default registry, since a library core (as opposed to a long-lived
// server process) shouldn't mutate global Prometheus state just by
// being imported — callers that want a process-wide /metrics endpoint
// pass Registry() to their own HTTP handler.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Metrics holds the counters and histograms exercised by the parse
// pipeline and the analyzer dispatcher.
type Metrics struct {
	registry *prometheus.Registry

	filesParsed    prometheus.Counter
	filesFailed    prometheus.Counter
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	findingsByKind *prometheus.CounterVec

	parseDuration    prometheus.Histogram
	resolveDuration  prometheus.Histogram
	analyzerDuration *prometheus.HistogramVec
}

var (
	once     sync.Once
	instance *Metrics
)

// New builds a fresh Metrics value registered on its own private
// registry, suitable for one pipeline run (or one long-lived process
// that wants a single set of counters — see Default()).
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		filesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revet_files_parsed_total", Help: "Source files successfully parsed into fragments.",
		}),
		filesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revet_files_failed_total", Help: "Source files that failed to parse.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revet_cache_hits_total", Help: "Fragment cache lookups satisfied without reparsing.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revet_cache_misses_total", Help: "Fragment cache lookups that required a fresh parse.",
		}),
		findingsByKind: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "revet_findings_total", Help: "Findings emitted, by analyzer prefix and severity.",
		}, []string{"prefix", "severity"}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "revet_parse_duration_seconds", Help: "Wall time to parse one file.", Buckets: durationBuckets,
		}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "revet_resolve_duration_seconds", Help: "Wall time for cross-file resolution.", Buckets: durationBuckets,
		}),
		analyzerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "revet_analyzer_duration_seconds", Help: "Wall time per analyzer invocation.", Buckets: durationBuckets,
		}, []string{"analyzer"}),
	}

	m.registry.MustRegister(
		m.filesParsed, m.filesFailed, m.cacheHits, m.cacheMisses, m.findingsByKind,
		m.parseDuration, m.resolveDuration, m.analyzerDuration,
	)
	return m
}

// Default returns a process-wide singleton Metrics, created on first
// use. cmd/revet uses this so every subcommand in one process shares
// one set of counters.
func Default() *Metrics {
	once.Do(func() { instance = New() })
	return instance
}

// Registry exposes the private registry for an HTTP /metrics handler
// (promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordFileParsed increments the parsed-files counter and observes
// the parse duration.
func (m *Metrics) RecordFileParsed(d time.Duration) {
	m.filesParsed.Inc()
	m.parseDuration.Observe(d.Seconds())
}

// RecordFileFailed increments the failed-to-parse counter.
func (m *Metrics) RecordFileFailed() { m.filesFailed.Inc() }

// RecordCacheHit increments the fragment-cache hit counter.
func (m *Metrics) RecordCacheHit() { m.cacheHits.Inc() }

// RecordCacheMiss increments the fragment-cache miss counter.
func (m *Metrics) RecordCacheMiss() { m.cacheMisses.Inc() }

// RecordResolveDuration observes the cross-file resolution wall time
// for one run.
func (m *Metrics) RecordResolveDuration(d time.Duration) {
	m.resolveDuration.Observe(d.Seconds())
}

// RecordAnalyzer observes one analyzer invocation's wall time and
// increments a per-prefix/severity finding counter for each finding
// it emitted.
func (m *Metrics) RecordAnalyzer(name string, d time.Duration, prefixCounts map[string]map[string]int) {
	m.analyzerDuration.WithLabelValues(name).Observe(d.Seconds())
	for prefix, bySeverity := range prefixCounts {
		for severity, n := range bySeverity {
			m.findingsByKind.WithLabelValues(prefix, severity).Add(float64(n))
		}
	}
}
