// Package prometheus exposes the service's operational metrics. A single
// Collector instance is constructed at startup and injected into the
// application services; handlers expose it on /metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and owns every metric emitted by LeaseLens.
type Collector struct {
	registry *prometheus.Registry

	// Detection pipeline.
	ViolationsDetected *prometheus.CounterVec // method: regex|vector; severity
	ClausesProcessed   *prometheus.CounterVec // status: ok|skipped
	AnalysisDuration   prometheus.Histogram

	// Semantic cache.
	CacheRequests *prometheus.CounterVec // tier: l1|l2|similarity; result: hit|miss|error

	// Enhanced search.
	SearchRequests *prometheus.CounterVec // result: cached|computed|empty|error
	SearchVariants prometheus.Histogram
	SearchDuration prometheus.Histogram

	// LLM.
	LLMRequests *prometheus.CounterVec // status: ok|error
	LLMDuration prometheus.Histogram
}

// NewCollector creates a Collector with its own registry so multiple
// instances can coexist in one process (test isolation).
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		ViolationsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaselens",
			Name:      "violations_detected_total",
			Help:      "Violations detected, partitioned by detection method and severity.",
		}, []string{"method", "severity"}),
		ClausesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaselens",
			Name:      "clauses_processed_total",
			Help:      "Clauses handled by the processing pipeline, by outcome.",
		}, []string{"status"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leaselens",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of full document analyses.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaselens",
			Name:      "cache_requests_total",
			Help:      "Semantic cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		SearchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaselens",
			Name:      "search_requests_total",
			Help:      "Enhanced search requests by outcome.",
		}, []string{"result"}),
		SearchVariants: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leaselens",
			Name:      "search_variants",
			Help:      "Expansion variants issued per search request.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leaselens",
			Name:      "search_duration_seconds",
			Help:      "Wall time of enhanced search requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		LLMRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leaselens",
			Name:      "llm_requests_total",
			Help:      "LLM completion calls by status.",
		}, []string{"status"}),
		LLMDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leaselens",
			Name:      "llm_duration_seconds",
			Help:      "Wall time of LLM completion calls.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}

	reg.MustRegister(
		c.ViolationsDetected,
		c.ClausesProcessed,
		c.AnalysisDuration,
		c.CacheRequests,
		c.SearchRequests,
		c.SearchVariants,
		c.SearchDuration,
		c.LLMRequests,
		c.LLMDuration,
	)
	return c
}

// Handler returns the HTTP handler serving this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for test assertions.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
