// Package metrics records pipeline measurements in a Prometheus registry.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once     sync.Once
	registry = prometheus.NewRegistry()

	subQueryLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filings_subquery_latency_ms",
		Help:    "Latency of index sub-queries in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1500, 3000, 6000, 10000},
	}, []string{"kind", "outcome"})

	evidenceSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "filings_evidence_items",
		Help:    "Number of evidence items returned per question",
		Buckets: []float64{0, 1, 2, 4, 6, 10, 15, 20, 30},
	}, []string{"status"})

	evidenceConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "filings_evidence_confidence",
		Help:    "Aggregate evidence confidence distribution",
		Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})

	classifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "filings_classifications_total",
		Help: "Classifications by category and whether the fallback was used",
	}, []string{"category", "fallback"})

	ingestedChunks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "filings_ingested_chunks_total",
		Help: "Chunks written to the index by outcome",
	}, []string{"outcome"})
)

func ensureRegistered() {
	once.Do(func() {
		registry.MustRegister(
			subQueryLatency, evidenceSize, evidenceConfidence, classifications, ingestedChunks,
			collectors.NewGoCollector(),
		)
	})
}

// ObserveSubQuery records the latency of one index sub-query.
func ObserveSubQuery(kind string, start time.Time, ok bool) {
	ensureRegistered()
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	subQueryLatency.WithLabelValues(kind, outcome).Observe(float64(time.Since(start).Milliseconds()))
}

// ObserveEvidence records the size and confidence of a merged evidence set.
func ObserveEvidence(status string, items int, confidence float64) {
	ensureRegistered()
	evidenceSize.WithLabelValues(status).Observe(float64(items))
	evidenceConfidence.Observe(confidence)
}

// IncClassification counts one classification.
func IncClassification(category string, fallback bool) {
	ensureRegistered()
	fb := "false"
	if fallback {
		fb = "true"
	}
	classifications.WithLabelValues(category, fb).Inc()
}

// AddIngested counts chunks written to, or rejected by, the index.
func AddIngested(upserted, failed int) {
	ensureRegistered()
	ingestedChunks.WithLabelValues("upserted").Add(float64(upserted))
	ingestedChunks.WithLabelValues("failed").Add(float64(failed))
}

// Registry exposes the registry for tests and custom exporters.
func Registry() *prometheus.Registry {
	ensureRegistered()
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	ensureRegistered()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
