// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	providerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "library_enricher",
		Name:      "provider_requests_total",
		Help:      "Total number of metadata provider searches by source and result",
	}, []string{"source", "result"})
	providerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "library_enricher",
		Name:      "provider_request_duration_seconds",
		Help:      "Histogram of metadata provider search durations in seconds by source",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10),
	}, []string{"source"})

	recordsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "library_enricher",
		Name:      "enrichment_records_total",
		Help:      "Total number of library entries processed by outcome",
	}, []string{"outcome"})
	runsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "library_enricher",
		Name:      "enrichment_runs_total",
		Help:      "Total number of enrichment runs by final status",
	}, []string{"status"})
	runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "library_enricher",
		Name:      "enrichment_run_duration_seconds",
		Help:      "Histogram of enrichment run durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s up to ~1h
	})
	entriesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "library_enricher",
		Name:      "entries_total",
		Help:      "Current total number of entries in the library store",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(providerRequests, providerDuration, recordsProcessed,
			runsFinished, runDuration, entriesGauge)
	})
}

// Provider helpers
func IncProviderSuccess(source string) { providerRequests.WithLabelValues(source, "success").Inc() }
func IncProviderFailure(source string) { providerRequests.WithLabelValues(source, "failure").Inc() }
func ObserveProviderDuration(source string, d time.Duration) {
	providerDuration.WithLabelValues(source).Observe(d.Seconds())
}

// Enrichment helpers
func IncRecord(outcome string) { recordsProcessed.WithLabelValues(outcome).Inc() }
func IncRun(status string)     { runsFinished.WithLabelValues(status).Inc() }
func ObserveRunDuration(d time.Duration) {
	runDuration.Observe(d.Seconds())
}

// Gauges
func SetEntries(n int) { entriesGauge.Set(float64(n)) }
