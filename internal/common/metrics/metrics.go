// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_catalog_fetches_total",
			Help: "Total number of catalog fetches by category and result",
		},
		[]string{"category", "result"},
	)

	CatalogFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_catalog_fetch_duration_seconds",
			Help:    "Catalog fetch duration by category",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"category"},
	)

	StaleResultsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_stale_results_discarded_total",
			Help: "Cascade fetch results discarded because the upstream selection changed",
		},
		[]string{"category"},
	)

	LookupMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_lookup_misses_total",
			Help: "Label lookups that could not be resolved to an identifier",
		},
		[]string{"category"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total number of submissions by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "intake_submission_duration_seconds",
			Help:    "End-to-end submission duration including validation",
			Buckets: prometheus.DefBuckets,
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_sessions_active",
			Help: "Number of form sessions currently open",
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_catalog_cache_hits_total",
			Help: "Catalog cache lookups by outcome (hit or miss)",
		},
		[]string{"outcome"},
	)
)
