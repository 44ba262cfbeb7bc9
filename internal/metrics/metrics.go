// Package metrics holds the funnel's domain counters. Kept separate
// from the HTTP middleware so integration clients and use cases can
// record events without importing the transport layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "funnel_scans_started_total",
			Help: "Total number of scan attempts started",
		},
	)

	syntheticAnalyses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "funnel_synthetic_analyses_total",
			Help: "Total number of analyses answered by the synthetic fallback",
		},
	)

	leadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "funnel_leads_created_total",
			Help: "Total number of persisted leads",
		},
	)

	duplicateSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_duplicate_submissions_total",
			Help: "Total number of submissions rejected as duplicates",
		},
		[]string{"field"},
	)

	uploadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "funnel_portrait_upload_failures_total",
			Help: "Total number of best-effort portrait uploads that failed",
		},
	)
)

func RecordScanStarted() {
	scansStarted.Inc()
}

func RecordSyntheticAnalysis() {
	syntheticAnalyses.Inc()
}

func RecordLeadCreated() {
	leadsCreated.Inc()
}

func RecordDuplicateSubmission(field string) {
	duplicateSubmissions.WithLabelValues(field).Inc()
}

func RecordUploadFailure() {
	uploadFailures.Inc()
}
