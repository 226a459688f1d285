package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docwatch_scan_seconds",
		Help:    "Time spent scanning a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docwatch_files_scanned_total",
		Help: "Total number of files successfully scanned.",
	})

	FilesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docwatch_files_skipped_total",
		Help: "Total number of files skipped due to read or parse failures.",
	})

	DebtIssuesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "docwatch_debt_issues_total",
		Help: "Number of documentation debt issues found by the last audit.",
	})

	DriftReportsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "docwatch_drift_reports_total",
		Help: "Number of drift reports produced by the last audit.",
	})

	AuditDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docwatch_audit_seconds",
		Help:    "Wall time for a full audit run.",
		Buckets: prometheus.DefBuckets,
	})

	AssistantCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docwatch_assistant_calls_total",
		Help: "Total number of assistant subprocess invocations by outcome.",
	}, []string{"outcome"})

	AssistantCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docwatch_assistant_cache_hits_total",
		Help: "Total number of assistant responses served from the session cache.",
	})
)
