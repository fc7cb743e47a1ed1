// Package metrics defines and registers all custom Prometheus metrics for the
// PDF processing API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register themselves with the default Prometheus registry at package
// load; the router only needs to expose the /metrics handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pdfprocessor"

// FilesProcessedTotal counts files that went through the extraction pipeline.
// Label:
//   - result: "success" or "failure"
var FilesProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_processed_total",
		Help:      "Total number of uploaded files that finished processing.",
	},
	[]string{"result"},
)

// FilesSkippedTotal counts batch entries excluded for a non-PDF content type.
var FilesSkippedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_skipped_total",
		Help:      "Total number of uploaded files skipped for an invalid content type.",
	},
)

// ExtractionDuration measures one file's end-to-end processing time, from
// temp-file write to registry insertion.
var ExtractionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "extraction_duration_seconds",
		Help:      "Duration of per-file processing including the model call.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s .. 128s
	},
)

// RegistryEntries tracks the current number of entries in the transient
// result registry.
var RegistryEntries = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "registry_entries",
		Help:      "Current number of processed files held in the registry.",
	},
)

// FilesSweptTotal counts registry entries removed by expiry sweeps.
var FilesSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_swept_total",
		Help:      "Total number of registry entries removed by expiry sweeps.",
	},
)
