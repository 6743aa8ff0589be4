// Package metrics records pipeline counters in a private Prometheus registry
// and exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lyricsync"

// Recorder holds the pipeline metrics. A nil Recorder discards everything.
type Recorder struct {
	registry      *prometheus.Registry
	alignments    *prometheus.CounterVec
	references    *prometheus.CounterVec
	jobs          *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

// New builds a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		// Labels:
		//   - result: "aligned", "low_confidence", "empty_reference", ...
		alignments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alignment_total",
				Help:      "Alignment attempts by outcome",
			},
			[]string{"result"},
		),
		// Labels:
		//   - source: provider name, "cache", "file", or "none"
		references: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reference_total",
				Help:      "Reference text lookups by source",
			},
			[]string{"source"},
		),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "jobs_total",
				Help:      "Completed job runs by status",
			},
			[]string{"status"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of job stages in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"stage"},
		),
	}
	r.registry.MustRegister(r.alignments, r.references, r.jobs, r.stageDuration)
	return r
}

// RecordAlignment counts one alignment attempt.
func (r *Recorder) RecordAlignment(result string) {
	if r == nil {
		return
	}
	r.alignments.WithLabelValues(labelOrUnknown(result)).Inc()
}

// RecordReference counts where reference text came from.
func (r *Recorder) RecordReference(source string) {
	if r == nil {
		return
	}
	r.references.WithLabelValues(labelOrUnknown(source)).Inc()
}

// RecordJob counts a finished job run.
func (r *Recorder) RecordJob(status string) {
	if r == nil {
		return
	}
	r.jobs.WithLabelValues(labelOrUnknown(status)).Inc()
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, seconds float64) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(labelOrUnknown(stage)).Observe(seconds)
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes all metrics to path atomically. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func labelOrUnknown(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
