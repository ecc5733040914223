// Package metrics holds Prometheus instruments used across trailhead.  All
// collectors are registered with the default registry.  The CLI serves no
// HTTP, so Flush writes the registry to a node_exporter textfile after
// each command instead.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CodesTotal counts bracket codes by token and outcome
	// (resolved, unresolved, fallback).
	CodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailhead_bracket_codes_total",
			Help: "Bracket codes processed, by token and outcome.",
		}, []string{"token", "outcome"})

	PagesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailhead_pages_written_total",
			Help: "Output artifacts written, by artifact kind.",
		}, []string{"kind"})

	GenerationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailhead_generation_runs_total",
			Help: "Completed generation runs, by mode.",
		}, []string{"mode"})

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trailhead_generation_duration_seconds",
			Help:    "Wall time of completed generation runs.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		})

	ChangedContent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trailhead_changed_content",
			Help: "Size of the changed-content set of the last run.",
		})

	BrokenReferences = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trailhead_broken_references",
			Help: "Broken bracket-code references found by the last validation.",
		})
)

func init() {
	prometheus.MustRegister(
		CodesTotal,
		PagesWritten,
		GenerationRuns,
		GenerationDuration,
		ChangedContent,
		BrokenReferences,
	)
}

// Flush writes every registered metric to path in the text exposition
// format.  An empty path is a no-op.
func Flush(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
