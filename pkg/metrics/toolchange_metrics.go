// Tool change metrics for one organizer run
//
// Copyright (C) 2026 Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import "time"

// RunMetrics holds the metrics recorded while organizing one file
type RunMetrics struct {
	Registry *Registry

	LinesTotal         *Counter
	LayersTotal        *Counter
	SourceChanges      *Counter
	EmittedChanges     *Counter
	DuplicatesRemoved  *Counter
	LayerChanges       *Histogram
	StageSeconds       *Gauge
	LastSuccessSeconds *Gauge
}

// NewRunMetrics creates and registers the organizer metrics
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		Registry: NewRegistry(),

		LinesTotal: NewCounter("toolchange_lines_total",
			"Lines read or written, by direction"),
		LayersTotal: NewCounter("toolchange_layers_total",
			"Layers flushed by the reorder pass"),
		SourceChanges: NewCounter("toolchange_source_changes_total",
			"Tool select lines found in the input body"),
		EmittedChanges: NewCounter("toolchange_emitted_changes_total",
			"Tool select lines in the final output body"),
		DuplicatesRemoved: NewCounter("toolchange_duplicates_removed_total",
			"Redundant tool selects removed by the dedup pass"),
		LayerChanges: NewHistogram("toolchange_layer_source_changes",
			"Tool selects per layer in the input",
			[]float64{0, 1, 2, 4, 8, 16, 32, 64}),
		StageSeconds: NewGauge("toolchange_stage_duration_seconds",
			"Wall time spent in each pipeline stage"),
		LastSuccessSeconds: NewGauge("toolchange_last_success_timestamp_seconds",
			"Unix time of the last successful run"),
	}

	m.Registry.MustRegister(m.LinesTotal)
	m.Registry.MustRegister(m.LayersTotal)
	m.Registry.MustRegister(m.SourceChanges)
	m.Registry.MustRegister(m.EmittedChanges)
	m.Registry.MustRegister(m.DuplicatesRemoved)
	m.Registry.MustRegister(m.LayerChanges)
	m.Registry.MustRegister(m.StageSeconds)
	m.Registry.MustRegister(m.LastSuccessSeconds)
	return m
}

// TimeStage returns a func that records the elapsed time of stage
func (m *RunMetrics) TimeStage(labels Labels, stage string) func() {
	start := time.Now()
	return func() {
		m.StageSeconds.Set(labels.With("stage", stage), time.Since(start).Seconds())
	}
}

// MarkSuccess records the completion time of a run
func (m *RunMetrics) MarkSuccess(labels Labels, at time.Time) {
	m.LastSuccessSeconds.Set(labels, float64(at.Unix()))
}
