// Package organizer runs the tool change organizing pipeline over one file:
// read, reorder, deduplicate, write.
package organizer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"toolchange-organizer/pkg/config"
	"toolchange-organizer/pkg/errors"
	"toolchange-organizer/pkg/fileio"
	"toolchange-organizer/pkg/gcode"
	"toolchange-organizer/pkg/log"
	"toolchange-organizer/pkg/metrics"
)

// Options configures an Organizer.
type Options struct {
	Config *config.Config
	Logger *log.Logger

	// OutputPath overrides input path + Config.Suffix.
	OutputPath string
	// DryRun runs every stage except write.
	DryRun bool
}

// Result describes a completed run.
type Result struct {
	RunID      string
	InputPath  string
	OutputPath string
	InputLines int
	// OutputLines is the length of the final sequence, written or not.
	OutputLines       int
	Report            *gcode.Report
	DuplicatesRemoved int
	Metrics           *metrics.RunMetrics
}

// Organizer wires the line source, both passes and the line sink.
type Organizer struct {
	cfg       *config.Config
	logger    *log.Logger
	output    string
	dryRun    bool
	reorderer *gcode.Reorderer
	collapser *gcode.Collapser
}

// New creates an Organizer. A nil Config means config.Default().
func New(opts Options) *Organizer {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	gopts := gcode.Options{
		Extruders: cfg.Extruders,
		Markers:   cfg.Markers,
		Logger:    logger,
	}
	return &Organizer{
		cfg:       cfg,
		logger:    logger,
		output:    opts.OutputPath,
		dryRun:    opts.DryRun,
		reorderer: gcode.NewReorderer(gopts),
		collapser: gcode.NewCollapser(gopts),
	}
}

// OutputPath returns where the result for input will be written.
func (o *Organizer) OutputPath(input string) string {
	if o.output != "" {
		return o.output
	}
	return input + o.cfg.Suffix
}

// Run organizes the file at input. Every error is an *errors.Error tagged
// with the failed stage. ctx is checked between stages.
func (o *Organizer) Run(ctx context.Context, input string) (*Result, error) {
	res := &Result{
		RunID:      uuid.NewString(),
		InputPath:  input,
		OutputPath: o.OutputPath(input),
		Metrics:    metrics.NewRunMetrics(),
	}
	logger := o.logger.With(log.Fields{"run": res.RunID})
	m := res.Metrics
	run := metrics.Labels{"file": input}

	logger.Info("Reordering %s", input)

	if res.OutputPath == input {
		return res, errors.ConfigError("output path equals input path").
			SetPath(input).SetStage(errors.StageWrite)
	}

	step := func(stage errors.Stage, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCanceled, "run canceled").SetStage(stage)
		}
		done := m.TimeStage(run, string(stage))
		err := fn()
		done()
		if err != nil {
			err = errors.WithStage(err, stage)
			logger.WithError(err).WithField("stage", string(stage)).Error("stage failed")
		}
		return err
	}

	var lines, ordered, final []string

	if err := step(errors.StageRead, func() (err error) {
		lines, err = fileio.ReadLines(input)
		return err
	}); err != nil {
		return res, err
	}
	res.InputLines = len(lines)
	m.LinesTotal.Add(run.With("direction", "in"), uint64(len(lines)))

	if err := step(errors.StageReorder, func() (err error) {
		ordered, res.Report, err = o.reorderer.Reorder(lines)
		return err
	}); err != nil {
		return res, err
	}
	m.LayersTotal.Add(run, uint64(len(res.Report.Layers)))
	m.SourceChanges.Add(run, uint64(res.Report.SourceChanges))
	for _, lr := range res.Report.Layers {
		m.LayerChanges.Observe(run, float64(lr.SourceChanges))
	}

	if err := step(errors.StageDeduplicate, func() (err error) {
		final, res.DuplicatesRemoved, err = o.collapser.Collapse(ordered)
		return err
	}); err != nil {
		return res, err
	}
	res.OutputLines = len(final)
	m.DuplicatesRemoved.Add(run, uint64(res.DuplicatesRemoved))
	m.EmittedChanges.Add(run, uint64(res.Report.EmittedChanges-res.DuplicatesRemoved))

	if o.dryRun {
		logger.WithField("output", res.OutputPath).Info("Dry run, not writing")
		return res, nil
	}

	if err := step(errors.StageWrite, func() error {
		return fileio.WriteLines(res.OutputPath, final)
	}); err != nil {
		return res, err
	}
	m.LinesTotal.Add(run.With("direction", "out"), uint64(len(final)))
	m.MarkSuccess(run, time.Now())

	logger.WithFields(log.Fields{
		"layers":  len(res.Report.Layers),
		"changes": res.Report.SourceChanges,
		"emitted": res.Report.EmittedChanges - res.DuplicatesRemoved,
	}).Info("Successfully reordered " + res.OutputPath)
	return res, nil
}
