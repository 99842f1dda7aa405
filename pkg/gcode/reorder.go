// Layer reordering: group each layer's moves by tool
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"toolchange-organizer/pkg/errors"
	"toolchange-organizer/pkg/log"
	"toolchange-organizer/pkg/pool"
)

// Direction is the order in which tool buffers are flushed.
type Direction int

const (
	// Forward flushes tools in ascending order.
	Forward Direction = iota
	// Reverse flushes tools in descending order.
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

func (d Direction) flip() Direction {
	if d == Forward {
		return Reverse
	}
	return Forward
}

// LayerReport describes one flushed layer.
type LayerReport struct {
	Layer         int
	SourceChanges int
	Direction     Direction
	Tools         []int
	ContentLines  int
}

// Report summarizes a reorder pass.
type Report struct {
	Layers []LayerReport
	// SourceChanges counts tool select lines consumed from the body.
	SourceChanges int
	// EmittedChanges counts synthesized tool select lines.
	EmittedChanges int
	ContentLines   int
}

// Options configures a Reorderer or Collapser.
type Options struct {
	Extruders int
	Markers   Markers
	Logger    *log.Logger
}

func (o Options) logger(prefix string) *log.Logger {
	if o.Logger == nil {
		return log.Discard()
	}
	return o.Logger.WithPrefix(prefix)
}

// toolBuffers holds one layer's content lines per tool. Call release when
// done.
type toolBuffers struct {
	*pool.Buckets
}

func newToolBuffers(extruders int) *toolBuffers {
	return &toolBuffers{pool.GetBuckets(extruders)}
}

func (b *toolBuffers) release() {
	pool.PutBuckets(b.Buckets)
	b.Buckets = nil
}

func (b *toolBuffers) add(tool int, line string, lineNum int) error {
	if tool < 0 || tool >= len(b.Lines) {
		return errors.ToolRangeError(tool, len(b.Lines), lineNum)
	}
	b.Lines[tool] = append(b.Lines[tool], line)
	return nil
}

// flush appends every non-empty bucket to out, each headed by its tool
// select, then empties the buckets. It returns the tools emitted in order.
func (b *toolBuffers) flush(out []string, dir Direction) ([]string, []int) {
	var tools []int
	n := len(b.Lines)
	for i := 0; i < n; i++ {
		tool := i
		if dir == Reverse {
			tool = n - 1 - i
		}
		if len(b.Lines[tool]) == 0 {
			continue
		}
		out = append(out, ToolSelect(tool))
		out = append(out, b.Lines[tool]...)
		b.Reset(tool)
		tools = append(tools, tool)
	}
	return out, tools
}

// Reorderer rewrites each layer so that every tool's moves are contiguous.
type Reorderer struct {
	classifier *Classifier
	extruders  int
	logger     *log.Logger
}

// NewReorderer creates a reorderer. A zero extruder count means DefaultExtruders.
func NewReorderer(opts Options) *Reorderer {
	if opts.Extruders <= 0 {
		opts.Extruders = DefaultExtruders
	}
	return &Reorderer{
		classifier: NewClassifier(opts.Markers),
		extruders:  opts.Extruders,
		logger:     opts.logger("reorder"),
	}
}

// Reorder returns a new line sequence in which each layer's content is grouped
// per tool. Layers are flushed when the next layer marker or the terminal
// marker is reached; the flush direction alternates starting with Forward.
// The preamble and everything from the terminal marker on are copied as is.
func (r *Reorderer) Reorder(lines []string) ([]string, *Report, error) {
	r.logger.Debug("Parsing %d lines", len(lines))

	reg, err := r.classifier.scanRegions(lines)
	if err != nil {
		return nil, nil, err
	}

	var (
		out     = make([]string, 0, len(lines)+r.extruders)
		bufs    = newToolBuffers(r.extruders)
		report  = &Report{}
		dir     = Forward
		layer   = 1
		tool    = 0
		changes = 0
	)
	defer bufs.release()
	out = append(out, reg.preamble...)

	flushLayer := func() {
		var tools []int
		before := len(out)
		out, tools = bufs.flush(out, dir)
		lr := LayerReport{
			Layer:         layer,
			SourceChanges: changes,
			Direction:     dir,
			Tools:         tools,
			ContentLines:  len(out) - before - len(tools),
		}
		report.Layers = append(report.Layers, lr)
		report.EmittedChanges += len(tools)
		r.logger.WithFields(log.Fields{
			"layer":     lr.Layer,
			"changes":   lr.SourceChanges,
			"direction": lr.Direction.String(),
			"tools":     lr.Tools,
		}).Debug("layer flushed")
	}

	for i, line := range reg.body {
		switch r.classifier.Kind(line) {
		case KindLayer:
			flushLayer()
			out = append(out, line)
			dir = dir.flip()
			layer++
			changes = 0
		case KindToolSelect:
			t, err := ParseTool(line, reg.lineNum(i))
			if err != nil {
				return nil, nil, err
			}
			tool = t
			changes++
			report.SourceChanges++
		default:
			if err := bufs.add(tool, line, reg.lineNum(i)); err != nil {
				return nil, nil, err
			}
			report.ContentLines++
		}
	}
	flushLayer()

	out = append(out, reg.tail...)

	r.logger.WithFields(log.Fields{
		"layers":  len(report.Layers),
		"source":  report.SourceChanges,
		"emitted": report.EmittedChanges,
	}).Info("Total changes")
	return out, report, nil
}
