// Line classification shared by the reorder and collapse passes
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"strconv"
	"strings"

	"toolchange-organizer/pkg/errors"
)

// DefaultExtruders is the extruder count of the reference machine.
const DefaultExtruders = 4

// Markers holds the literal texts that delimit the regions of a sliced file.
type Markers struct {
	// Preamble ends at the first line with this prefix.
	Preamble string `yaml:"preamble"`
	// Sentinel is copied with the preamble when it immediately follows it.
	Sentinel string `yaml:"sentinel"`
	// Layer starts a new layer (prefix match).
	Layer string `yaml:"layer"`
	// Terminal ends the processed region (exact match).
	Terminal string `yaml:"terminal"`
}

// DefaultMarkers returns the markers written by the slicer.
func DefaultMarkers() Markers {
	return Markers{
		Preamble: "; layer 1",
		Sentinel: "T-1",
		Layer:    "; layer",
		Terminal: "; layer end",
	}
}

// Kind is the classification of a main-region line.
type Kind int

const (
	KindContent Kind = iota
	KindLayer
	KindToolSelect
	KindTerminal
)

func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindLayer:
		return "layer"
	case KindToolSelect:
		return "tool"
	case KindTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Classifier classifies lines against a marker set.
type Classifier struct {
	markers Markers
}

// NewClassifier creates a classifier; empty marker fields take the defaults.
func NewClassifier(m Markers) *Classifier {
	def := DefaultMarkers()
	if m.Preamble == "" {
		m.Preamble = def.Preamble
	}
	if m.Sentinel == "" {
		m.Sentinel = def.Sentinel
	}
	if m.Layer == "" {
		m.Layer = def.Layer
	}
	if m.Terminal == "" {
		m.Terminal = def.Terminal
	}
	return &Classifier{markers: m}
}

// Markers returns the effective markers.
func (c *Classifier) Markers() Markers {
	return c.markers
}

// IsPreambleEnd reports whether line terminates the preamble.
func (c *Classifier) IsPreambleEnd(line string) bool {
	return strings.HasPrefix(line, c.markers.Preamble)
}

// IsSentinel reports whether line is the "no tool yet" sentinel.
func (c *Classifier) IsSentinel(line string) bool {
	return line == c.markers.Sentinel
}

// Kind classifies a main-region line. Terminal is checked before Layer since
// the terminal marker also carries the layer prefix.
func (c *Classifier) Kind(line string) Kind {
	switch {
	case line == c.markers.Terminal:
		return KindTerminal
	case strings.HasPrefix(line, c.markers.Layer):
		return KindLayer
	case isToolSelect(line):
		return KindToolSelect
	default:
		return KindContent
	}
}

// isToolSelect matches 'T' followed by a digit or sign. Other T-words such as
// TIMELAPSE_TAKE_FRAME are content.
func isToolSelect(line string) bool {
	if len(line) < 2 || line[0] != 'T' {
		return false
	}
	ch := line[1]
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+'
}

// ParseTool returns the tool number of a tool select line. An inline ';'
// comment and surrounding blanks are ignored. lineNum is only used for the
// error.
func ParseTool(line string, lineNum int) (int, error) {
	s := line[1:]
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	tool, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.ParseError(line, lineNum, err)
	}
	return tool, nil
}

// ToolSelect returns the canonical tool select line for tool.
func ToolSelect(tool int) string {
	return "T" + strconv.Itoa(tool)
}
