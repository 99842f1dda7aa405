package gcode

import (
	"strconv"

	"toolchange-organizer/pkg/errors"
)

// regions splits an input into the three parts both passes agree on. The
// slices alias the input.
type regions struct {
	// preamble runs through the preamble terminator and optional sentinel.
	preamble []string
	// body is the main processing region, terminal marker excluded.
	body []string
	// tail starts at the terminal marker and runs to the end of input.
	tail []string
	// bodyStart is the index of body[0] in the input.
	bodyStart int
}

// lineNum returns the 1-based input line number of body[i].
func (r regions) lineNum(i int) int {
	return r.bodyStart + i + 1
}

func (c *Classifier) scanRegions(lines []string) (regions, error) {
	end := -1
	for i, line := range lines {
		if c.IsPreambleEnd(line) {
			end = i
			break
		}
	}
	if end < 0 {
		return regions{}, errors.FormatError("no line starts with " + strconv.Quote(c.markers.Preamble))
	}

	start := end + 1
	if start < len(lines) && c.IsSentinel(lines[start]) {
		start++
	}

	for i := start; i < len(lines); i++ {
		if c.Kind(lines[i]) == KindTerminal {
			return regions{
				preamble:  lines[:start],
				body:      lines[start:i],
				tail:      lines[i:],
				bodyStart: start,
			}, nil
		}
	}
	return regions{}, errors.BoundsError(c.markers.Terminal, len(lines))
}
