package gcode

import (
	"toolchange-organizer/pkg/log"
)

// Collapser drops tool selects that repeat the previously emitted one.
type Collapser struct {
	classifier *Classifier
	logger     *log.Logger
}

// NewCollapser creates a collapser. Only Markers and Logger are used.
func NewCollapser(opts Options) *Collapser {
	return &Collapser{
		classifier: NewClassifier(opts.Markers),
		logger:     opts.logger("dedup"),
	}
}

// Collapse returns a copy of lines without redundant tool selects in the main
// region, and the number of lines removed. The last emitted select is tracked
// by text across layer markers.
func (c *Collapser) Collapse(lines []string) ([]string, int, error) {
	c.logger.Debug("Pruning %d lines", len(lines))

	reg, err := c.classifier.scanRegions(lines)
	if err != nil {
		return nil, 0, err
	}

	out := make([]string, 0, len(lines))
	out = append(out, reg.preamble...)

	last := ""
	removed := 0
	for i, line := range reg.body {
		if c.classifier.Kind(line) == KindToolSelect {
			if _, err := ParseTool(line, reg.lineNum(i)); err != nil {
				return nil, 0, err
			}
			if line == last {
				removed++
				continue
			}
			last = line
		}
		out = append(out, line)
	}
	out = append(out, reg.tail...)

	c.logger.WithField("removed", removed).Info("Duplicate tool changes pruned")
	return out, removed, nil
}
