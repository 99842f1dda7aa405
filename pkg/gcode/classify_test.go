package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolchange-organizer/pkg/errors"
)

func TestClassifierKind(t *testing.T) {
	c := NewClassifier(Markers{})

	cases := []struct {
		line string
		want Kind
	}{
		{"; layer end", KindTerminal},
		{"; layer end ", KindLayer},
		{"; layer 2", KindLayer},
		{"; layer", KindLayer},
		{";layer 2", KindContent},
		{"T0", KindToolSelect},
		{"T12", KindToolSelect},
		{"T-1", KindToolSelect},
		{"T+1", KindToolSelect},
		{"T1x", KindToolSelect},
		{"T", KindContent},
		{"TIMELAPSE_TAKE_FRAME", KindContent},
		{"G1 X10 Y10 E0.5", KindContent},
		{"t1", KindContent},
		{"", KindContent},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Kind(tc.line), "%q", tc.line)
	}
}

func TestParseTool(t *testing.T) {
	cases := []struct {
		line string
		want int
		fail bool
	}{
		{line: "T0", want: 0},
		{line: "T3", want: 3},
		{line: "T-1", want: -1},
		{line: "T+2", want: 2},
		{line: "T1 ; purge", want: 1},
		{line: "T2;", want: 2},
		{line: "T1x", fail: true},
		{line: "T-", fail: true},
		{line: "T1.5", fail: true},
	}
	for _, tc := range cases {
		got, err := ParseTool(tc.line, 9)
		if tc.fail {
			require.Error(t, err, tc.line)
			assert.True(t, errors.Is(err, errors.ErrParse), tc.line)
			continue
		}
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}
}

func TestNewClassifierDefaults(t *testing.T) {
	c := NewClassifier(Markers{Terminal: ";END"})
	m := c.Markers()
	assert.Equal(t, ";END", m.Terminal)
	assert.Equal(t, "; layer 1", m.Preamble)
	assert.Equal(t, "T-1", m.Sentinel)
	assert.Equal(t, "; layer", m.Layer)
}

func TestScanRegions(t *testing.T) {
	c := NewClassifier(Markers{})

	reg, err := c.scanRegions([]string{"M104 S200", "; layer 1", "T-1", "G1", "; layer end", "M84"})
	require.NoError(t, err)
	assert.Equal(t, []string{"M104 S200", "; layer 1", "T-1"}, reg.preamble)
	assert.Equal(t, []string{"G1"}, reg.body)
	assert.Equal(t, []string{"; layer end", "M84"}, reg.tail)
	assert.Equal(t, 4, reg.lineNum(0))

	reg, err = c.scanRegions([]string{"; layer 1", "; layer end"})
	require.NoError(t, err)
	assert.Empty(t, reg.body)
	assert.Equal(t, []string{"; layer end"}, reg.tail)

	_, err = c.scanRegions([]string{"G28", "G1"})
	assert.True(t, errors.Is(err, errors.ErrFormat))

	_, err = c.scanRegions(nil)
	assert.True(t, errors.Is(err, errors.ErrFormat))

	_, err = c.scanRegions([]string{"; layer 1"})
	assert.True(t, errors.Is(err, errors.ErrBounds))

	_, err = c.scanRegions([]string{"; layer 1", "T-1"})
	assert.True(t, errors.Is(err, errors.ErrBounds))
}
