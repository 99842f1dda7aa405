package fileio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolchange-organizer/pkg/errors"
)

func TestScan(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\r\nb\r\n", []string{"a", "b"}},
		{"a\n\nb", []string{"a", "", "b"}},
		{"\n", []string{""}},
	}
	for _, tc := range cases {
		got, err := Scan(strings.NewReader(tc.in))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%q", tc.in)
	}
}

func TestScanLongLine(t *testing.T) {
	long := strings.Repeat("X", 1<<20)
	got, err := Scan(strings.NewReader("; thumbnail\n" + long + "\nG1\n"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, long, got[1])
}

func TestReadLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.gcode")
	require.NoError(t, os.WriteFile(path, []byte("; layer 1\r\nT0\nG1 X1\n"), 0644))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"; layer 1", "T0", "G1 X1"}, lines)
}

func TestReadLinesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadLines(filepath.Join(dir, "missing.gcode"))
	assert.True(t, errors.Is(err, errors.ErrIO))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ReadLines(dir)
	assert.True(t, errors.Is(err, errors.ErrIO))
	assert.Contains(t, err.Error(), "is a directory")
}

func TestWriteLinesOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.gcode.fixed")

	require.NoError(t, WriteLines(path, []string{"a much longer first version", "b", "c"}))
	require.NoError(t, WriteLines(path, []string{"x", "", "y"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n\ny\n", string(data))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "", "y"}, lines)
}

func TestWriteLinesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, WriteLines(path, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestWriteLinesUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "out.gcode")

	err := WriteLines(path, []string{"a"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrIO))
}
