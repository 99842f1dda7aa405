//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package fileio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLinesWaitsForLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.gcode")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	holder, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer holder.Close()
	require.NoError(t, lockFile(holder))

	done := make(chan error, 1)
	go func() { done <- WriteLines(path, []string{"new"}) }()

	select {
	case err := <-done:
		t.Fatalf("write finished while lock was held: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))

	require.NoError(t, unlockFile(holder))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("write did not finish after unlock")
	}

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))
}
