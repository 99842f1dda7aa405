// Unit tests for Prometheus metrics implementation
//
// Copyright (C) 2026 Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	c := NewCounter("lines_total", "Lines")

	assert.Zero(t, c.Get(nil))
	c.Inc(nil)
	c.Add(nil, 10)
	assert.EqualValues(t, 11, c.Get(nil))

	in := Labels{"direction": "in"}
	c.Add(in, 3)
	assert.EqualValues(t, 3, c.Get(Labels{"direction": "in"}))
	assert.Zero(t, c.Get(Labels{"direction": "out"}))
}

func TestCounterConcurrency(t *testing.T) {
	c := NewCounter("concurrent", "Concurrent increments")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc(Labels{"k": "v"})
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 5000, c.Get(Labels{"k": "v"}))
}

func TestGauge(t *testing.T) {
	g := NewGauge("stage_seconds", "Stage time")
	g.Set(nil, 1.5)
	g.Add(nil, -0.5)
	assert.Equal(t, 1.0, g.Get(nil))
	assert.Zero(t, g.Get(Labels{"stage": "none"}))
}

func TestHistogram(t *testing.T) {
	h := NewHistogram("changes", "Changes per layer", []float64{4, 1, 2})
	for _, v := range []float64{0, 1, 3, 9} {
		h.Observe(nil, v)
	}

	snap := h.Snapshot(nil)
	assert.EqualValues(t, 4, snap.Count)
	assert.Equal(t, 13.0, snap.Sum)
	assert.EqualValues(t, 2, snap.Buckets[1])
	assert.EqualValues(t, 2, snap.Buckets[2])
	assert.EqualValues(t, 3, snap.Buckets[4])

	empty := h.Snapshot(Labels{"x": "y"})
	assert.Zero(t, empty.Count)
}

func TestLinearBuckets(t *testing.T) {
	assert.Equal(t, []float64{1, 3, 5}, LinearBuckets(1, 2, 3))
}

func TestRegistryGather(t *testing.T) {
	r := NewRegistry()
	c := NewCounter("b_total", "B")
	g := NewGauge("a_value", "A")
	h := NewHistogram("h", "H", []float64{1})
	r.MustRegister(c)
	r.MustRegister(g)
	r.MustRegister(h)
	assert.Error(t, r.Register(NewCounter("b_total", "dup")))
	assert.Same(t, c, r.Get("b_total"))

	c.Add(Labels{"file": "a\"b"}, 2)
	c.Add(Labels{"file": "A"}, 1)
	g.Set(nil, 0.25)
	h.Observe(Labels{"run": "x"}, 0.5)

	want := strings.Join([]string{
		"# HELP b_total B",
		"# TYPE b_total counter",
		`b_total{file="A"} 1`,
		`b_total{file="a\"b"} 2`,
		"# HELP a_value A",
		"# TYPE a_value gauge",
		"a_value 0.25",
		"# HELP h H",
		"# TYPE h histogram",
		`h_bucket{le="1",run="x"} 1`,
		`h_bucket{le="+Inf",run="x"} 1`,
		`h_sum{run="x"} 0.5`,
		`h_count{run="x"} 1`,
		"",
	}, "\n")
	assert.Equal(t, want, r.Gather())
}

func TestRegistryWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toolchange.prom")

	m := NewRunMetrics()
	m.LayersTotal.Add(nil, 7)
	m.MarkSuccess(nil, time.Unix(1700000000, 0))
	done := m.TimeStage(Labels{"run": "r1"}, "read")
	done()

	require.NoError(t, m.Registry.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "toolchange_layers_total 7\n")
	assert.Contains(t, text, "toolchange_last_success_timestamp_seconds 1.7e+09\n")
	assert.Contains(t, text, `toolchange_stage_duration_seconds{run="r1",stage="read"}`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")

	assert.Error(t, m.Registry.WriteFile(filepath.Join(dir, "missing", "x.prom")))
}
