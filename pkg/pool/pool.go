// Object pools for per-layer line buffers
//
// The reorderer holds one line slice per tool while it walks a layer. Those
// slices are reused from layer to layer and, through this pool, from run to
// run, so that regrouping a large file does not reallocate them per layer.
//
// Usage:
//
//	b := pool.GetBuckets(extruders)
//	defer pool.PutBuckets(b)
//	// append to b.Lines[tool] ...
//
// Copyright (C) 2026 Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package pool

import (
	"sync"
)

// maxPooledLines bounds the capacity of a single bucket kept in the pool.
// Buckets that grew past it (a huge single-tool layer) are dropped.
const maxPooledLines = 1 << 16

// Buckets is one line slice per tool.
type Buckets struct {
	Lines [][]string
}

var bucketsPool = sync.Pool{
	New: func() any {
		return &Buckets{}
	},
}

// GetBuckets gets a set of n empty buckets from the pool
func GetBuckets(n int) *Buckets {
	b := bucketsPool.Get().(*Buckets)
	if cap(b.Lines) < n {
		lines := make([][]string, n)
		copy(lines, b.Lines)
		b.Lines = lines
	}
	b.Lines = b.Lines[:n]
	for i := range b.Lines {
		b.Lines[i] = b.Lines[i][:0]
	}
	return b
}

// Reset empties bucket i, keeping its capacity
func (b *Buckets) Reset(i int) {
	clear(b.Lines[i])
	b.Lines[i] = b.Lines[i][:0]
}

// PutBuckets returns buckets to the pool after clearing them
func PutBuckets(b *Buckets) {
	if b == nil {
		return
	}
	for i := range b.Lines {
		if cap(b.Lines[i]) > maxPooledLines {
			b.Lines[i] = nil
			continue
		}
		b.Reset(i)
	}
	bucketsPool.Put(b)
}
