// Metrics collection for the tool change organizer
//
// Prometheus text-format metrics:
// - Counter: monotonically increasing values
// - Gauge: values that can go up and down
// - Histogram: distribution of observations in buckets
//
// Output is suitable for the node_exporter textfile collector.
//
// Copyright (C) 2026 Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MetricType represents the type of metric
type MetricType int

const (
	TypeCounter MetricType = iota
	TypeGauge
	TypeHistogram
)

func (t MetricType) String() string {
	switch t {
	case TypeCounter:
		return "counter"
	case TypeGauge:
		return "gauge"
	case TypeHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// Labels represents metric labels as key-value pairs
type Labels map[string]string

func (l Labels) sortedKeys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// key identifies a label set inside one metric
func (l Labels) key() string {
	var sb strings.Builder
	for i, k := range l.sortedKeys() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(l[k])
	}
	return sb.String()
}

// String returns labels in Prometheus format
func (l Labels) String() string {
	if len(l) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range l.sortedKeys() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteString("=\"")
		sb.WriteString(escapeLabel(l[k]))
		sb.WriteByte('"')
	}
	sb.WriteByte('}')
	return sb.String()
}

// With returns a copy of l with k set to v
func (l Labels) With(k, v string) Labels {
	out := make(Labels, len(l)+1)
	for lk, lv := range l {
		out[lk] = lv
	}
	out[k] = v
	return out
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Metric is the interface for all metric types
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	Write(sb *strings.Builder)
}

func writeHeader(sb *strings.Builder, m Metric) {
	fmt.Fprintf(sb, "# HELP %s %s\n", m.Name(), m.Help())
	fmt.Fprintf(sb, "# TYPE %s %s\n", m.Name(), m.Type())
}

// series holds one value per label set, written in label order
type series[V any] struct {
	mu     sync.Mutex
	labels map[string]Labels
	values map[string]*V
}

func (s *series[V]) get(labels Labels, create func() *V) *V {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := labels.key()
	if v, ok := s.values[k]; ok {
		return v
	}
	if create == nil {
		return nil
	}
	if s.values == nil {
		s.values = make(map[string]*V)
		s.labels = make(map[string]Labels)
	}
	v := create()
	s.values[k] = v
	s.labels[k] = labels
	return v
}

func (s *series[V]) each(fn func(Labels, *V)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn(s.labels[k], s.values[k])
	}
}

// Counter is a monotonically increasing metric
type Counter struct {
	name, help string
	s          series[uint64]
}

// NewCounter creates a new counter metric
func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

func (c *Counter) Name() string     { return c.name }
func (c *Counter) Help() string     { return c.help }
func (c *Counter) Type() MetricType { return TypeCounter }

// Inc increments the counter by 1
func (c *Counter) Inc(labels Labels) {
	c.Add(labels, 1)
}

// Add increments the counter by delta
func (c *Counter) Add(labels Labels, delta uint64) {
	v := c.s.get(labels, func() *uint64 { return new(uint64) })
	c.s.mu.Lock()
	*v += delta
	c.s.mu.Unlock()
}

// Get returns the current counter value for labels
func (c *Counter) Get(labels Labels) uint64 {
	v := c.s.get(labels, nil)
	if v == nil {
		return 0
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return *v
}

func (c *Counter) Write(sb *strings.Builder) {
	writeHeader(sb, c)
	c.s.each(func(l Labels, v *uint64) {
		fmt.Fprintf(sb, "%s%s %d\n", c.name, l, *v)
	})
}

// Gauge is a metric that can go up and down
type Gauge struct {
	name, help string
	s          series[float64]
}

// NewGauge creates a new gauge metric
func NewGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

func (g *Gauge) Name() string     { return g.name }
func (g *Gauge) Help() string     { return g.help }
func (g *Gauge) Type() MetricType { return TypeGauge }

// Set sets the gauge to value
func (g *Gauge) Set(labels Labels, value float64) {
	v := g.s.get(labels, func() *float64 { return new(float64) })
	g.s.mu.Lock()
	*v = value
	g.s.mu.Unlock()
}

// Add adds delta to the gauge
func (g *Gauge) Add(labels Labels, delta float64) {
	v := g.s.get(labels, func() *float64 { return new(float64) })
	g.s.mu.Lock()
	*v += delta
	g.s.mu.Unlock()
}

// Get returns the current gauge value for labels
func (g *Gauge) Get(labels Labels) float64 {
	v := g.s.get(labels, nil)
	if v == nil {
		return 0
	}
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	return *v
}

func (g *Gauge) Write(sb *strings.Builder) {
	writeHeader(sb, g)
	g.s.each(func(l Labels, v *float64) {
		fmt.Fprintf(sb, "%s%s %s\n", g.name, l, formatFloat(*v))
	})
}

type histogramValue struct {
	count   uint64
	sum     float64
	buckets []uint64
}

// Histogram tracks the distribution of observations
type Histogram struct {
	name, help string
	bounds     []float64
	s          series[histogramValue]
}

// NewHistogram creates a histogram with the given upper bounds
func NewHistogram(name, help string, bounds []float64) *Histogram {
	sorted := append([]float64(nil), bounds...)
	sort.Float64s(sorted)
	return &Histogram{name: name, help: help, bounds: sorted}
}

// LinearBuckets creates count buckets starting at start with width intervals
func LinearBuckets(start, width float64, count int) []float64 {
	buckets := make([]float64, count)
	for i := range buckets {
		buckets[i] = start + float64(i)*width
	}
	return buckets
}

func (h *Histogram) Name() string     { return h.name }
func (h *Histogram) Help() string     { return h.help }
func (h *Histogram) Type() MetricType { return TypeHistogram }

// Observe records a value
func (h *Histogram) Observe(labels Labels, value float64) {
	v := h.s.get(labels, func() *histogramValue {
		return &histogramValue{buckets: make([]uint64, len(h.bounds))}
	})
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	v.count++
	v.sum += value
	for i, bound := range h.bounds {
		if value <= bound {
			v.buckets[i]++
		}
	}
}

// HistogramSnapshot is a point-in-time copy of one histogram series.
// Buckets are cumulative, keyed by upper bound.
type HistogramSnapshot struct {
	Count   uint64
	Sum     float64
	Buckets map[float64]uint64
}

// Snapshot returns the values recorded for labels
func (h *Histogram) Snapshot(labels Labels) HistogramSnapshot {
	snap := HistogramSnapshot{Buckets: make(map[float64]uint64, len(h.bounds))}
	v := h.s.get(labels, nil)
	if v == nil {
		return snap
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	snap.Count = v.count
	snap.Sum = v.sum
	for i, bound := range h.bounds {
		snap.Buckets[bound] = v.buckets[i]
	}
	return snap
}

func (h *Histogram) Write(sb *strings.Builder) {
	writeHeader(sb, h)
	h.s.each(func(l Labels, v *histogramValue) {
		for i, bound := range h.bounds {
			fmt.Fprintf(sb, "%s_bucket%s %d\n", h.name, l.With("le", formatFloat(bound)), v.buckets[i])
		}
		fmt.Fprintf(sb, "%s_bucket%s %d\n", h.name, l.With("le", "+Inf"), v.count)
		fmt.Fprintf(sb, "%s_sum%s %s\n", h.name, l, formatFloat(v.sum))
		fmt.Fprintf(sb, "%s_count%s %d\n", h.name, l, v.count)
	})
}

// Registry holds metrics in registration order
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
	order   []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]Metric)}
}

// Register adds a metric to the registry
func (r *Registry) Register(m Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.metrics[m.Name()]; exists {
		return fmt.Errorf("metric %q already registered", m.Name())
	}
	r.metrics[m.Name()] = m
	r.order = append(r.order, m.Name())
	return nil
}

// MustRegister adds a metric and panics on error
func (r *Registry) MustRegister(m Metric) {
	if err := r.Register(m); err != nil {
		panic(err)
	}
}

// Get returns a metric by name
func (r *Registry) Get(name string) Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics[name]
}

// Gather renders all metrics in Prometheus text format
func (r *Registry) Gather() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	for _, name := range r.order {
		r.metrics[name].Write(&sb)
	}
	return sb.String()
}

// WriteFile writes Gather output to path through a temporary file and a
// rename, so a collector never reads a partial file.
func (r *Registry) WriteFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("metrics: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(r.Gather()); err != nil {
		tmp.Close()
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("metrics: chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("metrics: rename to %s: %w", path, err)
	}
	return nil
}
