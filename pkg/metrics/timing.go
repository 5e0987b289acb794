// Package metrics provides lightweight timing instrumentation for the tape
// parsing hot paths: header extraction, body classification, timestamp
// reconstruction, and the aggregate computations.
//
// Metrics are collected in-memory with atomic operations and are enabled by
// default; set CT_METRICS=0 to disable collection entirely.
//
// Usage:
//
//	func readBody() {
//	    defer metrics.Timer(metrics.BodyParse)()
//	    // ... parse
//	}
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var enabled = os.Getenv("CT_METRICS") != "0"

// Enabled reports whether metrics collection is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) {
	enabled = e
}

// TimingMetric tracks timing statistics for a named operation. All methods
// are safe for concurrent use.
type TimingMetric struct {
	name    string
	count   int64
	totalNs int64
	maxNs   int64
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record records a single timing measurement.
func (m *TimingMetric) Record(d time.Duration) {
	if !enabled {
		return
	}
	ns := d.Nanoseconds()
	atomic.AddInt64(&m.count, 1)
	atomic.AddInt64(&m.totalNs, ns)
	for {
		old := atomic.LoadInt64(&m.maxNs)
		if ns <= old || atomic.CompareAndSwapInt64(&m.maxNs, old, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of recorded measurements.
func (m *TimingMetric) Count() int64 { return atomic.LoadInt64(&m.count) }

// Stats returns a snapshot of the metric.
func (m *TimingMetric) Stats() TimingStats {
	count := atomic.LoadInt64(&m.count)
	totalNs := atomic.LoadInt64(&m.totalNs)
	var avgNs int64
	if count > 0 {
		avgNs = totalNs / count
	}
	return TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: float64(totalNs) / 1e6,
		AvgMs:   float64(avgNs) / 1e6,
		MaxMs:   float64(atomic.LoadInt64(&m.maxNs)) / 1e6,
	}
}

// Reset clears all recorded measurements.
func (m *TimingMetric) Reset() {
	atomic.StoreInt64(&m.count, 0)
	atomic.StoreInt64(&m.totalNs, 0)
	atomic.StoreInt64(&m.maxNs, 0)
}

// TimingStats holds a snapshot of timing statistics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
}

// Timer returns a function that records elapsed time when called. Use with
// defer for automatic timing.
func Timer(m *TimingMetric) func() {
	if !enabled || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// Timing metrics for the parse and aggregate hot paths.
var (
	HeaderParse      = newTimingMetric("header_parse")
	BodyParse        = newTimingMetric("body_parse")
	TimeReconstruct  = newTimingMetric("time_reconstruct")
	StatsCompute     = newTimingMetric("stats_compute")
	LethalityCompute = newTimingMetric("lethality_compute")
)

// AllTimingMetrics returns all registered timing metrics.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{
		HeaderParse,
		BodyParse,
		TimeReconstruct,
		StatsCompute,
		LethalityCompute,
	}
}

// ResetAll resets all timing metrics.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for every metric that has recorded data.
func AllTimingStats() []TimingStats {
	all := AllTimingMetrics()
	stats := make([]TimingStats, 0, len(all))
	for _, m := range all {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}
