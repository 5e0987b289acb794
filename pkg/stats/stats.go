// Package stats computes per-phase aggregate statistics over the
// measurement series of a parsed cycle, and renders them as the
// fixed-width text block that gets attached to cycle records.
package stats

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/steriliza/cycletape/pkg/metrics"
	"github.com/steriliza/cycletape/pkg/model"
)

// ColumnStats holds the aggregates for one measured quantity inside one
// phase window. Mode is nil when no value repeats; that is an expected
// outcome for continuously varying quantities, not an error.
type ColumnStats struct {
	Min  float64
	Max  float64
	Mean float64
	Mode *float64
}

// PhaseStats holds the aggregates for one [start,end] phase window.
type PhaseStats struct {
	StartLabel string
	EndLabel   string
	Start      time.Time
	End        time.Time
	Duration   time.Duration
	// Columns preserves the tape's measured-quantity order for rendering.
	Columns []string
	Values  map[string]ColumnStats
	// Samples is the number of measurement rows inside the window.
	Samples int
}

// Report is the outcome of a statistics query: one entry per resolved phase
// window, plus human-readable warnings for requested phases that were not
// found on the tape. Partial results are always preferred over failing the
// whole query.
type Report struct {
	Phases   []PhaseStats
	Warnings []string
}

// Window computes {min, max, mean, mode} per measured quantity over
// measurements whose timestamp falls within [start, end] inclusive.
// The columns slice is the full tape column list, time column first;
// values align positionally with columns[1:].
func Window(measurements []model.MeasurementRow, columns []string, start, end time.Time) (map[string]ColumnStats, int, error) {
	defer metrics.Timer(metrics.StatsCompute)()

	if len(measurements) == 0 {
		return nil, 0, model.ErrNoMeasurements
	}
	if len(columns) < 2 {
		return nil, 0, fmt.Errorf("statistics need at least one measured column, got %d", len(columns))
	}

	quantities := columns[1:]
	series := make(map[string][]float64, len(quantities))
	samples := 0
	for _, row := range measurements {
		if row.Timestamp.Before(start) || row.Timestamp.After(end) {
			continue
		}
		samples++
		for i, name := range quantities {
			if i < len(row.Values) {
				series[name] = append(series[name], row.Values[i])
			}
		}
	}

	out := make(map[string]ColumnStats, len(quantities))
	for _, name := range quantities {
		values := series[name]
		if len(values) == 0 {
			continue
		}
		out[name] = columnStats(values)
	}
	return out, samples, nil
}

// columnStats aggregates one value series. Mode uses exact equality over
// the raw float values, matching how setpoint plateaus repeat on tapes.
func columnStats(values []float64) ColumnStats {
	cs := ColumnStats{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		if v < cs.Min {
			cs.Min = v
		}
		if v > cs.Max {
			cs.Max = v
		}
	}
	cs.Mean = stat.Mean(values, nil)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mode, count := stat.Mode(sorted, nil)
	if count > 1 {
		cs.Mode = &mode
	}
	return cs
}
