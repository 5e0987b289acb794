// Package timeline reconstructs absolute timestamps from the bare
// time-of-day column of a tape. Tapes print only HH:MM:SS per row; the
// calendar date comes from the header, and cycles routinely run across
// midnight.
//
// Measurement times and phase times are reconstructed in separate calls,
// each with its own rollover counter, matching the original system. If a
// phase event and a measurement event straddle midnight in different
// relative orders the two series can desynchronize; that behavior is kept
// as-is because the intended semantics are ambiguous in the source data.
package timeline

import (
	"fmt"
	"time"
)

// clockLayout is the wire format of a tape time token after normalization.
const clockLayout = "15:04:05"

// Reconstruct combines an ordered sequence of "HH:MM:SS" strings with a
// base calendar date into absolute timestamps of the same length and order.
//
// Every entry first receives the base date. A single left-to-right walk
// then maintains a running days-elapsed counter: whenever an entry lands
// strictly before its predecessor, one day is added and stays added for all
// subsequent entries. The output is therefore non-decreasing. A gap of more
// than 24 hours between consecutive samples cannot be detected and would be
// attributed to the wrong day; tapes never legitimately contain one.
func Reconstruct(clocks []string, base time.Time) ([]time.Time, error) {
	out := make([]time.Time, len(clocks))
	for i, c := range clocks {
		t, err := time.ParseInLocation(clockLayout, c, base.Location())
		if err != nil {
			return nil, fmt.Errorf("parse time token %q at row %d: %w", c, i, err)
		}
		out[i] = time.Date(base.Year(), base.Month(), base.Day(),
			t.Hour(), t.Minute(), t.Second(), 0, base.Location())
	}

	daysElapsed := 0
	for i := 1; i < len(out); i++ {
		out[i] = out[i].AddDate(0, 0, daysElapsed)
		if out[i].Before(out[i-1]) {
			daysElapsed++
			out[i] = out[i].AddDate(0, 0, 1)
		}
	}
	return out, nil
}
