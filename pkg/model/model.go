// Package model defines the canonical data types produced by parsing one
// digital tape: the header record, the measurement and phase series, and
// the cycle state. Every other package consumes these types; none of them
// mutate a parsed value after construction.
package model

import "time"

// FieldKey is a canonical semantic key for a header field. Device profiles
// map their own line prefixes onto these keys so downstream code never sees
// device-specific spellings.
type FieldKey string

// Header field catalog. DateKey and TimeKey are required before body
// parsing: body timestamps are bare time-of-day and need the start date.
const (
	DateKey          FieldKey = "date"
	TimeKey          FieldKey = "time"
	EquipmentKey     FieldKey = "equipment"
	OperatorKey      FieldKey = "operator"
	CycleCodeKey     FieldKey = "cycle_code"
	SelectedCycleKey FieldKey = "selected_cycle"
	BatchKey         FieldKey = "batch"
	ProgramKey       FieldKey = "program"
	SetpointKey      FieldKey = "setpoint"
)

// HeaderRecord holds everything extracted from the header section of one
// tape plus the file-identity metadata that is recorded regardless of
// device profile. It is built once per file and not mutated afterwards.
type HeaderRecord struct {
	// FileName is the tape file name without directory or extension.
	FileName string
	// CreateDate and ChangeDate come from the file system, not the tape.
	CreateDate time.Time
	ChangeDate time.Time

	// StartDate is the calendar date the cycle started (midnight-anchored).
	// Body timestamps are reconstructed against it.
	StartDate time.Time
	// StartClock is the HH:MM:SS start time as printed on the tape.
	StartClock string

	// Fields maps catalog keys to the raw values found in the header.
	Fields map[FieldKey]string

	// Warnings records non-fatal extraction problems, such as falling back
	// to the file change date when the tape carries no start marker.
	Warnings []string
}

// Field returns the value for key, or "" when the device did not supply it.
func (h *HeaderRecord) Field(key FieldKey) string {
	return h.Fields[key]
}

// MeasurementRow is one timestamped sample. Values align positionally with
// CycleBody.Columns[1:], so len(Values) == len(Columns)-1 for every row of
// a well-formed body.
type MeasurementRow struct {
	Timestamp time.Time
	Values    []float64
}

// PhaseMarker is a named stage transition within a cycle. Labels are
// free-text and device-specific; they are compared by exact equality or
// substring keyword match, never fuzzily.
type PhaseMarker struct {
	Timestamp time.Time
	Label     string
}

// CycleState classifies how a cycle ended, derived from the phase labels
// against the profile's keyword sets.
type CycleState string

const (
	StateCompleted  CycleState = "completed"
	StateAborted    CycleState = "aborted"
	StateIncomplete CycleState = "incomplete"
	StateError      CycleState = "error"
)

// CycleBody is the parsed body of one tape: the column-header names (first
// entry is the time column), the measurement series, the phase series, and
// the derived state. Measurements and phases are each chronologically
// non-decreasing by construction.
type CycleBody struct {
	Columns      []string
	Measurements []MeasurementRow
	Phases       []PhaseMarker
	State        CycleState
}

// Parameters returns the measured quantity names, i.e. the column names
// minus the leading time column.
func (b *CycleBody) Parameters() []string {
	if len(b.Columns) < 2 {
		return nil
	}
	return b.Columns[1:]
}

// FindPhase returns the first phase (in file order) with exactly the given
// label.
func (b *CycleBody) FindPhase(label string) (PhaseMarker, bool) {
	for _, p := range b.Phases {
		if p.Label == label {
			return p, true
		}
	}
	return PhaseMarker{}, false
}

// FilterPhases returns the phases whose labels are in the given set,
// preserving file order.
func (b *CycleBody) FilterPhases(labels []string) []PhaseMarker {
	want := make(map[string]bool, len(labels))
	for _, l := range labels {
		want[l] = true
	}
	var out []PhaseMarker
	for _, p := range b.Phases {
		if want[p.Label] {
			out = append(out, p)
		}
	}
	return out
}
