package model

import "errors"

// Error taxonomy for cycle queries. File-level failures (missing or
// unreadable tape) surface as wrapped os errors from the reader; everything
// here is query-scoped and never corrupts already-parsed data.
var (
	// ErrPhaseNotFound means a requested phase label does not occur in the
	// parsed phase series.
	ErrPhaseNotFound = errors.New("phase not found")

	// ErrInvalidRange means the start phase is chronologically after the
	// end phase.
	ErrInvalidRange = errors.New("phase range start after end")

	// ErrNoMeasurements means the body holds no measurement rows at all.
	ErrNoMeasurements = errors.New("no measurement data")

	// ErrNoPhases means a statistics query was given an empty phase list
	// or the body holds no phase markers.
	ErrNoPhases = errors.New("no phases to aggregate")
)
