// Package cycle is the query surface over one parsed tape. A Cycle owns a
// tape.Reader, drives the header and body reads, and answers the
// collaborator queries: phase durations, per-phase statistics, and the
// lethality curve. One Cycle per file; instances are not shared across
// files or goroutines.
package cycle

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/steriliza/cycletape/pkg/lethality"
	"github.com/steriliza/cycletape/pkg/model"
	"github.com/steriliza/cycletape/pkg/profile"
	"github.com/steriliza/cycletape/pkg/stats"
	"github.com/steriliza/cycletape/pkg/tape"
)

// Cycle orchestrates one tape.Reader and exposes the parsed data.
type Cycle struct {
	reader *tape.Reader

	header *model.HeaderRecord
	body   *model.CycleBody
}

// New builds a Cycle for one tape file with the given device profile.
func New(path string, prof profile.Profile, opts ...tape.Option) (*Cycle, error) {
	r, err := tape.NewReader(path, prof, opts...)
	if err != nil {
		return nil, err
	}
	return &Cycle{reader: r}, nil
}

// NewFromReader wraps an already-constructed reader.
func NewFromReader(r *tape.Reader) *Cycle {
	return &Cycle{reader: r}
}

// ReadAll drives the full parse: header first, then body. It is the normal
// entry point for collaborators.
func (c *Cycle) ReadAll() (*model.HeaderRecord, *model.CycleBody, error) {
	header, err := c.reader.ReadHeader()
	if err != nil {
		return nil, nil, err
	}
	body, err := c.reader.ReadBody()
	if err != nil {
		return nil, nil, err
	}
	c.header = header
	c.body = body
	return header, body, nil
}

// Header returns the parsed header, reading it if needed.
func (c *Cycle) Header() (*model.HeaderRecord, error) {
	if c.header != nil {
		return c.header, nil
	}
	h, err := c.reader.ReadHeader()
	if err != nil {
		return nil, err
	}
	c.header = h
	return h, nil
}

// Body returns the parsed body, reading it (and the header) if needed.
func (c *Cycle) Body() (*model.CycleBody, error) {
	if c.body != nil {
		return c.body, nil
	}
	b, err := c.reader.ReadBody()
	if err != nil {
		return nil, err
	}
	c.body = b
	return b, nil
}

// TotalDuration is the time between the first and last measurement.
func (c *Cycle) TotalDuration() (time.Duration, error) {
	body, err := c.Body()
	if err != nil {
		return 0, err
	}
	if len(body.Measurements) == 0 {
		return 0, model.ErrNoMeasurements
	}
	first := body.Measurements[0].Timestamp
	last := body.Measurements[len(body.Measurements)-1].Timestamp
	return last.Sub(first), nil
}

// DurationBetweenPhases returns the elapsed time from the first occurrence
// of labelA to the first occurrence of labelB. Lookup order is independent
// of file order, but labelA must not be chronologically after labelB.
func (c *Cycle) DurationBetweenPhases(labelA, labelB string) (time.Duration, error) {
	body, err := c.Body()
	if err != nil {
		return 0, err
	}
	a, ok := body.FindPhase(labelA)
	if !ok {
		return 0, fmt.Errorf("%w: %q", model.ErrPhaseNotFound, labelA)
	}
	b, ok := body.FindPhase(labelB)
	if !ok {
		return 0, fmt.Errorf("%w: %q", model.ErrPhaseNotFound, labelB)
	}
	if a.Timestamp.After(b.Timestamp) {
		return 0, fmt.Errorf("%w: %q at %s is after %q at %s", model.ErrInvalidRange,
			labelA, a.Timestamp.Format(time.RFC3339), labelB, b.Timestamp.Format(time.RFC3339))
	}
	return b.Timestamp.Sub(a.Timestamp), nil
}

// Statistics aggregates {min, max, mean, mode} per measured quantity over
// each consecutive pair of the requested phase sequence. A requested label
// absent from the tape is skipped with a warning rather than failing the
// query: the next requested label that does occur closes the window.
func (c *Cycle) Statistics(phaseSeq []string) (*stats.Report, error) {
	body, err := c.Body()
	if err != nil {
		return nil, err
	}
	if len(phaseSeq) == 0 {
		return nil, model.ErrNoPhases
	}
	if len(body.Measurements) == 0 {
		return nil, model.ErrNoMeasurements
	}

	report := &stats.Report{}

	i := 0
	for i < len(phaseSeq)-1 {
		start, ok := body.FindPhase(phaseSeq[i])
		if !ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("fase %q nao encontrada na fita", phaseSeq[i]))
			i++
			continue
		}

		// Close the window with the next requested label that actually
		// occurs on the tape.
		j := i + 1
		var end model.PhaseMarker
		for j < len(phaseSeq) {
			if p, ok := body.FindPhase(phaseSeq[j]); ok {
				end = p
				break
			}
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("fase %q nao encontrada na fita", phaseSeq[j]))
			j++
		}
		if j == len(phaseSeq) {
			break
		}

		values, samples, err := stats.Window(body.Measurements, body.Columns, start.Timestamp, end.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("statistics for window %q..%q: %w", start.Label, end.Label, err)
		}
		report.Phases = append(report.Phases, stats.PhaseStats{
			StartLabel: start.Label,
			EndLabel:   end.Label,
			Start:      start.Timestamp,
			End:        end.Timestamp,
			Duration:   end.Timestamp.Sub(start.Timestamp),
			Columns:    body.Parameters(),
			Values:     values,
			Samples:    samples,
		})
		i = j
	}

	return report, nil
}

// LethalityCurve integrates the survival model over the measurements that
// fall within the [phaseA, phaseB] window, anchored at population n0.
func (c *Cycle) LethalityCurve(n0 float64, phaseA, phaseB string, params lethality.Params) ([]lethality.Point, error) {
	body, err := c.Body()
	if err != nil {
		return nil, err
	}
	a, ok := body.FindPhase(phaseA)
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrPhaseNotFound, phaseA)
	}
	b, ok := body.FindPhase(phaseB)
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrPhaseNotFound, phaseB)
	}
	if a.Timestamp.After(b.Timestamp) {
		return nil, fmt.Errorf("%w: %q is after %q", model.ErrInvalidRange, phaseA, phaseB)
	}

	var window []model.MeasurementRow
	for _, row := range body.Measurements {
		if row.Timestamp.Before(a.Timestamp) || row.Timestamp.After(b.Timestamp) {
			continue
		}
		window = append(window, row)
	}
	return lethality.Curve(n0, window, params)
}

// WithLogger is a convenience re-export so callers configuring a Cycle do
// not need to import pkg/tape for the option type.
func WithLogger(l *zap.Logger) tape.Option {
	return tape.WithLogger(l)
}
