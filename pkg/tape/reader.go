// Package tape reads one digital tape file through a single header→body
// pass. A Reader is bound to one file and one device profile; it caches the
// raw lines after the first read, so ReadHeader is idempotent and ReadBody
// can trigger the header read lazily. Readers are not safe for concurrent
// use; parse files in parallel with one Reader per file.
package tape

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/steriliza/cycletape/internal/rawfile"
	"github.com/steriliza/cycletape/pkg/metrics"
	"github.com/steriliza/cycletape/pkg/model"
	"github.com/steriliza/cycletape/pkg/profile"
	"github.com/steriliza/cycletape/pkg/timeline"
)

// Reader parses one tape file with one device profile.
type Reader struct {
	path string
	prof profile.Profile
	log  *zap.Logger

	file   *rawfile.File
	header *model.HeaderRecord
	body   *model.CycleBody
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger attaches a logger for parse warnings and diagnostics. The
// default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.log = l
		}
	}
}

// NewReader builds a Reader for the given file path and device profile.
// The file is not touched until the first read call.
func NewReader(path string, prof profile.Profile, opts ...Option) (*Reader, error) {
	if path == "" {
		return nil, errors.New("tape: file path is required")
	}
	if prof == nil {
		return nil, errors.New("tape: device profile is required")
	}
	r := &Reader{path: path, prof: prof, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Path returns the tape file path the Reader is bound to.
func (r *Reader) Path() string { return r.path }

// Profile returns the device profile the Reader is bound to.
func (r *Reader) Profile() profile.Profile { return r.prof }

// load reads the raw file once and caches it.
func (r *Reader) load() error {
	if r.file != nil {
		return nil
	}
	f, err := rawfile.Load(r.path)
	if err != nil {
		return err
	}
	r.file = f
	return nil
}

// ReadHeader parses the header section. Repeated calls return the cached
// record; the file is read at most once.
//
// When the profile finds no start date/time marker, the record falls back
// to the file change date and carries a warning. That keeps body parsing
// possible for tapes whose header was cut off mid-print.
func (r *Reader) ReadHeader() (*model.HeaderRecord, error) {
	if r.header != nil {
		return r.header, nil
	}
	defer metrics.Timer(metrics.HeaderParse)()

	if err := r.load(); err != nil {
		return nil, err
	}

	n := r.prof.HeaderLineCount()
	if n > len(r.file.Lines) {
		n = len(r.file.Lines)
	}
	ph := r.prof.ExtractHeader(r.file.Lines[:n])

	rec := &model.HeaderRecord{
		FileName:   r.file.Info.Name,
		CreateDate: r.file.Info.CreateTime,
		ChangeDate: r.file.Info.ChangeTime,
		StartDate:  ph.StartDate,
		StartClock: ph.StartClock,
		Fields:     ph.Fields,
	}
	if rec.Fields == nil {
		rec.Fields = make(map[model.FieldKey]string)
	}

	if rec.StartDate.IsZero() {
		mod := r.file.Info.ChangeTime
		rec.StartDate = time.Date(mod.Year(), mod.Month(), mod.Day(), 0, 0, 0, 0, mod.Location())
		rec.StartClock = mod.Format("15:04:05")
		rec.Warnings = append(rec.Warnings,
			fmt.Sprintf("start date/time not found in header, using file change date %s",
				mod.Format("02-01-2006 15:04:05")))
		r.log.Warn("start date/time not found in tape header, using file change date",
			zap.String("file", r.path),
			zap.Time("change_date", mod))
	}

	r.header = rec
	return rec, nil
}

// ReadBody parses the body section: every line is classified against the
// profile grammar, measurements and phases are collected in file order, and
// both time columns are rewritten to absolute timestamps against the header
// start date. Unrecognized lines are skipped, never fatal.
//
// ReadBody triggers ReadHeader first if it has not run yet, since the
// reconstruction needs the header date.
func (r *Reader) ReadBody() (*model.CycleBody, error) {
	if r.body != nil {
		return r.body, nil
	}
	header, err := r.ReadHeader()
	if err != nil {
		return nil, err
	}
	defer metrics.Timer(metrics.BodyParse)()

	var bodyLines []string
	if n := r.prof.HeaderLineCount(); n < len(r.file.Lines) {
		bodyLines = r.file.Lines[n:]
	}

	body := &model.CycleBody{Columns: r.prof.Columns(bodyLines)}
	expect := len(body.Columns) - 1

	var (
		measureClocks []string
		phaseClocks   []string
	)
	for _, raw := range bodyLines {
		line := r.prof.Classify(raw)
		switch line.Kind {
		case profile.Measurement:
			if expect > 0 && len(line.Values) != expect {
				r.log.Debug("dropping measurement row with unexpected column count",
					zap.String("file", r.path),
					zap.Int("want", expect),
					zap.Int("got", len(line.Values)))
				continue
			}
			measureClocks = append(measureClocks, line.Clock)
			body.Measurements = append(body.Measurements, model.MeasurementRow{Values: line.Values})
		case profile.Phase:
			phaseClocks = append(phaseClocks, line.Clock)
			body.Phases = append(body.Phases, model.PhaseMarker{Label: line.Label})
		}
	}

	if err := r.reconstruct(body, header, measureClocks, phaseClocks); err != nil {
		return nil, err
	}

	body.State = deriveState(body.Phases, r.prof)
	r.body = body
	return body, nil
}

// reconstruct rewrites both time columns in place. The measurement and
// phase columns get independent rollover counters against the same base
// date, matching the source system.
func (r *Reader) reconstruct(body *model.CycleBody, header *model.HeaderRecord, measureClocks, phaseClocks []string) error {
	defer metrics.Timer(metrics.TimeReconstruct)()

	times, err := timeline.Reconstruct(measureClocks, header.StartDate)
	if err != nil {
		return fmt.Errorf("reconstruct measurement times: %w", err)
	}
	for i := range times {
		body.Measurements[i].Timestamp = times[i]
	}

	phaseTimes, err := timeline.Reconstruct(phaseClocks, header.StartDate)
	if err != nil {
		return fmt.Errorf("reconstruct phase times: %w", err)
	}
	for i := range phaseTimes {
		body.Phases[i].Timestamp = phaseTimes[i]
	}
	return nil
}

// State returns the cycle state derived from the parsed phases. It is only
// meaningful after ReadBody; before that it reports StateError, mirroring
// the query surface of the source system.
func (r *Reader) State() model.CycleState {
	if r.body == nil {
		return model.StateError
	}
	return r.body.State
}

// deriveState scans phases in file order against the profile keyword sets.
// The first label containing a finalized keyword wins as completed; the
// first containing an aborted keyword wins as aborted; otherwise the cycle
// is incomplete.
func deriveState(phases []model.PhaseMarker, prof profile.Profile) model.CycleState {
	for _, p := range phases {
		if labelContainsAny(p.Label, prof.FinalizedKeywords()) {
			return model.StateCompleted
		}
		if labelContainsAny(p.Label, prof.AbortedKeywords()) {
			return model.StateAborted
		}
	}
	return model.StateIncomplete
}

func labelContainsAny(label string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(label, k) {
			return true
		}
	}
	return false
}
