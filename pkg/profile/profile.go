// Package profile defines the per-equipment-family format rules for
// digital tapes: header length, header field extraction, body line
// grammars, and cycle-state keyword sets.
//
// The variant set is closed and resolved by an explicit ID supplied by the
// caller. New device families are added here as new variants; nothing is
// looked up by reflection or class name.
package profile

import (
	"fmt"
	"time"

	"github.com/steriliza/cycletape/pkg/model"
)

// ID names one device family.
type ID string

const (
	// AFREto is the generic AFR ETO sterilization chamber.
	AFREto ID = "afr_eto"
	// AFR13 is the AFR model 13 family (key/value header, 24 header lines).
	AFR13 ID = "afr13"
	// SerconLAC210 is the Sercon JP LAC 210 steam autoclave.
	SerconLAC210 ID = "sercon_lac210"
	// SerconTDS is the Sercon TDS thermo-disinfector.
	SerconTDS ID = "sercon_tds"
)

// Kind classifies one body line.
type Kind int

const (
	// Ignored lines match no grammar: banners, separators, printer noise.
	// They are skipped, never treated as an error.
	Ignored Kind = iota
	// Measurement lines carry a time token plus numeric columns.
	Measurement
	// Phase lines carry a time token plus a free-text stage label.
	Phase
)

// Line is the typed result of classifying one raw body line.
type Line struct {
	Kind Kind
	// Clock is the normalized HH:MM:SS time token.
	Clock string
	// Label is the phase label; set only for Kind == Phase.
	Label string
	// Values are the numeric columns; set only for Kind == Measurement.
	Values []float64
}

// Header is the device-specific outcome of scanning the header lines.
// StartDate is zero when the tape carries no recognizable start marker;
// the tape reader then falls back to file metadata with a warning.
type Header struct {
	Fields     map[model.FieldKey]string
	StartDate  time.Time
	StartClock string
}

// Profile supplies the format rules for one device family. Implementations
// are immutable and safe for concurrent use across files.
type Profile interface {
	ID() ID
	Description() string

	// HeaderLineCount is the number of leading lines that form the header
	// section; everything after is body.
	HeaderLineCount() int

	// ExtractHeader scans the header lines for device fields and the cycle
	// start date/time.
	ExtractHeader(lines []string) Header

	// Columns locates the body column-header line and returns the column
	// names, first entry being the time column. Returns nil when the body
	// carries no recognizable column line.
	Columns(bodyLines []string) []string

	// Classify decides what one raw body line is and extracts its fields.
	Classify(line string) Line

	// FinalizedKeywords and AbortedKeywords are matched as substrings
	// against phase labels, in file order, to derive the cycle state.
	FinalizedKeywords() []string
	AbortedKeywords() []string
}

// Resolve maps an explicit profile ID to its variant.
func Resolve(id ID) (Profile, error) {
	switch id {
	case AFREto:
		return afrEto{}, nil
	case AFR13:
		return afr13{}, nil
	case SerconLAC210:
		return serconLAC210{}, nil
	case SerconTDS:
		return serconTDS{}, nil
	default:
		return nil, fmt.Errorf("unknown device profile %q", id)
	}
}

// All returns every known profile ID, for CLI help and config validation.
func All() []ID {
	return []ID{AFREto, AFR13, SerconLAC210, SerconTDS}
}
