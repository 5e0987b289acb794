package profile

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/steriliza/cycletape/pkg/model"
)

// Shared grammar helpers. Variants call these explicitly; there is no
// implicit shared behavior between device families.

var (
	clockHMS = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
	clockHM  = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// normalizeClock accepts an HH:MM:SS or HH:MM token and returns it as
// HH:MM:SS. Tapes that print minute resolution get ":00" synthesized.
func normalizeClock(tok string) (string, bool) {
	switch {
	case clockHMS.MatchString(tok):
		return tok, true
	case clockHM.MatchString(tok):
		return tok + ":00", true
	default:
		return "", false
	}
}

// parseDecimal parses a numeric token, treating ',' as the decimal
// separator when commaDecimal is set.
func parseDecimal(tok string, commaDecimal bool) (float64, error) {
	if commaDecimal {
		tok = strings.Replace(tok, ",", ".", 1)
	}
	return strconv.ParseFloat(tok, 64)
}

// isNumeric reports whether tok parses as a float under either decimal
// separator. Used for the phase/measurement tie-break: a phase-shaped line
// whose first label token is numeric is really a truncated data row.
func isNumeric(tok string) bool {
	if _, err := parseDecimal(tok, false); err == nil {
		return true
	}
	_, err := parseDecimal(tok, true)
	return err == nil
}

// keyValueHeaderFields scans header lines for "Prefix: value" fields.
// Matching is by substring, first matching prefix per line wins, and a
// field key seen again on a later line overwrites the earlier value.
func keyValueHeaderFields(lines []string, patterns []headerPattern) map[model.FieldKey]string {
	fields := make(map[model.FieldKey]string)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		for _, p := range patterns {
			if idx := strings.Index(line, p.prefix); idx >= 0 {
				fields[p.key] = strings.TrimSpace(line[idx+len(p.prefix):])
				break
			}
		}
	}
	return fields
}

// headerPattern binds a device-specific line prefix to a catalog key.
type headerPattern struct {
	prefix string
	key    model.FieldKey
}

// parseHeaderDate parses the day-month-year date printed in key/value
// headers, with or without zero padding.
func parseHeaderDate(s string) (time.Time, bool) {
	t, err := time.Parse("2-1-2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
