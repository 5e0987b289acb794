package profile

import (
	"regexp"
	"strings"
	"time"

	"github.com/steriliza/cycletape/pkg/model"
)

// Sercon JP LAC 210 steam autoclave. Body times are minute resolution
// (HH:MM), decimals use ',' and the column line starts with "HORA". The
// header has no key/value block; the start date and time are jammed into
// one token on the "INICIANDO" line ("07:3013/04/2024 INICIANDO...").

var (
	lacPhaseLine = regexp.MustCompile(`^\s*(\d{2}:\d{2})\s+(.+?)\s*$`)
)

type serconLAC210 struct{}

func (serconLAC210) ID() ID              { return SerconLAC210 }
func (serconLAC210) Description() string { return "Sercon JP LAC 210 steam autoclave" }
func (serconLAC210) HeaderLineCount() int {
	return 25
}

func (serconLAC210) ExtractHeader(lines []string) Header {
	h := Header{Fields: make(map[model.FieldKey]string)}
	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, "LOTE"):
			h.Fields[model.BatchKey] = valueAfterColon(line)
			continue
		case strings.HasPrefix(line, "CICLO."):
			h.Fields[model.ProgramKey] = valueAfterColon(line)
			continue
		case strings.HasPrefix(line, "SETPOINT"):
			if sp := valueAfterColon(line); sp != "" {
				tok := strings.Fields(sp)[0]
				h.Fields[model.SetpointKey] = strings.Replace(tok, ",", ".", 1)
			}
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) == 2 && strings.HasPrefix(tokens[1], "INICIANDO") && len(tokens[0]) > 5 {
			// tokens[0] is "HH:MMDD/MM/YYYY".
			clock := tokens[0][:5]
			if _, ok := normalizeClock(clock); !ok {
				continue
			}
			date, err := time.Parse("2/1/2006", tokens[0][5:])
			if err != nil {
				continue
			}
			h.StartDate = date
			h.StartClock = clock + ":00"
			h.Fields[model.DateKey] = date.Format("02-01-2006")
			h.Fields[model.TimeKey] = h.StartClock
			break
		}
	}
	return h
}

func (serconLAC210) Columns(bodyLines []string) []string {
	for _, line := range bodyLines {
		if strings.HasPrefix(strings.TrimSpace(line), "HORA") {
			return strings.Fields(strings.TrimSpace(line))
		}
	}
	return nil
}

func (serconLAC210) Classify(line string) Line {
	line = strings.TrimSpace(line)

	if m := lacPhaseLine.FindStringSubmatch(line); m != nil {
		// Tie-break: a phase-shaped line whose first label token is a
		// number is a truncated data row, not a phase.
		label := strings.TrimSpace(m[2])
		if !isNumeric(strings.Fields(label)[0]) {
			clock, _ := normalizeClock(m[1])
			return Line{Kind: Phase, Clock: clock, Label: label}
		}
	}

	tokens := strings.Fields(line)
	if len(tokens) < 4 {
		return Line{Kind: Ignored}
	}
	clock, ok := normalizeClock(tokens[0])
	if !ok {
		return Line{Kind: Ignored}
	}
	values := make([]float64, 0, len(tokens)-1)
	for _, tok := range tokens[1:] {
		v, err := parseDecimal(tok, true)
		if err != nil {
			return Line{Kind: Ignored}
		}
		values = append(values, v)
	}
	return Line{Kind: Measurement, Clock: clock, Values: values}
}

func (serconLAC210) FinalizedKeywords() []string { return []string{"FIM DE CICLO"} }
func (serconLAC210) AbortedKeywords() []string   { return []string{"CICLO ABORTADO"} }

// valueAfterColon returns the trimmed text after the first ':', or "".
func valueAfterColon(line string) string {
	_, after, found := strings.Cut(line, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(after)
}
