package profile

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/steriliza/cycletape/pkg/model"
)

// Sercon TDS thermo-disinfector. The longest header of the known families
// (64 lines), a fixed three-column measurement grammar, and phases printed
// as "HH:MM - LABEL". The start marker line reads
// "07:15 - 13/04/24 - INICIO DE CICLO".

var (
	tdsPhaseLine = regexp.MustCompile(`^\s*(\d{2}:\d{2})\s+-\s+(.+?)\s*$`)
	tdsDataLine  = regexp.MustCompile(`^\s*(\d{2}:\d{2})\s+(\d{3}\.\d)\s+(\d{3}\.\d)\s+(\d{2}\.\d{3})\s*$`)
)

// tdsColumnLineOffset is where the column-header line sits within the body
// section on this device.
const tdsColumnLineOffset = 4

type serconTDS struct{}

func (serconTDS) ID() ID              { return SerconTDS }
func (serconTDS) Description() string { return "Sercon TDS thermo-disinfector" }
func (serconTDS) HeaderLineCount() int {
	return 64
}

func (serconTDS) ExtractHeader(lines []string) Header {
	h := Header{Fields: make(map[model.FieldKey]string)}
	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "NUMERO LOTE") {
			h.Fields[model.BatchKey] = valueAfterColon(line)
			continue
		}
		if strings.HasPrefix(line, "CICLO:") {
			h.Fields[model.ProgramKey] = valueAfterColon(line)
			continue
		}

		parts := strings.Split(line, "-")
		if len(parts) != 3 || strings.TrimSpace(parts[2]) != "INICIO DE CICLO" {
			continue
		}
		date, ok := tdsParseDate(strings.TrimSpace(parts[1]))
		if !ok {
			continue
		}
		clock, ok := normalizeClock(strings.TrimSpace(parts[0]))
		if !ok {
			continue
		}
		h.StartDate = date
		h.StartClock = clock
		h.Fields[model.DateKey] = date.Format("02-01-2006")
		h.Fields[model.TimeKey] = clock
		break
	}
	return h
}

func (serconTDS) Columns(bodyLines []string) []string {
	if len(bodyLines) <= tdsColumnLineOffset {
		return nil
	}
	cols := strings.Fields(strings.TrimSpace(bodyLines[tdsColumnLineOffset]))
	if len(cols) == 0 {
		return nil
	}
	return cols
}

func (serconTDS) Classify(line string) Line {
	line = strings.TrimSpace(line)

	if m := tdsDataLine.FindStringSubmatch(line); m != nil {
		clock, _ := normalizeClock(m[1])
		values := make([]float64, 0, 3)
		for _, tok := range m[2:] {
			v, err := parseDecimal(tok, false)
			if err != nil {
				return Line{Kind: Ignored}
			}
			values = append(values, v)
		}
		return Line{Kind: Measurement, Clock: clock, Values: values}
	}

	if m := tdsPhaseLine.FindStringSubmatch(line); m != nil {
		label := strings.TrimSpace(m[2])
		if !isNumeric(strings.Fields(label)[0]) {
			clock, _ := normalizeClock(m[1])
			return Line{Kind: Phase, Clock: clock, Label: label}
		}
	}

	return Line{Kind: Ignored}
}

func (serconTDS) FinalizedKeywords() []string { return []string{"FINAL  DE CICLO"} }
func (serconTDS) AbortedKeywords() []string   { return []string{"CICLO ABORTADO"} }

// tdsParseDate parses the two-digit-year "DD/MM/YY" date on the start line.
func tdsParseDate(s string) (time.Time, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
