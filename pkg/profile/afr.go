package profile

import (
	"regexp"
	"strings"

	"github.com/steriliza/cycletape/pkg/model"
)

// AFR family tapes print a key/value header ("Data: 13-4-2024") and an
// HH:MM:SS time column with '.' decimals in the body. The ETO chamber and
// the model 13 differ in header length and finalization keywords.

var afrHeaderPatterns = []headerPattern{
	{"Data:", model.DateKey},
	{"Hora:", model.TimeKey},
	{"Equipamento:", model.EquipmentKey},
	{"Operador:", model.OperatorKey},
	{"Cod. ciclo:", model.CycleCodeKey},
	{"Ciclo Selecionado:", model.SelectedCycleKey},
}

var (
	// Phase grammar is checked first. The label class excludes '.', so
	// measurement rows with decimal values never shadow a phase label.
	afrPhaseLine = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2})\s+([A-Za-z0-9\s-]+?)\s*$`)
	afrDataLine  = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2})(?:\s+-?\d+(?:\.\d+)?)+$`)
)

func afrExtractHeader(lines []string) Header {
	h := Header{Fields: keyValueHeaderFields(lines, afrHeaderPatterns)}
	if date, ok := parseHeaderDate(h.Fields[model.DateKey]); ok {
		h.StartDate = date
		h.StartClock = h.Fields[model.TimeKey]
	}
	return h
}

func afrColumns(bodyLines []string) []string {
	if len(bodyLines) == 0 {
		return nil
	}
	cols := strings.Fields(strings.TrimSpace(bodyLines[0]))
	if len(cols) == 0 {
		return nil
	}
	return cols
}

func afrClassify(line string) Line {
	line = strings.TrimSpace(line)
	if m := afrPhaseLine.FindStringSubmatch(line); m != nil {
		return Line{Kind: Phase, Clock: m[1], Label: strings.TrimSpace(m[2])}
	}
	if !afrDataLine.MatchString(line) {
		return Line{Kind: Ignored}
	}
	tokens := strings.Fields(line)
	values := make([]float64, 0, len(tokens)-1)
	for _, tok := range tokens[1:] {
		v, err := parseDecimal(tok, false)
		if err != nil {
			return Line{Kind: Ignored}
		}
		values = append(values, v)
	}
	return Line{Kind: Measurement, Clock: tokens[0], Values: values}
}

// afrEto is the generic AFR ETO sterilization chamber.
type afrEto struct{}

func (afrEto) ID() ID              { return AFREto }
func (afrEto) Description() string { return "AFR ETO sterilization chamber" }
func (afrEto) HeaderLineCount() int {
	return 25
}
func (afrEto) ExtractHeader(lines []string) Header { return afrExtractHeader(lines) }
func (afrEto) Columns(bodyLines []string) []string { return afrColumns(bodyLines) }
func (afrEto) Classify(line string) Line           { return afrClassify(line) }
func (afrEto) FinalizedKeywords() []string {
	return []string{"CICLO FINALIZADO", "CICLO CONCLUIDO", "AERACAO"}
}
func (afrEto) AbortedKeywords() []string { return []string{"CICLO ABORTADO"} }

// afr13 is the AFR model 13 washer/sterilizer.
type afr13 struct{}

func (afr13) ID() ID              { return AFR13 }
func (afr13) Description() string { return "AFR model 13" }
func (afr13) HeaderLineCount() int {
	return 24
}
func (afr13) ExtractHeader(lines []string) Header { return afrExtractHeader(lines) }
func (afr13) Columns(bodyLines []string) []string { return afrColumns(bodyLines) }
func (afr13) Classify(line string) Line           { return afrClassify(line) }
func (afr13) FinalizedKeywords() []string {
	return []string{"FIM DE CICLO", "CICLO FINALIZADO", "CICLO CONCLUIDO"}
}
func (afr13) AbortedKeywords() []string { return []string{"CICLO ABORTADO"} }
