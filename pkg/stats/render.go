package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// Render formats the report as the fixed-width text block persisted with a
// cycle record: one block per phase window with the phase name and
// duration, then one row per measured quantity with min/max/mean/mode
// right-aligned.
func (r *Report) Render() string {
	var b strings.Builder

	for i, ph := range r.Phases {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "FASE: %s -> %s\n", ph.StartLabel, ph.EndLabel)
		fmt.Fprintf(&b, "DURACAO: %s  (%d amostras)\n", FormatDuration(ph.Duration), ph.Samples)

		nameWidth := 0
		for _, name := range ph.Columns {
			if w := runewidth.StringWidth(name); w > nameWidth {
				nameWidth = w
			}
		}
		for _, name := range ph.Columns {
			cs, ok := ph.Values[name]
			if !ok {
				continue
			}
			mode := "-"
			if cs.Mode != nil {
				mode = formatValue(*cs.Mode)
			}
			fmt.Fprintf(&b, "  %s  min %s  max %s  media %s  moda %s\n",
				runewidth.FillRight(name, nameWidth),
				pad(formatValue(cs.Min)),
				pad(formatValue(cs.Max)),
				pad(formatValue(cs.Mean)),
				pad(mode))
		}
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "\nAVISO: %s", w)
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

// valueWidth right-aligns numeric cells so the columns line up across rows.
const valueWidth = 9

func pad(s string) string {
	return runewidth.FillLeft(s, valueWidth)
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// FormatDuration renders a duration as HH:MM:SS, the format used on the
// tapes themselves.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
