package tape

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/steriliza/cycletape/pkg/model"
	"github.com/steriliza/cycletape/pkg/profile"
)

// writeTape pads the header to the profile's line count and writes a tape
// file into a temp dir.
func writeTape(t *testing.T, prof profile.Profile, header, body []string) string {
	t.Helper()
	lines := make([]string, 0, prof.HeaderLineCount()+len(body))
	lines = append(lines, header...)
	for len(lines) < prof.HeaderLineCount() {
		lines = append(lines, "")
	}
	lines = append(lines, body...)

	path := filepath.Join(t.TempDir(), "ciclo_0042.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\r\n")), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func mustProfile(t *testing.T, id profile.ID) profile.Profile {
	t.Helper()
	p, err := profile.Resolve(id)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

var afrHeader = []string{
	"AFR EQUIPAMENTOS LTDA",
	"",
	"Data: 2-10-2024",
	"Hora: 14:28:34",
	"Equipamento: ETO-01",
	"Operador: MARIA",
	"Cod. ciclo: 0042",
	"Ciclo Selecionado: ESTERILIZACAO ETO",
}

var afrBody = []string{
	"Hora  PCI  TCI  UR  ETO",
	"--------------------------------",
	"14:28:34  0.000  49.80  50.0  0.0",
	"14:28:36  LEAK-TEST",
	"14:29:07  -0.450  49.85  49.8  0.0",
	"14:30:00  -0.450  49.90  49.5  1.2",
	"14:31:12  INICIO ESTERILIZACAO",
	"16:02:10  CICLO FINALIZADO",
}

func TestReadHeader(t *testing.T) {
	prof := mustProfile(t, profile.AFREto)
	path := writeTape(t, prof, afrHeader, afrBody)

	r, err := NewReader(path, prof)
	if err != nil {
		t.Fatal(err)
	}
	h, err := r.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}

	if h.FileName != "ciclo_0042" {
		t.Errorf("FileName = %q, want %q", h.FileName, "ciclo_0042")
	}
	want := time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC)
	if !h.StartDate.Equal(want) {
		t.Errorf("StartDate = %v, want %v", h.StartDate, want)
	}
	if h.StartClock != "14:28:34" {
		t.Errorf("StartClock = %q", h.StartClock)
	}
	if got := h.Field(model.OperatorKey); got != "MARIA" {
		t.Errorf("operator = %q", got)
	}
	if len(h.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", h.Warnings)
	}

	// Cached on repeat.
	again, err := r.ReadHeader()
	if err != nil {
		t.Fatal(err)
	}
	if again != h {
		t.Error("ReadHeader did not return the cached record")
	}
}

func TestReadHeaderFallbackDate(t *testing.T) {
	prof := mustProfile(t, profile.AFREto)
	path := writeTape(t, prof, []string{"Equipamento: ETO-01"}, afrBody)

	mod := time.Date(2024, 11, 5, 9, 30, 0, 0, time.Local)
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(path, prof)
	if err != nil {
		t.Fatal(err)
	}
	h, err := r.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}

	want := time.Date(2024, 11, 5, 0, 0, 0, 0, time.Local)
	if !h.StartDate.Equal(want) {
		t.Errorf("StartDate = %v, want %v", h.StartDate, want)
	}
	if h.StartClock != "09:30:00" {
		t.Errorf("StartClock = %q", h.StartClock)
	}
	if len(h.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one fallback warning", h.Warnings)
	}
}

func TestReadBody(t *testing.T) {
	prof := mustProfile(t, profile.AFREto)
	path := writeTape(t, prof, afrHeader, afrBody)

	r, err := NewReader(path, prof)
	if err != nil {
		t.Fatal(err)
	}
	body, err := r.ReadBody()
	if err != nil {
		t.Fatalf("ReadBody failed: %v", err)
	}

	wantCols := []string{"Hora", "PCI", "TCI", "UR", "ETO"}
	if len(body.Columns) != len(wantCols) {
		t.Fatalf("columns = %v", body.Columns)
	}

	if len(body.Measurements) != 3 {
		t.Fatalf("measurements = %d, want 3", len(body.Measurements))
	}
	first := body.Measurements[0]
	wantTs := time.Date(2024, 10, 2, 14, 28, 34, 0, time.UTC)
	if !first.Timestamp.Equal(wantTs) {
		t.Errorf("first timestamp = %v, want %v", first.Timestamp, wantTs)
	}
	if first.Values[1] != 49.8 {
		t.Errorf("first TCI = %v", first.Values[1])
	}

	if len(body.Phases) != 3 {
		t.Fatalf("phases = %d, want 3", len(body.Phases))
	}
	if body.Phases[0].Label != "LEAK-TEST" {
		t.Errorf("phase 0 = %q", body.Phases[0].Label)
	}
	if body.State != model.StateCompleted {
		t.Errorf("state = %q, want %q", body.State, model.StateCompleted)
	}
	if r.State() != model.StateCompleted {
		t.Errorf("State() = %q", r.State())
	}
}

func TestReadBodyMidnightRollover(t *testing.T) {
	prof := mustProfile(t, profile.AFREto)
	header := []string{"Data: 1-1-2024", "Hora: 23:58:00"}
	body := []string{
		"Hora  PCI  TCI",
		"23:58:00  0.000  49.80",
		"23:59:30  0.000  49.85",
		"00:00:10  0.000  49.90",
		"00:01:00  0.000  49.95",
	}
	path := writeTape(t, prof, header, body)

	r, err := NewReader(path, prof)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.ReadBody()
	if err != nil {
		t.Fatalf("ReadBody failed: %v", err)
	}
	if len(b.Measurements) != 4 {
		t.Fatalf("measurements = %d", len(b.Measurements))
	}
	last := b.Measurements[3].Timestamp
	want := time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC)
	if !last.Equal(want) {
		t.Errorf("last timestamp = %v, want %v", last, want)
	}
}

func TestReadBodyDropsMismatchedRows(t *testing.T) {
	prof := mustProfile(t, profile.AFREto)
	body := []string{
		"Hora  PCI  TCI  UR  ETO",
		"14:28:34  0.000  49.80  50.0  0.0",
		"14:29:00  0.000  49.80", // truncated print, wrong column count
		"14:30:00  0.000  49.85  49.9  0.1",
	}
	path := writeTape(t, prof, afrHeader, body)

	r, err := NewReader(path, prof)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.ReadBody()
	if err != nil {
		t.Fatalf("ReadBody failed: %v", err)
	}
	if len(b.Measurements) != 2 {
		t.Fatalf("measurements = %d, want 2", len(b.Measurements))
	}
}

func TestStateAbortedAndIncomplete(t *testing.T) {
	prof := mustProfile(t, profile.AFREto)

	aborted := writeTape(t, prof, afrHeader, []string{
		"Hora  PCI  TCI",
		"14:28:34  0.000  49.80",
		"14:40:00  CICLO ABORTADO",
	})
	incomplete := writeTape(t, prof, afrHeader, []string{
		"Hora  PCI  TCI",
		"14:28:34  0.000  49.80",
		"14:31:12  INICIO ESTERILIZACAO",
	})

	r1, _ := NewReader(aborted, prof)
	if b, err := r1.ReadBody(); err != nil || b.State != model.StateAborted {
		t.Errorf("aborted tape: state = %v, err = %v", r1.State(), err)
	}

	r2, _ := NewReader(incomplete, prof)
	if b, err := r2.ReadBody(); err != nil || b.State != model.StateIncomplete {
		t.Errorf("incomplete tape: state = %v, err = %v", r2.State(), err)
	}
}

func TestStateBeforeReadBody(t *testing.T) {
	prof := mustProfile(t, profile.AFREto)
	r, err := NewReader("does-not-matter.txt", prof)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.State(); got != model.StateError {
		t.Errorf("State() before ReadBody = %q, want %q", got, model.StateError)
	}
}

func TestReadBodyLAC210(t *testing.T) {
	prof := mustProfile(t, profile.SerconLAC210)
	header := []string{
		"SERCON JP LAC 210",
		"LOTE......: L-0815",
		"CICLO.....: CICLO 03",
		"SETPOINT..: 134,0 C",
		"07:3013/04/2024 INICIANDO",
	}
	body := []string{
		"HORA   TCI    PCI    TI",
		"07:35  102,5  1,02  30,1",
		"07:40  INICIO ESTERILIZACAO",
		"07:45  134,2  2,10  30,4",
		"08:10  FIM DE CICLO",
	}
	path := writeTape(t, prof, header, body)

	r, err := NewReader(path, prof)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.ReadBody()
	if err != nil {
		t.Fatalf("ReadBody failed: %v", err)
	}

	if len(b.Measurements) != 2 {
		t.Fatalf("measurements = %d, want 2", len(b.Measurements))
	}
	want := time.Date(2024, 4, 13, 7, 35, 0, 0, time.UTC)
	if !b.Measurements[0].Timestamp.Equal(want) {
		t.Errorf("first timestamp = %v, want %v", b.Measurements[0].Timestamp, want)
	}
	if b.Measurements[0].Values[0] != 102.5 {
		t.Errorf("first TCI = %v", b.Measurements[0].Values[0])
	}
	if b.State != model.StateCompleted {
		t.Errorf("state = %q", b.State)
	}
}

func TestNewReaderValidation(t *testing.T) {
	prof := mustProfile(t, profile.AFREto)
	if _, err := NewReader("", prof); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := NewReader("x.txt", nil); err == nil {
		t.Error("expected error for nil profile")
	}
}

func TestReadHeaderMissingFile(t *testing.T) {
	prof := mustProfile(t, profile.AFREto)
	r, err := NewReader(filepath.Join(t.TempDir(), "nope.txt"), prof)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadHeader(); err == nil {
		t.Error("expected error for missing file")
	}
}
