// Command ct parses sterilization digital tapes and answers the queries
// the business layer needs: header fields, cycle state, per-phase
// statistics, and lethality curves.
//
// Usage:
//
//	ct -profile sercon_lac210 tape1.txt tape2.txt
//	ct -equipment ETO01 -stats "LEAK-TEST,ESTERILIZACAO,AERACAO" tape.txt
//	ct -profile afr_eto -json tape.txt > cycle.json
//
// Files are parsed in parallel; each file gets its own reader and no state
// is shared between parses.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/steriliza/cycletape/pkg/config"
	"github.com/steriliza/cycletape/pkg/cycle"
	"github.com/steriliza/cycletape/pkg/export"
	"github.com/steriliza/cycletape/pkg/lethality"
	"github.com/steriliza/cycletape/pkg/model"
	"github.com/steriliza/cycletape/pkg/profile"
	"github.com/steriliza/cycletape/pkg/stats"
	"github.com/steriliza/cycletape/pkg/version"
)

func main() {
	profileFlag := flag.String("profile", "", "Device profile ID (one of: "+profileList()+")")
	equipmentFlag := flag.String("equipment", "", "Equipment alias from the config file (sets profile, phases and kinetics)")
	configFlag := flag.String("config", "", "Config file path (default: XDG config dir)")
	statsFlag := flag.String("stats", "", "Comma-separated phase sequence for statistics")
	lethalityFlag := flag.String("lethality", "", "Phase window for the lethality curve, as \"START,END\"")
	n0Flag := flag.Float64("n0", 1e6, "Initial microbial population for the lethality curve")
	kineticsFlag := flag.String("kinetics", "", "Named kinetics set from the config file")
	jsonFlag := flag.Bool("json", false, "Write the parsed cycle as JSON to stdout")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *versionFlag {
		fmt.Println("ct", version.Version)
		return
	}

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ct [options] <tape-file>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := buildLogger(*debugFlag)
	defer logger.Sync()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	profileID, phases, kineticsName := resolveSelection(cfg, *equipmentFlag, *profileFlag, *statsFlag, *kineticsFlag)
	if profileID == "" {
		fmt.Fprintln(os.Stderr, "Error: no device profile selected (use -profile or -equipment)")
		os.Exit(2)
	}
	prof, err := profile.Resolve(profileID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	var window []string
	if *lethalityFlag != "" {
		window = splitList(*lethalityFlag)
		if len(window) != 2 {
			fmt.Fprintln(os.Stderr, "Error: -lethality wants exactly two phase labels, \"START,END\"")
			os.Exit(2)
		}
	}

	outputs := make([]string, len(files))
	var g errgroup.Group
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			out, err := processFile(path, prof, phases, window, *n0Flag, kineticsName, cfg, *jsonFlag, logger)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, out := range outputs {
		fmt.Print(out)
	}
}

func buildLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// resolveSelection merges the equipment entry (if any) with explicit flags;
// explicit flags win.
func resolveSelection(cfg config.Config, equipment, prof, statsList, kinetics string) (profile.ID, []string, string) {
	var (
		id     profile.ID
		phases []string
	)
	if equipment != "" {
		if eq := cfg.FindEquipment(equipment); eq != nil {
			id = eq.Profile
			phases = eq.Phases
			if kinetics == "" {
				kinetics = eq.Kinetics
			}
		}
	}
	if prof != "" {
		id = profile.ID(prof)
	}
	if statsList != "" {
		phases = splitList(statsList)
	}
	return id, phases, kinetics
}

func processFile(path string, prof profile.Profile, phases, window []string, n0 float64, kineticsName string, cfg config.Config, asJSON bool, logger *zap.Logger) (string, error) {
	cyc, err := cycle.New(path, prof, cycle.WithLogger(logger))
	if err != nil {
		return "", err
	}
	header, body, err := cyc.ReadAll()
	if err != nil {
		return "", err
	}

	if asJSON {
		var b strings.Builder
		if err := export.WriteJSON(&b, header, body); err != nil {
			return "", err
		}
		return b.String(), nil
	}

	var b strings.Builder
	writeSummary(&b, path, header, body)

	if total, err := cyc.TotalDuration(); err == nil {
		fmt.Fprintf(&b, "Duracao total: %s\n", stats.FormatDuration(total))
	}

	if len(phases) > 0 {
		report, err := cyc.Statistics(phases)
		if err != nil {
			return "", fmt.Errorf("statistics: %w", err)
		}
		b.WriteString("\n")
		b.WriteString(report.Render())
	}

	if len(window) == 2 {
		params, ok := cfg.Kinetics[kineticsName]
		if !ok {
			return "", fmt.Errorf("unknown kinetics set %q (configure one under kinetics:)", kineticsName)
		}
		points, err := cyc.LethalityCurve(n0, window[0], window[1], params)
		if err != nil {
			return "", fmt.Errorf("lethality curve: %w", err)
		}
		b.WriteString("\n")
		writeCurve(&b, points)
	}

	b.WriteString("\n")
	return b.String(), nil
}

func writeSummary(b *strings.Builder, path string, header *model.HeaderRecord, body *model.CycleBody) {
	fmt.Fprintf(b, "Arquivo: %s\n", path)
	for _, kv := range []struct {
		label string
		key   model.FieldKey
	}{
		{"Equipamento", model.EquipmentKey},
		{"Operador", model.OperatorKey},
		{"Ciclo", model.SelectedCycleKey},
		{"Programa", model.ProgramKey},
		{"Lote", model.BatchKey},
	} {
		if v := header.Field(kv.key); v != "" {
			fmt.Fprintf(b, "%s: %s\n", kv.label, v)
		}
	}
	fmt.Fprintf(b, "Inicio: %s %s\n", header.StartDate.Format("02-01-2006"), header.StartClock)
	fmt.Fprintf(b, "Estado: %s\n", body.State)
	for _, w := range header.Warnings {
		fmt.Fprintf(b, "Aviso: %s\n", w)
	}
}

func writeCurve(b *strings.Builder, points []lethality.Point) {
	b.WriteString("Curva de letalidade:\n")
	for _, p := range points {
		fmt.Fprintf(b, "  %s  N=%.4g\n", p.Timestamp.Format("15:04:05"), p.Population)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func profileList() string {
	ids := profile.All()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
