// Package config handles loading and saving ct configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/ct/config.yaml
//
// The file binds equipment aliases to device profiles and names the kinetic
// parameter sets used for lethality curves. Kinetic constants are never
// hard-coded: a caller picks a named set explicitly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/steriliza/cycletape/pkg/lethality"
	"github.com/steriliza/cycletape/pkg/profile"
)

// Equipment binds an equipment alias (the name operators use) to the
// device profile its tapes are written in.
type Equipment struct {
	Alias   string     `yaml:"alias"`
	Profile profile.ID `yaml:"profile"`
	// Phases is the default phase sequence for statistics queries on this
	// equipment, in cycle order.
	Phases []string `yaml:"phases,omitempty"`
	// Kinetics names the lethality parameter set for this equipment.
	Kinetics string `yaml:"kinetics,omitempty"`
}

// Config is the top-level configuration for ct.
type Config struct {
	Equipment []Equipment                 `yaml:"equipment,omitempty"`
	Kinetics  map[string]lethality.Params `yaml:"kinetics,omitempty"`
}

// DefaultConfig returns a Config with one reference kinetic set. The
// `eto_default` constants describe a nominal ETO chamber and exist so a
// fresh install can compute a curve; real deployments are expected to
// override them per chamber.
func DefaultConfig() Config {
	return Config{
		Kinetics: map[string]lethality.Params{
			"eto_default": {
				DRef:              2.5,
				ZValue:            29.0,
				TRef:              54.0,
				CRef:              0.6,
				CScale:            147.0,
				ChamberVolumeM3:   10.0,
				TempColumn:        1,
				MassColumn:        3,
				MassSanityLimitKg: 50.0,
				FallbackMassKg:    6.0,
			},
		},
	}
}

// ConfigDir returns the XDG config directory for ct.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "ct")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ct")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Kinetics == nil {
		cfg.Kinetics = DefaultConfig().Kinetics
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks that every equipment entry names a known profile and an
// existing kinetic set.
func (c Config) Validate() error {
	for _, eq := range c.Equipment {
		if _, err := profile.Resolve(eq.Profile); err != nil {
			return fmt.Errorf("equipment %q: %w", eq.Alias, err)
		}
		if eq.Kinetics != "" {
			if _, ok := c.Kinetics[eq.Kinetics]; !ok {
				return fmt.Errorf("equipment %q: unknown kinetics set %q", eq.Alias, eq.Kinetics)
			}
		}
	}
	return nil
}

// FindEquipment returns the equipment entry with the given alias, or nil.
func (c Config) FindEquipment(alias string) *Equipment {
	for i := range c.Equipment {
		if strings.EqualFold(c.Equipment[i].Alias, alias) {
			return &c.Equipment[i]
		}
	}
	return nil
}
