// Package config provides configuration loading and access for the
// ensemble runner.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all runner configuration parameters.
type Config struct {
	Restraint RestraintConfig `yaml:"restraint"`
	Reference ReferenceConfig `yaml:"reference"`
	Sim       SimConfig       `yaml:"sim"`
	Ensemble  EnsembleConfig  `yaml:"ensemble"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RestraintConfig holds the pair-restraint parameters.
type RestraintConfig struct {
	NBins        int     `yaml:"n_bins"`
	BinWidth     float64 `yaml:"bin_width"`     // nm per bin
	MinDist      float64 `yaml:"min_dist"`      // flat-bottom lower edge, nm
	MaxDist      float64 `yaml:"max_dist"`      // flat-bottom upper edge, nm
	NSamples     int     `yaml:"n_samples"`     // distance samples per window
	SamplePeriod float64 `yaml:"sample_period"` // ps between samples
	NWindows     int     `yaml:"n_windows"`     // windows averaged into the working histogram
	K            float64 `yaml:"k"`             // force constant, kJ/mol/nm^2
	Sigma        float64 `yaml:"sigma"`         // Gaussian smoothing width, nm
}

// ReferenceConfig describes the experimental reference distribution.
// Either an explicit per-bin histogram or a Gaussian mixture to
// synthesize one from; the explicit histogram wins when both are set.
type ReferenceConfig struct {
	Histogram []float64    `yaml:"histogram"`
	Peaks     []PeakConfig `yaml:"peaks"`
}

// PeakConfig is one Gaussian component of a synthesized reference.
type PeakConfig struct {
	Mean   float64 `yaml:"mean"`
	Sigma  float64 `yaml:"sigma"`
	Weight float64 `yaml:"weight"`
}

// SimConfig holds the bead-chain replica driver parameters.
type SimConfig struct {
	DT          float64 `yaml:"dt"`           // ps per step
	Beads       int     `yaml:"beads"`        // chain length; restraint binds first and last
	BondLength  float64 `yaml:"bond_length"`  // equilibrium bond length, nm
	BondK       float64 `yaml:"bond_k"`       // bond force constant, kJ/mol/nm^2
	Gamma       float64 `yaml:"gamma"`        // friction coefficient
	Temperature float64 `yaml:"temperature"`  // thermal noise scale, kT in kJ/mol
	Steps       int     `yaml:"steps"`        // steps per run
}

// EnsembleConfig holds ensemble composition parameters.
type EnsembleConfig struct {
	Replicas int `yaml:"replicas"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogEveryWindow bool `yaml:"log_every_window"` // slog each committed window
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
