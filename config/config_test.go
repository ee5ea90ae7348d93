package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Restraint.NBins <= 0 {
		t.Errorf("default n_bins = %d, want positive", cfg.Restraint.NBins)
	}
	if cfg.Restraint.BinWidth <= 0 {
		t.Errorf("default bin_width = %v, want positive", cfg.Restraint.BinWidth)
	}
	if cfg.Restraint.MinDist >= cfg.Restraint.MaxDist {
		t.Errorf("default flat-bottom bounds inverted: [%v, %v]", cfg.Restraint.MinDist, cfg.Restraint.MaxDist)
	}
	if len(cfg.Reference.Peaks) == 0 && len(cfg.Reference.Histogram) == 0 {
		t.Error("defaults carry neither reference peaks nor a histogram")
	}
	if cfg.Ensemble.Replicas <= 0 {
		t.Errorf("default replicas = %d, want positive", cfg.Ensemble.Replicas)
	}
	if cfg.Sim.DT <= 0 || cfg.Sim.Gamma <= 0 {
		t.Errorf("default integrator params dt=%v gamma=%v, want positive", cfg.Sim.DT, cfg.Sim.Gamma)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	userYAML := `
restraint:
  n_bins: 64
ensemble:
  replicas: 12
`
	if err := os.WriteFile(path, []byte(userYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Restraint.NBins != 64 {
		t.Errorf("n_bins = %d, want user override 64", cfg.Restraint.NBins)
	}
	if cfg.Ensemble.Replicas != 12 {
		t.Errorf("replicas = %d, want user override 12", cfg.Ensemble.Replicas)
	}
	// Fields absent from the user file keep defaults.
	if cfg.Restraint.SamplePeriod <= 0 {
		t.Errorf("sample_period = %v, defaults not merged", cfg.Restraint.SamplePeriod)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Restraint.Sigma = 0.31415

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Restraint.Sigma != 0.31415 {
		t.Errorf("sigma = %v, want 0.31415 after round trip", loaded.Restraint.Sigma)
	}
}
