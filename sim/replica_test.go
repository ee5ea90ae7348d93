package sim

import (
	"math"
	"testing"

	"github.com/pthm-cable/remd/config"
)

// testConfig returns a small ensemble setup with binary-exact timing so
// window boundaries land on integer step counts.
func testConfig() *config.Config {
	return &config.Config{
		Restraint: config.RestraintConfig{
			NBins:        32,
			BinWidth:     0.125,
			MinDist:      0.25,
			MaxDist:      3.5,
			NSamples:     4,
			SamplePeriod: 0.0625,
			NWindows:     2,
			K:            50.0,
			Sigma:        0.25,
		},
		Reference: config.ReferenceConfig{
			Peaks: []config.PeakConfig{
				{Mean: 1.0, Sigma: 0.25, Weight: 1.0},
			},
		},
		Sim: config.SimConfig{
			DT:          0.0078125, // 1/128
			Beads:       3,
			BondLength:  0.35,
			BondK:       800.0,
			Gamma:       50.0,
			Temperature: 2.5,
			Steps:       256,
		},
		Ensemble: config.EnsembleConfig{Replicas: 1},
	}
}

func TestReplicaWindowSchedule(t *testing.T) {
	cfg := testConfig()
	runner, err := NewRunner(cfg, Options{Seed: 42})
	if err != nil {
		t.Fatal(err)
	}
	if err := runner.Run(); err != nil {
		t.Fatal(err)
	}

	// 256 steps of 1/128 ps = 2 ps; windows of 4 samples every 1/16 ps
	// commit every 0.25 ps.
	pot := runner.Replicas()[0].Restraint().Potential()
	if pot.WindowCount() != 8 {
		t.Errorf("WindowCount = %d, want 8", pot.WindowCount())
	}
	if pot.HistoryLen() != 2 {
		t.Errorf("HistoryLen = %d, want 2 (capped at n_windows)", pot.HistoryLen())
	}
}

// TestRunnerConsensus runs a two-member ensemble and checks that both
// replicas end up with the identical working histogram: the reduction
// hands every member the same consensus density.
func TestRunnerConsensus(t *testing.T) {
	cfg := testConfig()
	cfg.Ensemble.Replicas = 2

	runner, err := NewRunner(cfg, Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	if err := runner.Run(); err != nil {
		t.Fatal(err)
	}

	a := runner.Replicas()[0].Restraint().Potential()
	b := runner.Replicas()[1].Restraint().Potential()

	if a.WindowCount() != b.WindowCount() {
		t.Fatalf("window counts diverged: %d vs %d", a.WindowCount(), b.WindowCount())
	}
	if a.WindowCount() == 0 {
		t.Fatal("no windows committed")
	}

	ha, hb := a.WorkingHistogram(), b.WorkingHistogram()
	for i := range ha {
		if math.Abs(ha[i]-hb[i]) > 1e-12 {
			t.Errorf("bin %d: replica histograms diverged: %v vs %v", i, ha[i], hb[i])
		}
	}
}

func TestRunnerDeterministic(t *testing.T) {
	run := func() []float64 {
		cfg := testConfig()
		runner, err := NewRunner(cfg, Options{Seed: 99})
		if err != nil {
			t.Fatal(err)
		}
		if err := runner.Run(); err != nil {
			t.Fatal(err)
		}
		pot := runner.Replicas()[0].Restraint().Potential()
		out := make([]float64, len(pot.WorkingHistogram()))
		copy(out, pot.WorkingHistogram())
		return out
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("bin %d differs across identical seeds: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestNewRunnerRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Restraint.NBins = 0
	if _, err := NewRunner(cfg, Options{}); err == nil {
		t.Error("expected error for invalid restraint params")
	}

	cfg = testConfig()
	cfg.Ensemble.Replicas = -1
	if _, err := NewRunner(cfg, Options{Replicas: -1}); err == nil {
		t.Error("expected error for negative replica count")
	}
}
