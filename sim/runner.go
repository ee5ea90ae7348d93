package sim

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pthm-cable/remd/config"
	"github.com/pthm-cable/remd/ensemble"
	"github.com/pthm-cable/remd/restraint"
	"github.com/pthm-cable/remd/telemetry"
)

// Options holds runner settings that come from the command line rather
// than the config file.
type Options struct {
	Replicas int // 0 = use config
	Steps    int // 0 = use config
	Seed     uint64
	Output   *telemetry.OutputManager
	LogStats bool
}

// Runner drives an ensemble of replica simulations, one goroutine per
// replica, sharing a single in-process reduction group.
type Runner struct {
	cfg      *config.Config
	steps    int
	replicas []*Replica
	group    *ensemble.Group
}

// NewRunner builds the shared reduction group, the experimental
// reference, and one replica per ensemble member.
func NewRunner(cfg *config.Config, opts Options) (*Runner, error) {
	n := opts.Replicas
	if n == 0 {
		n = cfg.Ensemble.Replicas
	}
	if n <= 0 {
		return nil, fmt.Errorf("sim: ensemble needs at least one replica, got %d", n)
	}
	steps := opts.Steps
	if steps == 0 {
		steps = cfg.Sim.Steps
	}

	experimental, err := referenceHistogram(cfg)
	if err != nil {
		return nil, err
	}

	params := restraint.Params{
		NBins:        cfg.Restraint.NBins,
		BinWidth:     cfg.Restraint.BinWidth,
		MinDist:      cfg.Restraint.MinDist,
		MaxDist:      cfg.Restraint.MaxDist,
		Experimental: experimental,
		NSamples:     cfg.Restraint.NSamples,
		SamplePeriod: cfg.Restraint.SamplePeriod,
		NWindows:     cfg.Restraint.NWindows,
		K:            cfg.Restraint.K,
		Sigma:        cfg.Restraint.Sigma,
	}

	group := ensemble.NewGroup(n)
	// The engine-side reduction hands back the ensemble mean rather
	// than the raw sum, so the consensus density keeps unit mass.
	reduce := group.MeanReduce()

	logEvery := opts.LogStats || cfg.Telemetry.LogEveryWindow

	r := &Runner{cfg: cfg, steps: steps, group: group}
	for i := 0; i < n; i++ {
		collector := telemetry.NewCollector(i, opts.Output, logEvery)
		replica, err := NewReplica(i, cfg, params, ensemble.NewResources(reduce), opts.Seed+uint64(i)*7919, collector)
		if err != nil {
			return nil, fmt.Errorf("sim: building replica %d: %w", i, err)
		}
		r.replicas = append(r.replicas, replica)
	}
	return r, nil
}

// Replicas returns the ensemble members.
func (r *Runner) Replicas() []*Replica {
	return r.replicas
}

// Run steps every replica to completion. The window-boundary reductions
// keep the replicas loosely in lockstep; a reduction failure on any
// member aborts the run with that error.
func (r *Runner) Run() error {
	slog.Info("starting ensemble run",
		"replicas", len(r.replicas),
		"steps", r.steps,
		"beads", r.cfg.Sim.Beads,
	)

	errCh := make(chan error, len(r.replicas))
	var wg sync.WaitGroup
	for _, replica := range r.replicas {
		wg.Add(1)
		go func(rep *Replica) {
			defer wg.Done()
			if err := rep.Run(r.steps); err != nil {
				slog.Error("replica failed", "replica", rep.ID(), "error", err)
				errCh <- err
			}
		}(replica)
	}
	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return err
	}

	slog.Info("ensemble run complete",
		"replicas", len(r.replicas),
		"windows", r.replicas[0].Restraint().Potential().WindowCount(),
	)
	return nil
}

// referenceHistogram resolves the experimental reference from config:
// an explicit histogram when given, otherwise a synthesized Gaussian
// mixture.
func referenceHistogram(cfg *config.Config) ([]float64, error) {
	if len(cfg.Reference.Histogram) > 0 {
		return cfg.Reference.Histogram, nil
	}
	peaks := make([]restraint.Peak, len(cfg.Reference.Peaks))
	for i, p := range cfg.Reference.Peaks {
		peaks[i] = restraint.Peak{Mean: p.Mean, Sigma: p.Sigma, Weight: p.Weight}
	}
	return restraint.ReferenceFromPeaks(cfg.Restraint.NBins, cfg.Restraint.BinWidth, peaks)
}
