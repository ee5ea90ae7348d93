// Package restraint implements a residue-pair bias potential for
// restrained-ensemble simulations. A force between two sites is derived
// from the mismatch between a distance distribution sampled across all
// ensemble members and a fixed experimental reference distribution.
package restraint

import "fmt"

// Params holds the construction-time configuration for one pair restraint.
// All fields are fixed for the restraint's lifetime.
type Params struct {
	// Distance histogram grid: NBins points spaced BinWidth apart,
	// anchored at distance zero.
	NBins    int
	BinWidth float64

	// Flat-bottom potential boundaries.
	MinDist float64
	MaxDist float64

	// Experimental reference distribution, length NBins.
	Experimental []float64

	// Samples collected per window and the simulation-time spacing
	// between them. One window spans NSamples * SamplePeriod.
	NSamples     int
	SamplePeriod float64

	// Number of recent windows averaged into the working histogram.
	NWindows int

	// Harmonic force coefficient.
	K float64
	// Width of the Gaussian used both for blurring samples onto the
	// grid and for interpolating the working histogram.
	Sigma float64
}

// Validate checks the parameter invariants. A restraint must not be
// constructed from params that fail validation.
func (p *Params) Validate() error {
	if p.NBins <= 0 {
		return fmt.Errorf("restraint: n_bins must be positive, got %d", p.NBins)
	}
	if p.BinWidth <= 0 {
		return fmt.Errorf("restraint: bin_width must be positive, got %g", p.BinWidth)
	}
	if p.Sigma <= 0 {
		return fmt.Errorf("restraint: sigma must be positive, got %g", p.Sigma)
	}
	if p.NSamples <= 0 {
		return fmt.Errorf("restraint: n_samples must be positive, got %d", p.NSamples)
	}
	if p.SamplePeriod <= 0 {
		return fmt.Errorf("restraint: sample_period must be positive, got %g", p.SamplePeriod)
	}
	if p.NWindows <= 0 {
		return fmt.Errorf("restraint: n_windows must be positive, got %d", p.NWindows)
	}
	if p.MinDist >= p.MaxDist {
		return fmt.Errorf("restraint: min_dist %g must be below max_dist %g", p.MinDist, p.MaxDist)
	}
	if len(p.Experimental) != p.NBins {
		return fmt.Errorf("restraint: experimental histogram has %d bins, want %d", len(p.Experimental), p.NBins)
	}
	return nil
}
