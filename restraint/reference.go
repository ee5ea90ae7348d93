package restraint

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Peak describes one Gaussian component of a synthetic reference
// distribution.
type Peak struct {
	Mean   float64
	Sigma  float64
	Weight float64
}

// ReferenceFromPeaks evaluates a Gaussian mixture at the bin centers of
// the restraint grid and normalizes the result to a discrete density
// summing to 1. It is a convenience for runs where no experimentally
// measured histogram is available.
func ReferenceFromPeaks(nBins int, binWidth float64, peaks []Peak) ([]float64, error) {
	if nBins <= 0 || binWidth <= 0 {
		return nil, fmt.Errorf("restraint: reference grid needs positive n_bins and bin_width, got %d and %g", nBins, binWidth)
	}
	if len(peaks) == 0 {
		return nil, fmt.Errorf("restraint: reference synthesis needs at least one peak")
	}

	grid := make([]float64, nBins)
	for _, p := range peaks {
		if p.Sigma <= 0 || p.Weight <= 0 {
			return nil, fmt.Errorf("restraint: reference peak at %g needs positive sigma and weight", p.Mean)
		}
		dist := distuv.Normal{Mu: p.Mean, Sigma: p.Sigma}
		for i := range grid {
			grid[i] += p.Weight * dist.Prob(float64(i)*binWidth)
		}
	}

	sum := floats.Sum(grid)
	if sum <= 0 {
		return nil, fmt.Errorf("restraint: reference peaks carry no mass on the grid")
	}
	floats.Scale(1/sum, grid)
	return grid, nil
}
