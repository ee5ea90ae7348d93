package restraint

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// BlurToGrid converts a batch of scalar samples into a smoothed density
// grid by placing a Gaussian of width sigma at each sample and summing
// the contributions at every grid point. The result is normalized so the
// grid entries sum to exactly 1.
type BlurToGrid struct {
	low      float64 // coordinate of grid point zero
	binWidth float64
	sigma    float64
}

// NewBlurToGrid creates a blur operator for a grid anchored at low with
// the given spacing.
func NewBlurToGrid(low, binWidth, sigma float64) *BlurToGrid {
	return &BlurToGrid{low: low, binWidth: binWidth, sigma: sigma}
}

// Grid blurs samples onto grid, overwriting its contents. The grid length
// sets the number of bins. Samples far from the grid are not truncated;
// cost is O(len(grid) * len(samples)), fine for the small grids used here.
func (b *BlurToGrid) Grid(samples []float64, grid []float64) {
	n := len(samples)
	if n == 0 || len(grid) == 0 {
		return
	}

	denom := 1.0 / (2 * b.sigma * b.sigma)
	norm := 1.0 / (float64(n) * math.Sqrt(2*math.Pi*b.sigma*b.sigma))

	for i := range grid {
		x := b.low + float64(i)*b.binWidth
		var v float64
		for _, s := range samples {
			d := x - s
			v += norm * math.Exp(-d*d*denom)
		}
		grid[i] = v
	}

	// Discretization and edge truncation leave the raw sum slightly off
	// from a unit probability mass; rescale so the grid is an exact
	// discrete density.
	if sum := floats.Sum(grid); sum > 0 {
		floats.Scale(1/sum, grid)
	}
}
