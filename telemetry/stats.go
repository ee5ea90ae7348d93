package telemetry

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds per-window statistics for one replica's restraint.
type WindowStats struct {
	Replica int     `csv:"replica"`
	Window  int     `csv:"window"`
	SimTime float64 `csv:"sim_time"`

	// Raw distance samples of the committed window
	SampleMean float64 `csv:"sample_mean"`
	SampleStd  float64 `csv:"sample_std"`
	SampleP10  float64 `csv:"sample_p10"`
	SampleP50  float64 `csv:"sample_p50"`
	SampleP90  float64 `csv:"sample_p90"`

	// Working histogram (sampled-vs-experimental mismatch)
	MismatchMean float64 `csv:"mismatch_mean"`
	MismatchMax  float64 `csv:"mismatch_max"`
	MismatchL2   float64 `csv:"mismatch_l2"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeWindowStats fills a WindowStats record from one committed
// window's raw samples and the recomputed working histogram.
func ComputeWindowStats(replica, window int, t float64, samples, working []float64) WindowStats {
	ws := WindowStats{Replica: replica, Window: window, SimTime: t}

	if len(samples) > 0 {
		ws.SampleMean = stat.Mean(samples, nil)
		if len(samples) > 1 {
			ws.SampleStd = stat.StdDev(samples, nil)
		}

		sorted := make([]float64, len(samples))
		copy(sorted, samples)
		sort.Float64s(sorted)
		ws.SampleP10 = Percentile(sorted, 0.10)
		ws.SampleP50 = Percentile(sorted, 0.50)
		ws.SampleP90 = Percentile(sorted, 0.90)
	}

	if len(working) > 0 {
		ws.MismatchMean = stat.Mean(working, nil)
		var maxAbs float64
		for _, v := range working {
			if a := math.Abs(v); a > maxAbs {
				maxAbs = a
			}
		}
		ws.MismatchMax = maxAbs
		ws.MismatchL2 = floats.Norm(working, 2)
	}

	return ws
}
