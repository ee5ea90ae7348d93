package restraint

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/remd/ensemble"
)

// PointData is the output of one force evaluation.
type PointData struct {
	Force r3.Vec
	// Energy is carried for interface symmetry but not computed; the
	// potential is used purely as a biasing force.
	Energy float64
}

// EnsembleHarmonic computes the ensemble-restrained pair bias.
//
// Distances sampled at SamplePeriod intervals fill a window of NSamples
// entries. At each window boundary the window is blurred onto a density
// grid, summed across all ensemble members through the injected
// reduction, and pushed into a rolling history of NWindows grids. The
// working histogram, the mean over that history of (density -
// experimental), drives the interior force; outside [MinDist, MaxDist] a
// plain harmonic restoring force applies.
//
// One instance is owned and driven by exactly one goroutine.
type EnsembleHarmonic struct {
	nBins    int
	binWidth float64

	minDist float64
	maxDist float64

	// Working histogram: smoothed sampled-vs-experimental mismatch.
	histogram    []float64
	experimental []float64

	nSamples       int
	currentSample  int
	samplePeriod   float64
	nextSampleTime float64
	samples        []float64

	nWindows             int
	windowCount          int
	windowStartTime      float64
	nextWindowUpdateTime float64
	windows              *WindowHistory

	k     float64
	sigma float64

	blur  *BlurToGrid
	local []float64 // scratch for the pre-reduction blurred grid

	// OnCommit, when set, is invoked after every window commit with the
	// window index (0-based), the commit time, the raw distance samples
	// of the committed window, and the recomputed working histogram.
	// Both slices are owned by the potential and only valid for the
	// duration of the call.
	OnCommit func(window int, t float64, samples, working []float64)
}

// NewEnsembleHarmonic validates params and builds a potential with all
// buffers preallocated.
func NewEnsembleHarmonic(p Params) (*EnsembleHarmonic, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	experimental := make([]float64, p.NBins)
	copy(experimental, p.Experimental)

	return &EnsembleHarmonic{
		nBins:        p.NBins,
		binWidth:     p.BinWidth,
		minDist:      p.MinDist,
		maxDist:      p.MaxDist,
		histogram:    make([]float64, p.NBins),
		experimental: experimental,
		nSamples:     p.NSamples,
		samplePeriod: p.SamplePeriod,
		// The true integer step count is not visible here, so the first
		// sample lands at approximately one period into the run.
		nextSampleTime:       p.SamplePeriod,
		samples:              make([]float64, p.NSamples),
		nWindows:             p.NWindows,
		nextWindowUpdateTime: float64(p.NSamples) * p.SamplePeriod,
		windows:              NewWindowHistory(p.NWindows, p.NBins),
		k:                    p.K,
		sigma:                p.Sigma,
		blur:                 NewBlurToGrid(0, p.BinWidth, p.Sigma),
		local:                make([]float64, p.NBins),
	}, nil
}

// Calculate evaluates the bias force on a site at v relative to the
// reference position v0. It runs on the per-step hot path: no sampling,
// no aggregation, no allocation.
func (e *EnsembleHarmonic) Calculate(v, v0 r3.Vec, _ float64) PointData {
	rdiff := r3.Sub(v, v0)
	dist := r3.Norm(rdiff)

	var out PointData
	if dist == 0 {
		// Direction of the force is ill-defined when v == v0.
		return out
	}

	var f float64
	switch {
	case dist > e.maxDist:
		f = e.k * (e.maxDist - dist)
	case dist < e.minDist:
		f = e.k * (e.minDist - dist)
	default:
		// Gradient of the Gaussian-smoothed working histogram at dist.
		var fScal float64
		normConst := math.Sqrt(2*math.Pi) * e.sigma * e.sigma * e.sigma
		for n := 0; n < e.nBins; n++ {
			x := float64(n)*e.binWidth - dist
			fScal += e.histogram[n] * math.Exp(-0.5*x*x/(e.sigma*e.sigma)) * x / normConst
		}
		f = -e.k * fScal
	}

	out.Force = r3.Scale(f/dist, rdiff)
	return out
}

// Callback is the low-frequency update path. It records a distance
// sample when the sample schedule has come due and, at a window
// boundary, commits the window: blur, all-reduce across the ensemble,
// history push, and a full recompute of the working histogram.
//
// The returned error is a reduction failure and is fatal to the
// enclosing simulation; it is never retried. Scheduling uses additive
// floating-point bookkeeping and drifts over long runs relative to the
// integer step count, which this component cannot see. That drift is
// part of the restraint's timing semantics and is deliberately left
// uncorrected.
func (e *EnsembleHarmonic) Callback(v, v0 r3.Vec, t float64, res *ensemble.Resources) error {
	dist := r3.Norm(r3.Sub(v, v0))

	if t >= e.nextSampleTime {
		e.samples[e.currentSample] = dist
		e.currentSample++
		e.nextSampleTime = float64(e.currentSample+1)*e.samplePeriod + e.windowStartTime
	}

	if t >= e.nextWindowUpdateTime {
		if e.currentSample != e.nSamples {
			// The caller's update cadence and the sample period are
			// consistent by construction; a short window is a caller
			// defect, not a runtime condition.
			panic(fmt.Sprintf("restraint: window committed with %d of %d samples at t=%g",
				e.currentSample, e.nSamples, t))
		}

		e.blur.Grid(e.samples, e.local)

		// The handle is only valid for this one commit; acquiring it
		// per window leaves the collaborator free to manage locking or
		// session state around the reduction.
		slot := e.windows.NextSlot()
		if err := res.Handle().AllReduceSum(e.local, slot); err != nil {
			return fmt.Errorf("restraint: window %d reduction: %w", e.windowCount, err)
		}

		e.windows.Recompute(e.histogram, e.experimental)
		if e.OnCommit != nil {
			e.OnCommit(e.windowCount, t, e.samples, e.histogram)
		}
		e.windowCount++

		e.windowStartTime = t
		e.nextWindowUpdateTime = float64(e.nSamples)*e.samplePeriod + e.windowStartTime
		e.currentSample = 0
		e.nextSampleTime = t + e.samplePeriod
	}

	return nil
}

// NextUpdateTime returns the earliest simulation time at which Callback
// has work to do.
func (e *EnsembleHarmonic) NextUpdateTime() float64 {
	return math.Min(e.nextSampleTime, e.nextWindowUpdateTime)
}

// WindowCount returns the number of windows committed so far.
func (e *EnsembleHarmonic) WindowCount() int {
	return e.windowCount
}

// HistoryLen returns the number of grids currently held in the rolling
// history, at most NWindows.
func (e *EnsembleHarmonic) HistoryLen() int {
	return e.windows.Len()
}

// WorkingHistogram returns the current working histogram. The slice is
// owned by the potential and must not be modified.
func (e *EnsembleHarmonic) WorkingHistogram() []float64 {
	return e.histogram
}

// WindowSamples returns the distances recorded so far in the current
// window. The slice is owned by the potential and must not be modified.
func (e *EnsembleHarmonic) WindowSamples() []float64 {
	return e.samples[:e.currentSample]
}
