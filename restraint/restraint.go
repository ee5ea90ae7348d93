package restraint

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/remd/ensemble"
)

// PairRestraint is the engine-facing contract for a two-site restraint.
//
// Evaluate runs on every simulation step and must be cheap and
// deterministic. Update runs on the host's coarser schedule, whenever
// the current time has passed NextUpdateTime, and may block in a
// cross-ensemble reduction; an error from Update is fatal to the run.
type PairRestraint interface {
	// Sites returns the indices of the restrained site and its
	// reference site in the host's particle numbering.
	Sites() []int
	Evaluate(r1, r2 r3.Vec, t float64) PointData
	Update(r1, r2 r3.Vec, t float64) error
	NextUpdateTime() float64
}

// Restraint binds an EnsembleHarmonic potential to a site pair and the
// ensemble resources it reduces through.
type Restraint struct {
	sites     []int
	potential *EnsembleHarmonic
	resources *ensemble.Resources
}

var _ PairRestraint = (*Restraint)(nil)

// NewRestraint constructs a restraint over the given two sites.
func NewRestraint(sites []int, p Params, res *ensemble.Resources) (*Restraint, error) {
	pot, err := NewEnsembleHarmonic(p)
	if err != nil {
		return nil, err
	}
	return &Restraint{sites: sites, potential: pot, resources: res}, nil
}

// Sites returns the restrained site indices.
func (r *Restraint) Sites() []int {
	return r.sites
}

// Evaluate computes the current bias force on r1 relative to r2.
func (r *Restraint) Evaluate(r1, r2 r3.Vec, t float64) PointData {
	return r.potential.Calculate(r1, r2, t)
}

// Update advances the sampler and, at window boundaries, performs the
// ensemble reduction and histogram recompute.
func (r *Restraint) Update(r1, r2 r3.Vec, t float64) error {
	return r.potential.Callback(r1, r2, t, r.resources)
}

// NextUpdateTime returns the next simulation time Update should be
// called at.
func (r *Restraint) NextUpdateTime() float64 {
	return r.potential.NextUpdateTime()
}

// Potential exposes the underlying potential for telemetry hooks and
// state inspection.
func (r *Restraint) Potential() *EnsembleHarmonic {
	return r.potential
}
