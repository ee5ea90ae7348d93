// Package sim provides a small bead-chain Brownian-dynamics driver that
// hosts pair restraints, and a runner that steps an ensemble of replica
// simulations against a shared reduction group.
package sim

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/remd/components"
	"github.com/pthm-cable/remd/config"
	"github.com/pthm-cable/remd/ensemble"
	"github.com/pthm-cable/remd/restraint"
	"github.com/pthm-cable/remd/telemetry"
)

// Replica is one ensemble member: a chain of beads joined by harmonic
// bonds, integrated with overdamped Langevin dynamics. The restraint
// binds the last bead (site) to the first (reference). A replica is
// stepped by exactly one goroutine.
type Replica struct {
	id    int
	world *ecs.World

	mapper *ecs.Map3[components.Position, components.Force, components.Bead]
	filter *ecs.Filter3[components.Position, components.Force, components.Bead]

	posMap   *ecs.Map1[components.Position]
	forceMap *ecs.Map1[components.Force]

	beads []ecs.Entity

	restraint *restraint.Restraint
	collector *telemetry.Collector

	rng   *rand.Rand
	noise distuv.Normal

	dt         float64
	bondLength float64
	bondK      float64
	mobility   float64 // dt / gamma
	noiseScale float64 // sqrt(2 kT dt / gamma)

	step int
	time float64
}

// NewReplica builds one replica world with its restraint bound to the
// chain ends, reducing through res.
func NewReplica(id int, cfg *config.Config, params restraint.Params, res *ensemble.Resources, seed uint64, collector *telemetry.Collector) (*Replica, error) {
	nBeads := cfg.Sim.Beads
	if nBeads < 2 {
		nBeads = 2
	}

	sites := []int{nBeads - 1, 0}
	rst, err := restraint.NewRestraint(sites, params, res)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	src := rand.NewSource(seed)

	r := &Replica{
		id:         id,
		world:      world,
		mapper:     ecs.NewMap3[components.Position, components.Force, components.Bead](world),
		filter:     ecs.NewFilter3[components.Position, components.Force, components.Bead](world),
		posMap:     ecs.NewMap1[components.Position](world),
		forceMap:   ecs.NewMap1[components.Force](world),
		restraint:  rst,
		collector:  collector,
		rng:        rand.New(src),
		noise:      distuv.Normal{Mu: 0, Sigma: 1, Src: src},
		dt:         cfg.Sim.DT,
		bondLength: cfg.Sim.BondLength,
		bondK:      cfg.Sim.BondK,
		mobility:   cfg.Sim.DT / cfg.Sim.Gamma,
	}
	r.noiseScale = noiseScale(cfg.Sim.Temperature, cfg.Sim.DT, cfg.Sim.Gamma)

	if collector != nil {
		rst.Potential().OnCommit = collector.RecordWindow
	}

	r.spawnChain(nBeads)
	return r, nil
}

// spawnChain creates the bead entities laid out along x at bond-length
// spacing with a little thermal jitter.
func (r *Replica) spawnChain(n int) {
	r.beads = make([]ecs.Entity, 0, n)
	for i := 0; i < n; i++ {
		pos := components.Position{
			X: float64(i) * r.bondLength,
			Y: 0.1 * r.noise.Rand() * r.bondLength,
			Z: 0.1 * r.noise.Rand() * r.bondLength,
		}
		force := components.Force{}
		bead := components.Bead{Index: i}
		r.beads = append(r.beads, r.mapper.NewEntity(&pos, &force, &bead))
	}
}

// ID returns the replica's ensemble rank.
func (r *Replica) ID() int {
	return r.id
}

// Time returns the current simulation time.
func (r *Replica) Time() float64 {
	return r.time
}

// Restraint returns the replica's pair restraint.
func (r *Replica) Restraint() *restraint.Restraint {
	return r.restraint
}

// sitePositions returns the restrained site and reference positions.
func (r *Replica) sitePositions() (site, ref r3.Vec) {
	sites := r.restraint.Sites()
	site = r.posMap.Get(r.beads[sites[0]]).Vec()
	ref = r.posMap.Get(r.beads[sites[1]]).Vec()
	return site, ref
}

// Step advances the replica by one integration step and runs the
// restraint update when its schedule has come due. An error is a failed
// ensemble reduction and is fatal to the run.
func (r *Replica) Step() error {
	r.zeroForces()
	r.applyBondForces()
	r.applyRestraintForce()
	r.integrate()

	r.step++
	r.time = float64(r.step) * r.dt

	if r.time >= r.restraint.NextUpdateTime() {
		site, ref := r.sitePositions()
		if err := r.restraint.Update(site, ref, r.time); err != nil {
			return err
		}
	}
	return nil
}

// Run steps the replica for the given number of steps.
func (r *Replica) Run(steps int) error {
	for i := 0; i < steps; i++ {
		if err := r.Step(); err != nil {
			return err
		}
	}
	return nil
}

// noiseScale is the per-step displacement magnitude of the thermal
// noise in an overdamped Langevin step.
func noiseScale(kT, dt, gamma float64) float64 {
	return math.Sqrt(2 * kT * dt / gamma)
}

func (r *Replica) zeroForces() {
	query := r.filter.Query()
	for query.Next() {
		_, force, _ := query.Get()
		force.Zero()
	}
}

// applyBondForces adds harmonic forces between consecutive beads.
func (r *Replica) applyBondForces() {
	for i := 1; i < len(r.beads); i++ {
		a := r.posMap.Get(r.beads[i-1]).Vec()
		b := r.posMap.Get(r.beads[i]).Vec()

		d := r3.Sub(b, a)
		dist := r3.Norm(d)
		if dist == 0 {
			continue
		}
		// Force on b pulling toward the equilibrium length.
		f := r3.Scale(-r.bondK*(dist-r.bondLength)/dist, d)
		r.forceMap.Get(r.beads[i]).Add(f)
		r.forceMap.Get(r.beads[i-1]).Add(r3.Scale(-1, f))
	}
}

// applyRestraintForce evaluates the bias and applies it to the site
// pair, equal and opposite.
func (r *Replica) applyRestraintForce() {
	site, ref := r.sitePositions()
	pd := r.restraint.Evaluate(site, ref, r.time)

	sites := r.restraint.Sites()
	r.forceMap.Get(r.beads[sites[0]]).Add(pd.Force)
	r.forceMap.Get(r.beads[sites[1]]).Add(r3.Scale(-1, pd.Force))
}

// integrate advances positions with an overdamped Langevin step:
// dx = F*dt/gamma + sqrt(2 kT dt / gamma) * xi.
func (r *Replica) integrate() {
	query := r.filter.Query()
	for query.Next() {
		pos, force, _ := query.Get()
		pos.X += force.X*r.mobility + r.noiseScale*r.noise.Rand()
		pos.Y += force.Y*r.mobility + r.noiseScale*r.noise.Rand()
		pos.Z += force.Z*r.mobility + r.noiseScale*r.noise.Rand()
	}
}
