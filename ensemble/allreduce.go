package ensemble

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Group is a reusable barrier all-reduce across a fixed set of
// in-process members. Each member calls Reduce once per generation;
// the call blocks until every member has contributed, then all members
// receive the identical elementwise sum.
//
// There is no cancellation: a member that never arrives leaves the
// others blocked, mirroring the behavior of an engine-level collective.
type Group struct {
	members int

	mu   sync.Mutex
	cond *sync.Cond

	sum      []float64
	arrived  int
	departed int
	gen      uint64
}

// NewGroup creates a reduction group for the given member count.
func NewGroup(members int) *Group {
	if members <= 0 {
		panic(fmt.Sprintf("ensemble: group needs at least one member, got %d", members))
	}
	g := &Group{members: members}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Members returns the group size.
func (g *Group) Members() int {
	return g.members
}

// Reduce contributes send and blocks until all members of the current
// generation have contributed, then writes the sum into recv. It is a
// valid ReduceFunc.
func (g *Group) Reduce(send, recv []float64) error {
	if len(send) != len(recv) {
		return fmt.Errorf("ensemble: group reduce shape mismatch: send %d, recv %d", len(send), len(recv))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// Wait for any stragglers still copying out the previous sum.
	for g.arrived == g.members {
		g.cond.Wait()
	}

	if g.arrived == 0 {
		if len(g.sum) != len(send) {
			g.sum = make([]float64, len(send))
		} else {
			for i := range g.sum {
				g.sum[i] = 0
			}
		}
	} else if len(send) != len(g.sum) {
		return fmt.Errorf("ensemble: group reduce shape mismatch across members: %d vs %d", len(send), len(g.sum))
	}

	floats.Add(g.sum, send)
	g.arrived++

	gen := g.gen
	if g.arrived == g.members {
		g.gen++
		g.cond.Broadcast()
	} else {
		for gen == g.gen {
			g.cond.Wait()
		}
	}

	copy(recv, g.sum)
	g.departed++
	if g.departed == g.members {
		g.arrived = 0
		g.departed = 0
		g.cond.Broadcast()
	}
	return nil
}

// MeanReduce wraps the group sum into a ReduceFunc that rescales the
// aggregate to the ensemble mean, so a restraint sees a consensus
// density of unit mass regardless of ensemble size.
func (g *Group) MeanReduce() ReduceFunc {
	inv := 1.0 / float64(g.members)
	return func(send, recv []float64) error {
		if err := g.Reduce(send, recv); err != nil {
			return err
		}
		floats.Scale(inv, recv)
		return nil
	}
}
