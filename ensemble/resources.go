// Package ensemble provides the cross-replica aggregation layer for
// restrained-ensemble runs: a dependency-injected all-reduce contract
// plus an in-process implementation for replicas running as goroutines.
package ensemble

import "fmt"

// ReduceFunc performs a synchronous all-reduce sum: every participant
// contributes send and every participant receives the identical
// elementwise aggregate in recv. send and recv have the same length.
// It blocks until all participants have contributed; a returned error
// is fatal to the enclosing simulation.
type ReduceFunc func(send, recv []float64) error

// Resources is the workflow-level connection through which a restraint
// reaches ensemble services. It hands out short-lived Handles; callers
// acquire a fresh handle per window commit and never retain one past
// the commit.
type Resources struct {
	reduce ReduceFunc
}

// NewResources wraps a reduction function. The function must not be nil
// by the time a handle is requested.
func NewResources(reduce ReduceFunc) *Resources {
	return &Resources{reduce: reduce}
}

// Handle returns an active handle on the ensemble services. A missing
// reduction function is a collaborator defect and panics.
func (r *Resources) Handle() Handle {
	if r.reduce == nil {
		panic("ensemble: resources have no reduction function")
	}
	return Handle{reduce: r.reduce}
}

// Handle is an active, short-lived grant of ensemble services. Hold it
// only for the duration of one window commit.
type Handle struct {
	reduce ReduceFunc
}

// AllReduceSum sums send across all ensemble members into recv.
func (h Handle) AllReduceSum(send, recv []float64) error {
	if len(send) != len(recv) {
		return fmt.Errorf("ensemble: reduce shape mismatch: send %d, recv %d", len(send), len(recv))
	}
	return h.reduce(send, recv)
}

// Identity is a ReduceFunc for a single-member ensemble: the aggregate
// of one contribution is the contribution itself.
func Identity(send, recv []float64) error {
	if len(send) != len(recv) {
		return fmt.Errorf("ensemble: identity shape mismatch: send %d, recv %d", len(send), len(recv))
	}
	copy(recv, send)
	return nil
}
