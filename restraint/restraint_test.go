package restraint

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/remd/ensemble"
)

func TestNewRestraintValidation(t *testing.T) {
	p := testParams()
	p.NBins = 0

	if _, err := NewRestraint([]int{1, 0}, p, ensemble.NewResources(ensemble.Identity)); err == nil {
		t.Error("expected error for invalid params")
	}
}

func TestRestraintSites(t *testing.T) {
	r, err := NewRestraint([]int{7, 2}, testParams(), ensemble.NewResources(ensemble.Identity))
	if err != nil {
		t.Fatal(err)
	}

	sites := r.Sites()
	if len(sites) != 2 || sites[0] != 7 || sites[1] != 2 {
		t.Errorf("Sites() = %v, want [7 2]", sites)
	}
}

// TestUpdatePropagatesReduceError drives a full window against a
// failing reducer: the error must surface from Update untouched by any
// retry.
func TestUpdatePropagatesReduceError(t *testing.T) {
	reduceErr := errors.New("member 3 disappeared")
	calls := 0
	failing := func(send, recv []float64) error {
		calls++
		return reduceErr
	}

	r, err := NewRestraint([]int{1, 0}, testParams(), ensemble.NewResources(failing))
	if err != nil {
		t.Fatal(err)
	}

	ref := r3.Vec{}
	if err := r.Update(r3.Vec{X: 2.0}, ref, 1.0); err != nil {
		t.Fatalf("update before window boundary: %v", err)
	}
	err = r.Update(r3.Vec{X: 3.0}, ref, 2.0)
	if !errors.Is(err, reduceErr) {
		t.Errorf("Update error = %v, want wrapped %v", err, reduceErr)
	}
	if calls != 1 {
		t.Errorf("reduce calls = %d, want 1 (no retry)", calls)
	}
}

func TestRestraintEvaluateDelegates(t *testing.T) {
	r, err := NewRestraint([]int{1, 0}, testParams(), ensemble.NewResources(ensemble.Identity))
	if err != nil {
		t.Fatal(err)
	}

	out := r.Evaluate(r3.Vec{X: 6.0}, r3.Vec{}, 0)
	if out.Force.X != -100.0 {
		t.Errorf("force x = %v, want -100 (k*(maxDist-R))", out.Force.X)
	}
}
