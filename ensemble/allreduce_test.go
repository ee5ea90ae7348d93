package ensemble

import (
	"math"
	"sync"
	"testing"
)

func TestIdentity(t *testing.T) {
	send := []float64{1, 2, 3}
	recv := make([]float64, 3)

	if err := Identity(send, recv); err != nil {
		t.Fatal(err)
	}
	for i := range send {
		if recv[i] != send[i] {
			t.Errorf("recv[%d] = %v, want %v", i, recv[i], send[i])
		}
	}

	if err := Identity(send, recv[:2]); err == nil {
		t.Error("expected shape mismatch error")
	}
}

func TestResourcesHandle(t *testing.T) {
	res := NewResources(Identity)
	h := res.Handle()

	send := []float64{0.5, 0.5}
	recv := make([]float64, 2)
	if err := h.AllReduceSum(send, recv); err != nil {
		t.Fatal(err)
	}
	if recv[0] != 0.5 || recv[1] != 0.5 {
		t.Errorf("recv = %v, want [0.5 0.5]", recv)
	}

	if err := h.AllReduceSum(send, recv[:1]); err == nil {
		t.Error("expected shape mismatch error")
	}
}

func TestResourcesNilReducePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing reduction function")
		}
	}()
	NewResources(nil).Handle()
}

// TestGroupReduceSum runs three members concurrently over several
// generations and checks every member receives the identical sum each
// time.
func TestGroupReduceSum(t *testing.T) {
	const members = 3
	const generations = 4
	const bins = 5

	g := NewGroup(members)
	if g.Members() != members {
		t.Fatalf("Members() = %d, want %d", g.Members(), members)
	}

	results := make([][][]float64, members)
	errs := make([]error, members)

	var wg sync.WaitGroup
	for m := 0; m < members; m++ {
		wg.Add(1)
		go func(m int) {
			defer wg.Done()
			for gen := 0; gen < generations; gen++ {
				send := make([]float64, bins)
				for i := range send {
					send[i] = float64(m+1) * float64(gen+1)
				}
				recv := make([]float64, bins)
				if err := g.Reduce(send, recv); err != nil {
					errs[m] = err
					return
				}
				results[m] = append(results[m], recv)
			}
		}(m)
	}
	wg.Wait()

	for m, err := range errs {
		if err != nil {
			t.Fatalf("member %d: %v", m, err)
		}
	}

	// sum over members of (m+1)*(gen+1) = 6*(gen+1)
	for gen := 0; gen < generations; gen++ {
		want := 6.0 * float64(gen+1)
		for m := 0; m < members; m++ {
			for i, v := range results[m][gen] {
				if math.Abs(v-want) > 1e-12 {
					t.Errorf("gen %d member %d bin %d = %v, want %v", gen, m, i, v, want)
				}
			}
		}
	}
}

func TestGroupMeanReduce(t *testing.T) {
	const members = 2
	g := NewGroup(members)
	reduce := g.MeanReduce()

	var wg sync.WaitGroup
	results := make([][]float64, members)
	for m := 0; m < members; m++ {
		wg.Add(1)
		go func(m int) {
			defer wg.Done()
			send := []float64{float64(m), float64(m) + 2}
			recv := make([]float64, 2)
			if err := reduce(send, recv); err != nil {
				t.Errorf("member %d: %v", m, err)
				return
			}
			results[m] = recv
		}(m)
	}
	wg.Wait()

	// mean of {0,1} and mean of {2,3}
	want := []float64{0.5, 2.5}
	for m := 0; m < members; m++ {
		for i := range want {
			if math.Abs(results[m][i]-want[i]) > 1e-12 {
				t.Errorf("member %d bin %d = %v, want %v", m, i, results[m][i], want[i])
			}
		}
	}
}

func TestGroupShapeMismatch(t *testing.T) {
	g := NewGroup(1)
	if err := g.Reduce([]float64{1, 2}, make([]float64, 3)); err == nil {
		t.Error("expected shape mismatch error")
	}
}

func TestNewGroupPanicsOnZeroMembers(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero members")
		}
	}()
	NewGroup(0)
}
