package restraint

// WindowHistory is a bounded FIFO of the most recent aggregated density
// grids, backed by a ring over preallocated storage so window commits do
// not allocate after warm-up.
type WindowHistory struct {
	grids [][]float64
	head  int // index of the oldest entry
	count int
}

// NewWindowHistory preallocates storage for nWindows grids of nBins bins.
func NewWindowHistory(nWindows, nBins int) *WindowHistory {
	grids := make([][]float64, nWindows)
	for i := range grids {
		grids[i] = make([]float64, nBins)
	}
	return &WindowHistory{grids: grids}
}

// Len returns the number of committed grids, at most nWindows.
func (h *WindowHistory) Len() int {
	return h.count
}

// At returns the i-th grid in commit order, 0 being the oldest.
// The returned slice is owned by the history and must not be modified.
func (h *WindowHistory) At(i int) []float64 {
	return h.grids[(h.head+i)%len(h.grids)]
}

// NextSlot returns the grid slot the next commit should be written into
// and advances the ring, evicting the oldest entry when full. The slot
// contents are stale and must be fully overwritten by the caller.
func (h *WindowHistory) NextSlot() []float64 {
	var slot []float64
	if h.count == len(h.grids) {
		slot = h.grids[h.head]
		h.head = (h.head + 1) % len(h.grids)
	} else {
		slot = h.grids[(h.head+h.count)%len(h.grids)]
		h.count++
	}
	return slot
}

// Recompute rebuilds the working histogram from scratch as the
// elementwise mean of (entry - experimental) over all committed grids.
// A full pass every commit keeps the working histogram exactly
// consistent with the buffer contents; with the small window counts in
// use an incremental update is not worth the bookkeeping.
func (h *WindowHistory) Recompute(dst, experimental []float64) {
	for i := range dst {
		dst[i] = 0
	}
	if h.count == 0 {
		return
	}
	inv := 1.0 / float64(h.count)
	for w := 0; w < h.count; w++ {
		entry := h.At(w)
		for i := range dst {
			dst[i] += (entry[i] - experimental[i]) * inv
		}
	}
}
