package telemetry

import "log/slog"

// Collector turns one replica's window commits into stats records and
// forwards them to the shared output manager. One collector per
// replica; it is driven from that replica's goroutine only.
type Collector struct {
	replica   int
	output    *OutputManager
	logEvery  bool
	lastStats WindowStats
	windows   int
}

// NewCollector creates a collector for the given replica.
// output may be nil (records are still accumulated for inspection).
func NewCollector(replica int, output *OutputManager, logEvery bool) *Collector {
	return &Collector{replica: replica, output: output, logEvery: logEvery}
}

// RecordWindow processes one committed window. samples are the raw
// distances of the committed window, working the recomputed working
// histogram.
func (c *Collector) RecordWindow(window int, t float64, samples, working []float64) {
	ws := ComputeWindowStats(c.replica, window, t, samples, working)
	c.lastStats = ws
	c.windows++

	if c.logEvery {
		slog.Info("window committed",
			"replica", ws.Replica,
			"window", ws.Window,
			"sim_time", ws.SimTime,
			"sample_mean", ws.SampleMean,
			"mismatch_l2", ws.MismatchL2,
		)
	}

	if err := c.output.WriteWindow(ws); err != nil {
		slog.Error("failed to write window stats", "replica", c.replica, "window", window, "error", err)
	}
}

// Windows returns the number of windows recorded.
func (c *Collector) Windows() int {
	return c.windows
}

// Last returns the most recent window stats record.
func (c *Collector) Last() WindowStats {
	return c.lastStats
}
