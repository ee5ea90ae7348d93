// Package components defines ECS components for the bead-chain replica
// driver.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Position is a bead's position in the replica's coordinate frame, in nm.
type Position struct {
	X, Y, Z float64
}

// Vec returns the position as an r3 vector.
func (p *Position) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Set overwrites the position from an r3 vector.
func (p *Position) Set(v r3.Vec) {
	p.X, p.Y, p.Z = v.X, v.Y, v.Z
}

// Force accumulates the net force on a bead for the current step.
type Force struct {
	X, Y, Z float64
}

// Vec returns the accumulated force as an r3 vector.
func (f *Force) Vec() r3.Vec {
	return r3.Vec{X: f.X, Y: f.Y, Z: f.Z}
}

// Add accumulates a force contribution.
func (f *Force) Add(v r3.Vec) {
	f.X += v.X
	f.Y += v.Y
	f.Z += v.Z
}

// Zero clears the accumulator at the start of a step.
func (f *Force) Zero() {
	f.X, f.Y, f.Z = 0, 0, 0
}

// Bead identifies a bead's place along the chain.
type Bead struct {
	Index int
}
