package model

import "math"

// Position is a planar coordinate in the robot's local frame. The Dock is
// the distance-zero reference.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Distance returns the Euclidean distance between two positions.
func Distance(a, b Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// DockName is the reserved location name for the charging dock.
const DockName = "Dock"
