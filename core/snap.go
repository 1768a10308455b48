package core

import (
	"math"

	"github.com/signalsfoundry/antenna-workbench/model"
)

// Snap rounds v to the nearest multiple of grid. A non-positive or
// non-finite grid disables snapping and returns v unchanged.
func Snap(v, grid float64) float64 {
	if grid <= 0 || math.IsNaN(grid) || math.IsInf(grid, 0) {
		return v
	}
	return math.Round(v/grid) * grid
}

// SnapPoint snaps each coordinate of an engineering point to the grid.
// Render-frame positions must be mapped with ToEngineering first; snapping
// happens in engineering coordinates only.
func SnapPoint(p model.Point, grid float64) model.Point {
	return model.Point{
		X: Snap(p.X, grid),
		Y: Snap(p.Y, grid),
		Z: Snap(p.Z, grid),
	}
}
