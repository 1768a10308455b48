package core

import (
	"math"

	"github.com/signalsfoundry/antenna-workbench/model"
)

// Vec3 is a render-frame vector in metres.
type Vec3 struct {
	X, Y, Z float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Distance returns the straight-line distance between two engineering
// points in metres.
func Distance(a, b model.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// WireLength returns the physical length of a wire in metres.
func WireLength(w model.Wire) float64 {
	return Distance(w.End1, w.End2)
}

// WireMidpoint returns the point halfway along a wire.
func WireMidpoint(w model.Wire) model.Point {
	return model.Point{
		X: (w.End1.X + w.End2.X) / 2,
		Y: (w.End1.Y + w.End2.Y) / 2,
		Z: (w.End1.Z + w.End2.Z) / 2,
	}
}

// TranslatePoint returns p moved by (dx, dy, dz).
func TranslatePoint(p model.Point, dx, dy, dz float64) model.Point {
	return model.Point{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// TranslateWire returns a copy of w rigidly moved by (dx, dy, dz).
// Length is unchanged, so the segment count stays valid.
func TranslateWire(w model.Wire, dx, dy, dz float64) model.Wire {
	w.End1 = TranslatePoint(w.End1, dx, dy, dz)
	w.End2 = TranslatePoint(w.End2, dx, dy, dz)
	return w
}
