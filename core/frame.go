package core

import "github.com/signalsfoundry/antenna-workbench/model"

// The engineering frame is X east, Y north, Z up (metres). Renderers use a
// right-handed Y-up frame with Z toward the viewer. The mapping between the
// two is a fixed axis permutation with one sign flip, so round trips are
// exact to the bit.

// ToRender maps an engineering point into the render frame.
func ToRender(p model.Point) Vec3 {
	return Vec3{X: p.X, Y: p.Z, Z: -p.Y}
}

// ToEngineering maps a render-frame position back into engineering
// coordinates. It is the exact inverse of ToRender.
func ToEngineering(v Vec3) model.Point {
	return model.Point{X: v.X, Y: -v.Z, Z: v.Y}
}

// WireToRender returns both wire endpoints in the render frame.
func WireToRender(w model.Wire) (Vec3, Vec3) {
	return ToRender(w.End1), ToRender(w.End2)
}
