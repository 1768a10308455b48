package model

const (
	// DefaultWireRadiusM is the conductor radius applied when a wire is
	// created without one (or with a non-positive one).
	DefaultWireRadiusM = 0.001

	// DefaultFrequencyMHz is the design frequency of a fresh document.
	DefaultFrequencyMHz = 14.1
)

// Point is a position in the engineering frame, metres.
// X grows east, Y grows north, Z grows up.
type Point struct {
	X float64
	Y float64
	Z float64
}

// Wire is a straight conductor between two endpoints.
type Wire struct {
	// Tag is the stable 1-based identity that excitations, loads and
	// transmission lines refer to. A tag is never reused while its wire
	// exists in the document.
	Tag int

	End1 Point
	End2 Point

	// RadiusM is the conductor radius in metres.
	RadiusM float64

	// Segments is the solver segmentation count. It is derived from the
	// wire length and the document's design frequency; geometry edits
	// recompute it, radius edits do not.
	Segments int
}
