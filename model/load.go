package model

// LumpedLoad is a series RLC element inserted on one segment of one wire.
// A zero component is absent, e.g. a pure resistance has L = C = 0.
type LumpedLoad struct {
	WireTag int
	Segment int

	ResistanceOhms float64
	InductanceH    float64
	CapacitanceF   float64
}
