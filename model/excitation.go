package model

// Excitation is a voltage source feeding one segment of one wire.
// A document holds at most one excitation per wire; setting another
// replaces the previous one.
type Excitation struct {
	WireTag int
	Segment int

	// Feed voltage in volts, complex form.
	VoltageRe float64
	VoltageIm float64
}

// Voltage returns the feed voltage as a complex value.
func (e Excitation) Voltage() complex128 {
	return complex(e.VoltageRe, e.VoltageIm)
}
