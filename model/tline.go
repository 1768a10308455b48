package model

// TransmissionLine is an ideal two-port line joining two wire segments,
// e.g. a phasing line between stacked elements or a matching stub.
type TransmissionLine struct {
	Tag1     int
	Segment1 int
	Tag2     int
	Segment2 int

	ImpedanceOhms float64
	LengthM       float64

	// VelocityFactor scales the electrical length; 0 is treated as 1.
	VelocityFactor float64
}
