package solver

// Request is the geometry deck submitted to the numeric engine.
type Request struct {
	Cards       []GeometryCard   `json:"cards"`
	Excitations []ExcitationCard `json:"excitations"`
	Loads       []LoadCard       `json:"loads,omitempty"`
	Lines       []LineCard       `json:"lines,omitempty"`
	Sweep       Sweep            `json:"sweep"`
	Ground      bool             `json:"ground"`
}

// GeometryCard describes one straight wire, endpoints in metres.
type GeometryCard struct {
	Tag      int     `json:"tag"`
	Segments int     `json:"segments"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	Z1       float64 `json:"z1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`
	Z2       float64 `json:"z2"`
	RadiusM  float64 `json:"radius_m"`
}

// ExcitationCard places a voltage source on one wire segment.
type ExcitationCard struct {
	WireTag   int     `json:"wire_tag"`
	Segment   int     `json:"segment"`
	VoltageRe float64 `json:"voltage_re"`
	VoltageIm float64 `json:"voltage_im"`
}

// LoadCard places a series RLC element on one wire segment.
type LoadCard struct {
	WireTag        int     `json:"wire_tag"`
	Segment        int     `json:"segment"`
	ResistanceOhms float64 `json:"resistance_ohms"`
	InductanceH    float64 `json:"inductance_h"`
	CapacitanceF   float64 `json:"capacitance_f"`
}

// LineCard joins two wire segments with an ideal transmission line.
type LineCard struct {
	Tag1           int     `json:"tag1"`
	Segment1       int     `json:"segment1"`
	Tag2           int     `json:"tag2"`
	Segment2       int     `json:"segment2"`
	ImpedanceOhms  float64 `json:"impedance_ohms"`
	LengthM        float64 `json:"length_m"`
	VelocityFactor float64 `json:"velocity_factor,omitempty"`
}

// Sweep is a linear frequency sweep. A single-point sweep has Steps == 1
// and StopMHz == StartMHz.
type Sweep struct {
	StartMHz float64 `json:"start_mhz"`
	StopMHz  float64 `json:"stop_mhz"`
	Steps    int     `json:"steps"`
}

// PointSweep builds a single-point sweep at the given frequency.
func PointSweep(freqMHz float64) Sweep {
	return Sweep{StartMHz: freqMHz, StopMHz: freqMHz, Steps: 1}
}

// StepMHz returns the frequency increment between sweep points.
func (s Sweep) StepMHz() float64 {
	if s.Steps <= 1 {
		return 0
	}
	return (s.StopMHz - s.StartMHz) / float64(s.Steps-1)
}

// FrequencyPoint is the solved response at one sweep frequency.
type FrequencyPoint struct {
	FrequencyMHz   float64 `json:"frequency_mhz"`
	ImpedanceRe    float64 `json:"impedance_re"`
	ImpedanceIm    float64 `json:"impedance_im"`
	SWR            float64 `json:"swr"`
	ForwardGainDBi float64 `json:"forward_gain_dbi"`
}

// Impedance returns the feedpoint impedance as a complex value.
func (p FrequencyPoint) Impedance() complex128 {
	return complex(p.ImpedanceRe, p.ImpedanceIm)
}

// Result is the solved response across the sweep.
type Result struct {
	Points []FrequencyPoint `json:"points"`
}
