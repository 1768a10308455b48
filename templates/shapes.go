package templates

import (
	"math"

	"github.com/signalsfoundry/antenna-workbench/core"
	"github.com/signalsfoundry/antenna-workbench/model"
)

const (
	// Practical wire elements resonate about 5% below the free-space
	// length, the usual cut-to-length starting point.
	endEffect = 0.95

	// Closed loops and radials want a little more than the free-space
	// length instead.
	overLength = 1.02

	defaultDroopDeg = 30

	yagiReflectorScale = 1.05
	yagiDirectorScale  = 0.95
	// Element spacing along the boom, in wavelengths.
	yagiReflectorSpace = 0.20
	yagiDirectorSpace  = 0.15
)

func checkFrequency(freqMHz float64) error {
	if !(freqMHz > 0) || math.IsInf(freqMHz, 0) {
		return ErrFrequency
	}
	return nil
}

func fallbackRadius(radiusM float64) float64 {
	if radiusM <= 0 {
		return model.DefaultWireRadiusM
	}
	return radiusM
}

func planWire(tag int, end1, end2 model.Point, radiusM, freqMHz float64) model.Wire {
	w := model.Wire{Tag: tag, End1: end1, End2: end2, RadiusM: radiusM}
	w.Segments = core.Segments(core.WireLength(w), freqMHz)
	return w
}

// element lays a horizontal wire of the given length along X, centred on
// the boom axis.
func element(tag int, lengthM, y, z, radiusM, freqMHz float64) model.Wire {
	half := lengthM / 2
	return planWire(tag,
		model.Point{X: -half, Y: y, Z: z},
		model.Point{X: half, Y: y, Z: z},
		radiusM, freqMHz)
}

func centerFeed(w model.Wire) model.Excitation {
	return model.Excitation{WireTag: w.Tag, Segment: core.CenterSegment(w.Segments), VoltageRe: 1}
}

// Dipole is a half-wave wire at the given height, fed at its centre. A
// non-positive height mounts it half a wavelength up.
func Dipole(freqMHz, heightM, radiusM float64) (Plan, error) {
	if err := checkFrequency(freqMHz); err != nil {
		return Plan{}, err
	}
	lambda := core.Wavelength(freqMHz)
	if heightM <= 0 {
		heightM = lambda / 2
	}
	w := element(1, endEffect*lambda/2, 0, heightM, fallbackRadius(radiusM), freqMHz)
	return Plan{
		Name:         "dipole",
		FrequencyMHz: freqMHz,
		Wires:        []model.Wire{w},
		Excitation:   centerFeed(w),
	}, nil
}

// InvertedV hangs two quarter-wave legs from an apex, fed at the apex
// end of the first leg. Droop is degrees below horizontal; values
// outside (0, 90) fall back to 30. A non-positive apex height mounts the
// apex a quarter wavelength up.
func InvertedV(freqMHz, apexHeightM, droopDeg, radiusM float64) (Plan, error) {
	if err := checkFrequency(freqMHz); err != nil {
		return Plan{}, err
	}
	lambda := core.Wavelength(freqMHz)
	if apexHeightM <= 0 {
		apexHeightM = lambda / 4
	}
	if !(droopDeg > 0) || droopDeg >= 90 {
		droopDeg = defaultDroopDeg
	}
	radiusM = fallbackRadius(radiusM)

	leg := endEffect * lambda / 4
	rad := droopDeg * math.Pi / 180
	run := leg * math.Cos(rad)
	drop := leg * math.Sin(rad)
	apex := model.Point{Z: apexHeightM}

	w1 := planWire(1, apex, model.Point{X: -run, Z: apexHeightM - drop}, radiusM, freqMHz)
	w2 := planWire(2, apex, model.Point{X: run, Z: apexHeightM - drop}, radiusM, freqMHz)
	return Plan{
		Name:         "inverted-v",
		FrequencyMHz: freqMHz,
		Wires:        []model.Wire{w1, w2},
		Excitation:   model.Excitation{WireTag: w1.Tag, Segment: 1, VoltageRe: 1},
	}, nil
}

// QuadLoop is a full-wave square loop in the X-Z plane, fed at the
// centre of the bottom wire. A non-positive bottom height mounts the
// bottom an eighth of a wavelength up.
func QuadLoop(freqMHz, bottomHeightM, radiusM float64) (Plan, error) {
	if err := checkFrequency(freqMHz); err != nil {
		return Plan{}, err
	}
	lambda := core.Wavelength(freqMHz)
	if bottomHeightM <= 0 {
		bottomHeightM = lambda / 8
	}
	radiusM = fallbackRadius(radiusM)

	side := overLength * lambda / 4
	hx := side / 2
	zb, zt := bottomHeightM, bottomHeightM+side
	bl := model.Point{X: -hx, Z: zb}
	br := model.Point{X: hx, Z: zb}
	tr := model.Point{X: hx, Z: zt}
	tl := model.Point{X: -hx, Z: zt}

	bottom := planWire(1, bl, br, radiusM, freqMHz)
	wires := []model.Wire{
		bottom,
		planWire(2, br, tr, radiusM, freqMHz),
		planWire(3, tr, tl, radiusM, freqMHz),
		planWire(4, tl, bl, radiusM, freqMHz),
	}
	return Plan{
		Name:         "quad-loop",
		FrequencyMHz: freqMHz,
		Wires:        wires,
		Excitation:   centerFeed(bottom),
	}, nil
}

// GroundPlaneVertical is a quarter-wave radiator over a fan of
// horizontal radials, fed at the radiator base. Radial counts clamp
// into [2, 16], with fewer than two falling back to four.
func GroundPlaneVertical(freqMHz float64, radials int, radiusM float64) (Plan, error) {
	if err := checkFrequency(freqMHz); err != nil {
		return Plan{}, err
	}
	if radials < 2 {
		radials = 4
	}
	if radials > 16 {
		radials = 16
	}
	lambda := core.Wavelength(freqMHz)
	radiusM = fallbackRadius(radiusM)

	base := lambda / 8
	feed := model.Point{Z: base}
	radiator := planWire(1, feed, model.Point{Z: base + endEffect*lambda/4}, radiusM, freqMHz)

	wires := make([]model.Wire, 0, radials+1)
	wires = append(wires, radiator)
	rl := overLength * lambda / 4
	for i := 0; i < radials; i++ {
		theta := 2 * math.Pi * float64(i) / float64(radials)
		end := model.Point{X: rl * math.Cos(theta), Y: rl * math.Sin(theta), Z: base}
		wires = append(wires, planWire(i+2, feed, end, radiusM, freqMHz))
	}
	return Plan{
		Name:         "ground-plane",
		FrequencyMHz: freqMHz,
		Wires:        wires,
		Excitation:   model.Excitation{WireTag: radiator.Tag, Segment: 1, VoltageRe: 1},
	}, nil
}

// Yagi3 is a three-element beam: reflector, centre-fed driven element
// and director on a boom along Y. A non-positive height mounts the boom
// half a wavelength up.
func Yagi3(freqMHz, heightM, radiusM float64) (Plan, error) {
	if err := checkFrequency(freqMHz); err != nil {
		return Plan{}, err
	}
	lambda := core.Wavelength(freqMHz)
	if heightM <= 0 {
		heightM = lambda / 2
	}
	radiusM = fallbackRadius(radiusM)

	driven := endEffect * lambda / 2
	reflector := element(1, yagiReflectorScale*driven, -yagiReflectorSpace*lambda, heightM, radiusM, freqMHz)
	fed := element(2, driven, 0, heightM, radiusM, freqMHz)
	director := element(3, yagiDirectorScale*driven, yagiDirectorSpace*lambda, heightM, radiusM, freqMHz)
	return Plan{
		Name:         "yagi3",
		FrequencyMHz: freqMHz,
		Wires:        []model.Wire{reflector, fed, director},
		Excitation:   centerFeed(fed),
	}, nil
}
