package core

import (
	"math"

	"github.com/signalsfoundry/antenna-workbench/model"
)

const (
	// MinSegments is the default floor for a wire's segment count.
	MinSegments = 5

	// MaxSegments caps the per-wire segment count. Combined with the odd
	// rule the effective ceiling is 199.
	MaxSegments = 200

	// Target segment length is one tenth of a wavelength.
	segmentsPerWavelength = 10
)

// Wavelength returns the free-space wavelength in metres for a frequency
// in MHz, using the rounded 300 m·MHz convention.
func Wavelength(freqMHz float64) float64 {
	return 300.0 / freqMHz
}

// Segments returns the segment count for a wire of the given length at the
// given design frequency, with the default minimum floor.
func Segments(lengthM, freqMHz float64) int {
	return SegmentsMin(lengthM, freqMHz, MinSegments)
}

// SegmentsMin computes the solver segmentation for one wire:
// ceil(length / (λ/10)), floored at minSegments, forced odd so a centre
// feedpoint exists, and capped at MaxSegments. Zero-length wires get the
// floor; a non-positive or non-finite frequency falls back to the default
// design frequency.
func SegmentsMin(lengthM, freqMHz float64, minSegments int) int {
	if minSegments < 1 {
		minSegments = 1
	}
	if freqMHz <= 0 || math.IsNaN(freqMHz) || math.IsInf(freqMHz, 0) {
		freqMHz = model.DefaultFrequencyMHz
	}
	if lengthM < 0 || math.IsNaN(lengthM) || math.IsInf(lengthM, 0) {
		lengthM = 0
	}

	n := minSegments
	if lengthM > 0 {
		segLen := Wavelength(freqMHz) / segmentsPerWavelength
		if need := int(math.Ceil(lengthM / segLen)); need > n {
			n = need
		}
	}
	if n%2 == 0 {
		n++
	}
	if n > MaxSegments {
		// Largest odd count under the cap.
		n = MaxSegments - 1
	}
	return n
}

// SegmentsForWire is a convenience over SegmentsMin using the wire's own
// geometry.
func SegmentsForWire(w model.Wire, freqMHz float64) int {
	return Segments(WireLength(w), freqMHz)
}

// CenterSegment returns the 1-based middle segment for a wire with the
// given total. For the odd totals the segmentation rule produces, this is
// the exact centre, which is where feedpoints normally go.
func CenterSegment(total int) int {
	if total < 1 {
		return 1
	}
	return (total + 1) / 2
}

// ClampSegment forces a 1-based segment index into [1, total].
func ClampSegment(seg, total int) int {
	if total < 1 {
		return 1
	}
	if seg < 1 {
		return 1
	}
	if seg > total {
		return total
	}
	return seg
}
