package solver

import (
	"errors"
	"math"
	"sort"

	"github.com/signalsfoundry/antenna-workbench/internal/editor"
)

// Sentinel errors for requests the numeric engine cannot accept.
var (
	// ErrEmptyGeometry rejects solving a document with no wires.
	ErrEmptyGeometry = errors.New("solver: geometry has no wires")
	// ErrExcitationCount rejects documents without exactly one feedpoint.
	ErrExcitationCount = errors.New("solver: exactly one excitation required")
	// ErrInvalidSweep rejects malformed frequency sweeps.
	ErrInvalidSweep = errors.New("solver: invalid frequency sweep")
	// ErrQueueFull rejects new jobs while the worker queue is saturated.
	ErrQueueFull = errors.New("solver: job queue full")
)

// BuildRequest converts an editable geometry view into a solver request.
// Cards, loads, and lines are emitted in tag order so identical documents
// produce identical decks.
func BuildRequest(geom editor.Geometry, sweep Sweep) (Request, error) {
	if len(geom.Wires) == 0 {
		return Request{}, ErrEmptyGeometry
	}
	if len(geom.Excitations) != 1 {
		return Request{}, ErrExcitationCount
	}
	if err := sweep.validate(); err != nil {
		return Request{}, err
	}

	cards := make([]GeometryCard, 0, len(geom.Wires))
	for _, w := range geom.Wires {
		cards = append(cards, GeometryCard{
			Tag:      w.Tag,
			Segments: w.Segments,
			X1:       w.End1.X,
			Y1:       w.End1.Y,
			Z1:       w.End1.Z,
			X2:       w.End2.X,
			Y2:       w.End2.Y,
			Z2:       w.End2.Z,
			RadiusM:  w.RadiusM,
		})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Tag < cards[j].Tag })

	excitations := make([]ExcitationCard, 0, len(geom.Excitations))
	for _, e := range geom.Excitations {
		excitations = append(excitations, ExcitationCard{
			WireTag:   e.WireTag,
			Segment:   e.Segment,
			VoltageRe: e.VoltageRe,
			VoltageIm: e.VoltageIm,
		})
	}

	loads := make([]LoadCard, 0, len(geom.Loads))
	for _, l := range geom.Loads {
		loads = append(loads, LoadCard{
			WireTag:        l.WireTag,
			Segment:        l.Segment,
			ResistanceOhms: l.ResistanceOhms,
			InductanceH:    l.InductanceH,
			CapacitanceF:   l.CapacitanceF,
		})
	}
	sort.Slice(loads, func(i, j int) bool {
		if loads[i].WireTag != loads[j].WireTag {
			return loads[i].WireTag < loads[j].WireTag
		}
		return loads[i].Segment < loads[j].Segment
	})

	lines := make([]LineCard, 0, len(geom.Lines))
	for _, tl := range geom.Lines {
		lines = append(lines, LineCard{
			Tag1:           tl.Tag1,
			Segment1:       tl.Segment1,
			Tag2:           tl.Tag2,
			Segment2:       tl.Segment2,
			ImpedanceOhms:  tl.ImpedanceOhms,
			LengthM:        tl.LengthM,
			VelocityFactor: tl.VelocityFactor,
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Tag1 != lines[j].Tag1 {
			return lines[i].Tag1 < lines[j].Tag1
		}
		if lines[i].Segment1 != lines[j].Segment1 {
			return lines[i].Segment1 < lines[j].Segment1
		}
		if lines[i].Tag2 != lines[j].Tag2 {
			return lines[i].Tag2 < lines[j].Tag2
		}
		return lines[i].Segment2 < lines[j].Segment2
	})

	return Request{
		Cards:       cards,
		Excitations: excitations,
		Loads:       loads,
		Lines:       lines,
		Sweep:       sweep,
	}, nil
}

func (s Sweep) validate() error {
	if s.Steps < 1 {
		return ErrInvalidSweep
	}
	if !(s.StartMHz > 0) || math.IsInf(s.StartMHz, 0) {
		return ErrInvalidSweep
	}
	if s.StopMHz < s.StartMHz || math.IsNaN(s.StopMHz) || math.IsInf(s.StopMHz, 0) {
		return ErrInvalidSweep
	}
	return nil
}
