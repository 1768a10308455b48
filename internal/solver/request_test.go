package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/antenna-workbench/internal/editor"
	"github.com/signalsfoundry/antenna-workbench/model"
)

func TestBuildRequestOrdersDeck(t *testing.T) {
	geom := editor.Geometry{
		FrequencyMHz: 14.1,
		Wires: []model.Wire{
			{Tag: 3, End1: model.Point{X: -5}, End2: model.Point{X: 5}, RadiusM: 0.002, Segments: 5},
			{Tag: 1, End1: model.Point{Z: 10}, End2: model.Point{X: 10, Z: 10}, RadiusM: 0.001, Segments: 5},
		},
		Excitations: []model.Excitation{{WireTag: 1, Segment: 3, VoltageRe: 1}},
		Loads: []model.LumpedLoad{
			{WireTag: 3, Segment: 2, ResistanceOhms: 50},
			{WireTag: 1, Segment: 4, InductanceH: 1e-6},
		},
		Lines: []model.TransmissionLine{
			{Tag1: 1, Segment1: 1, Tag2: 3, Segment2: 5, ImpedanceOhms: 450, LengthM: 12},
		},
	}

	req, err := BuildRequest(geom, Sweep{StartMHz: 14, StopMHz: 14.35, Steps: 8})
	if err != nil {
		t.Fatalf("BuildRequest error: %v", err)
	}

	if len(req.Cards) != 2 || req.Cards[0].Tag != 1 || req.Cards[1].Tag != 3 {
		t.Fatalf("cards not ordered by tag: %+v", req.Cards)
	}
	if req.Cards[1].X1 != -5 || req.Cards[1].X2 != 5 || req.Cards[1].RadiusM != 0.002 {
		t.Fatalf("card for tag 3 carries wrong geometry: %+v", req.Cards[1])
	}
	if req.Cards[0].Z1 != 10 || req.Cards[0].Z2 != 10 {
		t.Fatalf("card for tag 1 carries wrong geometry: %+v", req.Cards[0])
	}
	if len(req.Excitations) != 1 || req.Excitations[0].WireTag != 1 || req.Excitations[0].Segment != 3 {
		t.Fatalf("excitation mapping wrong: %+v", req.Excitations)
	}
	if len(req.Loads) != 2 || req.Loads[0].WireTag != 1 || req.Loads[1].WireTag != 3 {
		t.Fatalf("loads not ordered: %+v", req.Loads)
	}
	if len(req.Lines) != 1 || req.Lines[0].ImpedanceOhms != 450 {
		t.Fatalf("line mapping wrong: %+v", req.Lines)
	}
	if req.Sweep.StartMHz != 14 || req.Sweep.Steps != 8 {
		t.Fatalf("sweep not carried: %+v", req.Sweep)
	}
}

func TestBuildRequestValidation(t *testing.T) {
	wire := []model.Wire{{Tag: 1, End2: model.Point{X: 10}, RadiusM: 0.001, Segments: 5}}
	feed := []model.Excitation{{WireTag: 1, Segment: 3, VoltageRe: 1}}

	if _, err := BuildRequest(editor.Geometry{Excitations: feed}, PointSweep(14.1)); !errors.Is(err, ErrEmptyGeometry) {
		t.Fatalf("empty geometry error = %v, want ErrEmptyGeometry", err)
	}
	if _, err := BuildRequest(editor.Geometry{Wires: wire}, PointSweep(14.1)); !errors.Is(err, ErrExcitationCount) {
		t.Fatalf("no excitation error = %v, want ErrExcitationCount", err)
	}

	two := []model.Excitation{
		{WireTag: 1, Segment: 1, VoltageRe: 1},
		{WireTag: 2, Segment: 3, VoltageRe: 1},
	}
	if _, err := BuildRequest(editor.Geometry{Wires: wire, Excitations: two}, PointSweep(14.1)); !errors.Is(err, ErrExcitationCount) {
		t.Fatalf("two excitations error = %v, want ErrExcitationCount", err)
	}

	bad := []Sweep{
		{StartMHz: 14, StopMHz: 14.35, Steps: 0},
		{StartMHz: 0, StopMHz: 14, Steps: 3},
		{StartMHz: 14.35, StopMHz: 14, Steps: 3},
		{StartMHz: 14, StopMHz: math.NaN(), Steps: 3},
	}
	for _, sweep := range bad {
		if _, err := BuildRequest(editor.Geometry{Wires: wire, Excitations: feed}, sweep); !errors.Is(err, ErrInvalidSweep) {
			t.Fatalf("sweep %+v error = %v, want ErrInvalidSweep", sweep, err)
		}
	}
}

func TestSweepStep(t *testing.T) {
	if got := PointSweep(14.1); got.StartMHz != 14.1 || got.StopMHz != 14.1 || got.Steps != 1 {
		t.Fatalf("PointSweep = %+v", got)
	}
	if got := PointSweep(14.1).StepMHz(); got != 0 {
		t.Fatalf("single point StepMHz = %v, want 0", got)
	}
	if got := (Sweep{StartMHz: 10, StopMHz: 12, Steps: 5}).StepMHz(); got != 0.5 {
		t.Fatalf("StepMHz = %v, want 0.5", got)
	}
}
