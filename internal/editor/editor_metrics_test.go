package editor

import (
	"context"
	"testing"

	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/model"
)

type countsSnapshot struct {
	wires       int
	excitations int
	loads       int
	lines       int
	segments    int
}

type stubMetricsRecorder struct {
	records []countsSnapshot
	ops     []string
}

func (r *stubMetricsRecorder) SetDocumentCounts(wires, excitations, loads, lines, segments int) {
	r.records = append(r.records, countsSnapshot{
		wires:       wires,
		excitations: excitations,
		loads:       loads,
		lines:       lines,
		segments:    segments,
	})
}

func (r *stubMetricsRecorder) ObserveEditorOp(op string) {
	r.ops = append(r.ops, op)
}

func (r *stubMetricsRecorder) last() countsSnapshot {
	if len(r.records) == 0 {
		return countsSnapshot{}
	}
	return r.records[len(r.records)-1]
}

func assertCounts(t *testing.T, got, want countsSnapshot) {
	t.Helper()
	if got != want {
		t.Fatalf("metrics = %+v, want %+v", got, want)
	}
}

func TestEditorMetricsRecorder(t *testing.T) {
	recorder := &stubMetricsRecorder{}
	ed := New(logging.Noop(), WithMetricsRecorder(recorder))
	ctx := context.Background()

	assertCounts(t, recorder.last(), countsSnapshot{})

	if _, err := ed.AddWire(ctx, model.Point{}, model.Point{X: 10}, 0); err != nil {
		t.Fatalf("AddWire error: %v", err)
	}
	assertCounts(t, recorder.last(), countsSnapshot{wires: 1, excitations: 1, segments: 5})

	if err := ed.AddLoad(ctx, model.LumpedLoad{WireTag: 1, Segment: 2, ResistanceOhms: 100}); err != nil {
		t.Fatalf("AddLoad error: %v", err)
	}
	assertCounts(t, recorder.last(), countsSnapshot{wires: 1, excitations: 1, loads: 1, segments: 5})

	ed.DeleteWires(ctx, 1)
	assertCounts(t, recorder.last(), countsSnapshot{})

	if !ed.Undo(ctx) {
		t.Fatalf("Undo failed")
	}
	assertCounts(t, recorder.last(), countsSnapshot{wires: 1, excitations: 1, loads: 1, segments: 5})

	want := []string{"add_wire", "add_load", "delete_wires", "undo"}
	if len(recorder.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", recorder.ops, want)
	}
	for i, op := range want {
		if recorder.ops[i] != op {
			t.Fatalf("ops[%d] = %q, want %q", i, recorder.ops[i], op)
		}
	}
}
