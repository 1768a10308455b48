package editor

import (
	"context"
	"testing"

	"github.com/signalsfoundry/antenna-workbench/model"
)

func TestSetFrequencyRecomputesAndRehomes(t *testing.T) {
	ed := newEditorForTest()
	ctx := context.Background()

	// 10 m at the default 14.1 MHz: 5 segments, feedpoint at 3.
	if _, err := ed.AddWire(ctx, model.Point{}, model.Point{X: 10}, 0); err != nil {
		t.Fatalf("AddWire error: %v", err)
	}

	// Doubling the frequency halves the segment length: 10 raw
	// segments, bumped odd to 11. The feedpoint follows the center.
	if err := ed.SetFrequencyMHz(ctx, 28.2); err != nil {
		t.Fatalf("SetFrequencyMHz error: %v", err)
	}
	w, _ := ed.WireByTag(1)
	if w.Segments != 11 {
		t.Fatalf("segments at 28.2 MHz = %d, want 11", w.Segments)
	}
	excs := ed.Excitations()
	if len(excs) != 1 || excs[0].Segment != 6 {
		t.Fatalf("excitation = %+v, want re-homed to segment 6", excs)
	}

	// A load on the last segment survives the drop back to 5 segments
	// by clamping; the feedpoint re-homes to the new center again.
	if err := ed.AddLoad(ctx, model.LumpedLoad{WireTag: 1, Segment: 11, InductanceH: 2e-6}); err != nil {
		t.Fatalf("AddLoad error: %v", err)
	}
	if err := ed.SetFrequencyMHz(ctx, 14.1); err != nil {
		t.Fatalf("SetFrequencyMHz back error: %v", err)
	}
	w, _ = ed.WireByTag(1)
	if w.Segments != 5 {
		t.Fatalf("segments at 14.1 MHz = %d, want 5", w.Segments)
	}
	excs = ed.Excitations()
	if len(excs) != 1 || excs[0].Segment != 3 {
		t.Fatalf("excitation = %+v, want re-homed to segment 3", excs)
	}
	loads := ed.Loads()
	if len(loads) != 1 || loads[0].Segment != 5 {
		t.Fatalf("load = %+v, want clamped to segment 5", loads)
	}
	if got := ed.FrequencyMHz(); got != 14.1 {
		t.Fatalf("FrequencyMHz = %v, want 14.1", got)
	}
}

func TestSetFrequencyIgnoresInvalidInput(t *testing.T) {
	ed := newEditorForTest()
	ctx := context.Background()

	if _, err := ed.AddWire(ctx, model.Point{}, model.Point{X: 10}, 0); err != nil {
		t.Fatalf("AddWire error: %v", err)
	}
	rev := ed.Revision()
	depth := ed.history.Len()

	for _, mhz := range []float64{0, -7.1} {
		if err := ed.SetFrequencyMHz(ctx, mhz); err != nil {
			t.Fatalf("SetFrequencyMHz(%v) error: %v", mhz, err)
		}
	}
	// Re-setting the current value is also a no-op.
	if err := ed.SetFrequencyMHz(ctx, 14.1); err != nil {
		t.Fatalf("SetFrequencyMHz(current) error: %v", err)
	}

	if got := ed.FrequencyMHz(); got != 14.1 {
		t.Fatalf("FrequencyMHz = %v, want unchanged 14.1", got)
	}
	if ed.Revision() != rev || ed.history.Len() != depth {
		t.Fatalf("ignored frequency input committed a mutation")
	}
}

func TestSetFrequencyIsOneUndoStep(t *testing.T) {
	ed := newEditorForTest()
	ctx := context.Background()

	if _, err := ed.AddWire(ctx, model.Point{}, model.Point{X: 10}, 0); err != nil {
		t.Fatalf("AddWire error: %v", err)
	}
	if err := ed.SetFrequencyMHz(ctx, 28.2); err != nil {
		t.Fatalf("SetFrequencyMHz error: %v", err)
	}
	if !ed.Undo(ctx) {
		t.Fatalf("Undo failed")
	}

	// Undo restores frequency and derived segment counts together.
	if got := ed.FrequencyMHz(); got != 14.1 {
		t.Fatalf("FrequencyMHz after undo = %v, want 14.1", got)
	}
	w, _ := ed.WireByTag(1)
	if w.Segments != 5 {
		t.Fatalf("segments after undo = %d, want 5", w.Segments)
	}
	excs := ed.Excitations()
	if len(excs) != 1 || excs[0].Segment != 3 {
		t.Fatalf("excitation after undo = %+v, want segment 3", excs)
	}
}
