package editor

import (
	"context"
	"testing"

	"github.com/signalsfoundry/antenna-workbench/core"
	"github.com/signalsfoundry/antenna-workbench/model"
)

// render maps an engineering-frame point into the renderer frame, the
// direction pointer events arrive from.
func render(x, y, z float64) core.Vec3 {
	return core.ToRender(model.Point{X: x, Y: y, Z: z})
}

func TestInputAddWireTwoClicks(t *testing.T) {
	ed := newEditorForTest()
	in := NewInputController(ed, 0.5)
	ed.SetMode(model.ModeAddWire)

	// First click anchors, snapped onto the half-metre grid.
	in.OnBackgroundClick(render(0.3, 0, 0))
	if got := ed.Counts().Wires; got != 0 {
		t.Fatalf("wires after first click = %d, want 0", got)
	}
	ghost, ok := in.Ghost()
	if !ok {
		t.Fatalf("no ghost after anchor click")
	}
	if ghost.Tag != 0 || ghost.Wire.End1 != (model.Point{X: 0.5}) {
		t.Fatalf("ghost = %+v, want anchored at {0.5 0 0}", ghost)
	}

	// Second click commits one wire through the editor.
	in.OnBackgroundClick(render(10.2, 0, 0))
	w, okWire := ed.WireByTag(1)
	if !okWire {
		t.Fatalf("no wire committed by second click")
	}
	if w.End1 != (model.Point{X: 0.5}) || w.End2 != (model.Point{X: 10}) {
		t.Fatalf("wire = %+v/%+v, want {0.5 0 0}/{10 0 0}", w.End1, w.End2)
	}
	if w.Segments != 5 {
		t.Fatalf("segments = %d, want 5", w.Segments)
	}
	if w.RadiusM != model.DefaultWireRadiusM {
		t.Fatalf("radius = %v, want default", w.RadiusM)
	}
	if _, stillGhost := in.Ghost(); stillGhost {
		t.Fatalf("ghost survived the commit")
	}
}

func TestInputBackgroundClickClearsSelectionOutsideAddMode(t *testing.T) {
	ed := newEditorForTest()
	in := NewInputController(ed, 0)

	if _, err := ed.AddWire(context.Background(), model.Point{}, model.Point{X: 10}, 0); err != nil {
		t.Fatalf("AddWire error: %v", err)
	}
	ed.Select(1, false)
	in.OnBackgroundClick(render(3, 4, 5))
	if got := ed.Selected(); len(got) != 0 {
		t.Fatalf("selection after background click = %v, want empty", got)
	}
}

func TestInputWireClickSelectsAndDeletes(t *testing.T) {
	ed := newEditorForTest()
	in := NewInputController(ed, 0)
	ctx := context.Background()

	if _, err := ed.AddWire(ctx, model.Point{}, model.Point{X: 10}, 0); err != nil {
		t.Fatalf("AddWire error: %v", err)
	}
	if _, err := ed.AddWire(ctx, model.Point{Z: 2}, model.Point{X: 10, Z: 2}, 0); err != nil {
		t.Fatalf("AddWire error: %v", err)
	}

	in.OnWireClick(1, false)
	if got := ed.Selected(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("selection = %v, want [1]", got)
	}
	// Additive click toggles membership.
	in.OnWireClick(2, true)
	if got := ed.Selected(); len(got) != 2 {
		t.Fatalf("selection = %v, want [1 2]", got)
	}
	in.OnWireClick(2, true)
	if got := ed.Selected(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("selection = %v, want [1]", got)
	}

	ed.SetMode(model.ModeDelete)
	in.OnWireClick(1, false)
	if _, ok := ed.WireByTag(1); ok {
		t.Fatalf("wire 1 survived a delete-mode click")
	}
}

func TestInputEndpointDragCommitsOnce(t *testing.T) {
	ed := newEditorForTest()
	in := NewInputController(ed, 0.5)
	ctx := context.Background()

	if _, err := ed.AddWire(ctx, model.Point{}, model.Point{X: 10}, 0); err != nil {
		t.Fatalf("AddWire error: %v", err)
	}
	depth := ed.history.Len()

	in.OnEndpointDragStart(1, 2)
	in.OnDragMove(render(11.1, 0, 0))
	in.OnDragMove(render(11.9, 0, 0))
	in.OnDragMove(render(12.26, 0, 0))

	// The document is untouched while the gesture is live; only the
	// ghost moves.
	w, _ := ed.WireByTag(1)
	if w.End2 != (model.Point{X: 10}) {
		t.Fatalf("wire moved mid-gesture: %+v", w.End2)
	}
	ghost, ok := in.Ghost()
	if !ok || ghost.End != 2 || ghost.Wire.End2 != (model.Point{X: 12.5}) {
		t.Fatalf("ghost = %+v/%v, want end 2 at {12.5 0 0}", ghost, ok)
	}

	in.OnDragEnd()
	w, _ = ed.WireByTag(1)
	if w.End2 != (model.Point{X: 12.5}) {
		t.Fatalf("End2 = %+v, want snapped {12.5 0 0}", w.End2)
	}
	// 12.5 m at 14.1 MHz: 6 raw segments, bumped odd to 7.
	if w.Segments != 7 {
		t.Fatalf("segments = %d, want 7", w.Segments)
	}
	if got := ed.history.Len(); got != depth+1 {
		t.Fatalf("undo entries from one drag = %d, want 1", got-depth)
	}
	if _, stillGhost := in.Ghost(); stillGhost {
		t.Fatalf("ghost survived drag end")
	}
}

func TestInputWireDragSnapsDelta(t *testing.T) {
	ed := newEditorForTest()
	in := NewInputController(ed, 0.5)
	ctx := context.Background()

	if _, err := ed.AddWire(ctx, model.Point{X: 0.5}, model.Point{X: 10}, 0); err != nil {
		t.Fatalf("AddWire error: %v", err)
	}
	depth := ed.history.Len()

	in.OnWireDragStart(1, render(1, 0, 0))
	in.OnDragMove(render(1.2, 0, 2.3))
	in.OnDragEnd()

	// Delta (0.2, 0, 2.3) snaps per component to (0, 0, 2.5).
	w, _ := ed.WireByTag(1)
	if w.End1 != (model.Point{X: 0.5, Z: 2.5}) || w.End2 != (model.Point{X: 10, Z: 2.5}) {
		t.Fatalf("wire = %+v/%+v, want translated by {0 0 2.5}", w.End1, w.End2)
	}
	if got := ed.history.Len(); got != depth+1 {
		t.Fatalf("undo entries from one drag = %d, want 1", got-depth)
	}
}

func TestInputDragWithoutMovementCommitsNothing(t *testing.T) {
	ed := newEditorForTest()
	in := NewInputController(ed, 0.5)
	ctx := context.Background()

	if _, err := ed.AddWire(ctx, model.Point{}, model.Point{X: 10}, 0); err != nil {
		t.Fatalf("AddWire error: %v", err)
	}
	rev := ed.Revision()

	in.OnEndpointDragStart(1, 2)
	in.OnDragEnd()
	if ed.Revision() != rev {
		t.Fatalf("motionless drag committed a mutation")
	}

	// A drag that wanders but snaps back to zero delta also commits
	// nothing.
	in.OnWireDragStart(1, render(1, 0, 0))
	in.OnDragMove(render(1.1, 0, 0.2))
	in.OnDragEnd()
	if ed.Revision() != rev {
		t.Fatalf("zero-delta drag committed a mutation")
	}
}

func TestInputCancelGesture(t *testing.T) {
	ed := newEditorForTest()
	in := NewInputController(ed, 0.5)
	ctx := context.Background()

	if _, err := ed.AddWire(ctx, model.Point{}, model.Point{X: 10}, 0); err != nil {
		t.Fatalf("AddWire error: %v", err)
	}
	rev := ed.Revision()

	in.OnEndpointDragStart(1, 1)
	in.OnDragMove(render(5, 5, 5))
	in.CancelGesture()
	in.OnDragEnd()

	if ed.Revision() != rev {
		t.Fatalf("cancelled gesture committed a mutation")
	}
	if _, ok := in.Ghost(); ok {
		t.Fatalf("ghost survived cancel")
	}
}

func TestInputGridDisabled(t *testing.T) {
	ed := newEditorForTest()
	in := NewInputController(ed, 0)
	ed.SetMode(model.ModeAddWire)

	in.OnBackgroundClick(render(0.3, 0, 0))
	in.OnBackgroundClick(render(10.21, 0, 0))
	w, ok := ed.WireByTag(1)
	if !ok {
		t.Fatalf("no wire committed")
	}
	if w.End1 != (model.Point{X: 0.3}) || w.End2 != (model.Point{X: 10.21}) {
		t.Fatalf("wire = %+v/%+v, want unsnapped endpoints", w.End1, w.End2)
	}
	if got := in.Grid(); got != 0 {
		t.Fatalf("Grid = %v, want 0", got)
	}
}
