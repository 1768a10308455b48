package editor

import (
	"context"
	"math"

	"github.com/signalsfoundry/antenna-workbench/core"
	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/model"
)

// InputController adapts renderer pointer callbacks to editor
// operations. It owns the snap grid and transient gesture state, so one
// drag gesture commits exactly one undoable mutation no matter how many
// move events the renderer delivers. Renderer-frame coordinates are
// mapped back to the engineering frame before snapping.
//
// The controller is driven by the render loop and is not safe for
// concurrent use; the editor it wraps is.
type InputController struct {
	ed *Editor

	grid float64

	drag       *dragState
	pendingAdd *model.Point
	addCursor  *model.Point
}

// dragState tracks one in-flight drag gesture in the engineering frame.
type dragState struct {
	tag     int
	end     int // 1 or 2 for an endpoint drag, 0 for a whole-wire drag
	wire    model.Wire
	anchor  model.Point
	current model.Point
	moved   bool
}

// GhostState is the renderer-facing preview of an in-flight gesture.
// Positions are engineering-frame and already snapped.
type GhostState struct {
	// Tag is the wire being dragged, or 0 while placing a new wire.
	Tag int
	// End is 1 or 2 during an endpoint drag, 0 otherwise.
	End int
	// Wire is the previewed geometry with the gesture applied so far.
	// Segments is zero: previews are never solved.
	Wire model.Wire
}

// NewInputController creates a controller for one editor. A non-positive
// grid disables snapping.
func NewInputController(ed *Editor, gridM float64) *InputController {
	c := &InputController{ed: ed}
	c.SetGrid(gridM)
	return c
}

// SetGrid changes the snap grid spacing in metres. Non-positive or
// non-finite values disable snapping.
func (c *InputController) SetGrid(gridM float64) {
	if !(gridM > 0) || math.IsInf(gridM, 0) {
		gridM = 0
	}
	c.grid = gridM
}

// Grid returns the snap grid spacing, 0 when snapping is off.
func (c *InputController) Grid() float64 {
	return c.grid
}

// OnWireClick handles a pointer click that hit a wire. In delete mode
// the wire is removed; in every other mode it is selected, additively
// when the modifier key is held.
func (c *InputController) OnWireClick(tag int, additive bool) {
	switch c.ed.Mode() {
	case model.ModeDelete:
		c.ed.DeleteWires(context.Background(), tag)
	default:
		if additive {
			c.ed.ToggleSelect(tag)
			return
		}
		c.ed.Select(tag, false)
	}
}

// OnBackgroundClick handles a click that hit empty space. In add-wire
// mode the first click anchors the new wire and the second commits it;
// in every other mode the selection is cleared.
func (c *InputController) OnBackgroundClick(render core.Vec3) {
	p := core.SnapPoint(core.ToEngineering(render), c.grid)

	if c.ed.Mode() != model.ModeAddWire {
		c.ed.ClearSelection()
		return
	}
	if c.pendingAdd == nil {
		c.pendingAdd = &p
		return
	}
	anchor := *c.pendingAdd
	c.pendingAdd = nil
	c.addCursor = nil
	if _, err := c.ed.AddWire(context.Background(), anchor, p, 0); err != nil {
		c.ed.log.Debug(context.Background(), "add wire gesture rejected", logging.Err(err))
	}
}

// OnEndpointDragStart begins dragging one endpoint of a wire. Unknown
// tags and ends are ignored.
func (c *InputController) OnEndpointDragStart(tag, end int) {
	if end != 1 && end != 2 {
		return
	}
	w, ok := c.ed.WireByTag(tag)
	if !ok {
		return
	}
	p := w.End1
	if end == 2 {
		p = w.End2
	}
	c.drag = &dragState{tag: tag, end: end, wire: w, anchor: p, current: p}
}

// OnWireDragStart begins dragging a whole wire from the given pointer
// position. Unknown tags are ignored.
func (c *InputController) OnWireDragStart(tag int, render core.Vec3) {
	w, ok := c.ed.WireByTag(tag)
	if !ok {
		return
	}
	p := core.ToEngineering(render)
	c.drag = &dragState{tag: tag, wire: w, anchor: p, current: p}
}

// OnDragMove updates the in-flight gesture with a new pointer position.
// Only the ghost preview changes; nothing is committed.
func (c *InputController) OnDragMove(render core.Vec3) {
	p := core.ToEngineering(render)
	if c.drag != nil {
		c.drag.current = p
		c.drag.moved = true
		return
	}
	if c.pendingAdd != nil {
		c.addCursor = &p
	}
}

// OnDragEnd commits the gesture as a single undoable mutation. Gestures
// that never moved, or whose snapped result equals the starting
// geometry, commit nothing.
func (c *InputController) OnDragEnd() {
	d := c.drag
	c.drag = nil
	if d == nil || !d.moved {
		return
	}
	ctx := context.Background()

	if d.end != 0 {
		target := core.SnapPoint(d.current, c.grid)
		if target == d.anchor {
			return
		}
		edit := SetEnd1(target)
		if d.end == 2 {
			edit = SetEnd2(target)
		}
		if err := c.ed.UpdateWire(ctx, d.tag, edit); err != nil {
			c.ed.log.Debug(ctx, "endpoint drag rejected", logging.Int("tag", d.tag), logging.Err(err))
		}
		return
	}

	dx := core.Snap(d.current.X-d.anchor.X, c.grid)
	dy := core.Snap(d.current.Y-d.anchor.Y, c.grid)
	dz := core.Snap(d.current.Z-d.anchor.Z, c.grid)
	if dx == 0 && dy == 0 && dz == 0 {
		return
	}
	if err := c.ed.MoveWire(ctx, d.tag, dx, dy, dz); err != nil {
		c.ed.log.Debug(ctx, "wire drag rejected", logging.Int("tag", d.tag), logging.Err(err))
	}
}

// CancelGesture abandons any in-flight drag or pending add-wire anchor
// without committing anything.
func (c *InputController) CancelGesture() {
	c.drag = nil
	c.pendingAdd = nil
	c.addCursor = nil
}

// Ghost returns the preview geometry for the in-flight gesture, if any.
func (c *InputController) Ghost() (GhostState, bool) {
	if d := c.drag; d != nil {
		if d.end != 0 {
			w := d.wire
			target := core.SnapPoint(d.current, c.grid)
			if d.end == 1 {
				w.End1 = target
			} else {
				w.End2 = target
			}
			w.Segments = 0
			return GhostState{Tag: d.tag, End: d.end, Wire: w}, true
		}
		dx := core.Snap(d.current.X-d.anchor.X, c.grid)
		dy := core.Snap(d.current.Y-d.anchor.Y, c.grid)
		dz := core.Snap(d.current.Z-d.anchor.Z, c.grid)
		w := core.TranslateWire(d.wire, dx, dy, dz)
		w.Segments = 0
		return GhostState{Tag: d.tag, Wire: w}, true
	}
	if c.pendingAdd != nil {
		w := model.Wire{End1: *c.pendingAdd, End2: *c.pendingAdd}
		if c.addCursor != nil {
			w.End2 = core.SnapPoint(*c.addCursor, c.grid)
		}
		return GhostState{Wire: w}, true
	}
	return GhostState{}, false
}
