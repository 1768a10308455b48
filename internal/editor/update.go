package editor

import (
	"context"
	"fmt"
	"math"

	"github.com/signalsfoundry/antenna-workbench/core"
	"github.com/signalsfoundry/antenna-workbench/doc"
	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/model"
)

// WireEdit is one field change applied by UpdateWire. The closed set of
// implementations keeps updates explicit about what moved, which is what
// decides whether segments get re-derived.
type WireEdit interface {
	apply(w *model.Wire)
	geometry() bool
}

type setEnd1 struct{ p model.Point }

func (ed setEnd1) apply(w *model.Wire) { w.End1 = ed.p }
func (setEnd1) geometry() bool         { return true }

// SetEnd1 moves the wire's first endpoint.
func SetEnd1(p model.Point) WireEdit { return setEnd1{p: p} }

type setEnd2 struct{ p model.Point }

func (ed setEnd2) apply(w *model.Wire) { w.End2 = ed.p }
func (setEnd2) geometry() bool         { return true }

// SetEnd2 moves the wire's second endpoint.
func SetEnd2(p model.Point) WireEdit { return setEnd2{p: p} }

type setRadius struct{ r float64 }

func (ed setRadius) apply(w *model.Wire) {
	if ed.r > 0 && !math.IsInf(ed.r, 0) {
		w.RadiusM = ed.r
	}
}
func (setRadius) geometry() bool { return false }

// SetRadius changes the wire radius. Non-positive or non-finite values
// keep the existing radius.
func SetRadius(r float64) WireEdit { return setRadius{r: r} }

// UpdateWire applies the edits to one wire. When an endpoint moved, the
// wire's segments are recomputed for the current design frequency and
// any annotation segments on that wire are clamped back into range.
// Radius-only edits leave segments untouched. An unknown tag is a no-op.
func (e *Editor) UpdateWire(ctx context.Context, tag int, edits ...WireEdit) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, ok := e.store.Wire(tag)
	if !ok {
		e.log.Debug(ctx, "update ignored for unknown wire", logging.Int("tag", tag))
		return nil
	}
	if len(edits) == 0 {
		return nil
	}

	moved := false
	for _, edit := range edits {
		if edit == nil {
			continue
		}
		edit.apply(&w)
		if edit.geometry() {
			moved = true
		}
	}

	pre := e.store.Snapshot()
	if !moved {
		if err := e.store.UpdateWire(w); err != nil {
			return fmt.Errorf("update wire %d: %w", tag, err)
		}
		e.history.Push(pre)
		e.recordOpLocked("update_wire")
		return nil
	}

	w.Segments = core.SegmentsForWire(w, pre.FrequencyMHz)
	next := pre.Clone()
	for i := range next.Wires {
		if next.Wires[i].Tag == tag {
			next.Wires[i] = w
		}
	}
	clampWireRefs(&next, tag, w.Segments)

	if err := e.store.Restore(next); err != nil {
		return fmt.Errorf("update wire %d: %w", tag, err)
	}
	e.history.Push(pre)
	e.recordOpLocked("update_wire")

	e.log.Debug(ctx, "wire updated",
		logging.Int("tag", tag),
		logging.Int("segments", w.Segments))
	return nil
}

// SplitWire replaces a wire with two halves meeting at its midpoint.
// Both halves take fresh sequential tags and fresh auto-segmentation;
// the original tag is retired and appears nowhere afterwards. An
// excitation on the original re-homes to the first half's center
// segment; loads and transmission-line ends re-home to the first half
// with their segment clamped. The selection becomes exactly the two new
// wires. An unknown tag is a no-op returning false.
func (e *Editor) SplitWire(ctx context.Context, tag int) (model.Wire, model.Wire, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, ok := e.store.Wire(tag)
	if !ok {
		e.log.Debug(ctx, "split ignored for unknown wire", logging.Int("tag", tag))
		return model.Wire{}, model.Wire{}, false
	}

	pre := e.store.Snapshot()
	mid := core.WireMidpoint(w)

	first := model.Wire{Tag: pre.NextTag, End1: w.End1, End2: mid, RadiusM: w.RadiusM}
	second := model.Wire{Tag: pre.NextTag + 1, End1: mid, End2: w.End2, RadiusM: w.RadiusM}
	first.Segments = core.SegmentsForWire(first, pre.FrequencyMHz)
	second.Segments = core.SegmentsForWire(second, pre.FrequencyMHz)

	next := pre.Clone()
	next.NextTag = second.Tag + 1
	wires := next.Wires[:0]
	for _, cur := range next.Wires {
		if cur.Tag != tag {
			wires = append(wires, cur)
		}
	}
	next.Wires = append(wires, first, second)

	for i, exc := range next.Excitations {
		if exc.WireTag == tag {
			next.Excitations[i].WireTag = first.Tag
			next.Excitations[i].Segment = core.CenterSegment(first.Segments)
		}
	}
	for i, l := range next.Loads {
		if l.WireTag == tag {
			next.Loads[i].WireTag = first.Tag
			next.Loads[i].Segment = core.ClampSegment(l.Segment, first.Segments)
		}
	}
	for i, tl := range next.Lines {
		if tl.Tag1 == tag {
			next.Lines[i].Tag1 = first.Tag
			next.Lines[i].Segment1 = core.ClampSegment(tl.Segment1, first.Segments)
		}
		if tl.Tag2 == tag {
			next.Lines[i].Tag2 = first.Tag
			next.Lines[i].Segment2 = core.ClampSegment(tl.Segment2, first.Segments)
		}
	}

	if err := e.store.Restore(next); err != nil {
		e.log.Error(ctx, "split restore failed", logging.Int("tag", tag), logging.Err(err))
		return model.Wire{}, model.Wire{}, false
	}
	e.sel = map[int]struct{}{first.Tag: {}, second.Tag: {}}
	e.history.Push(pre)
	e.recordOpLocked("split_wire")

	e.log.Debug(ctx, "wire split",
		logging.Int("tag", tag),
		logging.Int("first", first.Tag),
		logging.Int("second", second.Tag))
	return first, second, true
}

// clampWireRefs forces every annotation segment referencing tag into
// [1, total] after a recompute shrank or grew the wire.
func clampWireRefs(snap *doc.Snapshot, tag, total int) {
	for i, exc := range snap.Excitations {
		if exc.WireTag == tag {
			snap.Excitations[i].Segment = core.ClampSegment(exc.Segment, total)
		}
	}
	for i, l := range snap.Loads {
		if l.WireTag == tag {
			snap.Loads[i].Segment = core.ClampSegment(l.Segment, total)
		}
	}
	for i, tl := range snap.Lines {
		if tl.Tag1 == tag {
			snap.Lines[i].Segment1 = core.ClampSegment(tl.Segment1, total)
		}
		if tl.Tag2 == tag {
			snap.Lines[i].Segment2 = core.ClampSegment(tl.Segment2, total)
		}
	}
}
