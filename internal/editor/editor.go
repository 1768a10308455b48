// internal/editor/editor.go
package editor

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/signalsfoundry/antenna-workbench/core"
	"github.com/signalsfoundry/antenna-workbench/doc"
	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/model"
)

// Re-export document sentinel errors so callers can depend on editor.*
// instead of doc.* directly if they want to.
var (
	// ErrWireExists indicates a wire tag is already taken.
	ErrWireExists = doc.ErrWireExists
	// ErrWireNotFound indicates a requested wire was not found.
	ErrWireNotFound = doc.ErrWireNotFound
	// ErrInvalidWire indicates a wire failed validation.
	ErrInvalidWire = doc.ErrInvalidWire
	// ErrInvalidReference indicates an annotation names a missing wire or segment.
	ErrInvalidReference = doc.ErrInvalidReference
)

// Editor is the transactional editing facade over a geometry document.
// It owns tag allocation policy, automatic re-segmentation, the selection
// set, the edit mode and a bounded undo history. Every mutating operation
// captures a pre-mutation snapshot first, so a successful edit is always
// one undo step.
type Editor struct {
	// mu is the coarse editor-level lock. Take this before calling into
	// the store so multi-step operations never interleave with other
	// editor callers. Store event subscribers run while mu is still held
	// and must not call back into the Editor.
	mu sync.RWMutex

	store   *doc.Store
	history *History

	// sel holds the tags of the currently selected wires. Selection is
	// view state: it is never captured in undo snapshots and is cleared
	// by undo/redo.
	sel  map[int]struct{}
	mode model.EditMode

	// log is an optional structured logger for editor-level events.
	log logging.Logger

	// metrics is an optional recorder for Prometheus-friendly gauges.
	metrics MetricsRecorder

	// pendingFreq is a construction-time frequency override, applied
	// once by New after all options ran.
	pendingFreq float64
}

// MetricsRecorder receives document count updates and per-operation
// increments.
type MetricsRecorder interface {
	SetDocumentCounts(wires, excitations, loads, lines, segments int)
	ObserveEditorOp(op string)
}

// Option customises Editor construction.
type Option func(*Editor)

// WithMetricsRecorder attaches an optional metrics recorder for document
// counts and operation totals.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(e *Editor) {
		e.metrics = m
	}
}

// WithHistoryDepth overrides the default undo depth. Values below 1 keep
// the default.
func WithHistoryDepth(n int) Option {
	return func(e *Editor) {
		if n >= 1 {
			e.history = NewHistory(n)
		}
	}
}

// WithFrequency sets the document design frequency at construction
// without creating an undo entry. Non-positive values are ignored.
func WithFrequency(mhz float64) Option {
	return func(e *Editor) {
		e.pendingFreq = mhz
	}
}

// New creates an editor over a fresh empty document.
func New(log logging.Logger, opts ...Option) *Editor {
	if log == nil {
		log = logging.Noop()
	}
	ed := &Editor{
		store:   doc.NewStore(),
		history: NewHistory(DefaultHistoryDepth),
		sel:     make(map[int]struct{}),
		log:     log,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ed)
		}
	}

	ed.mu.Lock()
	if validFrequency(ed.pendingFreq) {
		if err := ed.setFrequencyLocked(context.Background(), ed.pendingFreq); err != nil {
			ed.log.Error(context.Background(), "applying construction frequency failed", logging.Err(err))
		}
	}
	ed.updateMetricsLocked()
	ed.mu.Unlock()
	return ed
}

// Store exposes the underlying document store, mainly so servers can
// Subscribe to change events. Mutations must go through the Editor.
func (e *Editor) Store() *doc.Store {
	return e.store
}

//
// ---------- Wire lifecycle ----------
//

// AddWire creates a wire between two points, allocating the next
// sequential tag and sizing segments for the current design frequency.
// A non-positive radius falls back to the default. The first wire to
// enter an empty document also receives the default voltage excitation
// at its center segment.
func (e *Editor) AddWire(ctx context.Context, end1, end2 model.Point, radiusM float64) (model.Wire, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !(radiusM > 0) || math.IsInf(radiusM, 0) {
		radiusM = model.DefaultWireRadiusM
	}
	w := model.Wire{
		Tag:     e.store.NextTag(),
		End1:    end1,
		End2:    end2,
		RadiusM: radiusM,
	}
	w.Segments = core.SegmentsForWire(w, e.store.FrequencyMHz())
	first := e.store.Counts().Wires == 0

	pre := e.store.Snapshot()
	if err := e.store.InsertWire(w); err != nil {
		return model.Wire{}, fmt.Errorf("add wire: %w", err)
	}
	if first {
		exc := model.Excitation{
			WireTag:   w.Tag,
			Segment:   core.CenterSegment(w.Segments),
			VoltageRe: 1,
		}
		if err := e.store.SetExcitation(exc); err != nil {
			e.store.RemoveWires(w.Tag)
			return model.Wire{}, fmt.Errorf("add default excitation: %w", err)
		}
	}
	e.history.Push(pre)
	e.recordOpLocked("add_wire")

	e.log.Debug(ctx, "wire added",
		logging.Int("tag", w.Tag),
		logging.Int("segments", w.Segments),
		logging.Bool("default_excitation", first))
	return w, nil
}

// AddWireRaw inserts a fully specified wire, trusting the caller's
// segment count when it is positive and recomputing it otherwise. Used
// by import paths; no default excitation is installed. The tag allocator
// advances past the wire's tag.
func (e *Editor) AddWireRaw(ctx context.Context, w model.Wire) (model.Wire, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !(w.RadiusM > 0) || math.IsInf(w.RadiusM, 0) {
		w.RadiusM = model.DefaultWireRadiusM
	}
	if w.Segments < 1 {
		w.Segments = core.SegmentsForWire(w, e.store.FrequencyMHz())
	}

	pre := e.store.Snapshot()
	if err := e.store.InsertWire(w); err != nil {
		return model.Wire{}, fmt.Errorf("add wire %d: %w", w.Tag, err)
	}
	e.history.Push(pre)
	e.recordOpLocked("add_wire_raw")

	e.log.Debug(ctx, "wire imported", logging.Int("tag", w.Tag), logging.Int("segments", w.Segments))
	return w, nil
}

// MoveWire translates both endpoints by the given delta. Length is
// invariant under translation, so segments are not recomputed. An
// unknown tag is a no-op.
func (e *Editor) MoveWire(ctx context.Context, tag int, dx, dy, dz float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, ok := e.store.Wire(tag)
	if !ok {
		e.log.Debug(ctx, "move ignored for unknown wire", logging.Int("tag", tag))
		return nil
	}

	pre := e.store.Snapshot()
	if err := e.store.UpdateWire(core.TranslateWire(w, dx, dy, dz)); err != nil {
		return fmt.Errorf("move wire %d: %w", tag, err)
	}
	e.history.Push(pre)
	e.recordOpLocked("move_wire")
	return nil
}

// DeleteWires removes the named wires and cascades their annotations.
// Unknown tags are skipped. Deleted tags leave the selection. Returns
// the tags actually removed.
func (e *Editor) DeleteWires(ctx context.Context, tags ...int) []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deleteLocked(ctx, tags)
}

// DeleteSelected removes every selected wire.
func (e *Editor) DeleteSelected(ctx context.Context) []int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.sel) == 0 {
		return nil
	}
	tags := make([]int, 0, len(e.sel))
	for tag := range e.sel {
		tags = append(tags, tag)
	}
	return e.deleteLocked(ctx, tags)
}

// deleteLocked removes wires and prunes the selection.
// NOTE: caller must hold e.mu.
func (e *Editor) deleteLocked(ctx context.Context, tags []int) []int {
	pre := e.store.Snapshot()
	removed := e.store.RemoveWires(tags...)
	if len(removed) == 0 {
		e.log.Debug(ctx, "delete matched no wires", logging.Int("requested", len(tags)))
		return nil
	}
	for _, tag := range removed {
		delete(e.sel, tag)
	}
	e.history.Push(pre)
	e.recordOpLocked("delete_wires")

	e.log.Debug(ctx, "wires deleted", logging.Int("count", len(removed)))
	return removed
}

// ClearAll empties the document and resets the tag allocator to 1. The
// design frequency keeps its value. Undoable like any other mutation.
func (e *Editor) ClearAll(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.store.Counts()
	pre := e.store.Snapshot()
	e.store.Clear()
	e.sel = make(map[int]struct{})
	e.history.Push(pre)
	e.recordOpLocked("clear_all")

	e.log.Info(ctx, "document cleared",
		logging.Int("wires", c.Wires),
		logging.Int("excitations", c.Excitations),
		logging.Int("loads", c.Loads),
		logging.Int("lines", c.Lines))
}

// SetWires replaces the document's wires and excitations wholesale, the
// bulk import path. Wires keep positive segment counts and get
// recomputed ones otherwise; the tag allocator restarts past the highest
// tag. Excitations are clamped to their wire and dangling ones dropped.
// Loads, transmission lines and the selection are cleared.
func (e *Editor) SetWires(ctx context.Context, wires []model.Wire, excitations []model.Excitation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pre := e.store.Snapshot()
	next := doc.Snapshot{FrequencyMHz: pre.FrequencyMHz}

	maxTag := 0
	next.Wires = make([]model.Wire, 0, len(wires))
	segments := make(map[int]int, len(wires))
	for _, w := range wires {
		if !(w.RadiusM > 0) || math.IsInf(w.RadiusM, 0) {
			w.RadiusM = model.DefaultWireRadiusM
		}
		if w.Segments < 1 {
			w.Segments = core.SegmentsForWire(w, pre.FrequencyMHz)
		}
		next.Wires = append(next.Wires, w)
		segments[w.Tag] = w.Segments
		if w.Tag > maxTag {
			maxTag = w.Tag
		}
	}
	next.NextTag = maxTag + 1

	kept := make(map[int]model.Excitation, len(excitations))
	for _, exc := range excitations {
		total, ok := segments[exc.WireTag]
		if !ok {
			e.log.Debug(ctx, "dropping excitation on unknown wire", logging.Int("tag", exc.WireTag))
			continue
		}
		exc.Segment = core.ClampSegment(exc.Segment, total)
		kept[exc.WireTag] = exc
	}
	next.Excitations = make([]model.Excitation, 0, len(kept))
	for _, w := range next.Wires {
		if exc, ok := kept[w.Tag]; ok {
			next.Excitations = append(next.Excitations, exc)
		}
	}

	if err := e.store.Restore(next); err != nil {
		return fmt.Errorf("set wires: %w", err)
	}
	e.sel = make(map[int]struct{})
	e.history.Push(pre)
	e.recordOpLocked("set_wires")

	e.log.Info(ctx, "document replaced",
		logging.Int("wires", len(next.Wires)),
		logging.Int("excitations", len(next.Excitations)))
	return nil
}

// LoadSnapshot replaces the document with a previously exported snapshot,
// the project-open path. The snapshot is validated before anything
// changes. The selection is cleared.
func (e *Editor) LoadSnapshot(ctx context.Context, snap doc.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pre := e.store.Snapshot()
	if err := e.store.Restore(snap); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	e.sel = make(map[int]struct{})
	e.history.Push(pre)
	e.recordOpLocked("load_snapshot")

	c := e.store.Counts()
	e.log.Info(ctx, "snapshot loaded",
		logging.Int("wires", c.Wires),
		logging.Int("excitations", c.Excitations),
		logging.Int("loads", c.Loads),
		logging.Int("lines", c.Lines))
	return nil
}

//
// ---------- Frequency ----------
//

// SetFrequencyMHz changes the design frequency in one transactional
// pass: every wire's segments are recomputed, every excitation re-homes
// to its wire's new center segment and load/line segments are clamped
// into range. Non-positive or non-finite input is ignored, as is setting
// the current value again.
func (e *Editor) SetFrequencyMHz(ctx context.Context, mhz float64) error {
	if !validFrequency(mhz) {
		e.log.Debug(ctx, "ignoring invalid frequency", logging.Float64("mhz", mhz))
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if mhz == e.store.FrequencyMHz() {
		return nil
	}
	pre := e.store.Snapshot()
	if err := e.setFrequencyLocked(ctx, mhz); err != nil {
		return err
	}
	e.history.Push(pre)
	e.recordOpLocked("set_frequency")
	return nil
}

// setFrequencyLocked rebuilds the document at the new design frequency.
// NOTE: caller must hold e.mu.
func (e *Editor) setFrequencyLocked(ctx context.Context, mhz float64) error {
	next := e.store.Snapshot()
	old := next.FrequencyMHz
	next.FrequencyMHz = mhz

	segments := make(map[int]int, len(next.Wires))
	for i, w := range next.Wires {
		next.Wires[i].Segments = core.SegmentsForWire(w, mhz)
		segments[w.Tag] = next.Wires[i].Segments
	}
	for i, exc := range next.Excitations {
		next.Excitations[i].Segment = core.CenterSegment(segments[exc.WireTag])
	}
	for i, l := range next.Loads {
		next.Loads[i].Segment = core.ClampSegment(l.Segment, segments[l.WireTag])
	}
	for i, tl := range next.Lines {
		next.Lines[i].Segment1 = core.ClampSegment(tl.Segment1, segments[tl.Tag1])
		next.Lines[i].Segment2 = core.ClampSegment(tl.Segment2, segments[tl.Tag2])
	}

	if err := e.store.Restore(next); err != nil {
		return fmt.Errorf("set frequency: %w", err)
	}
	e.log.Info(ctx, "design frequency changed",
		logging.Float64("from_mhz", old),
		logging.Float64("to_mhz", mhz),
		logging.Int("wires", len(next.Wires)))
	return nil
}

//
// ---------- Excitations, loads, transmission lines ----------
//

// SetExcitation places or replaces the voltage source on a wire.
func (e *Editor) SetExcitation(ctx context.Context, exc model.Excitation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pre := e.store.Snapshot()
	if err := e.store.SetExcitation(exc); err != nil {
		return fmt.Errorf("set excitation: %w", err)
	}
	e.history.Push(pre)
	e.recordOpLocked("set_excitation")
	return nil
}

// RemoveExcitation deletes the excitation on the given wire, reporting
// whether one existed.
func (e *Editor) RemoveExcitation(ctx context.Context, wireTag int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	pre := e.store.Snapshot()
	if !e.store.RemoveExcitation(wireTag) {
		e.log.Debug(ctx, "no excitation to remove", logging.Int("tag", wireTag))
		return false
	}
	e.history.Push(pre)
	e.recordOpLocked("remove_excitation")
	return true
}

// AddLoad appends a lumped load.
func (e *Editor) AddLoad(ctx context.Context, l model.LumpedLoad) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pre := e.store.Snapshot()
	if err := e.store.AddLoad(l); err != nil {
		return fmt.Errorf("add load: %w", err)
	}
	e.history.Push(pre)
	e.recordOpLocked("add_load")
	return nil
}

// RemoveLoad deletes the load at index, reporting whether it existed.
func (e *Editor) RemoveLoad(ctx context.Context, index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	pre := e.store.Snapshot()
	if !e.store.RemoveLoad(index) {
		e.log.Debug(ctx, "no load at index", logging.Int("index", index))
		return false
	}
	e.history.Push(pre)
	e.recordOpLocked("remove_load")
	return true
}

// AddLine appends a transmission line.
func (e *Editor) AddLine(ctx context.Context, tl model.TransmissionLine) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pre := e.store.Snapshot()
	if err := e.store.AddLine(tl); err != nil {
		return fmt.Errorf("add transmission line: %w", err)
	}
	e.history.Push(pre)
	e.recordOpLocked("add_line")
	return nil
}

// RemoveLine deletes the transmission line at index, reporting whether
// it existed.
func (e *Editor) RemoveLine(ctx context.Context, index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	pre := e.store.Snapshot()
	if !e.store.RemoveLine(index) {
		e.log.Debug(ctx, "no transmission line at index", logging.Int("index", index))
		return false
	}
	e.history.Push(pre)
	e.recordOpLocked("remove_line")
	return true
}

//
// ---------- Undo / redo ----------
//

// Undo rolls the document back one mutation. The selection is cleared:
// restored documents may not contain the selected tags anymore. Returns
// false when there is nothing to undo.
func (e *Editor) Undo(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, ok := e.history.Undo(e.store.Snapshot())
	if !ok {
		return false
	}
	if err := e.store.Restore(snap); err != nil {
		// History entries come from valid documents; this fires only if
		// the history was corrupted.
		e.log.Error(ctx, "undo restore failed", logging.Err(err))
		return false
	}
	e.sel = make(map[int]struct{})
	e.recordOpLocked("undo")
	return true
}

// Redo reapplies the most recently undone mutation. The selection is
// cleared. Returns false when there is nothing to redo.
func (e *Editor) Redo(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, ok := e.history.Redo(e.store.Snapshot())
	if !ok {
		return false
	}
	if err := e.store.Restore(snap); err != nil {
		e.log.Error(ctx, "redo restore failed", logging.Err(err))
		return false
	}
	e.sel = make(map[int]struct{})
	e.recordOpLocked("redo")
	return true
}

// CanUndo reports whether an undo step is available.
func (e *Editor) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (e *Editor) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.CanRedo()
}

//
// ---------- Reads ----------
//

// Geometry is the solver- and renderer-facing projection of the
// document: everything physical, nothing transient.
type Geometry struct {
	FrequencyMHz float64
	Wires        []model.Wire
	Excitations  []model.Excitation
	Loads        []model.LumpedLoad
	Lines        []model.TransmissionLine
}

// Geometry returns a coherent copy of the physical document state.
func (e *Editor) Geometry() Geometry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Geometry{
		FrequencyMHz: e.store.FrequencyMHz(),
		Wires:        e.store.Wires(),
		Excitations:  e.store.Excitations(),
		Loads:        e.store.Loads(),
		Lines:        e.store.Lines(),
	}
}

// Wires returns all wires sorted by tag.
func (e *Editor) Wires() []model.Wire {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Wires()
}

// WireByTag looks up a single wire.
func (e *Editor) WireByTag(tag int) (model.Wire, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Wire(tag)
}

// Excitations returns all excitations sorted by wire tag.
func (e *Editor) Excitations() []model.Excitation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Excitations()
}

// Loads returns all lumped loads in insertion order.
func (e *Editor) Loads() []model.LumpedLoad {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Loads()
}

// Lines returns all transmission lines in insertion order.
func (e *Editor) Lines() []model.TransmissionLine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Lines()
}

// FrequencyMHz returns the design frequency.
func (e *Editor) FrequencyMHz() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.FrequencyMHz()
}

// TotalSegments returns the summed solver segment count.
func (e *Editor) TotalSegments() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Counts().SegmentsTotal
}

// Counts returns document entity counts.
func (e *Editor) Counts() doc.Counts {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Counts()
}

// UndoDepth reports how many undo steps are currently available.
func (e *Editor) UndoDepth() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.Len()
}

// Revision returns the document mutation counter.
func (e *Editor) Revision() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Revision()
}

// Snapshot returns a deep copy of the document, the project-save path.
func (e *Editor) Snapshot() doc.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Snapshot()
}

//
// ---------- Internals ----------
//

// recordOpLocked counts one editor operation and refreshes the gauges.
// NOTE: caller must hold e.mu.
func (e *Editor) recordOpLocked(op string) {
	if e.metrics != nil {
		e.metrics.ObserveEditorOp(op)
	}
	e.updateMetricsLocked()
}

// updateMetricsLocked publishes document counts to the metrics recorder.
// NOTE: caller must hold e.mu.
func (e *Editor) updateMetricsLocked() {
	if e.metrics == nil {
		return
	}
	c := e.store.Counts()
	e.metrics.SetDocumentCounts(c.Wires, c.Excitations, c.Loads, c.Lines, c.SegmentsTotal)
}

func validFrequency(mhz float64) bool {
	return mhz > 0 && !math.IsInf(mhz, 0)
}
