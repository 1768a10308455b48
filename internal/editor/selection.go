package editor

import (
	"context"
	"sort"

	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/model"
)

// Select makes tag the sole selection, or adds it to the selection when
// additive is true. Unknown tags leave the selection untouched.
func (e *Editor) Select(tag int, additive bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.store.HasWire(tag) {
		e.log.Debug(context.Background(), "select ignored for unknown wire", logging.Int("tag", tag))
		return
	}
	if !additive {
		e.sel = make(map[int]struct{})
	}
	e.sel[tag] = struct{}{}
}

// ToggleSelect flips a wire's membership in the selection. Unknown tags
// are ignored.
func (e *Editor) ToggleSelect(tag int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.store.HasWire(tag) {
		return
	}
	if _, ok := e.sel[tag]; ok {
		delete(e.sel, tag)
		return
	}
	e.sel[tag] = struct{}{}
}

// SelectAll selects every wire in the document.
func (e *Editor) SelectAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sel = make(map[int]struct{})
	for _, w := range e.store.Wires() {
		e.sel[w.Tag] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel = make(map[int]struct{})
}

// Selected returns the selected tags in ascending order.
func (e *Editor) Selected() []int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tags := make([]int, 0, len(e.sel))
	for tag := range e.sel {
		tags = append(tags, tag)
	}
	sort.Ints(tags)
	return tags
}

// IsSelected reports whether the wire is in the selection.
func (e *Editor) IsSelected(tag int) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.sel[tag]
	return ok
}

// SetMode switches the edit mode. Mode is view state: undo and redo
// never touch it.
func (e *Editor) SetMode(m model.EditMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = m
}

// Mode returns the current edit mode.
func (e *Editor) Mode() model.EditMode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}
