package editor

import (
	"github.com/signalsfoundry/antenna-workbench/doc"
)

// DefaultHistoryDepth bounds each history stack. Pushing onto a full
// undo stack evicts the oldest entry so recent edits stay undoable.
const DefaultHistoryDepth = 100

// History is a bounded undo/redo stack of document snapshots. Entries
// are deep copies, so later document mutations never bleed into stored
// states. History is not safe for concurrent use on its own; the Editor
// serializes access under its lock.
type History struct {
	depth int
	undo  []doc.Snapshot
	redo  []doc.Snapshot
}

// NewHistory creates a history holding at most depth entries per stack.
// Depths below 1 fall back to DefaultHistoryDepth.
func NewHistory(depth int) *History {
	if depth < 1 {
		depth = DefaultHistoryDepth
	}
	return &History{depth: depth}
}

// Push records the pre-mutation snapshot. Any redo entries become
// unreachable and are dropped.
func (h *History) Push(snap doc.Snapshot) {
	if len(h.undo) == h.depth {
		copy(h.undo, h.undo[1:])
		h.undo = h.undo[:h.depth-1]
	}
	h.undo = append(h.undo, snap.Clone())
	h.redo = nil
}

// Undo trades the current snapshot for the most recent undo entry. The
// second return is false when there is nothing to undo.
func (h *History) Undo(current doc.Snapshot) (doc.Snapshot, bool) {
	if len(h.undo) == 0 {
		return doc.Snapshot{}, false
	}
	snap := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current.Clone())
	return snap, true
}

// Redo trades the current snapshot for the most recent redo entry.
func (h *History) Redo(current doc.Snapshot) (doc.Snapshot, bool) {
	if len(h.redo) == 0 {
		return doc.Snapshot{}, false
	}
	snap := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current.Clone())
	return snap, true
}

// CanUndo reports whether at least one undo entry exists.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether at least one redo entry exists.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the configured per-stack capacity.
func (h *History) Depth() int { return h.depth }

// Len returns the number of undoable entries currently held.
func (h *History) Len() int { return len(h.undo) }
