// Package doc holds the in-memory antenna geometry document: wires keyed
// by tag plus the excitation, load and transmission-line annotations that
// reference them. The store enforces referential integrity (no annotation
// may name a missing wire or an out-of-range segment) and emits an event
// for every committed mutation. Higher-level editing semantics live in
// internal/editor.
package doc

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/signalsfoundry/antenna-workbench/model"
)

var (
	ErrWireExists       = errors.New("wire already exists")
	ErrWireNotFound     = errors.New("wire not found")
	ErrInvalidWire      = errors.New("invalid wire")
	ErrInvalidReference = errors.New("reference to unknown wire or segment")
)

// Store is the concurrency-safe geometry document. All reads return
// copies; callers never see internal map or slice state. Tags handed out
// by the allocator are never reused while their wire exists.
type Store struct {
	mu sync.RWMutex

	wires       map[int]model.Wire
	excitations map[int]model.Excitation // keyed by wire tag, at most one per wire
	loads       []model.LumpedLoad
	lines       []model.TransmissionLine

	freqMHz float64
	nextTag int

	revision uint64
	subs     map[int]func(Event)
	nextSub  int
}

// NewStore creates an empty document at the default design frequency.
func NewStore() *Store {
	return &Store{
		wires:       make(map[int]model.Wire),
		excitations: make(map[int]model.Excitation),
		freqMHz:     model.DefaultFrequencyMHz,
		nextTag:     1,
		subs:        make(map[int]func(Event)),
	}
}

//
// ---------- Tags ----------
//

// AllocateTag hands out the next sequential wire tag.
func (s *Store) AllocateTag() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	tag := s.nextTag
	s.nextTag++
	return tag
}

// NextTag returns the tag the next AllocateTag call would hand out.
func (s *Store) NextTag() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextTag
}

// reserveTagLocked keeps the allocator ahead of any tag inserted directly,
// so imported wires can never collide with later allocations.
//
// NOTE: caller must hold s.mu (write lock).
func (s *Store) reserveTagLocked(tag int) {
	if tag+1 > s.nextTag {
		s.nextTag = tag + 1
	}
}

//
// ---------- Wires ----------
//

// InsertWire adds a new wire. The tag must be unused; the allocator is
// advanced past it.
func (s *Store) InsertWire(w model.Wire) error {
	if err := validateWire(w); err != nil {
		return err
	}

	s.mu.Lock()
	if _, exists := s.wires[w.Tag]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: tag %d", ErrWireExists, w.Tag)
	}
	s.wires[w.Tag] = w
	s.reserveTagLocked(w.Tag)
	ev, subs := s.commitLocked(OpWire)
	s.mu.Unlock()

	notify(subs, ev)
	return nil
}

// UpdateWire overwrites the stored wire with the same tag.
func (s *Store) UpdateWire(w model.Wire) error {
	if err := validateWire(w); err != nil {
		return err
	}

	s.mu.Lock()
	if _, exists := s.wires[w.Tag]; !exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: tag %d", ErrWireNotFound, w.Tag)
	}
	s.wires[w.Tag] = w
	ev, subs := s.commitLocked(OpWire)
	s.mu.Unlock()

	notify(subs, ev)
	return nil
}

// RemoveWires deletes the given wires and cascades: excitations and loads
// on a removed wire are dropped, and a transmission line is dropped when
// either of its ends references a removed wire. Unknown tags are skipped.
// The removed tags are returned sorted; nothing is committed when none of
// the tags existed.
func (s *Store) RemoveWires(tags ...int) []int {
	s.mu.Lock()

	var removed []int
	for _, tag := range tags {
		if _, ok := s.wires[tag]; !ok {
			continue
		}
		delete(s.wires, tag)
		delete(s.excitations, tag)
		removed = append(removed, tag)
	}
	if len(removed) == 0 {
		s.mu.Unlock()
		return nil
	}

	gone := make(map[int]struct{}, len(removed))
	for _, tag := range removed {
		gone[tag] = struct{}{}
	}

	kept := s.loads[:0]
	for _, l := range s.loads {
		if _, dead := gone[l.WireTag]; !dead {
			kept = append(kept, l)
		}
	}
	s.loads = kept

	keptLines := s.lines[:0]
	for _, tl := range s.lines {
		_, deadA := gone[tl.Tag1]
		_, deadB := gone[tl.Tag2]
		if !deadA && !deadB {
			keptLines = append(keptLines, tl)
		}
	}
	s.lines = keptLines

	ev, subs := s.commitLocked(OpWire)
	s.mu.Unlock()

	notify(subs, ev)
	sort.Ints(removed)
	return removed
}

// Wire returns the wire with the given tag.
func (s *Store) Wire(tag int) (model.Wire, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wires[tag]
	return w, ok
}

// HasWire reports whether a wire with the given tag exists.
func (s *Store) HasWire(tag int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.wires[tag]
	return ok
}

// Wires returns all wires sorted by tag.
func (s *Store) Wires() []model.Wire {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wiresLocked()
}

// NOTE: caller must hold s.mu (read or write lock).
func (s *Store) wiresLocked() []model.Wire {
	out := make([]model.Wire, 0, len(s.wires))
	for _, w := range s.wires {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

//
// ---------- Excitations ----------
//

// SetExcitation installs or replaces the excitation for a wire. The wire
// must exist and the segment must be within its segment count.
func (s *Store) SetExcitation(e model.Excitation) error {
	s.mu.Lock()
	w, ok := s.wires[e.WireTag]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: excitation names wire %d", ErrInvalidReference, e.WireTag)
	}
	if e.Segment < 1 || e.Segment > w.Segments {
		s.mu.Unlock()
		return fmt.Errorf("%w: excitation segment %d outside [1, %d] on wire %d",
			ErrInvalidReference, e.Segment, w.Segments, e.WireTag)
	}
	s.excitations[e.WireTag] = e
	ev, subs := s.commitLocked(OpAnnotation)
	s.mu.Unlock()

	notify(subs, ev)
	return nil
}

// RemoveExcitation drops the excitation on a wire, reporting whether one
// was present.
func (s *Store) RemoveExcitation(wireTag int) bool {
	s.mu.Lock()
	if _, ok := s.excitations[wireTag]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.excitations, wireTag)
	ev, subs := s.commitLocked(OpAnnotation)
	s.mu.Unlock()

	notify(subs, ev)
	return true
}

// Excitations returns all excitations sorted by wire tag.
func (s *Store) Excitations() []model.Excitation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.excitationsLocked()
}

// NOTE: caller must hold s.mu (read or write lock).
func (s *Store) excitationsLocked() []model.Excitation {
	out := make([]model.Excitation, 0, len(s.excitations))
	for _, e := range s.excitations {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WireTag < out[j].WireTag })
	return out
}

//
// ---------- Loads and transmission lines ----------
//

// AddLoad appends a lumped load after validating its wire reference.
func (s *Store) AddLoad(l model.LumpedLoad) error {
	s.mu.Lock()
	if err := s.checkSegmentRefLocked(l.WireTag, l.Segment, "load"); err != nil {
		s.mu.Unlock()
		return err
	}
	s.loads = append(s.loads, l)
	ev, subs := s.commitLocked(OpAnnotation)
	s.mu.Unlock()

	notify(subs, ev)
	return nil
}

// RemoveLoad deletes the load at the given index, reporting whether the
// index was valid.
func (s *Store) RemoveLoad(index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.loads) {
		s.mu.Unlock()
		return false
	}
	s.loads = append(s.loads[:index], s.loads[index+1:]...)
	ev, subs := s.commitLocked(OpAnnotation)
	s.mu.Unlock()

	notify(subs, ev)
	return true
}

// Loads returns a copy of the load list in insertion order.
func (s *Store) Loads() []model.LumpedLoad {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.LumpedLoad(nil), s.loads...)
}

// AddLine appends a transmission line after validating both ends.
func (s *Store) AddLine(tl model.TransmissionLine) error {
	s.mu.Lock()
	if err := s.checkSegmentRefLocked(tl.Tag1, tl.Segment1, "line end 1"); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.checkSegmentRefLocked(tl.Tag2, tl.Segment2, "line end 2"); err != nil {
		s.mu.Unlock()
		return err
	}
	s.lines = append(s.lines, tl)
	ev, subs := s.commitLocked(OpAnnotation)
	s.mu.Unlock()

	notify(subs, ev)
	return nil
}

// RemoveLine deletes the transmission line at the given index.
func (s *Store) RemoveLine(index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.lines) {
		s.mu.Unlock()
		return false
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	ev, subs := s.commitLocked(OpAnnotation)
	s.mu.Unlock()

	notify(subs, ev)
	return true
}

// Lines returns a copy of the transmission line list in insertion order.
func (s *Store) Lines() []model.TransmissionLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.TransmissionLine(nil), s.lines...)
}

// NOTE: caller must hold s.mu.
func (s *Store) checkSegmentRefLocked(tag, segment int, what string) error {
	w, ok := s.wires[tag]
	if !ok {
		return fmt.Errorf("%w: %s names wire %d", ErrInvalidReference, what, tag)
	}
	if segment < 1 || segment > w.Segments {
		return fmt.Errorf("%w: %s segment %d outside [1, %d] on wire %d",
			ErrInvalidReference, what, segment, w.Segments, tag)
	}
	return nil
}

//
// ---------- Frequency, counts, lifecycle ----------
//

// FrequencyMHz returns the document's design frequency.
func (s *Store) FrequencyMHz() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.freqMHz
}

// Counts summarises the document for metrics and status output.
type Counts struct {
	Wires         int
	Excitations   int
	Loads         int
	Lines         int
	SegmentsTotal int
}

// Counts returns entity counts plus the summed solver segments.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := Counts{
		Wires:       len(s.wires),
		Excitations: len(s.excitations),
		Loads:       len(s.loads),
		Lines:       len(s.lines),
	}
	for _, w := range s.wires {
		c.SegmentsTotal += w.Segments
	}
	return c
}

// Clear empties every collection and resets the tag allocator to 1. The
// design frequency is kept.
func (s *Store) Clear() {
	s.mu.Lock()
	s.wires = make(map[int]model.Wire)
	s.excitations = make(map[int]model.Excitation)
	s.loads = nil
	s.lines = nil
	s.nextTag = 1
	ev, subs := s.commitLocked(OpClear)
	s.mu.Unlock()

	notify(subs, ev)
}

// Revision returns the number of committed mutations since creation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

//
// ---------- Validation helpers ----------
//

func validateWire(w model.Wire) error {
	if w.Tag < 1 {
		return fmt.Errorf("%w: tag %d", ErrInvalidWire, w.Tag)
	}
	if !(w.RadiusM > 0) || math.IsInf(w.RadiusM, 0) {
		return fmt.Errorf("%w: tag %d radius %v", ErrInvalidWire, w.Tag, w.RadiusM)
	}
	if w.Segments < 1 {
		return fmt.Errorf("%w: tag %d segments %d", ErrInvalidWire, w.Tag, w.Segments)
	}
	if !pointFinite(w.End1) || !pointFinite(w.End2) {
		return fmt.Errorf("%w: tag %d has non-finite endpoint", ErrInvalidWire, w.Tag)
	}
	return nil
}

func pointFinite(p model.Point) bool {
	return finite(p.X) && finite(p.Y) && finite(p.Z)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
