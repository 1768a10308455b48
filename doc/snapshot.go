package doc

import (
	"fmt"

	"github.com/signalsfoundry/antenna-workbench/model"
)

// Snapshot is a deep value copy of a document at one instant: wires sorted
// by tag, annotations, the tag allocator and the design frequency. The
// selection is deliberately not part of a snapshot. Element types hold no
// references, so copying the slices is a full deep copy.
type Snapshot struct {
	Wires        []model.Wire
	Excitations  []model.Excitation
	Loads        []model.LumpedLoad
	Lines        []model.TransmissionLine
	NextTag      int
	FrequencyMHz float64
}

// Clone returns a snapshot whose slices share nothing with the receiver.
func (snap Snapshot) Clone() Snapshot {
	out := snap
	out.Wires = append([]model.Wire(nil), snap.Wires...)
	out.Excitations = append([]model.Excitation(nil), snap.Excitations...)
	out.Loads = append([]model.LumpedLoad(nil), snap.Loads...)
	out.Lines = append([]model.TransmissionLine(nil), snap.Lines...)
	return out
}

// WireByTag finds a wire in the snapshot.
func (snap Snapshot) WireByTag(tag int) (model.Wire, bool) {
	for _, w := range snap.Wires {
		if w.Tag == tag {
			return w, true
		}
	}
	return model.Wire{}, false
}

// Validate checks structural integrity: wire validity and uniqueness, and
// every annotation referencing an existing wire segment.
func (snap Snapshot) Validate() error {
	tags := make(map[int]int, len(snap.Wires))
	for _, w := range snap.Wires {
		if err := validateWire(w); err != nil {
			return err
		}
		if _, dup := tags[w.Tag]; dup {
			return fmt.Errorf("%w: duplicate tag %d", ErrInvalidWire, w.Tag)
		}
		tags[w.Tag] = w.Segments
	}

	seen := make(map[int]struct{}, len(snap.Excitations))
	for _, e := range snap.Excitations {
		if err := checkSnapshotRef(tags, e.WireTag, e.Segment, "excitation"); err != nil {
			return err
		}
		if _, dup := seen[e.WireTag]; dup {
			return fmt.Errorf("%w: second excitation on wire %d", ErrInvalidReference, e.WireTag)
		}
		seen[e.WireTag] = struct{}{}
	}

	for _, l := range snap.Loads {
		if err := checkSnapshotRef(tags, l.WireTag, l.Segment, "load"); err != nil {
			return err
		}
	}
	for _, tl := range snap.Lines {
		if err := checkSnapshotRef(tags, tl.Tag1, tl.Segment1, "line end 1"); err != nil {
			return err
		}
		if err := checkSnapshotRef(tags, tl.Tag2, tl.Segment2, "line end 2"); err != nil {
			return err
		}
	}
	return nil
}

func checkSnapshotRef(tags map[int]int, tag, segment int, what string) error {
	segs, ok := tags[tag]
	if !ok {
		return fmt.Errorf("%w: %s names wire %d", ErrInvalidReference, what, tag)
	}
	if segment < 1 || segment > segs {
		return fmt.Errorf("%w: %s segment %d outside [1, %d] on wire %d",
			ErrInvalidReference, what, segment, segs, tag)
	}
	return nil
}

// Snapshot captures the current document.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Wires:        s.wiresLocked(),
		Excitations:  s.excitationsLocked(),
		Loads:        append([]model.LumpedLoad(nil), s.loads...),
		Lines:        append([]model.TransmissionLine(nil), s.lines...),
		NextTag:      s.nextTag,
		FrequencyMHz: s.freqMHz,
	}
}

// Restore replaces the whole document with the snapshot's contents after
// validating it. The tag allocator is forced past every restored tag, and
// a non-positive frequency falls back to the default.
func (s *Store) Restore(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	wires := make(map[int]model.Wire, len(snap.Wires))
	maxTag := 0
	for _, w := range snap.Wires {
		wires[w.Tag] = w
		if w.Tag > maxTag {
			maxTag = w.Tag
		}
	}
	excitations := make(map[int]model.Excitation, len(snap.Excitations))
	for _, e := range snap.Excitations {
		excitations[e.WireTag] = e
	}

	nextTag := snap.NextTag
	if nextTag < maxTag+1 {
		nextTag = maxTag + 1
	}
	if nextTag < 1 {
		nextTag = 1
	}
	freq := snap.FrequencyMHz
	if !(freq > 0) || !finite(freq) {
		freq = model.DefaultFrequencyMHz
	}

	s.mu.Lock()
	s.wires = wires
	s.excitations = excitations
	s.loads = append([]model.LumpedLoad(nil), snap.Loads...)
	s.lines = append([]model.TransmissionLine(nil), snap.Lines...)
	s.nextTag = nextTag
	s.freqMHz = freq
	ev, subs := s.commitLocked(OpBulk)
	s.mu.Unlock()

	notify(subs, ev)
	return nil
}
