package doc

import "time"

// Op classifies what a committed mutation touched.
type Op int

const (
	// OpWire covers wire inserts, updates and removals (with cascades).
	OpWire Op = iota
	// OpAnnotation covers excitation, load and transmission line changes.
	OpAnnotation
	// OpClear is a full document wipe.
	OpClear
	// OpBulk is a wholesale snapshot swap: undo, redo, import and the
	// atomic frequency recompute all commit this way.
	OpBulk
)

func (o Op) String() string {
	switch o {
	case OpWire:
		return "wire"
	case OpAnnotation:
		return "annotation"
	case OpClear:
		return "clear"
	case OpBulk:
		return "bulk"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after a mutation commits. Revision is
// the store's counter after the commit.
type Event struct {
	Op       Op
	Revision uint64
	At       time.Time
}

// Subscribe registers a callback invoked after every committed mutation.
// Callbacks run outside the store lock, so they may call back into the
// store. The returned func cancels the subscription.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// commitLocked bumps the revision and collects the subscriber list so the
// caller can notify after releasing the lock.
//
// NOTE: caller must hold s.mu (write lock).
func (s *Store) commitLocked(op Op) (Event, []func(Event)) {
	s.revision++
	ev := Event{Op: op, Revision: s.revision, At: time.Now()}

	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return ev, subs
}

// Notify subscribers outside the lock to avoid deadlocks.
func notify(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
