package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signalsfoundry/antenna-workbench/doc"
	"github.com/signalsfoundry/antenna-workbench/internal/editor"
	"github.com/signalsfoundry/antenna-workbench/internal/logging"
	"github.com/signalsfoundry/antenna-workbench/internal/observability"
)

// Session is one live editing session bound to one document editor.
type Session struct {
	ID        string
	Editor    *editor.Editor
	CreatedAt time.Time

	// mu guards the fields below. It is a leaf lock: nothing is acquired
	// while it is held, so it is safe from store event dispatch and from
	// registry iteration alike.
	mu       sync.Mutex
	lastEdit time.Time
	counts   doc.Counts

	cancelSub func()
}

// LastEdit reports when the document last committed a mutation.
func (s *Session) LastEdit() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEdit
}

// touch runs inside the store's event dispatch, which the editor invokes
// while still holding its own lock.
func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.After(s.lastEdit) {
		s.lastEdit = t
	}
}

// Counts returns the last counts the editor reported for this document.
func (s *Session) Counts() doc.Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

func (s *Session) setCounts(c doc.Counts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = c
}

// Registry tracks live sessions, feeds fleet-wide document gauges and
// expires idle documents on a ticker.
type Registry struct {
	log       logging.Logger
	collector *observability.EditorCollector
	ttl       time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry builds a session registry. A positive ttl and sweep
// interval start the idle janitor; either at zero disables expiry.
func NewRegistry(log logging.Logger, collector *observability.EditorCollector, ttl, sweep time.Duration) *Registry {
	if log == nil {
		log = logging.Noop()
	}
	r := &Registry{
		log:       log,
		collector: collector,
		ttl:       ttl,
		sessions:  make(map[string]*Session),
	}
	r.runCtx, r.cancel = context.WithCancel(context.Background())
	if ttl > 0 && sweep > 0 {
		r.wg.Add(1)
		go r.janitor(sweep)
	}
	return r
}

// Create opens a new editing session and registers it under a fresh id.
func (r *Registry) Create(opts ...editor.Option) *Session {
	id := uuid.NewString()
	now := time.Now()

	sess := &Session{
		ID:        id,
		CreatedAt: now,
		lastEdit:  now,
	}
	rec := &countsRecorder{reg: r, sess: sess}
	sess.Editor = editor.New(
		r.log.With(logging.String("document_id", id)),
		append(opts, editor.WithMetricsRecorder(rec))...,
	)
	sess.cancelSub = sess.Editor.Store().Subscribe(func(ev doc.Event) {
		sess.touch(ev.At)
	})

	r.mu.Lock()
	r.sessions[id] = sess
	open := len(r.sessions)
	r.mu.Unlock()

	if r.collector != nil {
		r.collector.SetOpenDocuments(open)
	}
	r.republish()
	return sess
}

// Get returns the session for id, if it is still open.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// Len reports the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Delete closes a session. It reports whether the id was open.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	open := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}
	if sess.cancelSub != nil {
		sess.cancelSub()
	}
	if r.collector != nil {
		r.collector.SetOpenDocuments(open)
	}
	r.republish()
	return true
}

// Close stops the janitor. Open sessions stay usable; Close only ends
// background expiry.
func (r *Registry) Close() {
	r.cancel()
	r.wg.Wait()
}

func (r *Registry) janitor(interval time.Duration) {
	defer r.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.runCtx.Done():
			return
		case now := <-ticker.C:
			r.sweep(now)
		}
	}
}

// sweep closes every session idle longer than the ttl and returns the
// closed ids.
func (r *Registry) sweep(now time.Time) []string {
	var expired []*Session
	r.mu.Lock()
	for id, sess := range r.sessions {
		if now.Sub(sess.LastEdit()) > r.ttl {
			expired = append(expired, sess)
			delete(r.sessions, id)
		}
	}
	open := len(r.sessions)
	r.mu.Unlock()

	if len(expired) == 0 {
		return nil
	}
	ids := make([]string, 0, len(expired))
	for _, sess := range expired {
		if sess.cancelSub != nil {
			sess.cancelSub()
		}
		ids = append(ids, sess.ID)
		r.log.Info(r.runCtx, "idle document closed",
			logging.String("document_id", sess.ID),
			logging.Duration("idle", now.Sub(sess.LastEdit())))
	}
	if r.collector != nil {
		r.collector.SetOpenDocuments(open)
	}
	r.republish()
	return ids
}

// republish pushes document gauge totals summed across live sessions,
// so concurrent documents add up instead of overwriting each other.
// Session counts are cached leaf-locked values; nothing here calls back
// into an editor.
func (r *Registry) republish() {
	if r.collector == nil {
		return
	}
	var total doc.Counts
	r.mu.Lock()
	for _, sess := range r.sessions {
		c := sess.Counts()
		total.Wires += c.Wires
		total.Excitations += c.Excitations
		total.Loads += c.Loads
		total.Lines += c.Lines
		total.SegmentsTotal += c.SegmentsTotal
	}
	r.mu.Unlock()
	r.collector.SetDocumentCounts(total.Wires, total.Excitations, total.Loads, total.Lines, total.SegmentsTotal)
}

// countsRecorder feeds one editor's metrics through the registry. The
// editor calls it while holding its own lock, so the recorder only
// touches the session's leaf lock and the registry lock, never another
// editor.
type countsRecorder struct {
	reg  *Registry
	sess *Session
}

func (cr *countsRecorder) SetDocumentCounts(wires, excitations, loads, lines, segments int) {
	cr.sess.setCounts(doc.Counts{
		Wires:         wires,
		Excitations:   excitations,
		Loads:         loads,
		Lines:         lines,
		SegmentsTotal: segments,
	})
	cr.reg.republish()
}

func (cr *countsRecorder) ObserveEditorOp(op string) {
	if cr.reg.collector != nil {
		cr.reg.collector.ObserveEditorOp(op)
	}
}
