// Package prefs owns the user's edge style overrides and their durable
// record. A Store moves Uninitialized -> Loading -> Ready; only Ready
// mutations are written, so a slow initial read can never be clobbered by
// a write of a half-initialized record.
package prefs

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/graphstyle/am"
	"github.com/teranos/graphstyle/db"
	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/internal/notify"
	"github.com/teranos/graphstyle/logger"
)

// State is the lifecycle state of a Store
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// ErrClosed is returned by Flush after Close
var ErrClosed = errors.New("preference store is closed")

// writeQueueSize bounds pending full-record writes before mutations block
const writeQueueSize = 64

type mutation struct {
	reset   bool
	partial graph.EdgeOverride
}

func (m mutation) apply(p Preferences) Preferences {
	if m.reset {
		return p.reset(m.partial.Type)
	}
	return p.upsert(m.partial)
}

type writeRequest struct {
	data []byte
	done chan error // non-nil for Flush
}

// Store holds the current overrides and sequences their durable writes
type Store struct {
	storage Storage
	key     string
	logger  *zap.SugaredLogger

	// notifyMu orders mutation+notification pairs so subscribers see
	// snapshots in mutation order. Subscribers must not mutate the store.
	notifyMu sync.Mutex

	mu      sync.Mutex
	state   State
	prefs   Preferences
	journal []mutation // mutations made while Loading
	closed  bool

	ready      chan struct{}
	writes     chan writeRequest
	writerDone chan struct{}
	subs       notify.Subscribers[[]graph.EdgeOverride]
}

// NewStore creates an Uninitialized store. An empty key uses the default
// record key; a nil logger uses the "prefs.store" component logger.
func NewStore(storage Storage, key string, log *zap.SugaredLogger) *Store {
	if key == "" {
		key = am.DefaultStorageKey
	}
	if log == nil {
		log = logger.ComponentLogger("prefs.store")
	}
	return &Store{
		storage:    storage,
		key:        key,
		logger:     log,
		prefs:      Preferences{Edges: []graph.EdgeOverride{}},
		ready:      make(chan struct{}),
		writes:     make(chan writeRequest, writeQueueSize),
		writerDone: make(chan struct{}),
	}
}

// Key returns the durable record key
func (s *Store) Key() string {
	return s.key
}

// Load issues the single durable read in the background and returns
// immediately. The store is Loading until the read settles, then Ready.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		state := s.state
		s.mu.Unlock()
		return errors.Newf("preference store already %s", state)
	}
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.state = StateLoading
	s.mu.Unlock()

	s.logger.Debugw("Loading preferences", logger.FieldKey, s.key)

	go s.writer()
	go s.load(ctx)
	return nil
}

func (s *Store) load(ctx context.Context) {
	base := Preferences{Edges: []graph.EdgeOverride{}}

	data, err := s.storage.Read(ctx, s.key)
	switch {
	case errors.IsNotFoundError(err):
		s.logger.Infow("No persisted preferences, starting empty", logger.FieldKey, s.key)
	case err != nil:
		s.logger.Warnw("Failed to read preferences, starting empty",
			logger.FieldKey, s.key,
			logger.FieldError, err)
	default:
		loaded, err := Decode(data)
		if err != nil {
			s.logger.Warnw("Rejected malformed preference record, starting empty",
				logger.FieldKey, s.key,
				logger.FieldError, err)
		} else {
			base = loaded
		}
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	replayed := len(s.journal)
	for _, m := range s.journal {
		base = m.apply(base)
	}
	s.journal = nil
	s.prefs = base
	s.state = StateReady
	close(s.ready)
	snapshot := base.Clone().Edges
	s.mu.Unlock()

	s.logger.Infow("Preferences ready",
		logger.FieldKey, s.key,
		logger.FieldCount, len(snapshot),
		"replayed_mutations", replayed)
	s.subs.Notify(snapshot)
}

// writer applies full-record writes one at a time in the order they were
// enqueued. Failures are logged; memory stays authoritative.
func (s *Store) writer() {
	defer close(s.writerDone)
	for req := range s.writes {
		err := s.storage.Write(context.Background(), s.key, req.data)
		switch {
		case err == nil:
			s.logger.Debugw("Preferences written", logger.FieldKey, s.key)
		case db.IsDatabaseClosed(err):
			s.logger.Debugw("Preferences write skipped, database closed", logger.FieldKey, s.key)
		default:
			s.logger.Errorw("Failed to write preferences",
				logger.FieldKey, s.key,
				logger.FieldError, err)
		}
		if req.done != nil {
			req.done <- err
		}
	}
}

// mustBeLoaded panics when Load was never called. Caller holds s.mu and
// releases it with defer.
func (s *Store) mustBeLoaded(op string) {
	if s.state == StateUninitialized {
		panic(errors.AssertionFailedf("prefs: %s called before Load", op))
	}
}

func (s *Store) checkLoaded(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeLoaded(op)
}

// Upsert merges partial into the override for typeID, creating it if absent.
// Present fields of partial win; absent fields keep their current value.
// It returns the merged override as of this mutation.
func (s *Store) Upsert(typeID string, partial graph.EdgeOverride) (graph.EdgeOverride, error) {
	partial = partial.Clone()
	partial.Type = typeID
	if err := partial.Validate(); err != nil {
		return graph.EdgeOverride{}, err
	}
	edges := s.mutate("Upsert", mutation{partial: partial})
	merged, ok := graph.FindOverride(edges, typeID)
	if !ok {
		return graph.EdgeOverride{}, errors.AssertionFailedf("prefs: upserted type %q missing from record", typeID)
	}
	return merged.Clone(), nil
}

// Reset removes the override for typeID
func (s *Store) Reset(typeID string) {
	s.mutate("Reset", mutation{reset: true, partial: graph.EdgeOverride{Type: typeID}})
}

// mutate applies m and returns the resulting overrides
func (s *Store) mutate(op string, m mutation) []graph.EdgeOverride {
	s.checkLoaded(op)

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()

	next := m.apply(s.prefs)
	s.prefs = next

	switch {
	case s.state == StateLoading:
		s.journal = append(s.journal, m)
		s.logger.Debugw("Preference change held until load settles",
			logger.FieldOperation, op,
			logger.FieldType, m.partial.Type)
	case s.closed:
		s.logger.Warnw("Preference change after close is not persisted",
			logger.FieldOperation, op,
			logger.FieldType, m.partial.Type)
	default:
		s.enqueueLocked(next, nil)
	}

	snapshot := next.Clone().Edges
	s.mu.Unlock()

	s.subs.Notify(snapshot)
	return snapshot
}

// enqueueLocked encodes p and queues its write. Caller holds s.mu, which
// keeps queue order equal to mutation order.
func (s *Store) enqueueLocked(p Preferences, done chan error) {
	data, err := Encode(p)
	if err != nil {
		s.logger.Errorw("Failed to encode preferences", logger.FieldError, err)
		if done != nil {
			done <- err
		}
		return
	}
	s.writes <- writeRequest{data: data, done: done}
}

// Flush waits for Ready, then writes the current record and waits for
// that write. Unlike mutation writes, its error is returned.
func (s *Store) Flush(ctx context.Context) error {
	s.checkLoaded("Flush")

	select {
	case <-s.ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	done := make(chan error, 1)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.enqueueLocked(s.prefs, done)
	s.mu.Unlock()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns a copy of the override for typeID
func (s *Store) Get(typeID string) (graph.EdgeOverride, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeLoaded("Get")
	o, ok := graph.FindOverride(s.prefs.Edges, typeID)
	if !ok {
		return graph.EdgeOverride{}, false
	}
	return o.Clone(), true
}

// Overrides returns a copy of all overrides
func (s *Store) Overrides() []graph.EdgeOverride {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeLoaded("Overrides")
	return s.prefs.Clone().Edges
}

// Snapshot returns a copy of the whole record
func (s *Store) Snapshot() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeLoaded("Snapshot")
	return s.prefs.Clone()
}

// State returns the lifecycle state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready is closed when the initial load settles
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Subscribe registers fn for every change, including the load settling.
// fn must not mutate the store.
func (s *Store) Subscribe(fn func([]graph.EdgeOverride)) func() {
	return s.subs.Add(fn)
}

// Close drains pending writes and stops the writer. Mutations after Close
// change memory only.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	started := s.state != StateUninitialized
	if started {
		close(s.writes)
	}
	s.mu.Unlock()

	if started {
		<-s.writerDone
	}
	return nil
}
