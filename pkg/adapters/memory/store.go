// Package memory keeps traces in process memory, for tests and embedding.
package memory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
)

// Trace is one recorded run.
type Trace struct {
	Path    string
	Header  domain.Header
	Records []domain.TraceRecord
	Closed  bool
}

// Times returns the distinct record timestamps in order.
func (t *Trace) Times() []uint64 {
	var out []uint64
	for _, r := range t.Records {
		if len(out) == 0 || out[len(out)-1] != r.Time {
			out = append(out, r.Time)
		}
	}
	return out
}

// At returns the records written at time ts.
func (t *Trace) At(ts uint64) []domain.TraceRecord {
	var out []domain.TraceRecord
	for _, r := range t.Records {
		if r.Time == ts {
			out = append(out, r)
		}
	}
	return out
}

// Store holds finished and in-progress traces by path.
// Safe for concurrent use.
type Store struct {
	data map[string]*Trace
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*Trace),
	}
}

// Get returns a copy of the trace at path.
func (s *Store) Get(path string) (*Trace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.data[path]
	if !ok {
		return nil, false
	}
	cp := *t
	cp.Records = append([]domain.TraceRecord(nil), t.Records...)
	cp.Header.Signals = append([]domain.SignalDecl(nil), t.Header.Signals...)
	return &cp, true
}

// Paths lists stored traces in lexical order.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Delete removes the trace at path.
func (s *Store) Delete(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, path)
}

func (s *Store) create(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.data[path]; ok && !t.Closed {
		return fmt.Errorf("%w: %q", ErrBusy, path)
	}
	s.data[path] = &Trace{Path: path}
	return nil
}

func (s *Store) update(path string, fn func(t *Trace)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.data[path]; ok {
		fn(t)
	}
}

// ErrBusy is returned when opening a trace that another sink is still writing.
var ErrBusy = errors.New("trace is already being written")

// ErrInjected is the default error returned by a sink configured with a fault.
var ErrInjected = errors.New("injected sink failure")

// Fault makes a Sink fail on purpose.
type Fault struct {
	Op    string // "open", "header", "write" or "close"
	After int    // number of successful calls of Op before failing
	Err   error  // defaults to ErrInjected
}

// Option configures a Sink.
type Option func(*Sink)

// WithPolicy sets the dump policy (default delta).
func WithPolicy(p domain.DumpPolicy) Option {
	return func(s *Sink) {
		s.policy = p
	}
}

// WithFault injects a failure.
func WithFault(f Fault) Option {
	return func(s *Sink) {
		if f.Err == nil {
			f.Err = ErrInjected
		}
		s.faults = append(s.faults, f)
	}
}

// Sink writes traces into a Store.
type Sink struct {
	store  *Store
	policy domain.DumpPolicy
	faults []Fault
	calls  map[string]int
	path   string
	open   bool
}

var _ ports.Sink = (*Sink)(nil)

// NewSink creates a sink writing into store. A nil store gets a private one.
func NewSink(store *Store, opts ...Option) *Sink {
	if store == nil {
		store = NewStore()
	}
	s := &Sink{
		store:  store,
		policy: domain.PolicyDelta,
		calls:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the backing store.
func (s *Sink) Store() *Store {
	return s.store
}

// Policy implements ports.Sink.
func (s *Sink) Policy() domain.DumpPolicy {
	return s.policy
}

func (s *Sink) inject(op string) error {
	n := s.calls[op]
	s.calls[op] = n + 1
	for _, f := range s.faults {
		if f.Op == op && n >= f.After {
			return f.Err
		}
	}
	return nil
}

// Open implements ports.Sink.
func (s *Sink) Open(path string) error {
	if err := s.inject("open"); err != nil {
		return err
	}
	if path == "" {
		return errors.New("memory sink needs a non-empty trace name")
	}
	if err := s.store.create(path); err != nil {
		return err
	}
	s.path = path
	s.open = true
	return nil
}

// WriteHeader implements ports.Sink.
func (s *Sink) WriteHeader(h domain.Header) error {
	if !s.open {
		return errors.New("memory sink is not open")
	}
	if err := s.inject("header"); err != nil {
		return err
	}
	h.Signals = append([]domain.SignalDecl(nil), h.Signals...)
	s.store.update(s.path, func(t *Trace) { t.Header = h })
	return nil
}

// WriteRecord implements ports.Sink.
func (s *Sink) WriteRecord(rec domain.TraceRecord) error {
	if !s.open {
		return errors.New("memory sink is not open")
	}
	if err := s.inject("write"); err != nil {
		return err
	}
	if !s.policy.Admit(rec) {
		return nil
	}
	rec.Value = rec.Value.Clone()
	s.store.update(s.path, func(t *Trace) { t.Records = append(t.Records, rec) })
	return nil
}

// Close implements ports.Sink.
func (s *Sink) Close() error {
	if !s.open {
		return errors.New("memory sink is not open")
	}
	s.open = false
	s.store.update(s.path, func(t *Trace) { t.Closed = true })
	return s.inject("close")
}
