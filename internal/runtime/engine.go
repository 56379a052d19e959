// Package runtime drives the dump engine state machine.
package runtime

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/scopetrace/internal/selection"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
)

// Engine streams the enabled signals of a selection to one sink per run.
// It is single-threaded: callers must not use it from several goroutines.
type Engine struct {
	selection *selection.Set
	sampler   ports.Sampler
	logger    *slog.Logger
	clock     func() time.Time
	timescale string
	version   string

	state    domain.EngineState
	sink     ports.Sink
	path     string
	fault    error
	declared bool
	signals  []*domain.ScopeNode // frozen when the header is declared
	last     []domain.Value
	pending  []domain.TraceRecord // one step, written only once every sample is valid
	lastTime uint64
	dumps    int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock sets the wall clock used for the header date.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithTimescale sets the timescale declared in the header (default "1ps").
func WithTimescale(ts string) EngineOption {
	return func(e *Engine) {
		if ts != "" {
			e.timescale = ts
		}
	}
}

// WithVersion sets the tool version declared in the header.
func WithVersion(v string) EngineOption {
	return func(e *Engine) {
		e.version = v
	}
}

// NewEngine creates an engine in the Created state.
func NewEngine(sel *selection.Set, sampler ports.Sampler, opts ...EngineOption) *Engine {
	e := &Engine{
		selection: sel,
		sampler:   sampler,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:     time.Now,
		timescale: domain.DefaultTimescale,
		state:     domain.StateCreated,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() domain.EngineState {
	return e.state
}

// Declared reports whether the header has been written and the selection frozen.
func (e *Engine) Declared() bool {
	return e.declared
}

// Dumps returns the number of completed dumps.
func (e *Engine) Dumps() int {
	return e.dumps
}

// LastTime returns the time of the last completed dump.
func (e *Engine) LastTime() (uint64, bool) {
	return e.lastTime, e.dumps > 0
}

// Signals returns the traced signals once the header is declared.
func (e *Engine) Signals() []*domain.ScopeNode {
	return e.signals
}

// Err returns the fault that failed the run, if any.
func (e *Engine) Err() error {
	return e.fault
}

// Open attaches sink and opens the trace at path.
// If the sink cannot open, the engine stays in Created and Open may be retried.
func (e *Engine) Open(sink ports.Sink, path string) error {
	if e.state != domain.StateCreated {
		return &domain.UsageError{Op: "open", State: e.state}
	}
	if sink == nil {
		return &domain.UsageError{Op: "open", State: e.state, Err: errors.New("nil sink")}
	}
	if err := sink.Open(path); err != nil {
		return &domain.SinkError{Op: "open", Path: path, Err: err}
	}

	e.sink = sink
	e.path = path
	e.state = domain.StateOpen
	e.logger.Debug("trace opened", "path", path, "policy", sink.Policy())
	return nil
}

// Dump offers the value of every traced signal at time t to the sink.
// The first call declares the header from the selection as it is at that moment.
func (e *Engine) Dump(t uint64) error {
	switch e.state {
	case domain.StateOpen:
	case domain.StateFailed:
		return &domain.UsageError{Op: "dump", State: e.state, Err: e.fault}
	default:
		return &domain.UsageError{Op: "dump", State: e.state}
	}

	if e.dumps > 0 && t <= e.lastTime {
		return e.fail(&domain.TimeOrderingError{Previous: e.lastTime, Got: t})
	}
	if !e.declared {
		if err := e.declare(); err != nil {
			return e.fail(err)
		}
	}

	first := e.dumps == 0
	e.pending = e.pending[:0]
	for i, n := range e.signals {
		v, ok := e.sampler.Sample(n.Path)
		if !ok {
			return e.fail(fmt.Errorf("%w: no value for %s at time %d", domain.ErrBadSample, n.Path, t))
		}
		if v.Width() != n.Width {
			return e.fail(fmt.Errorf("%w: %s has width %d, declared %d", domain.ErrBadSample, n.Path, v.Width(), n.Width))
		}
		e.pending = append(e.pending, domain.TraceRecord{
			Time:    t,
			Path:    n.Path,
			Index:   n.Index,
			Value:   v,
			Changed: first || !v.Equal(e.last[i]),
		})
	}

	for i, rec := range e.pending {
		if err := e.sink.WriteRecord(rec); err != nil {
			return e.fail(&domain.SinkError{Op: "write", Path: e.path, Err: err})
		}
		if rec.Changed {
			e.last[i] = rec.Value.Clone()
		}
	}

	e.lastTime = t
	e.dumps++
	return nil
}

// Flush asks a buffering sink to push its data out.
func (e *Engine) Flush() error {
	if e.state != domain.StateOpen {
		return &domain.UsageError{Op: "flush", State: e.state}
	}
	f, ok := e.sink.(ports.Flusher)
	if !ok {
		return nil
	}
	if err := f.Flush(); err != nil {
		return e.fail(&domain.SinkError{Op: "flush", Path: e.path, Err: err})
	}
	return nil
}

// Close finalizes the sink. It is accepted after a fault so the truncated trace stays
// well formed; in that case only a close failure is reported.
func (e *Engine) Close() error {
	switch e.state {
	case domain.StateOpen, domain.StateFailed:
	default:
		return &domain.UsageError{Op: "close", State: e.state}
	}

	var headerErr error
	if e.state == domain.StateOpen && !e.declared {
		headerErr = e.declare()
	}

	closeErr := e.sink.Close()
	failed := e.state == domain.StateFailed
	e.state = domain.StateClosed
	e.sink = nil

	if closeErr != nil {
		closeErr = &domain.SinkError{Op: "close", Path: e.path, Err: closeErr}
		e.logger.Error("trace close failed", "path", e.path, "err", closeErr)
		return errors.Join(headerErr, closeErr)
	}
	if headerErr != nil {
		return headerErr
	}

	if failed {
		e.logger.Warn("truncated trace closed", "path", e.path, "dumps", e.dumps, "err", e.fault)
	} else {
		e.logger.Info("trace closed", "path", e.path, "dumps", e.dumps, "signals", len(e.signals))
	}
	return nil
}

func (e *Engine) declare() error {
	e.signals = e.selection.Signals()
	e.last = make([]domain.Value, len(e.signals))
	e.pending = make([]domain.TraceRecord, 0, len(e.signals))

	h := domain.Header{
		Timescale: e.timescale,
		Version:   e.version,
		Date:      e.clock(),
		Signals:   make([]domain.SignalDecl, len(e.signals)),
	}
	for i, n := range e.signals {
		h.Signals[i] = domain.DeclFromNode(n)
	}

	e.declared = true
	if err := e.sink.WriteHeader(h); err != nil {
		return &domain.SinkError{Op: "header", Path: e.path, Err: err}
	}
	e.logger.Debug("header declared", "path", e.path, "signals", len(h.Signals))
	return nil
}

func (e *Engine) fail(err error) error {
	e.fault = err
	e.state = domain.StateFailed
	e.logger.Error("trace run failed", "path", e.path, "err", err)
	return err
}
