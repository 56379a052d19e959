package scopetrace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/scopetrace/internal/runtime"
	"github.com/aretw0/scopetrace/internal/scopetree"
	"github.com/aretw0/scopetrace/internal/selection"
	"github.com/aretw0/scopetrace/pkg/adapters/metrics"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
	"github.com/aretw0/scopetrace/pkg/registry"
)

// Outcome reports what a directive enabled.
type Outcome = selection.Outcome

// Tracer is the high-level entry point of the library.
// It owns the scope tree of one model, the directive program replayed against it,
// and the dump engine of one run.
//
// A Tracer is not safe for concurrent use.
type Tracer struct {
	model     ports.Model
	tree      *scopetree.Tree
	selection *selection.Set
	program   domain.Program
	engine    *runtime.Engine

	registry  *registry.Registry
	sink      ports.Sink
	format    string
	sinkOpts  map[string]any
	collector *metrics.Collector

	logger    *slog.Logger
	clock     func() time.Time
	timescale string
	version   string
}

// Option defines a functional option for configuring the Tracer.
type Option func(*Tracer)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracer) {
		t.logger = logger
	}
}

// WithSink injects the sink to write to, bypassing the format registry.
func WithSink(sink ports.Sink) Option {
	return func(t *Tracer) {
		t.sink = sink
	}
}

// WithFormat forces a registered format instead of guessing it from the output extension.
func WithFormat(name string) Option {
	return func(t *Tracer) {
		t.format = name
	}
}

// WithSinkOptions passes format specific options to the registry factory.
func WithSinkOptions(opts map[string]any) Option {
	return func(t *Tracer) {
		t.sinkOpts = opts
	}
}

// WithRegistry replaces the default format registry.
func WithRegistry(r *registry.Registry) Option {
	return func(t *Tracer) {
		t.registry = r
	}
}

// WithMetrics instruments the sink with the given collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(t *Tracer) {
		t.collector = c
	}
}

// WithTimescale sets the timescale declared in the header (default "1ps").
func WithTimescale(ts string) Option {
	return func(t *Tracer) {
		t.timescale = ts
	}
}

// WithClock sets the clock used for the header creation date.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracer) {
		t.clock = clock
	}
}

// WithVersion overrides the tool version declared in the header.
func WithVersion(v string) Option {
	return func(t *Tracer) {
		t.version = v
	}
}

// New creates a Tracer. Directives may be issued before a model is attached with Trace.
func New(opts ...Option) *Tracer {
	t := &Tracer{
		timescale: domain.DefaultTimescale,
		clock:     time.Now,
		version:   "scopetrace " + strings.TrimSpace(Version),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if t.registry == nil {
		t.registry = registry.Default(nil)
	}
	return t
}

// Trace attaches a model: its hierarchy is registered once and every directive
// issued so far is replayed against it.
func (t *Tracer) Trace(model ports.Model) error {
	if t.model != nil {
		return &domain.UsageError{Op: "trace", State: t.state(), Err: errors.New("a model is already attached")}
	}
	tree, err := scopetree.FromModel(model)
	if err != nil {
		return fmt.Errorf("failed to register model: %w", err)
	}

	sel := selection.New(tree)
	outcomes, err := sel.Replay(t.program)
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		t.logOutcome(o)
	}

	t.model = model
	t.tree = tree
	t.selection = sel
	t.logger.Debug("model registered", "nodes", tree.Len(), "signals", len(tree.Signals()), "directives", len(t.program))
	return nil
}

// Dumpvars enables tracing of the subtree at path, down to depth levels (0 = unlimited).
// Before Trace the directive is only recorded and the zero Outcome is returned.
// Once the header has been declared the selection is frozen and Dumpvars fails.
func (t *Tracer) Dumpvars(depth int, path string) (Outcome, error) {
	d, err := domain.NewDirective(depth, path)
	if err != nil {
		return Outcome{}, err
	}
	if t.engine != nil && t.engine.Declared() {
		return Outcome{}, &domain.UsageError{Op: "dumpvars", State: t.engine.State(), Err: errors.New("selection is frozen")}
	}

	t.program = append(t.program, d)
	if t.selection == nil {
		return Outcome{Directive: d}, nil
	}
	o, err := t.selection.Apply(d)
	if err != nil {
		return o, err
	}
	t.logOutcome(o)
	return o, nil
}

func (t *Tracer) logOutcome(o Outcome) {
	if o.Miss {
		t.logger.Debug("directive matched nothing", "directive", o.Directive.String())
		return
	}
	if o.Partial {
		t.logger.Debug("directive matched an ancestor", "directive", o.Directive.String(), "target", o.Target)
	}
}

// Open resolves the sink for path and opens the trace.
func (t *Tracer) Open(path string) error {
	if t.model == nil {
		return &domain.UsageError{Op: "open", State: domain.StateCreated, Err: errors.New("no model attached")}
	}
	if t.engine != nil {
		return &domain.UsageError{Op: "open", State: t.engine.State()}
	}

	sink, format, err := t.resolveSink(path)
	if err != nil {
		return err
	}

	eng := runtime.NewEngine(t.selection, t.model,
		runtime.WithLogger(t.logger.With("format", format)),
		runtime.WithClock(t.clock),
		runtime.WithTimescale(t.timescale),
		runtime.WithVersion(t.version),
	)
	if err := eng.Open(sink, path); err != nil {
		return err
	}
	t.engine = eng
	return nil
}

func (t *Tracer) resolveSink(path string) (ports.Sink, string, error) {
	sink := t.sink
	format := t.format
	if sink == nil {
		name, err := t.registry.Resolve(t.format, path)
		if err != nil {
			return nil, "", err
		}
		sink, err = t.registry.New(name, t.sinkOpts)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create %s sink: %w", name, err)
		}
		format = name
	}
	if format == "" {
		format = "custom"
	}
	if t.collector != nil {
		sink = t.collector.Wrap(sink, format)
	}
	return sink, format, nil
}

// Dump records the traced signals at simulated time ts. The first Dump declares
// the header; with no directive issued at that point the whole tree is traced.
func (t *Tracer) Dump(ts uint64) error {
	if t.engine == nil {
		return &domain.UsageError{Op: "dump", State: domain.StateCreated}
	}
	t.applyDefault()
	return t.engine.Dump(ts)
}

// Flush pushes buffered output to the sink.
func (t *Tracer) Flush() error {
	if t.engine == nil {
		return &domain.UsageError{Op: "flush", State: domain.StateCreated}
	}
	return t.engine.Flush()
}

// Close finalizes the trace.
func (t *Tracer) Close() error {
	if t.engine == nil {
		return &domain.UsageError{Op: "close", State: domain.StateCreated}
	}
	t.applyDefault()
	return t.engine.Close()
}

func (t *Tracer) applyDefault() {
	if t.engine.Declared() || t.engine.State() != domain.StateOpen || len(t.program) > 0 {
		return
	}
	d := domain.Directive{Depth: domain.UnlimitedDepth, Path: domain.RootPath}
	t.program = append(t.program, d)
	// the root always resolves
	_, _ = t.selection.Apply(d)
	t.logger.Debug("no directive issued, tracing everything")
}

func (t *Tracer) state() domain.EngineState {
	if t.engine == nil {
		return domain.StateCreated
	}
	return t.engine.State()
}

// State returns the engine state of the current run.
func (t *Tracer) State() domain.EngineState {
	return t.state()
}

// Program returns a copy of the directives issued so far.
func (t *Tracer) Program() domain.Program {
	return append(domain.Program(nil), t.program...)
}

// Selected returns the paths currently enabled, in declaration order.
func (t *Tracer) Selected() []string {
	if t.selection == nil {
		return nil
	}
	return t.selection.Paths()
}

// Signals returns the paths of the traced signals: the header declaration once
// it has been written, the current selection before.
func (t *Tracer) Signals() []string {
	var nodes []*domain.ScopeNode
	switch {
	case t.engine != nil && t.engine.Declared():
		nodes = t.engine.Signals()
	case t.selection != nil:
		nodes = t.selection.Signals()
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Path
	}
	return out
}

// Tree returns the registered hierarchy, or nil before Trace.
func (t *Tracer) Tree() ports.ScopeTree {
	if t.tree == nil {
		return nil
	}
	return t.tree
}

// Dumps returns the number of successful dumps of the current run.
func (t *Tracer) Dumps() int {
	if t.engine == nil {
		return 0
	}
	return t.engine.Dumps()
}
