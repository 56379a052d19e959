package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/scopetrace/internal/runtime"
	"github.com/aretw0/scopetrace/internal/scopetree"
	"github.com/aretw0/scopetrace/internal/selection"
	"github.com/aretw0/scopetrace/pkg/adapters/memory"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/model"
	"github.com/aretw0/scopetrace/pkg/ports"
	"github.com/aretw0/scopetrace/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openEngine(t *testing.T, m ports.Model, sink ports.Sink, program ...domain.Directive) *runtime.Engine {
	t.Helper()
	tree, err := scopetree.FromModel(m)
	require.NoError(t, err)
	set := selection.New(tree)
	_, err = set.Replay(program)
	require.NoError(t, err)
	e := runtime.NewEngine(set, m)
	require.NoError(t, e.Open(sink, "simx"))
	return e
}

func TestRunner_ReferenceBench(t *testing.T) {
	store := memory.NewStore()
	m := model.NewCounter(32)
	e := openEngine(t, m, memory.NewSink(store, memory.WithPolicy(domain.PolicyFull)), domain.Directive{Path: ""})

	res, err := runner.New().Run(context.Background(), m, e)
	require.NoError(t, err)
	assert.Equal(t, runner.Result{Steps: 21, LastTime: 20}, res)
	assert.Equal(t, domain.StateClosed, e.State())

	tr, ok := store.Get("simx")
	require.True(t, ok)
	assert.True(t, tr.Closed)
	assert.Len(t, tr.Times(), 21)

	var cyc domain.Value
	for _, rec := range tr.At(20) {
		if rec.Path == "top.t.cyc" {
			cyc = rec.Value
		}
	}
	assert.Equal(t, uint64(10), cyc.Uint64())
}

func TestRunner_ClockToggles(t *testing.T) {
	store := memory.NewStore()
	m := model.NewCounter(8)
	e := openEngine(t, m, memory.NewSink(store), domain.Directive{Path: "top.clk"})

	_, err := runner.New(runner.WithSteps(4), runner.WithStart(10), runner.WithIncrement(5)).Run(context.Background(), m, e)
	require.NoError(t, err)

	tr, _ := store.Get("simx")
	require.Len(t, tr.Records, 4, "the clock changes at every step")
	assert.Equal(t, []uint64{10, 15, 20, 25}, tr.Times())
	assert.Equal(t, uint64(0), tr.Records[0].Value.Uint64())
	assert.Equal(t, uint64(1), tr.Records[1].Value.Uint64())
}

func TestRunner_Cancellation(t *testing.T) {
	store := memory.NewStore()
	m := model.NewCounter(32)
	e := openEngine(t, m, memory.NewSink(store, memory.WithPolicy(domain.PolicyFull)), domain.Directive{Path: ""})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := runner.New(runner.WithObserver(func(ts uint64) {
		if ts == 6 {
			cancel()
		}
	}))

	res, err := r.Run(ctx, m, e)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, uint64(7), res.Steps)

	tr, _ := store.Get("simx")
	assert.True(t, tr.Closed)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4, 5, 6}, tr.Times())
}

type failingModel struct {
	*model.Counter
	at uint64
}

func (f failingModel) Step(ts uint64) error {
	if ts == f.at {
		return errors.New("model exploded")
	}
	return f.Counter.Step(ts)
}

func TestRunner_StepErrorClosesTracer(t *testing.T) {
	store := memory.NewStore()
	m := failingModel{Counter: model.NewCounter(32), at: 3}
	e := openEngine(t, m, memory.NewSink(store), domain.Directive{Path: ""})

	res, err := runner.New().Run(context.Background(), m, e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step at 3")
	assert.Equal(t, uint64(3), res.Steps)

	tr, _ := store.Get("simx")
	assert.True(t, tr.Closed)
}

func TestRunner_DumpErrorIsReported(t *testing.T) {
	store := memory.NewStore()
	m := model.NewCounter(32)
	sink := memory.NewSink(store, memory.WithPolicy(domain.PolicyFull),
		memory.WithFault(memory.Fault{Op: "write", After: 7}))
	e := openEngine(t, m, sink, domain.Directive{Path: ""})

	_, err := runner.New().Run(context.Background(), m, e)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSinkIO)
	assert.Equal(t, domain.StateClosed, e.State())
}

type countingTracer struct {
	dumps, flushes int
	closed         bool
}

func (c *countingTracer) Dump(uint64) error { c.dumps++; return nil }
func (c *countingTracer) Flush() error      { c.flushes++; return nil }
func (c *countingTracer) Close() error      { c.closed = true; return nil }

func TestRunner_FlushEvery(t *testing.T) {
	tr := &countingTracer{}
	_, err := runner.New(runner.WithSteps(10), runner.WithFlushEvery(3)).Run(context.Background(), model.NewShiftChain(2), tr)
	require.NoError(t, err)
	assert.Equal(t, 10, tr.dumps)
	assert.Equal(t, 3, tr.flushes)
	assert.True(t, tr.closed)
}
