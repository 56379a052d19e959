package runtime_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aretw0/scopetrace/internal/runtime"
	"github.com/aretw0/scopetrace/internal/selection"
	"github.com/aretw0/scopetrace/internal/testutils"
	"github.com/aretw0/scopetrace/pkg/adapters/memory"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	model  *dsl.Model
	set    *selection.Set
	engine *runtime.Engine
}

func newFixture(t *testing.T, program ...domain.Directive) *fixture {
	t.Helper()
	tree := testutils.ScenarioTree(t)
	set := selection.New(tree)
	_, err := set.Replay(program)
	require.NoError(t, err)

	model := testutils.ScenarioModel()
	clock := func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return &fixture{
		model:  model,
		set:    set,
		engine: runtime.NewEngine(set, model, runtime.WithClock(clock), runtime.WithVersion("test")),
	}
}

func (f *fixture) step(t *testing.T, ts uint64) {
	t.Helper()
	require.NoError(t, f.model.Step(ts))
	require.NoError(t, f.engine.Dump(ts))
}

func TestEngine_Lifecycle(t *testing.T) {
	f := newFixture(t, domain.Directive{Path: ""})
	store := memory.NewStore()
	sink := memory.NewSink(store)

	assert.Equal(t, domain.StateCreated, f.engine.State())
	require.NoError(t, f.engine.Open(sink, "trace"))
	assert.Equal(t, domain.StateOpen, f.engine.State())
	assert.False(t, f.engine.Declared())

	for ts := uint64(0); ts < 3; ts++ {
		f.step(t, ts)
	}
	assert.True(t, f.engine.Declared())
	require.NoError(t, f.engine.Close())
	assert.Equal(t, domain.StateClosed, f.engine.State())
	assert.Equal(t, 3, f.engine.Dumps())

	tr, ok := store.Get("trace")
	require.True(t, ok)
	assert.True(t, tr.Closed)
	assert.Equal(t, "test", tr.Header.Version)
	assert.Equal(t, domain.DefaultTimescale, tr.Header.Timescale)
	assert.Equal(t, 2025, tr.Header.Date.Year())
	require.Len(t, tr.Header.Signals, 3)
	assert.Equal(t, "top.t.sub1a", tr.Header.Signals[1].Scope)
	assert.Equal(t, []uint64{0, 1, 2}, tr.Times())

	for _, rec := range tr.At(2) {
		switch rec.Path {
		case "top.t.cyc":
			assert.Equal(t, uint64(2), rec.Value.Uint64())
		case "top.t.sub1b.y.z":
			assert.Equal(t, uint64(4), rec.Value.Uint64())
		}
	}
}

func TestEngine_UsageErrors(t *testing.T) {
	f := newFixture(t, domain.Directive{Path: ""})

	err := f.engine.Dump(0)
	assert.ErrorIs(t, err, domain.ErrUsage, "dump before open")
	assert.ErrorIs(t, f.engine.Close(), domain.ErrUsage, "close before open")
	assert.ErrorIs(t, f.engine.Flush(), domain.ErrUsage, "flush before open")

	sink := memory.NewSink(nil)
	require.NoError(t, f.engine.Open(sink, "trace"))
	assert.ErrorIs(t, f.engine.Open(sink, "again"), domain.ErrUsage, "open twice")
	require.NoError(t, f.engine.Close())

	var usage *domain.UsageError
	require.ErrorAs(t, f.engine.Dump(1), &usage, "dump after close")
	assert.Equal(t, domain.StateClosed, usage.State)
	assert.Equal(t, "dump", usage.Op)
	assert.ErrorIs(t, f.engine.Close(), domain.ErrUsage, "close after close")
}

func TestEngine_TimeOrdering(t *testing.T) {
	tests := []struct {
		name  string
		times []uint64
	}{
		{name: "equal", times: []uint64{5, 5}},
		{name: "decreasing", times: []uint64{5, 4}},
		{name: "later violation", times: []uint64{1, 2, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, domain.Directive{Path: ""})
			store := memory.NewStore()
			require.NoError(t, f.engine.Open(memory.NewSink(store), "trace"))

			last := len(tt.times) - 1
			for _, ts := range tt.times[:last] {
				f.step(t, ts)
			}
			err := f.engine.Dump(tt.times[last])

			var ordering *domain.TimeOrderingError
			require.ErrorAs(t, err, &ordering)
			assert.Equal(t, tt.times[last-1], ordering.Previous)
			assert.Equal(t, tt.times[last], ordering.Got)
			assert.Equal(t, domain.StateFailed, f.engine.State())

			err = f.engine.Dump(100)
			assert.ErrorIs(t, err, domain.ErrUsage, "the run is over after a fault")
			assert.ErrorIs(t, err, domain.ErrTimeOrdering, "the usage error carries the original fault")

			require.NoError(t, f.engine.Close(), "a failed run can still be closed")
			tr, _ := store.Get("trace")
			assert.True(t, tr.Closed)
			assert.Equal(t, tt.times[:last], tr.Times())
		})
	}
}

func TestEngine_DeltaVersusFull(t *testing.T) {
	run := func(t *testing.T, p domain.DumpPolicy) *memory.Trace {
		f := newFixture(t, domain.Directive{Depth: 1, Path: "top.t.sub1a"})
		store := memory.NewStore()
		require.NoError(t, f.engine.Open(memory.NewSink(store, memory.WithPolicy(p)), "trace"))

		// x holds still except at ts 3
		f.model.OnStep = nil
		for ts := uint64(1); ts <= 4; ts++ {
			if ts == 3 {
				f.model.SetUint64("top.t.sub1a.x", 7)
			}
			require.NoError(t, f.engine.Dump(ts))
		}
		require.NoError(t, f.engine.Close())
		tr, _ := store.Get("trace")
		return tr
	}

	full := run(t, domain.PolicyFull)
	assert.Equal(t, []uint64{1, 2, 3, 4}, full.Times())
	assert.True(t, full.Records[0].Changed, "the first dump is always a change")
	assert.False(t, full.Records[1].Changed)
	assert.True(t, full.Records[2].Changed)
	assert.False(t, full.Records[3].Changed)

	delta := run(t, domain.PolicyDelta)
	assert.Equal(t, []uint64{1, 3}, delta.Times())
}

func TestEngine_HeaderFrozenAtFirstDump(t *testing.T) {
	f := newFixture(t, domain.Directive{Depth: 1, Path: "top.t.cyc"})
	store := memory.NewStore()
	require.NoError(t, f.engine.Open(memory.NewSink(store), "trace"))
	f.step(t, 1)

	_, err := f.set.Apply(domain.Directive{Path: ""})
	require.NoError(t, err)
	f.step(t, 2)
	require.NoError(t, f.engine.Close())

	tr, _ := store.Get("trace")
	require.Len(t, tr.Header.Signals, 1)
	for _, rec := range tr.Records {
		assert.Equal(t, "top.t.cyc", rec.Path)
	}
}

func TestEngine_CloseWithoutDumpsDeclaresHeader(t *testing.T) {
	f := newFixture(t, domain.Directive{Path: "top.t.sub1b"})
	store := memory.NewStore()
	require.NoError(t, f.engine.Open(memory.NewSink(store), "trace"))
	require.NoError(t, f.engine.Close())

	tr, _ := store.Get("trace")
	require.Len(t, tr.Header.Signals, 1)
	assert.Equal(t, "top.t.sub1b.y.z", tr.Header.Signals[0].Path)
	assert.Empty(t, tr.Records)
}

func TestEngine_EmptySelection(t *testing.T) {
	f := newFixture(t, domain.Directive{Depth: 99, Path: "t"})
	store := memory.NewStore()
	require.NoError(t, f.engine.Open(memory.NewSink(store), "trace"))
	f.step(t, 1)
	require.NoError(t, f.engine.Close())

	tr, _ := store.Get("trace")
	assert.Empty(t, tr.Header.Signals)
	assert.Empty(t, tr.Records)
}

func TestEngine_SinkFailures(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		f := newFixture(t)
		sink := memory.NewSink(nil, memory.WithFault(memory.Fault{Op: "open"}))
		err := f.engine.Open(sink, "trace")
		assert.ErrorIs(t, err, domain.ErrSinkIO)
		assert.ErrorIs(t, err, memory.ErrInjected)
		assert.Equal(t, domain.StateCreated, f.engine.State())
	})

	t.Run("write", func(t *testing.T) {
		f := newFixture(t, domain.Directive{Path: ""})
		store := memory.NewStore()
		sink := memory.NewSink(store, memory.WithFault(memory.Fault{Op: "write", After: 4}))
		require.NoError(t, f.engine.Open(sink, "trace"))
		f.step(t, 1)

		require.NoError(t, f.model.Step(2))
		err := f.engine.Dump(2)
		var sinkErr *domain.SinkError
		require.ErrorAs(t, err, &sinkErr)
		assert.Equal(t, "write", sinkErr.Op)
		assert.Equal(t, domain.StateFailed, f.engine.State())
		assert.ErrorIs(t, f.engine.Err(), domain.ErrSinkIO)

		require.NoError(t, f.engine.Close())
		tr, _ := store.Get("trace")
		assert.Len(t, tr.Records, 4, "the partial trace is left in place")
	})

	t.Run("close", func(t *testing.T) {
		f := newFixture(t, domain.Directive{Path: ""})
		sink := memory.NewSink(nil, memory.WithFault(memory.Fault{Op: "close"}))
		require.NoError(t, f.engine.Open(sink, "trace"))
		err := f.engine.Close()
		assert.ErrorIs(t, err, domain.ErrSinkIO)
		assert.Equal(t, domain.StateClosed, f.engine.State())
	})
}

func TestEngine_BadSample(t *testing.T) {
	f := newFixture(t, domain.Directive{Path: "top.t.cyc"})
	require.NoError(t, f.engine.Open(memory.NewSink(nil), "trace"))

	f.model.Set("top.t.cyc", domain.FromUint64(4, 1))
	err := f.engine.Dump(1)
	assert.True(t, errors.Is(err, domain.ErrBadSample))
	assert.Equal(t, domain.StateFailed, f.engine.State())
}

func TestEngine_BadSampleWritesNothingForTheStep(t *testing.T) {
	f := newFixture(t, domain.Directive{Path: ""})
	store := memory.NewStore()
	require.NoError(t, f.engine.Open(memory.NewSink(store, memory.WithPolicy(domain.PolicyFull)), "trace"))
	f.step(t, 0)

	require.NoError(t, f.model.Step(1))
	// the last signal in pre-order goes bad after the others sampled fine
	f.model.Set("top.t.sub1b.y.z", domain.FromUint64(3, 1))
	err := f.engine.Dump(1)
	require.ErrorIs(t, err, domain.ErrBadSample)
	require.NoError(t, f.engine.Close())

	tr, ok := store.Get("trace")
	require.True(t, ok)
	assert.Len(t, tr.At(0), 3)
	assert.Empty(t, tr.At(1), "a failed step leaves no record behind")
	assert.Equal(t, []uint64{0}, tr.Times())
	assert.Equal(t, 1, f.engine.Dumps())
}

func TestEngine_TruncatedRun(t *testing.T) {
	const planned, done = 10, 4

	f := newFixture(t, domain.Directive{Path: ""})
	store := memory.NewStore()
	require.NoError(t, f.engine.Open(memory.NewSink(store, memory.WithPolicy(domain.PolicyFull)), "trace"))
	for ts := uint64(0); ts < planned; ts++ {
		if ts == done {
			break
		}
		f.step(t, ts)
	}
	require.NoError(t, f.engine.Close())

	tr, _ := store.Get("trace")
	assert.Len(t, tr.Times(), done)
	assert.Len(t, tr.Records, done*len(tr.Header.Signals), "no partial trailing step")
}
