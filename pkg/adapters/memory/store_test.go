package memory_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/scopetrace/pkg/adapters/memory"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySink_Contract(t *testing.T) {
	store := memory.NewStore()
	n := 0
	ports.RunSinkContract(t, ports.SinkContract{
		New: func(t *testing.T) ports.Sink { return memory.NewSink(store) },
		Path: func(t *testing.T) string {
			n++
			return fmt.Sprintf("run-%d", n)
		},
		Steps: func(t *testing.T, path string) []uint64 {
			tr, ok := store.Get(path)
			require.True(t, ok)
			assert.True(t, tr.Closed)
			return tr.Times()
		},
	})
}

func TestMemorySink_Policy(t *testing.T) {
	for _, p := range []domain.DumpPolicy{domain.PolicyDelta, domain.PolicyFull} {
		t.Run(p.String(), func(t *testing.T) {
			sink := memory.NewSink(nil, memory.WithPolicy(p))
			require.NoError(t, sink.Open("trace"))
			require.NoError(t, sink.WriteHeader(ports.ContractHeader()))
			for i := uint64(0); i < 4; i++ {
				for _, rec := range ports.ContractRecords(i) {
					require.NoError(t, sink.WriteRecord(rec))
				}
			}
			require.NoError(t, sink.Close())

			tr, ok := sink.Store().Get("trace")
			require.True(t, ok)
			if p == domain.PolicyFull {
				assert.Len(t, tr.Records, 8)
			} else {
				// cnt is unchanged at steps 1 and 3
				assert.Len(t, tr.Records, 6)
				assert.Len(t, tr.At(1), 1)
			}
		})
	}
}

func TestMemorySink_Faults(t *testing.T) {
	sink := memory.NewSink(nil, memory.WithFault(memory.Fault{Op: "write", After: 1}))
	require.NoError(t, sink.Open("trace"))
	require.NoError(t, sink.WriteHeader(ports.ContractHeader()))

	recs := ports.ContractRecords(0)
	require.NoError(t, sink.WriteRecord(recs[0]))
	assert.ErrorIs(t, sink.WriteRecord(recs[1]), memory.ErrInjected)
	require.NoError(t, sink.Close())

	tr, _ := sink.Store().Get("trace")
	assert.Len(t, tr.Records, 1, "the partial trace is kept")
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	sink := memory.NewSink(store)
	require.NoError(t, sink.Open("a"))
	assert.Error(t, memory.NewSink(store).Open("a"), "a trace being written cannot be reopened")
	require.NoError(t, sink.WriteHeader(ports.ContractHeader()))
	require.NoError(t, sink.Close())

	tr, _ := store.Get("a")
	tr.Header.Signals[0].Name = "mutated"
	again, _ := store.Get("a")
	assert.Equal(t, "clk", again.Header.Signals[0].Name)

	assert.Equal(t, []string{"a"}, store.Paths())
	store.Delete("a")
	assert.Empty(t, store.Paths())
}
