package metrics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/aretw0/scopetrace/pkg/adapters/memory"
	"github.com/aretw0/scopetrace/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSink_Contract(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)
	store := memory.NewStore()
	n := 0
	ports.RunSinkContract(t, ports.SinkContract{
		New: func(t *testing.T) ports.Sink { return c.Wrap(memory.NewSink(store), "memory") },
		Path: func(t *testing.T) string {
			n++
			return fmt.Sprintf("run-%d", n)
		},
		Steps: func(t *testing.T, path string) []uint64 {
			tr, ok := store.Get(path)
			require.True(t, ok)
			return tr.Times()
		},
	})
}

func TestMetricsSink_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	sink := c.Wrap(memory.NewSink(nil), "memory")
	require.NoError(t, sink.Open("trace"))
	require.NoError(t, sink.WriteHeader(ports.ContractHeader()))
	for i := uint64(0); i < 4; i++ {
		for _, rec := range ports.ContractRecords(i) {
			require.NoError(t, sink.WriteRecord(rec))
		}
	}
	require.NoError(t, sink.Close())

	assert.Equal(t, 8.0, testutil.ToFloat64(c.offered.WithLabelValues("memory")))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.admitted.WithLabelValues("memory")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.dumps.WithLabelValues("memory")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.signals.WithLabelValues("memory")))

	expected := `
# HELP scopetrace_dumps_total Distinct dump times seen by the sink
# TYPE scopetrace_dumps_total counter
scopetrace_dumps_total{format="memory"} 4
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "scopetrace_dumps_total"))
}

func TestMetricsSink_Errors(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)

	sink := c.Wrap(memory.NewSink(nil, memory.WithFault(memory.Fault{Op: "open"})), "memory")
	assert.ErrorIs(t, sink.Open("trace"), memory.ErrInjected)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errors.WithLabelValues("memory", "open")))
}

func TestNewCollector_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)
	_, err = NewCollector(reg)
	assert.NoError(t, err, "re-registration is tolerated")
}
