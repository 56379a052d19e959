package saif_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/scopetrace/pkg/adapters/saif"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRun(t *testing.T, steps uint64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simx.saif")
	s, err := saif.New(saif.Options{Design: "top"})
	require.NoError(t, err)
	require.NoError(t, s.Open(path))
	require.NoError(t, s.WriteHeader(ports.ContractHeader()))
	for i := uint64(0); i < steps; i++ {
		for _, rec := range ports.ContractRecords(i) {
			require.NoError(t, s.WriteRecord(rec))
		}
	}
	require.NoError(t, s.Close())
	return path
}

func TestSAIFSink_Contract(t *testing.T) {
	ports.RunSinkContract(t, ports.SinkContract{
		New: func(t *testing.T) ports.Sink {
			s, err := saif.New(saif.Options{})
			require.NoError(t, err)
			return s
		},
		Path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "simx.saif") },
		// The contract dumps consecutive times, so the window rebuilds them.
		Steps: func(t *testing.T, path string) []uint64 {
			sum, err := saif.ReadFile(path)
			require.NoError(t, err)
			var out []uint64
			for i := 0; i < sum.Dumps; i++ {
				out = append(out, sum.First+uint64(i))
			}
			if sum.Dumps > 0 {
				assert.Equal(t, sum.Last, out[len(out)-1])
			}
			return out
		},
		UnwritablePath: filepath.Join(os.DevNull, "x", "simx.saif"),
	})
}

func TestSAIFSink_Activity(t *testing.T) {
	// clk: 0 1 0 1 0 over times 0..4; cnt: 0 0 1 1 2
	sum, err := saif.ReadFile(writeRun(t, 5))
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Dumps)
	assert.Equal(t, uint64(4), sum.Duration)

	clk := sum.Nets["top.clk"]
	assert.Equal(t, saif.Activity{T0: 2, T1: 2, TC: 4}, clk)

	assert.Equal(t, saif.Activity{T0: 2, T1: 2, TC: 2}, sum.Nets["top.t.cnt[0]"])
	assert.Equal(t, saif.Activity{T0: 4, T1: 0, TC: 1}, sum.Nets["top.t.cnt[1]"])
	assert.Equal(t, saif.Activity{T0: 4}, sum.Nets["top.t.cnt[7]"])
	assert.Len(t, sum.Nets, 9)

	for name, a := range sum.Nets {
		assert.Equal(t, sum.Duration, a.T0+a.T1, "time at 0 and 1 covers the window for %s", name)
	}
}

func TestSAIFSink_DeltaCountsIdleDumps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simx.saif")
	s, err := saif.New(saif.Options{Policy: "delta"})
	require.NoError(t, err)
	require.NoError(t, s.Open(path))
	require.NoError(t, s.WriteHeader(ports.ContractHeader()))
	for i := uint64(0); i < 3; i++ {
		for _, rec := range ports.ContractRecords(i) {
			require.NoError(t, s.WriteRecord(rec))
		}
	}
	for _, rec := range ports.ContractIdleRecords(3) {
		require.NoError(t, s.WriteRecord(rec))
	}
	require.NoError(t, s.Close())

	sum, err := saif.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Dumps)
	assert.Equal(t, uint64(3), sum.Last)
	assert.Equal(t, uint64(3), sum.Duration)
	// clk is 0 from time 2 through the idle step
	assert.Equal(t, saif.Activity{T0: 2, T1: 1, TC: 2}, sum.Nets["top.clk"])
}

func TestSAIFSink_Layout(t *testing.T) {
	raw, err := os.ReadFile(writeRun(t, 2))
	require.NoError(t, err)
	text := string(raw)

	assert.Contains(t, text, "(DESIGN \"top\")")
	assert.Contains(t, text, "(TIMESCALE 1 ps)")
	assert.Contains(t, text, "(DURATION 1)")
	assert.Contains(t, text, "  (INSTANCE top\n    (NET\n      (clk\n")
	assert.Contains(t, text, "(cnt\\[0\\]")
}

func TestSAIFSink_Defaults(t *testing.T) {
	s, err := saif.New(saif.Options{})
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyFull, s.Policy())

	_, err = saif.New(saif.Options{Policy: "bogus"})
	assert.Error(t, err)
}

func TestTimescale(t *testing.T) {
	assert.Equal(t, "1 ps", saif.Timescale("1ps"))
	assert.Equal(t, "10 ns", saif.Timescale("10 ns"))
	assert.Equal(t, "ps", saif.Timescale("ps"))
}
