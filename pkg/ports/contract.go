package ports

import (
	"testing"
	"time"

	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SinkContract describes how to exercise one Sink implementation.
type SinkContract struct {
	// New returns a fresh, unopened sink.
	New func(t *testing.T) Sink

	// Path returns a target path for one run.
	Path func(t *testing.T) string

	// Steps reads a finished trace back and returns the distinct timestamps it holds, in order.
	Steps func(t *testing.T, path string) []uint64

	// UnwritablePath, when set, must make Open fail.
	UnwritablePath string
}

// ContractHeader is the header used by RunSinkContract.
func ContractHeader() domain.Header {
	return domain.Header{
		Timescale: domain.DefaultTimescale,
		Version:   "contract",
		Date:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Signals: []domain.SignalDecl{
			{Path: "top.clk", Scope: "top", Name: "clk", Width: 1, Index: 2},
			{Path: "top.t.cnt", Scope: "top.t", Name: "cnt", Width: 8, Index: 4},
		},
	}
}

// ContractRecords returns the records a well-behaved engine offers at step i:
// clk toggles every step, cnt increments every other step.
func ContractRecords(i uint64) []domain.TraceRecord {
	clk := domain.FromUint64(1, i%2)
	cnt := domain.FromUint64(8, i/2)
	return []domain.TraceRecord{
		{Time: i, Path: "top.clk", Index: 2, Value: clk, Changed: true},
		{Time: i, Path: "top.t.cnt", Index: 4, Value: cnt, Changed: i == 0 || i%2 == 0},
	}
}

// ContractIdleRecords returns the records offered at time i when nothing moved since
// step i-1: every value repeats and no record is marked changed.
func ContractIdleRecords(i uint64) []domain.TraceRecord {
	recs := ContractRecords(i - 1)
	for k := range recs {
		recs[k].Time = i
		recs[k].Changed = false
	}
	return recs
}

// RunSinkContract runs a suite of tests to verify that a Sink implementation
// adheres to the defined interface contract.
func RunSinkContract(t *testing.T, c SinkContract) {
	t.Helper()

	run := func(t *testing.T, steps uint64) string {
		sink := c.New(t)
		path := c.Path(t)

		require.NoError(t, sink.Open(path), "Open should not return error")
		require.NoError(t, sink.WriteHeader(ContractHeader()), "WriteHeader should not return error")
		for i := uint64(0); i < steps; i++ {
			for _, rec := range ContractRecords(i) {
				require.NoError(t, sink.WriteRecord(rec), "WriteRecord should not return error")
			}
		}
		require.NoError(t, sink.Close(), "Close should not return error")
		return path
	}

	t.Run("Policy", func(t *testing.T) {
		p := c.New(t).Policy()
		assert.Contains(t, []domain.DumpPolicy{domain.PolicyDelta, domain.PolicyFull}, p)
	})

	t.Run("Full Run", func(t *testing.T) {
		path := run(t, 5)
		assert.Equal(t, []uint64{0, 1, 2, 3, 4}, c.Steps(t, path))
	})

	t.Run("Truncated Run", func(t *testing.T) {
		path := run(t, 2)
		assert.Equal(t, []uint64{0, 1}, c.Steps(t, path), "a closed partial run holds exactly the dumped steps")
	})

	t.Run("Idle Step", func(t *testing.T) {
		sink := c.New(t)
		path := c.Path(t)
		require.NoError(t, sink.Open(path))
		require.NoError(t, sink.WriteHeader(ContractHeader()))
		for i := uint64(0); i < 3; i++ {
			for _, rec := range ContractRecords(i) {
				require.NoError(t, sink.WriteRecord(rec))
			}
		}
		for _, rec := range ContractIdleRecords(3) {
			require.NoError(t, sink.WriteRecord(rec), "an unchanged record is not an error")
		}
		require.NoError(t, sink.Close())

		switch sink.Policy() {
		case domain.PolicyDelta:
			assert.Equal(t, []uint64{0, 1, 2}, c.Steps(t, path), "a delta sink writes nothing for an idle step")
		case domain.PolicyFull:
			assert.Equal(t, []uint64{0, 1, 2, 3}, c.Steps(t, path), "a full sink repeats every value at an idle step")
		}
	})

	t.Run("Empty Run", func(t *testing.T) {
		path := run(t, 0)
		assert.Empty(t, c.Steps(t, path))
	})

	if c.UnwritablePath != "" {
		t.Run("Open Failure", func(t *testing.T) {
			err := c.New(t).Open(c.UnwritablePath)
			assert.Error(t, err)
		})
	}
}
