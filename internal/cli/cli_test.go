package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/scopetrace/internal/config"
	"github.com/aretw0/scopetrace/internal/logging"
	"github.com/aretw0/scopetrace/pkg/adapters/jsonl"
	"github.com/aretw0/scopetrace/pkg/adapters/memory"
	"github.com/aretw0/scopetrace/pkg/adapters/redis"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioConfig(t *testing.T, output string) *config.Config {
	t.Helper()
	cfg, err := LoadConfig(RunOptions{
		ConfigPath: filepath.Join("testdata", "bench.yaml"),
		Output:     output,
	})
	require.NoError(t, err)
	return cfg
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := LoadConfig(RunOptions{
		ConfigPath: filepath.Join("testdata", "bench.yaml"),
		Model:      "shiftchain",
		Steps:      7,
		Directives: []string{"0:top.t.r1"},
		Debug:      true,
		Metrics:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "shiftchain", cfg.Model.Kind)
	assert.Equal(t, uint64(7), cfg.Steps)
	assert.Equal(t, []any{"0:top.t.r1"}, cfg.Directives)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)

	_, err = LoadConfig(RunOptions{ConfigPath: filepath.Join("testdata", "bench.yaml"), Policy: "sometimes"})
	assert.Error(t, err)
}

func TestRunTrace_JSONL(t *testing.T) {
	out := filepath.Join(t.TempDir(), "simx.jsonl")
	cfg := scenarioConfig(t, out)

	var buf bytes.Buffer
	summary, err := RunTrace(context.Background(), Session{Config: cfg, Logger: logging.NewNop(), Out: &buf})
	require.NoError(t, err)
	assert.Equal(t, "jsonl", summary.Format)
	assert.Equal(t, 3, summary.Signals)
	assert.Equal(t, uint64(21), summary.Steps)
	assert.Contains(t, buf.String(), ">>> tracing counter")

	trace, err := jsonl.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, trace.Header.Signals, 3)
	assert.Equal(t, "top.t.cyc", trace.Header.Signals[0].Path)
	assert.Len(t, trace.Times(), 11)
}

func TestRunTrace_Truncated(t *testing.T) {
	store := memory.NewStore()
	cfg := scenarioConfig(t, "bench")
	cfg.Format = "memory"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := RunTrace(ctx, Session{Config: cfg, Logger: logging.NewNop(), Out: &bytes.Buffer{}, Quiet: true, Store: store})
	require.NoError(t, err)
	assert.True(t, summary.Truncated)
	assert.Zero(t, summary.Steps)

	trace, ok := store.Get("bench")
	require.True(t, ok)
	assert.True(t, trace.Closed)
	assert.Len(t, trace.Header.Signals, 3, "the header is declared even for an empty run")
}

func TestRunTrace_RedisWithMetrics(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := scenarioConfig(t, "bench")
	cfg.Format = "redis"
	cfg.Redis.Addr = mr.Addr()
	cfg.Metrics.Enabled = true

	reg := prometheus.NewRegistry()
	summary, err := RunTrace(context.Background(), Session{
		Config: cfg, Logger: logging.NewNop(), Out: &bytes.Buffer{}, Registry: reg,
	})
	require.NoError(t, err)
	assert.Equal(t, "redis", summary.Format)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()
	trace, err := redis.Read(context.Background(), client, redis.DefaultPrefix, "bench")
	require.NoError(t, err)
	assert.True(t, trace.Closed)
	assert.Len(t, trace.Frames, 11)

	n, err := testutil.GatherAndCount(reg, "scopetrace_dumps_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 21.0, summary.Metrics["scopetrace_dumps_total"])
}

func TestRunTrace_MetricsOnPrivateRegistry(t *testing.T) {
	cfg := scenarioConfig(t, filepath.Join(t.TempDir(), "simx.vcd"))
	cfg.Metrics.Enabled = true

	var buf bytes.Buffer
	summary, err := RunTrace(context.Background(), Session{Config: cfg, Logger: logging.NewNop(), Out: &buf, Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, 21.0, summary.Metrics["scopetrace_dumps_total"])
	assert.Equal(t, 3.0, summary.Metrics["scopetrace_traced_signals"])
	assert.Positive(t, summary.Metrics["scopetrace_records_encoded_total"])

	cfg.Metrics.Enabled = false
	summary, err = RunTrace(context.Background(), Session{Config: cfg, Logger: logging.NewNop(), Out: &buf, Quiet: true})
	require.NoError(t, err)
	assert.Empty(t, summary.Metrics)
}

func TestRunTrace_MemoryWithoutStore(t *testing.T) {
	cfg := scenarioConfig(t, "bench")
	cfg.Format = "memory"

	_, err := RunTrace(context.Background(), Session{Config: cfg, Logger: logging.NewNop(), Out: &bytes.Buffer{}, Quiet: true})
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestInspect(t *testing.T) {
	cfg := scenarioConfig(t, "simx.vcd")
	set, outcomes, err := Inspect(cfg)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)
	assert.True(t, outcomes[0].Miss)
	assert.Len(t, set.Signals(), 3)

	cfg.Model.Kind = "cpu"
	_, _, err = Inspect(cfg)
	assert.Error(t, err)
}

func TestStoreRunner(t *testing.T) {
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	cfg := scenarioConfig(t, "simx.vcd")
	r := &StoreRunner{Config: cfg, Store: store, Registry: reg, Logger: logging.NewNop()}

	summary, err := r.Run(context.Background(), "first", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "memory", summary.Format)
	assert.Equal(t, uint64(21), summary.Steps)
	assert.Equal(t, 3, summary.Signals)
	assert.Equal(t, 21.0, summary.Metrics["scopetrace_dumps_total"])

	summary, err = r.Run(context.Background(), "second", domain.Program{{Depth: 0, Path: "top.t.cyc"}}, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Signals)
	assert.Equal(t, 26.0, summary.Metrics["scopetrace_dumps_total"], "totals accumulate on the shared registry")

	assert.Equal(t, []string{"first", "second"}, store.Paths())
	trace, ok := store.Get("second")
	require.True(t, ok)
	assert.True(t, trace.Closed)
	assert.Equal(t, "simx.vcd", cfg.Output, "the base config is left untouched")
}
