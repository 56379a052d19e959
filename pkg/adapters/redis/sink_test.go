package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/scopetrace/pkg/adapters/redis"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisSink_Contract(t *testing.T) {
	_, client := setup(t)
	n := 0
	ports.RunSinkContract(t, ports.SinkContract{
		New: func(t *testing.T) ports.Sink { return redis.NewFromClient(client) },
		Path: func(t *testing.T) string {
			n++
			return fmt.Sprintf("run-%d", n)
		},
		Steps: func(t *testing.T, path string) []uint64 {
			tr, err := redis.Read(context.Background(), client, redis.DefaultPrefix, path)
			require.NoError(t, err)
			assert.True(t, tr.Closed)
			assert.Equal(t, len(tr.Frames), tr.Dumps)
			return tr.Times()
		},
	})
}

func writeRun(t *testing.T, sink *redis.Sink, path string, steps uint64) {
	t.Helper()
	require.NoError(t, sink.Open(path))
	require.NoError(t, sink.WriteHeader(ports.ContractHeader()))
	for i := uint64(0); i < steps; i++ {
		for _, rec := range ports.ContractRecords(i) {
			require.NoError(t, sink.WriteRecord(rec))
		}
	}
	require.NoError(t, sink.Close())
}

func TestRedisSink_Content(t *testing.T) {
	mr, client := setup(t)
	sink := redis.NewFromClient(client, redis.WithPrefix("test:"))
	writeRun(t, sink, "simx", 3)

	assert.True(t, mr.Exists("test:trace:simx"))
	assert.False(t, mr.Exists("test:lock:simx"), "the writer lock is released at Close")

	tr, err := redis.Read(context.Background(), client, "test:", "simx")
	require.NoError(t, err)
	assert.Equal(t, "1ps", tr.Header.Timescale)
	require.Len(t, tr.Header.Signals, 2)
	assert.Equal(t, "top.t.cnt", tr.Header.Signals[1].Path)
	assert.True(t, tr.Header.Date.Equal(ports.ContractHeader().Date))

	require.Len(t, tr.Frames, 3)
	assert.Equal(t, map[string]string{"top.clk": "1"}, tr.Frames[1].Values, "delta entries skip unchanged signals")
	assert.Equal(t, "00000001", tr.Frames[2].Values["top.t.cnt"])

	names, err := redis.List(context.Background(), client, "test:")
	require.NoError(t, err)
	assert.Equal(t, []string{"simx"}, names)
}

func TestRedisSink_ReopenReplacesTrace(t *testing.T) {
	_, client := setup(t)
	writeRun(t, redis.NewFromClient(client), "simx", 4)
	writeRun(t, redis.NewFromClient(client, redis.WithPolicy(domain.PolicyFull)), "simx", 1)

	tr, err := redis.Read(context.Background(), client, redis.DefaultPrefix, "simx")
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, tr.Times())
	assert.Len(t, tr.Frames[0].Values, 2)
}

func TestRedisSink_SingleWriter(t *testing.T) {
	_, client := setup(t)
	first := redis.NewFromClient(client)
	require.NoError(t, first.Open("shared"))

	err := redis.NewFromClient(client).Open("shared")
	assert.ErrorIs(t, err, redis.ErrLockHeld)

	require.NoError(t, first.WriteHeader(ports.ContractHeader()))
	require.NoError(t, first.Close())
	second := redis.NewFromClient(client)
	require.NoError(t, second.Open("shared"))
	require.NoError(t, second.WriteHeader(ports.ContractHeader()))
	require.NoError(t, second.Close())
}

func writeStep(t *testing.T, sink *redis.Sink, i uint64) error {
	t.Helper()
	for _, rec := range ports.ContractRecords(i) {
		if err := sink.WriteRecord(rec); err != nil {
			return err
		}
	}
	return nil
}

func TestRedisSink_LockRenewedWhileWriting(t *testing.T) {
	mr, client := setup(t)
	writer := redis.NewFromClient(client)
	require.NoError(t, writer.Open("long"))
	require.NoError(t, writer.WriteHeader(ports.ContractHeader()))

	for i := uint64(0); i < 4; i++ {
		require.NoError(t, writeStep(t, writer, i))
		mr.FastForward(50 * time.Second)
	}
	err := redis.NewFromClient(client).Open("long")
	assert.ErrorIs(t, err, redis.ErrLockHeld, "a writer that keeps dumping keeps its lock")
	require.NoError(t, writer.Close())
}

func TestRedisSink_LostLockStopsWriter(t *testing.T) {
	mr, client := setup(t)
	stale := redis.NewFromClient(client)
	require.NoError(t, stale.Open("run"))
	require.NoError(t, stale.WriteHeader(ports.ContractHeader()))
	for i := uint64(0); i < 3; i++ {
		require.NoError(t, writeStep(t, stale, i))
	}

	mr.FastForward(2 * time.Minute)
	fresh := redis.NewFromClient(client)
	require.NoError(t, fresh.Open("run"))
	require.NoError(t, fresh.WriteHeader(ports.ContractHeader()))
	require.NoError(t, writeStep(t, fresh, 0))

	assert.ErrorIs(t, writeStep(t, stale, 3), redis.ErrLockLost)
	assert.ErrorIs(t, stale.Close(), redis.ErrLockLost)
	require.NoError(t, fresh.Close())

	tr, err := redis.Read(context.Background(), client, redis.DefaultPrefix, "run")
	require.NoError(t, err)
	assert.True(t, tr.Closed)
	assert.Equal(t, []uint64{0}, tr.Times(), "only the new writer's steps are stored")
}

func TestRedisSink_ServerDown(t *testing.T) {
	mr, client := setup(t)
	sink := redis.NewFromClient(client, redis.WithTimeout(200*time.Millisecond))
	mr.Close()
	assert.Error(t, sink.Open("simx"))
}

func TestRedisSink_MissingTrace(t *testing.T) {
	_, client := setup(t)
	_, err := redis.Read(context.Background(), client, redis.DefaultPrefix, "nothing")
	assert.ErrorIs(t, err, redis.ErrTraceNotFound)
}

func TestFromOptions(t *testing.T) {
	mr, _ := setup(t)
	_, err := redis.FromOptions(redis.Options{})
	assert.Error(t, err)

	sink, err := redis.FromOptions(redis.Options{Addr: mr.Addr(), Prefix: "opt:", Policy: "full"})
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyFull, sink.Policy())
	writeRun(t, sink, "simx", 1)
	assert.True(t, mr.Exists("opt:trace:simx"))
}
