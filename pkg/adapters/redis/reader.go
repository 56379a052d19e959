package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/scopetrace/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// ErrTraceNotFound is returned when no trace exists under a name.
var ErrTraceNotFound = errors.New("trace not found")

// Frame is one stream entry: every encoded value of one dump time.
type Frame struct {
	ID     string
	Time   uint64
	Values map[string]string // signal path -> binary value
}

// Trace is a trace read back from Redis.
type Trace struct {
	Header domain.Header
	Closed bool
	Dumps  int
	Frames []Frame
}

// Times returns the frame timestamps in order.
func (t *Trace) Times() []uint64 {
	out := make([]uint64, 0, len(t.Frames))
	for _, f := range t.Frames {
		out = append(out, f.Time)
	}
	return out
}

// Read loads the trace named path.
func Read(ctx context.Context, client *backend.Client, prefix, path string) (*Trace, error) {
	fields, err := client.HGetAll(ctx, HeaderKey(prefix, path)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get header: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTraceNotFound, path)
	}

	tr := &Trace{
		Header: domain.Header{
			Timescale: fields["timescale"],
			Version:   fields["version"],
		},
		Closed: fields["closed"] == "1",
	}
	if d, err := time.Parse(time.RFC3339Nano, fields["date"]); err == nil {
		tr.Header.Date = d
	}
	if raw := fields["signals"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &tr.Header.Signals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal signals: %w", err)
		}
	}
	if n, err := strconv.Atoi(fields["dumps"]); err == nil {
		tr.Dumps = n
	}

	msgs, err := client.XRange(ctx, StreamKey(prefix, path), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}
	for _, m := range msgs {
		f := Frame{ID: m.ID, Values: make(map[string]string, len(m.Values))}
		for k, v := range m.Values {
			s := fmt.Sprint(v)
			if k == "t" {
				if f.Time, err = strconv.ParseUint(s, 10, 64); err != nil {
					return nil, fmt.Errorf("entry %s: bad time: %w", m.ID, err)
				}
				continue
			}
			f.Values[k] = s
		}
		tr.Frames = append(tr.Frames, f)
	}
	return tr, nil
}

// List returns the names of the stored traces, oldest first.
func List(ctx context.Context, client *backend.Client, prefix string) ([]string, error) {
	names, err := client.ZRange(ctx, IndexKey(prefix), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list traces: %w", err)
	}
	return names, nil
}
