package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/scopetrace/pkg/ports"
)

// Tracer is the part of the facade the runner drives.
type Tracer interface {
	Dump(time uint64) error
	Close() error
}

// Flusher is implemented by tracers that can push buffered output to the sink.
type Flusher interface {
	Flush() error
}

// Clocked is implemented by models with a host-driven clock.
type Clocked interface {
	SetClock(level bool)
	Clock() bool
}

// Result summarises a run.
type Result struct {
	Steps     uint64
	LastTime  uint64
	Truncated bool
}

// Runner drives a model and a tracer through simulated time.
type Runner struct {
	Steps      uint64
	Start      uint64
	Increment  uint64
	FlushEvery uint64

	// Observer, when set, is called after every dump.
	Observer func(time uint64)

	// Logger is used for debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// New creates a Runner with the reference bench defaults.
func New(opts ...Option) *Runner {
	r := &Runner{
		Steps:     DefaultSteps,
		Increment: 1,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Run executes the loop and always closes the tracer.
// A cancelled context ends the run early with Truncated set and no error.
func (r *Runner) Run(ctx context.Context, model ports.Model, tracer Tracer) (Result, error) {
	var res Result
	clocked, _ := model.(Clocked)
	flusher, _ := tracer.(Flusher)

	err := r.loop(ctx, model, tracer, clocked, flusher, &res)
	if cerr := tracer.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close: %w", cerr))
	}
	if err != nil {
		r.Logger.Error("run failed", "steps", res.Steps, "err", err)
		return res, err
	}
	r.Logger.Debug("run finished", "steps", res.Steps, "last_time", res.LastTime, "truncated", res.Truncated)
	return res, nil
}

func (r *Runner) loop(ctx context.Context, model ports.Model, tracer Tracer, clocked Clocked, flusher Flusher, res *Result) error {
	t := r.Start
	for i := uint64(0); i < r.Steps; i++ {
		if ctx.Err() != nil {
			res.Truncated = true
			r.Logger.Info("run interrupted", "time", t, "steps", res.Steps)
			return nil
		}

		if err := model.Step(t); err != nil {
			return fmt.Errorf("step at %d: %w", t, err)
		}
		if err := tracer.Dump(t); err != nil {
			return fmt.Errorf("dump at %d: %w", t, err)
		}
		res.Steps++
		res.LastTime = t
		if r.Observer != nil {
			r.Observer(t)
		}

		if flusher != nil && r.FlushEvery > 0 && res.Steps%r.FlushEvery == 0 {
			if err := flusher.Flush(); err != nil {
				return fmt.Errorf("flush at %d: %w", t, err)
			}
		}

		t += r.Increment
		if clocked != nil {
			clocked.SetClock(!clocked.Clock())
		}
	}
	return nil
}
