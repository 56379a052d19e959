package runner

import "log/slog"

// DefaultSteps matches the reference test bench, which dumps at times 0..20.
const DefaultSteps = 21

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithSteps sets the number of dumps before the runner closes the tracer.
func WithSteps(n uint64) Option {
	return func(r *Runner) {
		r.Steps = n
	}
}

// WithStart sets the first simulated time.
func WithStart(t uint64) Option {
	return func(r *Runner) {
		r.Start = t
	}
}

// WithIncrement sets the simulated time between two dumps. Zero is ignored.
func WithIncrement(dt uint64) Option {
	return func(r *Runner) {
		if dt > 0 {
			r.Increment = dt
		}
	}
}

// WithFlushEvery flushes the tracer every n dumps. Zero disables periodic flushing.
func WithFlushEvery(n uint64) Option {
	return func(r *Runner) {
		r.FlushEvery = n
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithObserver registers a callback invoked after every successful dump.
func WithObserver(fn func(time uint64)) Option {
	return func(r *Runner) {
		r.Observer = fn
	}
}
