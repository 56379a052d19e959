package domain

import (
	"errors"
	"fmt"
)

// ErrUsage is returned when the engine is driven out of its Created -> Open -> Closed order.
var ErrUsage = errors.New("usage error")

// ErrResolutionMiss marks a directive whose path matches no scope or signal.
// It is never fatal: the directive is a no-op.
var ErrResolutionMiss = errors.New("directive matched nothing")

// ErrTimeOrdering is returned when a dump time is not strictly greater than the previous one.
var ErrTimeOrdering = errors.New("time ordering violation")

// ErrSinkIO is returned when the sink fails to open, write or close.
var ErrSinkIO = errors.New("sink i/o error")

// ErrInvalidDirective is returned for directives that cannot be applied at all (negative depth, bad syntax).
var ErrInvalidDirective = errors.New("invalid directive")

// ErrInvalidPath is returned by the registration pass for malformed or orphaned paths.
var ErrInvalidPath = errors.New("invalid path")

// ErrDuplicatePath is returned when a path is registered twice.
var ErrDuplicatePath = errors.New("duplicate path")

// ErrBadSample is returned when the model has no value, or a value of the wrong width, for a traced signal.
var ErrBadSample = errors.New("bad sample")

// ErrUnknownFormat is returned when no sink is registered for a format name or file extension.
var ErrUnknownFormat = errors.New("unknown trace format")

// UsageError describes an operation attempted in the wrong engine state.
type UsageError struct {
	Op    string
	State EngineState
	Err   error // optional cause (e.g. the fault that failed the run)
}

func (e *UsageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s not allowed in state %s: %v", ErrUsage, e.Op, e.State, e.Err)
	}
	return fmt.Sprintf("%s: %s not allowed in state %s", ErrUsage, e.Op, e.State)
}

// Is makes errors.Is(err, ErrUsage) match.
func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// TimeOrderingError records the offending pair of dump times.
type TimeOrderingError struct {
	Previous uint64
	Got      uint64
}

func (e *TimeOrderingError) Error() string {
	return fmt.Sprintf("%s: dump time %d is not after %d", ErrTimeOrdering, e.Got, e.Previous)
}

// Is makes errors.Is(err, ErrTimeOrdering) match.
func (e *TimeOrderingError) Is(target error) bool {
	return target == ErrTimeOrdering
}

// SinkError wraps a failure reported by a sink.
type SinkError struct {
	Op   string // "open", "header", "write" or "close"
	Path string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrSinkIO, e.Op, e.Path, e.Err)
}

// Is makes errors.Is(err, ErrSinkIO) match.
func (e *SinkError) Is(target error) bool {
	return target == ErrSinkIO
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
