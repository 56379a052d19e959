package ports

import "github.com/aretw0/scopetrace/pkg/domain"

// Sink writes one waveform format.
// The engine borrows a sink between Open and Close and never formats bytes itself.
//
// Call order is always Open, WriteHeader, WriteRecord*, Close. WriteHeader is called
// exactly once, even for a run without dumps.
type Sink interface {
	// Open creates the trace at path.
	Open(path string) error

	// WriteHeader declares the traced signals.
	WriteHeader(h domain.Header) error

	// WriteRecord is offered every enabled signal at every dump, in header order.
	// Sinks use their Policy to decide which records to encode.
	WriteRecord(rec domain.TraceRecord) error

	// Close flushes buffered data and finalizes the trace.
	// A trace closed after a partial run must still be well formed.
	Close() error

	// Policy reports whether unchanged records are encoded.
	Policy() domain.DumpPolicy
}

// Flusher is implemented by sinks that buffer writes.
type Flusher interface {
	Flush() error
}
