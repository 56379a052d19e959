/*
Package domain contains the core data model of the scopetrace engine.

It defines the hierarchy the tracer works on (scopes and signals addressed by dotted
paths), the selection directives that pick a region of that hierarchy, the bit-vector
values sampled from a model and the records handed to waveform sinks. This package is kept
pure and free of I/O so that every other layer can depend on it.

# Key Entities

  - ScopeNode: one scope or signal of the hierarchy, identified by its path.
  - Directive: a (depth, path) request enabling a region of the hierarchy.
  - Value: a fixed-width two-state bit vector.
  - TraceRecord: one (time, signal, value) triple streamed to a sink.
  - Header: the declarations a sink receives before the first record.
*/
package domain
