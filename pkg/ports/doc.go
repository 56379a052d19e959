/*
Package ports defines the driven ports (interfaces) of the scopetrace engine.

These interfaces decouple the dump engine from the simulated model it samples and from the
waveform format it writes, so the engine can be tested against in-memory fakes and run
against any registered sink.

# Key Interfaces

  - Model: the simulated design; registers its hierarchy once and exposes current values.
  - Registrar: receives the model's registration walk and builds the scope tree.
  - Sampler: the read side of a model used by the engine at every dump.
  - Sink: one waveform format writer (VCD, SAIF, NDJSON, wavepack, Redis, memory).
*/
package ports
