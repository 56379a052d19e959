package ports

import "github.com/aretw0/scopetrace/pkg/domain"

// Registrar receives the one-time registration walk of a model.
// Parents must be registered before their children.
type Registrar interface {
	AddScope(path string) error
	AddSignal(path string, width int) error
}

// Sampler exposes the current value of every registered signal.
type Sampler interface {
	// Sample returns the value of the signal at path as of the last Step.
	// The second result is false if the model has no such signal.
	Sample(path string) (domain.Value, bool)
}

// Model is the simulated design driven by the host.
// Its evaluation semantics are opaque to the tracer.
type Model interface {
	Sampler

	// Register walks the model hierarchy once, declaring scopes and signals with stable paths.
	Register(r Registrar) error

	// Step evaluates the model at the given simulated time.
	Step(time uint64) error
}
