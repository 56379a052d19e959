package dsl

import (
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
)

// Model is a static ports.Model whose values are set by the caller.
// OnStep, when set, runs at every Step and may update values.
type Model struct {
	builder *Builder
	values  map[string]domain.Value
	OnStep  func(m *Model, time uint64) error
}

var _ ports.Model = (*Model)(nil)

// Register replays the declared hierarchy.
func (m *Model) Register(r ports.Registrar) error {
	return m.builder.Register(r)
}

// Step runs the OnStep callback, if any.
func (m *Model) Step(time uint64) error {
	if m.OnStep == nil {
		return nil
	}
	return m.OnStep(m, time)
}

// Sample returns the current value of a declared signal.
func (m *Model) Sample(path string) (domain.Value, bool) {
	v, ok := m.values[path]
	return v, ok
}

// Set replaces the value of a signal.
func (m *Model) Set(path string, v domain.Value) {
	m.values[path] = v
}

// SetUint64 sets a signal from an integer, keeping its declared width.
func (m *Model) SetUint64(path string, v uint64) {
	cur, ok := m.values[path]
	if !ok {
		return
	}
	m.values[path] = domain.FromUint64(cur.Width(), v)
}
