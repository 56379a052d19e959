package dsl

import "github.com/aretw0/scopetrace/pkg/domain"

// ScopeBuilder provides a fluent API for populating one scope.
type ScopeBuilder struct {
	path    string
	builder *Builder
}

// Path returns the full path of the scope.
func (s *ScopeBuilder) Path() string {
	return s.path
}

// Signal declares a signal of the given width inside the scope and returns the scope.
func (s *ScopeBuilder) Signal(name string, width int) *ScopeBuilder {
	s.builder.decls = append(s.builder.decls, declaration{
		path:  domain.JoinPath(s.path, name),
		kind:  domain.KindSignal,
		width: width,
	})
	return s
}

// Signals declares several one-bit signals.
func (s *ScopeBuilder) Signals(names ...string) *ScopeBuilder {
	for _, name := range names {
		s.Signal(name, 1)
	}
	return s
}

// Scope declares (or returns) a child scope.
func (s *ScopeBuilder) Scope(name string) *ScopeBuilder {
	return s.builder.scope(domain.JoinPath(s.path, name))
}
