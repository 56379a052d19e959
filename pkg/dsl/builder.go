package dsl

import (
	"fmt"

	"github.com/aretw0/scopetrace/internal/scopetree"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
)

type declaration struct {
	path  string
	kind  domain.Kind
	width int
}

// Builder records scope and signal declarations in the order they are made.
type Builder struct {
	decls  []declaration
	scopes map[string]*ScopeBuilder
}

// New creates a new hierarchy builder.
func New() *Builder {
	return &Builder{
		scopes: make(map[string]*ScopeBuilder),
	}
}

// Scope declares a top-level scope.
// If the scope already exists, it returns the existing builder.
func (b *Builder) Scope(name string) *ScopeBuilder {
	return b.scope(name)
}

func (b *Builder) scope(path string) *ScopeBuilder {
	if sb, ok := b.scopes[path]; ok {
		return sb
	}
	b.decls = append(b.decls, declaration{path: path, kind: domain.KindScope})
	sb := &ScopeBuilder{path: path, builder: b}
	b.scopes[path] = sb
	return sb
}

// Register replays the declarations into r, satisfying the registration half of ports.Model.
func (b *Builder) Register(r ports.Registrar) error {
	for _, d := range b.decls {
		var err error
		if d.kind == domain.KindSignal {
			err = r.AddSignal(d.path, d.width)
		} else {
			err = r.AddScope(d.path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Build compiles the declarations into a scope tree.
func (b *Builder) Build() (ports.ScopeTree, error) {
	tree, err := scopetree.FromModel(b)
	if err != nil {
		return nil, fmt.Errorf("failed to build scope tree: %w", err)
	}
	return tree, nil
}

// MustBuild is Build for fixtures; it panics on malformed declarations.
func (b *Builder) MustBuild() ports.ScopeTree {
	tree, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tree
}

// Model returns a static model over the declared hierarchy with every signal at zero.
func (b *Builder) Model() *Model {
	m := &Model{
		builder: b,
		values:  make(map[string]domain.Value),
	}
	for _, d := range b.decls {
		if d.kind == domain.KindSignal {
			m.values[d.path] = domain.NewValue(d.width)
		}
	}
	return m
}
