package scopetree

import (
	"errors"
	"fmt"

	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
)

// errSealed is returned when registration continues after Build.
var errSealed = errors.New("registration is closed")

// Builder receives a model's registration walk.
type Builder struct {
	root   *domain.ScopeNode
	index  map[string]*domain.ScopeNode
	sealed bool
}

var _ ports.Registrar = (*Builder)(nil)

// NewBuilder creates a builder holding only the implicit root.
func NewBuilder() *Builder {
	root := &domain.ScopeNode{Path: domain.RootPath, Kind: domain.KindScope}
	return &Builder{
		root:  root,
		index: map[string]*domain.ScopeNode{domain.RootPath: root},
	}
}

// AddScope registers a scope. Its parent scope must already be registered.
func (b *Builder) AddScope(path string) error {
	return b.add(path, domain.KindScope, 0)
}

// AddSignal registers a signal of the given bit width.
func (b *Builder) AddSignal(path string, width int) error {
	if width < 1 {
		return fmt.Errorf("%w: signal %q has width %d", domain.ErrInvalidPath, path, width)
	}
	return b.add(path, domain.KindSignal, width)
}

func (b *Builder) add(path string, kind domain.Kind, width int) error {
	if b.sealed {
		return fmt.Errorf("%w: cannot add %q", errSealed, path)
	}
	if err := domain.ValidatePath(path); err != nil {
		return err
	}
	if _, exists := b.index[path]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicatePath, path)
	}

	parentPath, name := domain.SplitPath(path)
	parent, ok := b.index[parentPath]
	if !ok {
		return fmt.Errorf("%w: parent scope %q of %q is not registered", domain.ErrInvalidPath, parentPath, path)
	}
	if parent.IsSignal() {
		return fmt.Errorf("%w: %q is nested under signal %q", domain.ErrInvalidPath, path, parentPath)
	}

	node := &domain.ScopeNode{
		Path:   path,
		Name:   name,
		Kind:   kind,
		Width:  width,
		Depth:  parent.Depth + 1,
		Parent: parent,
	}
	parent.Children = append(parent.Children, node)
	b.index[path] = node
	return nil
}

// Build seals the builder and returns the tree with pre-order indices assigned.
func (b *Builder) Build() *Tree {
	b.sealed = true

	order := make([]*domain.ScopeNode, 0, len(b.index))
	var visit func(n *domain.ScopeNode)
	visit = func(n *domain.ScopeNode) {
		n.Index = len(order)
		order = append(order, n)
		for _, child := range n.Children {
			visit(child)
		}
	}
	visit(b.root)

	return &Tree{
		root:  b.root,
		index: b.index,
		order: order,
	}
}

// Registerer is anything able to replay a registration walk, usually a ports.Model.
type Registerer interface {
	Register(r ports.Registrar) error
}

// FromModel runs the registration walk of m and returns the resulting tree.
func FromModel(m Registerer) (*Tree, error) {
	b := NewBuilder()
	if err := m.Register(b); err != nil {
		return nil, fmt.Errorf("model registration failed: %w", err)
	}
	return b.Build(), nil
}
