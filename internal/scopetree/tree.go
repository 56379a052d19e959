// Package scopetree holds the immutable hierarchy of scopes and signals a model registers.
package scopetree

import (
	"strings"

	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
)

var _ ports.ScopeTree = (*Tree)(nil)

// Tree is the registered hierarchy. It is never mutated after Build,
// so concurrent readers need no locking.
type Tree struct {
	root  *domain.ScopeNode
	index map[string]*domain.ScopeNode
	order []*domain.ScopeNode // pre-order, root first
}

// Root returns the implicit unnamed root.
func (t *Tree) Root() *domain.ScopeNode {
	return t.root
}

// Size returns the number of nodes including the root.
func (t *Tree) Size() int {
	return len(t.order)
}

// Len returns the number of registered nodes (the root is not counted).
func (t *Tree) Len() int {
	return len(t.order) - 1
}

// Resolve looks a node up by its exact path. The empty path resolves to the root.
func (t *Tree) Resolve(path string) (*domain.ScopeNode, bool) {
	n, ok := t.index[path]
	return n, ok
}

// At returns the node with the given pre-order index.
func (t *Tree) At(index int) *domain.ScopeNode {
	if index < 0 || index >= len(t.order) {
		return nil
	}
	return t.order[index]
}

// LongestPrefix returns the deepest registered node whose path is path itself or one
// of its ancestors, matching on segment boundaries only. The root never matches here:
// callers address it explicitly with the empty path.
func (t *Tree) LongestPrefix(path string) (*domain.ScopeNode, bool) {
	var best *domain.ScopeNode
	prefix := domain.RootPath
	for _, seg := range strings.Split(path, domain.PathSeparator) {
		if seg == "" {
			break
		}
		prefix = domain.JoinPath(prefix, seg)
		n, ok := t.index[prefix]
		if !ok {
			break
		}
		best = n
	}
	return best, best != nil
}

// DescendantsOf returns, in declaration order, every node at most maxDepth levels below n.
// maxDepth 0 means unlimited. n itself is not included.
func (t *Tree) DescendantsOf(n *domain.ScopeNode, maxDepth int) []*domain.ScopeNode {
	var out []*domain.ScopeNode
	var visit func(node *domain.ScopeNode, level int)
	visit = func(node *domain.ScopeNode, level int) {
		if maxDepth > 0 && level > maxDepth {
			return
		}
		out = append(out, node)
		for _, child := range node.Children {
			visit(child, level+1)
		}
	}
	for _, child := range n.Children {
		visit(child, 1)
	}
	return out
}

// Walk visits every registered node in pre-order, skipping the root.
// Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(n *domain.ScopeNode) bool) {
	for _, n := range t.order[1:] {
		if !fn(n) {
			return
		}
	}
}

// Nodes returns every registered node in pre-order, without the root.
func (t *Tree) Nodes() []*domain.ScopeNode {
	out := make([]*domain.ScopeNode, len(t.order)-1)
	copy(out, t.order[1:])
	return out
}

// Signals returns every registered signal in pre-order.
func (t *Tree) Signals() []*domain.ScopeNode {
	var out []*domain.ScopeNode
	for _, n := range t.order {
		if n.IsSignal() {
			out = append(out, n)
		}
	}
	return out
}
