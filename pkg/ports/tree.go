package ports

import "github.com/aretw0/scopetrace/pkg/domain"

// ScopeTree is the read side of a registered hierarchy.
// Implementations are immutable once built and safe for concurrent readers.
type ScopeTree interface {
	// Root returns the implicit unnamed root.
	Root() *domain.ScopeNode
	// Len returns the number of registered nodes, root excluded.
	Len() int
	// Resolve looks a node up by exact path; "" is the root.
	Resolve(path string) (*domain.ScopeNode, bool)
	// LongestPrefix returns the deepest node whose path is path or one of its
	// ancestors on a segment boundary.
	LongestPrefix(path string) (*domain.ScopeNode, bool)
	// DescendantsOf lists the nodes at most maxDepth levels below n (0 = unlimited).
	DescendantsOf(n *domain.ScopeNode, maxDepth int) []*domain.ScopeNode
	Walk(fn func(n *domain.ScopeNode) bool)
	Nodes() []*domain.ScopeNode
	Signals() []*domain.ScopeNode
}
