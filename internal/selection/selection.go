// Package selection tracks which nodes of a scope tree are enabled for tracing.
package selection

import (
	"fmt"

	"github.com/aretw0/scopetrace/internal/scopetree"
	"github.com/aretw0/scopetrace/pkg/domain"
)

// unlimited is the budget of a node enabled by a depth 0 directive.
const unlimited = -1

// Outcome describes what one directive did to a Set.
type Outcome struct {
	Directive domain.Directive
	// Target is the path of the node the directive resolved to. Empty on a miss
	// and for the root.
	Target string
	// Partial is true when the directive path was longer than the node it resolved to.
	Partial bool
	// Matched counts the nodes the directive covered, root excluded.
	Matched int
	// Added counts the nodes that were not enabled before the directive.
	Added int
	Miss  bool
}

// Err returns a ResolutionMiss error for a missed directive and nil otherwise.
// Callers usually log it and move on.
func (o Outcome) Err() error {
	if !o.Miss {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrResolutionMiss, o.Directive)
}

// Set is the selection state of one tree, indexed by pre-order node index.
// It is not safe for concurrent mutation.
type Set struct {
	tree    *scopetree.Tree
	enabled []bool
	budget  []int
}

// New returns an empty selection over tree.
func New(tree *scopetree.Tree) *Set {
	return &Set{
		tree:    tree,
		enabled: make([]bool, tree.Size()),
		budget:  make([]int, tree.Size()),
	}
}

// Tree returns the tree the set selects from.
func (s *Set) Tree() *scopetree.Tree {
	return s.tree
}

// Apply resolves d against the tree and unions its nodes into the set.
// A directive that resolves to nothing leaves the set untouched and reports Miss.
func (s *Set) Apply(d domain.Directive) (Outcome, error) {
	if err := d.Validate(); err != nil {
		return Outcome{Directive: d}, err
	}

	out := Outcome{Directive: d}
	target, ok := s.resolve(d.Path)
	if !ok {
		out.Miss = true
		return out, nil
	}
	out.Target = target.Path
	out.Partial = target.Path != d.Path

	base := unlimited
	if !d.Unlimited() {
		base = d.Depth
	}
	s.enable(target, base, &out)

	if target.IsSignal() {
		return out, nil
	}
	for _, n := range s.tree.DescendantsOf(target, d.Depth) {
		remaining := unlimited
		if base != unlimited {
			remaining = base - (n.Depth - target.Depth)
		}
		s.enable(n, remaining, &out)
	}
	return out, nil
}

// Replay clears the set and applies every directive of p in order.
// Invalid directives stop the replay; misses do not.
func (s *Set) Replay(p domain.Program) ([]Outcome, error) {
	s.Clear()
	outcomes := make([]Outcome, 0, len(p))
	for i, d := range p {
		out, err := s.Apply(d)
		if err != nil {
			return outcomes, fmt.Errorf("directive %d (%s): %w", i, d, err)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// Clear disables every node.
func (s *Set) Clear() {
	for i := range s.enabled {
		s.enabled[i] = false
		s.budget[i] = 0
	}
}

func (s *Set) resolve(path string) (*domain.ScopeNode, bool) {
	if path == domain.RootPath {
		return s.tree.Root(), true
	}
	return s.tree.LongestPrefix(path)
}

func (s *Set) enable(n *domain.ScopeNode, budget int, out *Outcome) {
	if !n.IsRoot() {
		out.Matched++
		if !s.enabled[n.Index] {
			out.Added++
		}
	}
	if !s.enabled[n.Index] {
		s.enabled[n.Index] = true
		s.budget[n.Index] = budget
		return
	}
	s.budget[n.Index] = widest(s.budget[n.Index], budget)
}

func widest(a, b int) int {
	if a == unlimited || b == unlimited {
		return unlimited
	}
	return max(a, b)
}

// Enabled reports whether n is selected.
func (s *Set) Enabled(n *domain.ScopeNode) bool {
	if n == nil || n.Index < 0 || n.Index >= len(s.enabled) {
		return false
	}
	return s.enabled[n.Index]
}

// EnabledPath reports whether the node at path is selected.
func (s *Set) EnabledPath(path string) bool {
	n, ok := s.tree.Resolve(path)
	return ok && s.Enabled(n)
}

// Budget returns the remaining depth budget of n (-1 for unlimited) and whether n is enabled.
func (s *Set) Budget(n *domain.ScopeNode) (int, bool) {
	if !s.Enabled(n) {
		return 0, false
	}
	return s.budget[n.Index], true
}

// Nodes returns the enabled nodes in pre-order, root excluded.
func (s *Set) Nodes() []*domain.ScopeNode {
	var out []*domain.ScopeNode
	s.tree.Walk(func(n *domain.ScopeNode) bool {
		if s.enabled[n.Index] {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Signals returns the enabled signals in pre-order.
func (s *Set) Signals() []*domain.ScopeNode {
	var out []*domain.ScopeNode
	for _, n := range s.tree.Signals() {
		if s.enabled[n.Index] {
			out = append(out, n)
		}
	}
	return out
}

// Paths returns the paths of the enabled nodes in pre-order.
func (s *Set) Paths() []string {
	nodes := s.Nodes()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Path
	}
	return out
}

// Len returns the number of enabled nodes, root excluded.
func (s *Set) Len() int {
	count := 0
	for i, on := range s.enabled {
		if on && i != s.tree.Root().Index {
			count++
		}
	}
	return count
}

// Equal reports whether both sets enable the same nodes with the same budgets.
func (s *Set) Equal(other *Set) bool {
	if s.tree != other.tree {
		return false
	}
	for i := range s.enabled {
		if s.enabled[i] != other.enabled[i] {
			return false
		}
		if s.enabled[i] && s.budget[i] != other.budget[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	c := &Set{
		tree:    s.tree,
		enabled: make([]bool, len(s.enabled)),
		budget:  make([]int, len(s.budget)),
	}
	copy(c.enabled, s.enabled)
	copy(c.budget, s.budget)
	return c
}
