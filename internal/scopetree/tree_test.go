package scopetree_test

import (
	"testing"

	"github.com/aretw0/scopetrace/internal/scopetree"
	"github.com/aretw0/scopetrace/internal/testutils"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paths(nodes []*domain.ScopeNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Path
	}
	return out
}

func TestTree_Resolve(t *testing.T) {
	tree := testutils.ScenarioTree(t)

	root, ok := tree.Resolve("")
	require.True(t, ok)
	assert.True(t, root.IsRoot())
	assert.Equal(t, 0, root.Index)

	n, ok := tree.Resolve("top.t.sub1a.x")
	require.True(t, ok)
	assert.Equal(t, "x", n.Name)
	assert.Equal(t, "top.t.sub1a", n.ScopePath())

	_, ok = tree.Resolve("t")
	assert.False(t, ok)
	_, ok = tree.Resolve("top.t.")
	assert.False(t, ok, "Resolve is exact")

	assert.Equal(t, 8, tree.Len())
	assert.Equal(t, 9, tree.Size())
}

func TestTree_ChildPathInvariant(t *testing.T) {
	tree := testutils.ScenarioTree(t)
	tree.Walk(func(n *domain.ScopeNode) bool {
		assert.Equal(t, domain.JoinPath(n.Parent.Path, n.Name), n.Path)
		assert.Equal(t, n, tree.At(n.Index))
		return true
	})
}

func TestTree_DescendantsOf(t *testing.T) {
	tree := testutils.ScenarioTree(t)
	sub1b, _ := tree.Resolve("top.t.sub1b")
	top, _ := tree.Resolve("top")

	assert.Equal(t, []string{"top.t.sub1b.y"}, paths(tree.DescendantsOf(sub1b, 1)))
	assert.Equal(t, []string{"top.t.sub1b.y", "top.t.sub1b.y.z"}, paths(tree.DescendantsOf(sub1b, 2)))
	assert.Equal(t, []string{
		"top.t", "top.t.cyc", "top.t.sub1a", "top.t.sub1a.x",
		"top.t.sub1b", "top.t.sub1b.y", "top.t.sub1b.y.z",
	}, paths(tree.DescendantsOf(top, 0)), "depth 0 is unlimited and keeps declaration order")

	cyc, _ := tree.Resolve("top.t.cyc")
	assert.Empty(t, tree.DescendantsOf(cyc, 0))
}

func TestTree_LongestPrefix(t *testing.T) {
	tree := testutils.ScenarioTree(t)

	tests := []struct {
		path string
		want string // "" means no match
	}{
		{path: "top.t.sub1a", want: "top.t.sub1a"},
		{path: "top.t.sub1a.nothing", want: "top.t.sub1a"},
		{path: "top.t.cyc.bit0", want: "top.t.cyc"},
		{path: "top.t.", want: "top.t"},
		{path: "t", want: ""},
		{path: "to", want: ""},
		{path: "top.tt", want: "top"},
		{path: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			n, ok := tree.LongestPrefix(tt.path)
			if tt.want == "" {
				assert.False(t, ok, "LongestPrefix(%q) should not match, got %v", tt.path, n)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, n.Path)
		})
	}
}

func TestTree_Signals(t *testing.T) {
	tree := testutils.ScenarioTree(t)
	assert.Equal(t, []string{"top.t.cyc", "top.t.sub1a.x", "top.t.sub1b.y.z"}, paths(tree.Signals()))
}

func TestBuilder_Errors(t *testing.T) {
	b := scopetree.NewBuilder()
	require.NoError(t, b.AddScope("top"))
	require.NoError(t, b.AddSignal("top.clk", 1))

	assert.ErrorIs(t, b.AddScope("top"), domain.ErrDuplicatePath)
	assert.ErrorIs(t, b.AddScope("orphan.child"), domain.ErrInvalidPath)
	assert.ErrorIs(t, b.AddSignal("top.clk.bit", 1), domain.ErrInvalidPath, "signals cannot contain nodes")
	assert.ErrorIs(t, b.AddSignal("top.w", 0), domain.ErrInvalidPath)
	assert.ErrorIs(t, b.AddScope("top..x"), domain.ErrInvalidPath)

	tree := b.Build()
	assert.Equal(t, 2, tree.Len())
	assert.Error(t, b.AddScope("late"), "registration is closed after Build")
}
