package dsl

import (
	"testing"

	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_DeclarationOrder(t *testing.T) {
	b := New()
	top := b.Scope("top").Signal("clk", 1)
	sub := top.Scope("t").Signal("cyc", 32)
	sub.Scope("sub1a").Signal("x", 8)
	top.Signal("rst", 1)

	tree, err := b.Build()
	require.NoError(t, err)

	var paths []string
	for _, n := range tree.Nodes() {
		paths = append(paths, n.Path)
	}
	// Pre-order: children of a scope in declaration order, nested scopes visited in place.
	assert.Equal(t, []string{"top", "top.clk", "top.t", "top.t.cyc", "top.t.sub1a", "top.t.sub1a.x", "top.rst"}, paths)

	cyc, ok := tree.Resolve("top.t.cyc")
	require.True(t, ok)
	assert.Equal(t, domain.KindSignal, cyc.Kind)
	assert.Equal(t, 32, cyc.Width)
	assert.Equal(t, 3, cyc.Depth)
}

func TestBuilder_ScopeIsReused(t *testing.T) {
	b := New()
	first := b.Scope("top")
	second := b.Scope("top")
	assert.Same(t, first, second)

	tree := b.MustBuild()
	assert.Equal(t, 1, tree.Len())
}

func TestBuilder_RejectsDuplicateSignal(t *testing.T) {
	b := New()
	b.Scope("top").Signal("clk", 1).Signal("clk", 1)

	_, err := b.Build()
	assert.ErrorIs(t, err, domain.ErrDuplicatePath)
}

func TestModel_Values(t *testing.T) {
	b := New()
	b.Scope("top").Signal("cnt", 4)
	m := b.Model()

	v, ok := m.Sample("top.cnt")
	require.True(t, ok)
	assert.Equal(t, 4, v.Width())
	assert.Equal(t, uint64(0), v.Uint64())

	m.OnStep = func(m *Model, time uint64) error {
		m.SetUint64("top.cnt", time)
		return nil
	}
	require.NoError(t, m.Step(19))
	v, _ = m.Sample("top.cnt")
	assert.Equal(t, uint64(3), v.Uint64(), "values keep their declared width")

	_, ok = m.Sample("top.missing")
	assert.False(t, ok)
}
