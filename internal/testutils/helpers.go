package testutils

import (
	"testing"

	"github.com/aretw0/scopetrace/internal/scopetree"
	"github.com/aretw0/scopetrace/pkg/dsl"
	"github.com/stretchr/testify/require"
)

// ScenarioBuilder declares the reference hierarchy used across the test suites:
//
//	top
//	top.t
//	top.t.cyc        (signal, 32 bits)
//	top.t.sub1a
//	top.t.sub1a.x    (signal, 8 bits)
//	top.t.sub1b
//	top.t.sub1b.y
//	top.t.sub1b.y.z  (signal, 16 bits)
func ScenarioBuilder() *dsl.Builder {
	b := dsl.New()
	t := b.Scope("top").Scope("t").Signal("cyc", 32)
	t.Scope("sub1a").Signal("x", 8)
	t.Scope("sub1b").Scope("y").Signal("z", 16)
	return b
}

// ScenarioTree builds the reference hierarchy and fails the test immediately on error.
func ScenarioTree(t *testing.T) *scopetree.Tree {
	t.Helper()

	tree, err := scopetree.FromModel(ScenarioBuilder())
	require.NoError(t, err, "Failed to build scenario tree")
	return tree
}

// ScenarioModel returns a static model over the reference hierarchy.
// Every Step sets cyc to the step time, x to its low byte and z to twice the time.
func ScenarioModel() *dsl.Model {
	m := ScenarioBuilder().Model()
	m.OnStep = func(m *dsl.Model, time uint64) error {
		m.SetUint64("top.t.cyc", time)
		m.SetUint64("top.t.sub1a.x", time&0xff)
		m.SetUint64("top.t.sub1b.y.z", time*2)
		return nil
	}
	return m
}
