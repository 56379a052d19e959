// Package model provides reference models to drive the tracer without a real simulator.
package model

import (
	"github.com/aretw0/scopetrace/pkg/dsl"
	"github.com/aretw0/scopetrace/pkg/ports"
)

// Clocked is implemented by models with a clock input driven by the host.
type Clocked interface {
	SetClock(level bool)
	Clock() bool
}

// Counter counts rising clock edges.
//
//	top.clk            input clock
//	top.t.clk          clock as seen inside t
//	top.t.cyc          cycle counter
//	top.t.sub1a.x      low byte of cyc
//	top.t.sub1b.y.z    cyc times three, truncated to the z width
type Counter struct {
	*dsl.Model
	width int
	clk   bool
	prev  bool
	cyc   uint64
}

var _ ports.Model = (*Counter)(nil)
var _ Clocked = (*Counter)(nil)

// NewCounter creates a counter whose cyc signal is width bits wide (32 when width < 1).
func NewCounter(width int) *Counter {
	if width < 1 {
		width = 32
	}
	b := dsl.New()
	top := b.Scope("top").Signal("clk", 1)
	t := top.Scope("t").Signal("clk", 1).Signal("cyc", width)
	t.Scope("sub1a").Signal("x", 8)
	t.Scope("sub1b").Scope("y").Signal("z", 16)

	c := &Counter{Model: b.Model(), width: width}
	c.Model.OnStep = func(m *dsl.Model, _ uint64) error {
		if c.clk && !c.prev {
			c.cyc++
		}
		c.prev = c.clk
		m.SetUint64("top.t.cyc", c.cyc)
		m.SetUint64("top.t.sub1a.x", c.cyc&0xff)
		m.SetUint64("top.t.sub1b.y.z", c.cyc*3)
		return nil
	}
	return c
}

// SetClock drives top.clk. The new level is visible after the next Step.
func (c *Counter) SetClock(level bool) {
	c.clk = level
	v := uint64(0)
	if level {
		v = 1
	}
	c.Model.SetUint64("top.clk", v)
	c.Model.SetUint64("top.t.clk", v)
}

// Clock returns the current clock level.
func (c *Counter) Clock() bool {
	return c.clk
}

// Cycles returns the number of rising edges seen so far.
func (c *Counter) Cycles() uint64 {
	return c.cyc
}
