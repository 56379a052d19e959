package model

import (
	"fmt"

	"github.com/aretw0/scopetrace/pkg/dsl"
	"github.com/aretw0/scopetrace/pkg/ports"
)

// ShiftChain is a register chain r0..rN clocked by top.t.clk: on every rising edge
// r0 takes the input i, each rK takes r(K-1) and o takes rN. It produces wide, flat
// scopes for exercising the tracer on large trees.
type ShiftChain struct {
	*dsl.Model
	length int
	regs   []bool
	out    bool
	clk    bool
	prev   bool
	input  func(cycle uint64) bool
	cycle  uint64
}

var _ ports.Model = (*ShiftChain)(nil)
var _ Clocked = (*ShiftChain)(nil)

// NewShiftChain creates a chain of length+1 registers. The input pattern defaults
// to a 1 every third cycle.
func NewShiftChain(length int) *ShiftChain {
	if length < 1 {
		length = 1
	}
	b := dsl.New()
	t := b.Scope("top").Scope("t").Signals("clk", "i", "o")
	for k := 0; k <= length; k++ {
		t.Signal(regName(k), 1)
	}

	s := &ShiftChain{
		Model:  b.Model(),
		length: length,
		regs:   make([]bool, length+1),
		input:  func(cycle uint64) bool { return cycle%3 == 0 },
	}
	s.Model.OnStep = s.eval
	return s
}

func regName(k int) string {
	return fmt.Sprintf("r%d", k)
}

// SetInput replaces the input pattern.
func (s *ShiftChain) SetInput(fn func(cycle uint64) bool) {
	s.input = fn
}

func (s *ShiftChain) eval(m *dsl.Model, _ uint64) error {
	in := s.input(s.cycle)
	m.SetUint64("top.t.i", bit(in))

	if s.clk && !s.prev {
		s.out = s.regs[s.length]
		for k := s.length; k > 0; k-- {
			s.regs[k] = s.regs[k-1]
		}
		s.regs[0] = in
		s.cycle++
	}
	s.prev = s.clk

	for k, r := range s.regs {
		m.SetUint64("top.t."+regName(k), bit(r))
	}
	m.SetUint64("top.t.o", bit(s.out))
	return nil
}

// SetClock drives top.t.clk.
func (s *ShiftChain) SetClock(level bool) {
	s.clk = level
	s.Model.SetUint64("top.t.clk", bit(level))
}

// Clock returns the current clock level.
func (s *ShiftChain) Clock() bool {
	return s.clk
}

// Length returns the index of the last register.
func (s *ShiftChain) Length() int {
	return s.length
}

func bit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
