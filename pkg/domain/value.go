package domain

import (
	"fmt"
	"math/bits"
	"strings"
)

const wordBits = 64

// Value is a fixed-width two-state bit vector.
// Bit 0 is the least significant bit; words are stored little-endian.
type Value struct {
	width int
	words []uint64
}

// NewValue returns an all-zero value of the given width.
func NewValue(width int) Value {
	if width < 0 {
		width = 0
	}
	return Value{width: width, words: make([]uint64, wordCount(width))}
}

// FromUint64 returns a value of the given width holding v truncated to width bits.
func FromUint64(width int, v uint64) Value {
	val := NewValue(width)
	if len(val.words) > 0 {
		val.words[0] = v
		val.mask()
	}
	return val
}

// FromBool returns a one-bit value.
func FromBool(b bool) Value {
	if b {
		return FromUint64(1, 1)
	}
	return FromUint64(1, 0)
}

// FromWords builds a value from little-endian words; extra words and bits are dropped.
func FromWords(width int, words []uint64) Value {
	val := NewValue(width)
	copy(val.words, words)
	val.mask()
	return val
}

// ParseBinary parses an MSB-first string of '0' and '1' characters.
// When width is larger than the string the value is zero-extended.
func ParseBinary(width int, s string) (Value, error) {
	if len(s) > width {
		return Value{}, fmt.Errorf("binary literal %q is wider than %d bits", s, width)
	}
	val := NewValue(width)
	for i := 0; i < len(s); i++ {
		bit := len(s) - 1 - i
		switch s[i] {
		case '0':
		case '1':
			val.SetBit(bit, true)
		default:
			return Value{}, fmt.Errorf("invalid binary digit %q in %q", s[i], s)
		}
	}
	return val, nil
}

func wordCount(width int) int {
	return (width + wordBits - 1) / wordBits
}

func (v *Value) mask() {
	if rem := v.width % wordBits; rem != 0 && len(v.words) > 0 {
		v.words[len(v.words)-1] &= (uint64(1) << rem) - 1
	}
}

// Width returns the number of bits.
func (v Value) Width() int {
	return v.width
}

// Bit returns bit i. Out-of-range bits read as zero.
func (v Value) Bit(i int) bool {
	if i < 0 || i >= v.width {
		return false
	}
	return v.words[i/wordBits]&(uint64(1)<<(i%wordBits)) != 0
}

// SetBit sets bit i. Out-of-range writes are ignored.
func (v *Value) SetBit(i int, b bool) {
	if i < 0 || i >= v.width {
		return
	}
	m := uint64(1) << (i % wordBits)
	if b {
		v.words[i/wordBits] |= m
	} else {
		v.words[i/wordBits] &^= m
	}
}

// Uint64 returns the low 64 bits.
func (v Value) Uint64() uint64 {
	if len(v.words) == 0 {
		return 0
	}
	return v.words[0]
}

// Words returns a copy of the little-endian words.
func (v Value) Words() []uint64 {
	out := make([]uint64, len(v.words))
	copy(out, v.words)
	return out
}

// Equal reports whether both values have the same width and bits.
func (v Value) Equal(o Value) bool {
	if v.width != o.width {
		return false
	}
	for i := range v.words {
		if v.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	return Value{width: v.width, words: v.Words()}
}

// OnesCount returns the number of set bits.
func (v Value) OnesCount() int {
	n := 0
	for _, w := range v.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Binary returns the full-width MSB-first binary representation.
func (v Value) Binary() string {
	var sb strings.Builder
	sb.Grow(v.width)
	for i := v.width - 1; i >= 0; i-- {
		if v.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Hex returns the MSB-first hexadecimal representation, padded to the width.
func (v Value) Hex() string {
	digits := (v.width + 3) / 4
	if digits == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(digits)
	for d := digits - 1; d >= 0; d-- {
		nibble := 0
		for b := 3; b >= 0; b-- {
			nibble <<= 1
			if v.Bit(d*4 + b) {
				nibble |= 1
			}
		}
		sb.WriteByte("0123456789abcdef"[nibble])
	}
	return sb.String()
}

// String renders the value as a sized Verilog-style literal, e.g. 8'h2a.
func (v Value) String() string {
	if v.width == 1 {
		return fmt.Sprintf("1'b%s", v.Binary())
	}
	return fmt.Sprintf("%d'h%s", v.width, v.Hex())
}

// ToggledBits returns the bit indices that differ between old and new.
// Values of different width are compared over the wider width.
func ToggledBits(old, new Value) []int {
	width := max(old.width, new.width)
	var toggled []int
	for i := 0; i < width; i++ {
		if old.Bit(i) != new.Bit(i) {
			toggled = append(toggled, i)
		}
	}
	return toggled
}
