package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromUint64_Truncates(t *testing.T) {
	v := FromUint64(4, 0xff)
	assert.Equal(t, uint64(0xf), v.Uint64())
	assert.Equal(t, "1111", v.Binary())
	assert.Equal(t, "f", v.Hex())
}

func TestValue_WideBits(t *testing.T) {
	v := NewValue(70)
	v.SetBit(0, true)
	v.SetBit(69, true)

	assert.True(t, v.Bit(0))
	assert.True(t, v.Bit(69))
	assert.False(t, v.Bit(68))
	assert.False(t, v.Bit(70), "out of range reads as zero")
	assert.Equal(t, 2, v.OnesCount())

	bin := v.Binary()
	require.Len(t, bin, 70)
	assert.Equal(t, byte('1'), bin[0])
	assert.Equal(t, byte('1'), bin[69])
	assert.Equal(t, "200000000000000001", v.Hex())
}

func TestValue_EqualAndClone(t *testing.T) {
	a := FromUint64(8, 0x2a)
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.SetBit(0, true)
	assert.False(t, a.Equal(b), "clone must not share storage")
	assert.False(t, FromUint64(8, 1).Equal(FromUint64(9, 1)), "width is part of equality")
}

func TestParseBinary(t *testing.T) {
	v, err := ParseBinary(8, "101")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v.Uint64())
	assert.Equal(t, "00000101", v.Binary())

	_, err = ParseBinary(2, "101")
	assert.Error(t, err)

	_, err = ParseBinary(4, "10x1")
	assert.Error(t, err)
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "1'b1", FromBool(true).String())
	assert.Equal(t, "8'h2a", FromUint64(8, 0x2a).String())
}

func TestToggledBits(t *testing.T) {
	assert.Equal(t, []int{0, 3}, ToggledBits(FromUint64(4, 0b0001), FromUint64(4, 0b1000)))
	assert.Empty(t, ToggledBits(FromUint64(4, 3), FromUint64(4, 3)))
}
