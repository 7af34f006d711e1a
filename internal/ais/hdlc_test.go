package ais

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// bitsOfByte returns the MSB-first bits of b.
func bitsOfByte(b byte) []bool {
	bits := make([]bool, 8)
	for i := 0; i < 8; i++ {
		bits[i] = (b>>(7-i))&1 != 0
	}
	return bits
}

// stuffBits inserts a 0 after every run of five consecutive 1 bits.
func stuffBits(bits []bool) []bool {
	out := make([]bool, 0, len(bits)+len(bits)/5+1)
	ones := 0
	for _, b := range bits {
		out = append(out, b)
		if b {
			ones++
			if ones == 5 {
				out = append(out, false)
				ones = 0
			}
		} else {
			ones = 0
		}
	}
	return out
}

func TestFrameAssemblerExtractsValidFrame(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	framed := appendFCS(data)

	var bodyBits []bool
	for _, b := range framed {
		bodyBits = append(bodyBits, bitsOfByte(b)...)
	}
	stuffed := stuffBits(bodyBits)

	a := NewFrameAssembler()

	for _, b := range bitsOfByte(startFlag) {
		a.PushBit(b)
	}

	var got []byte
	var ok bool
	for _, b := range stuffed {
		got, ok = a.PushBit(b)
		require.False(t, ok, "frame should not complete before the closing flag")
	}

	for _, b := range bitsOfByte(startFlag) {
		got, ok = a.PushBit(b)
		if ok {
			break
		}
	}

	require.True(t, ok)
	require.Equal(t, data, got)
}

func TestFrameAssemblerRejectsCorruptFrame(t *testing.T) {
	data := []byte{0xaa, 0xbb, 0xcc}
	framed := appendFCS(data)
	framed[0] ^= 0xff // corrupt a data byte

	var bodyBits []bool
	for _, b := range framed {
		bodyBits = append(bodyBits, bitsOfByte(b)...)
	}
	stuffed := stuffBits(bodyBits)

	a := NewFrameAssembler()
	for _, b := range bitsOfByte(startFlag) {
		a.PushBit(b)
	}
	for _, b := range stuffed {
		a.PushBit(b)
	}

	var ok bool
	for _, b := range bitsOfByte(startFlag) {
		_, ok = a.PushBit(b)
		if ok {
			break
		}
	}
	require.False(t, ok)
}
