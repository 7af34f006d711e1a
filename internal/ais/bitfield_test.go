package ais

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setField(buf []byte, start uint, length int, val uint32) {
	for k := 0; k < length; k++ {
		bit := (val>>uint(length-1-k))&1 != 0
		setBit(buf, start+uint(k), bit)
	}
}

func setBit(buf []byte, offset uint, v bool) {
	idx := offset >> 3
	mask := byte(0x80 >> (offset & 7))
	if v {
		buf[idx] |= mask
	} else {
		buf[idx] &^= mask
	}
}

func TestGetFieldRoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	setField(buf, 3, 13, 0x1a2b&0x1fff)
	require.Equal(t, uint32(0x1a2b&0x1fff), getField(buf, 3, 13))
}

func TestGetFieldSignedSignExtends(t *testing.T) {
	buf := make([]byte, 4)
	setField(buf, 0, 8, 0xff) // all-ones byte == -1 when treated as signed
	require.Equal(t, int32(-1), getFieldSigned(buf, 0, 8))
}

func TestLatLonSentinels(t *testing.T) {
	buf := make([]byte, 16)
	setField(buf, 0, 27, uint32(91*600000)&0x7ffffff)
	_, ok := getFieldLat(buf, 0, 27)
	require.False(t, ok)

	setField(buf, 27, 28, uint32(181*600000)&0xfffffff)
	_, ok = getFieldLon(buf, 27, 28)
	require.False(t, ok)
}

func TestLatLonScaling(t *testing.T) {
	buf := make([]byte, 16)
	// 45.5 degrees north in minutes/10000
	raw := int32(45.5 * 600000)
	setField(buf, 0, 27, uint32(raw)&0x7ffffff)
	lat, ok := getFieldLat(buf, 0, 27)
	require.True(t, ok)
	require.InDelta(t, 45.5, lat, 1e-6)
}

func TestGetFieldStringTrimsTerminators(t *testing.T) {
	buf := make([]byte, 16)
	// "AB" followed by '@' padding: A=1,B=2 in the sextet table used by
	// getFieldASCII (0-31 maps to 64-95, i.e. '@'..'_').
	setField(buf, 0, 6, uint32('A')-64)
	setField(buf, 6, 6, uint32('B')-64)
	setField(buf, 12, 6, 0) // '@' sentinel
	got := getFieldString(buf, 0, 18)
	require.Equal(t, "AB", got)
}
