package ais

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func nrziEncode(bits []bool) []bool {
	level := true
	out := make([]bool, len(bits))
	for i, b := range bits {
		if !b {
			level = !level
		}
		out[i] = level
	}
	return out
}

func oversample(bits []bool, factor int) []bool {
	out := make([]bool, 0, len(bits)*factor)
	for _, b := range bits {
		for i := 0; i < factor; i++ {
			out = append(out, b)
		}
	}
	return out
}

func alternatingPreamble(n int) []bool {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = i%2 == 0
	}
	return bits
}

func buildType1Frame(mmsi uint32, lat, lon float64) []byte {
	payload := make([]byte, 21) // 168 bits
	setField(payload, 0, 6, 1)  // message type 1
	setField(payload, 6, 2, 0)  // repeat indicator
	setField(payload, 8, 30, mmsi)
	setField(payload, 38, 4, 0) // nav status: under way using engine
	setField(payload, 42, 8, uint32(int32(-128))&0xff)
	setField(payload, 50, 10, 125) // 12.5 knots
	setField(payload, 60, 1, 1)    // position accurate
	setField(payload, 61, 28, uint32(int32(lon*600000))&0xfffffff)
	setField(payload, 89, 27, uint32(int32(lat*600000))&0x7ffffff)
	setField(payload, 116, 12, 900) // 90.0 degrees course
	setField(payload, 128, 9, 90)   // heading
	setField(payload, 137, 6, 30)   // timestamp

	return appendFCS(payload)
}

func TestReceiverDecodesType1PositionReport(t *testing.T) {
	framed := buildType1Frame(123456789, 37.5, -122.25)

	var bodyBits []bool
	for _, b := range framed {
		bodyBits = append(bodyBits, bitsOfByte(b)...)
	}
	stuffed := stuffBits(bodyBits)

	var allBits []bool
	// NRZI decoding needs one prior raw sample as a reference before it can
	// produce its first decoded bit; this leading bit is that reference and
	// is never itself decoded.
	allBits = append(allBits, true)
	allBits = append(allBits, alternatingPreamble(preambleBits)...)
	allBits = append(allBits, bitsOfByte(startFlag)...)
	allBits = append(allBits, stuffed...)
	allBits = append(allBits, bitsOfByte(startFlag)...)
	// Trailing flag to force the final frame out of the assembler.
	allBits = append(allBits, bitsOfByte(startFlag)...)

	encoded := nrziEncode(allBits)
	raw := oversample(encoded, decimationRate)

	var got []Message
	r := NewReceiver(func(m Message) { got = append(got, m) })
	for _, s := range raw {
		r.PushSample(s)
	}

	require.NotEmpty(t, got)
	pos, ok := got[0].(PositionReport)
	require.True(t, ok, "expected a PositionReport, got %T", got[0])
	require.Equal(t, uint32(123456789), pos.MMSI)
	require.Equal(t, 1, pos.MessageType)
	require.True(t, pos.HasPosition)
	require.InDelta(t, 37.5, pos.Latitude, 1e-3)
	require.InDelta(t, -122.25, pos.Longitude, 1e-3)
	require.True(t, pos.HasSpeed)
	require.InDelta(t, 12.5, pos.SpeedKnots, 1e-6)
}
