package flex

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsl-sdr/gochannelizer/internal/pocsag"
)

func pushWordMSB(d *Decoder, word uint32, nbits int) {
	for i := nbits - 1; i >= 0; i-- {
		d.PushBit((word>>uint(i))&1 != 0)
	}
}

func TestDecoderDecodesNumericPage(t *testing.T) {
	var got []Message
	d := NewDecoder(func(m Message) { got = append(got, m) })

	fiwData := uint32(5<<14 | 2<<10 | 0<<8)
	fiwCodeword := pocsag.Encode(fiwData) << 1

	var codewords [BlockRows]uint32
	codewords[0] = pocsag.Encode(42) << 1            // address word: capcode 42
	codewords[1] = pocsag.Encode(0x80001) << 1        // vector: numeric, 1 data word
	codewords[2] = pocsag.Encode(0x12345) << 1        // data word: digits "12345"
	for i := 3; i < BlockRows; i++ {
		codewords[i] = 0
	}

	pushWordMSB(d, sync1600, 32)
	pushWordMSB(d, fiwCodeword, 32)
	for _, b := range interleavedBits(codewords) {
		d.PushBit(b)
	}

	fiw, ok := d.LastFIW()
	require.True(t, ok)
	require.Equal(t, 5, fiw.FrameNumber)
	require.Equal(t, 2, fiw.CycleNumber)

	require.Len(t, got, 1)
	require.Equal(t, uint64(42), got[0].Capcode)
	require.True(t, got[0].Numeric)
	require.Equal(t, "12345", got[0].Digits)
}

// TestDecoderConsumesAllElevenBlocksOfAFrame feeds a FIW followed by a
// full blocksPerFrame run of blocks — the first carrying a real page, the
// rest idle — and checks the decoder both recovers the page from the
// first block and returns to sync search only after the 11th, not the
// 1st.
func TestDecoderConsumesAllElevenBlocksOfAFrame(t *testing.T) {
	var got []Message
	d := NewDecoder(func(m Message) { got = append(got, m) })

	fiwData := uint32(7<<14 | 3<<10 | 0<<8)
	fiwCodeword := pocsag.Encode(fiwData) << 1

	var dataBlock [BlockRows]uint32
	dataBlock[0] = pocsag.Encode(99) << 1
	dataBlock[1] = pocsag.Encode(0x80001) << 1
	dataBlock[2] = pocsag.Encode(0x54321) << 1

	var idleBlock [BlockRows]uint32

	pushWordMSB(d, sync1600, 32)
	pushWordMSB(d, fiwCodeword, 32)
	for _, b := range interleavedBits(dataBlock) {
		d.PushBit(b)
	}
	require.Equal(t, stateBlock, d.state, "decoder must keep consuming blocks after only the 1st of 11")

	for i := 1; i < blocksPerFrame; i++ {
		for _, b := range interleavedBits(idleBlock) {
			d.PushBit(b)
		}
	}

	require.Equal(t, stateSyncSearch, d.state, "decoder must return to sync search after all 11 blocks")
	require.Len(t, got, 1)
	require.Equal(t, uint64(99), got[0].Capcode)
	require.Equal(t, "54321", got[0].Digits)
}
