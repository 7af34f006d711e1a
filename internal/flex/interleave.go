package flex

import "github.com/tsl-sdr/gochannelizer/internal/pocsag"

// BlockRows and BlockCols describe FLEX's block interleaving: a block of
// BlockRows codewords, each BlockCols bits wide, is transmitted column by
// column (all rows' bit 31, then all rows' bit 30, ...) to spread a burst
// error across many codewords instead of one.
const (
	BlockRows = 8
	BlockCols = 32
	blockBits = BlockRows * BlockCols
)

// Deinterleaver undoes FLEX's block interleaving and feeds each recovered
// codeword through the shared BCH(31,21) codec, the way il2p_payload.go
// deinterleaves IL2P's payload before handing rows to its RS decoder.
type Deinterleaver struct {
	raw [blockBits]bool
	n   int
}

// NewDeinterleaver returns an empty deinterleaver.
func NewDeinterleaver() *Deinterleaver { return &Deinterleaver{} }

// PushBit feeds one bit of a block in wire (column-major) order. It
// returns BlockRows decoded 21-bit data words once a full block has
// arrived; a codeword that fails BCH correction is reported via ok[i].
func (d *Deinterleaver) PushBit(bit bool) (words [BlockRows]uint32, ok [BlockRows]bool, full bool) {
	d.raw[d.n] = bit
	d.n++
	if d.n < blockBits {
		return words, ok, false
	}
	d.n = 0

	var codewords [BlockRows]uint32
	for col := 0; col < BlockCols; col++ {
		for row := 0; row < BlockRows; row++ {
			codewords[row] <<= 1
			if d.raw[col*BlockRows+row] {
				codewords[row] |= 1
			}
		}
	}
	for row, cw := range codewords {
		data, _, decOK := pocsag.Decode(cw >> 1)
		words[row] = data
		ok[row] = decOK
	}
	return words, ok, true
}

// Reset discards any partially received block.
func (d *Deinterleaver) Reset() { d.n = 0 }
