package flex

import (
	"math/bits"

	"github.com/tsl-sdr/gochannelizer/internal/pocsag"
	"github.com/tsl-sdr/gochannelizer/internal/task"
)

// compile-time check that EncodeTask satisfies the cooperative Task shape
// the transmitter drives it with.
var _ task.Task[struct{}, []bool] = (*EncodeTask)(nil)

// maxDataWords is how many message data words fit in one block alongside
// an address and a vector word (BlockRows - 2). Messages that don't fit
// are truncated to the first maxDataWords words' worth of content: this
// encoder only ever places a page's address/vector/data words in the
// frame's first block, the common case for a short capcode page; the
// remaining blocksPerFrame-1 blocks of the frame carry idle (all-zero)
// words, matching Assembler.ProcessBlock's treatment of a zero word as
// idle rather than a real address.
const maxDataWords = BlockRows - 2

// reverseNumericDigit maps a numeric-page character back to its BCD
// nibble, the inverse of numericTable; unrecognized characters encode as
// space (index 12), same as pager_pocsag.h's encoder falls back to blank
// padding rather than rejecting the page.
func reverseNumericDigit(c byte) uint8 {
	for i, ch := range numericTable {
		if ch == c {
			return uint8(i)
		}
	}
	return 12
}

// encodeNumericWords packs digits five BCD nibbles to a word (20 of a
// word's 21 data bits, mirroring decodeNumericWords which only ever reads
// those same 20), padding a partial trailing word with spaces.
func encodeNumericWords(digits string) []uint32 {
	n := (len(digits) + 4) / 5
	if n == 0 {
		n = 1
	}
	words := make([]uint32, n)
	for i := 0; i < n*5; i++ {
		var nibble uint8 = 12
		if i < len(digits) {
			nibble = reverseNumericDigit(digits[i])
		}
		word := i / 5
		shift := uint(16 - 4*(i%5))
		words[word] |= uint32(nibble) << shift
	}
	return words
}

// encodeAlphaWords packs text as reversed 7-bit characters into 20-bit
// spans of successive data words, mirroring decodeAlphaWords which only
// ever reads a word's low 20 bits.
func encodeAlphaWords(text string) []uint32 {
	var bitstream []bool
	for i := 0; i < len(text); i++ {
		c := reverseBits7(text[i])
		for b := 6; b >= 0; b-- {
			bitstream = append(bitstream, (c>>uint(b))&1 != 0)
		}
	}
	for len(bitstream)%20 != 0 {
		bitstream = append(bitstream, false)
	}
	if len(bitstream) == 0 {
		bitstream = make([]bool, 20)
	}
	words := make([]uint32, len(bitstream)/20)
	for i, bit := range bitstream {
		if bit {
			words[i/20] |= 1 << uint(19-i%20)
		}
	}
	return words
}

// encodeCodeword wraps a 21-bit data field in its BCH(31,21) parity and
// an overall even-parity bit, the wire format Deinterleaver.PushBit and
// DecodeFIW expect (cw>>1 is the BCH(31,21) codeword).
func encodeCodeword(data21 uint32) uint32 {
	bch := pocsag.Encode(data21)
	parity := uint32(bits.OnesCount32(bch) & 1)
	return (bch << 1) | parity
}

// PageRequest is one outbound page: a capcode and either a numeric or an
// alphanumeric payload.
type PageRequest struct {
	Capcode    uint64
	Numeric    bool
	Digits     string
	Text       string
	MailDrop   bool
	Fragmented bool
	SeqNum     uint8
}

// buildBlockWords lays out a page as up to BlockRows 21-bit data words:
// address, vector, then message data words, zero-padded to a full block.
func buildBlockWords(req PageRequest) [BlockRows]uint32 {
	var data []uint32
	if req.Numeric {
		data = encodeNumericWords(req.Digits)
	} else {
		data = encodeAlphaWords(req.Text)
	}
	if len(data) > maxDataWords {
		data = data[:maxDataWords]
	}

	msgType := uint32(vectorTypeAlpha)
	if req.Numeric {
		msgType = vectorTypeNumeric
	}
	vector := (msgType << 19) | boolBit(req.MailDrop, 18) | boolBit(req.Fragmented, 17) |
		(uint32(req.SeqNum&0xf) << 13) | uint32(len(data))

	var words [BlockRows]uint32
	words[0] = uint32(req.Capcode) & 0x1fffff
	words[1] = vector & 0x1fffff
	for i, w := range data {
		words[2+i] = w & 0x1fffff
	}
	return words
}

func boolBit(b bool, shift uint) uint32 {
	if b {
		return 1 << shift
	}
	return 0
}

// interleaveBlock reorders a block's 8 32-bit wire codewords into the
// column-major bit order FLEX transmits and Deinterleaver.PushBit
// expects: all rows' bit 31 first, then all rows' bit 30, and so on.
func interleaveBlock(codewords [BlockRows]uint32) []bool {
	out := make([]bool, 0, blockBits)
	for col := BlockCols - 1; col >= 0; col-- {
		for row := 0; row < BlockRows; row++ {
			out = append(out, (codewords[row]>>uint(col))&1 != 0)
		}
	}
	return out
}

// encodeStage names what a Step call is currently producing.
type encodeStage int

const (
	stageSync encodeStage = iota
	stageFIW
	stageBlock
	stageDone
)

// EncodeTask is the FLEX transmitter's cooperative encoder: each Step
// call advances through sync pattern, Frame Information Word, and then
// blocksPerFrame interleaved blocks in turn, returning the bits to
// transmit for that step, until the whole frame has been emitted.
type EncodeTask struct {
	stage       encodeStage
	dataBlock   []bool
	blockIndex  int
	frameNumber int
	cycleNumber int
	req         PageRequest
}

// NewEncodeTask returns a task that encodes req as a single FLEX frame at
// the given FIW position.
func NewEncodeTask(req PageRequest, frameNumber, cycleNumber int) *EncodeTask {
	return &EncodeTask{req: req, frameNumber: frameNumber, cycleNumber: cycleNumber}
}

// Step implements task.Task[struct{}, []bool]. Input is unused (the task
// needs no feedback between steps); the returned bits are in wire order
// and should be transmitted as-is.
func (t *EncodeTask) Step(struct{}) ([]bool, task.State, error) {
	switch t.stage {
	case stageSync:
		t.stage = stageFIW
		return bitsMSBFirst(sync1600, 32), task.Running, nil

	case stageFIW:
		t.stage = stageBlock
		t.blockIndex = 0
		fiwData := (uint32(t.frameNumber&0x7f) << 14) | (uint32(t.cycleNumber&0xf) << 10)
		t.dataBlock = interleaveBlock(encodeBlockCodewords(t.req))
		return bitsMSBFirst(encodeCodeword(fiwData), 32), task.Running, nil

	case stageBlock:
		bits := t.dataBlock
		if t.blockIndex > 0 {
			bits = interleaveBlock(idleBlockCodewords())
		}
		t.blockIndex++
		if t.blockIndex < blocksPerFrame {
			return bits, task.Running, nil
		}
		t.stage = stageDone
		return bits, task.Done, nil

	default:
		return nil, task.Done, nil
	}
}

func encodeBlockCodewords(req PageRequest) [BlockRows]uint32 {
	words := buildBlockWords(req)
	var codewords [BlockRows]uint32
	for i, w := range words {
		codewords[i] = encodeCodeword(w)
	}
	return codewords
}

// idleBlockCodewords returns a block of BlockRows idle (all-zero)
// codewords, the filler for every block of a frame after the one
// carrying a page's address/vector/data words.
func idleBlockCodewords() [BlockRows]uint32 {
	var codewords [BlockRows]uint32
	for i := range codewords {
		codewords[i] = encodeCodeword(0)
	}
	return codewords
}

func bitsMSBFirst(v uint32, n int) []bool {
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = (v>>uint(n-1-i))&1 != 0
	}
	return out
}
