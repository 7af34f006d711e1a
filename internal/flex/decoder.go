package flex

type decoderState int

const (
	stateSyncSearch decoderState = iota
	stateFIW
	stateBlock
)

// blocksPerFrame is the number of 8x32 interleaved blocks that follow a
// FIW in every FLEX frame.
const blocksPerFrame = 11

// Decoder consumes a hard-decision, bit-synchronized 1600bps/2-level FLEX
// bitstream: sync acquisition, FIW decode, and the blocksPerFrame blocks
// of deinterleaved, BCH-corrected data words handed to an Assembler per
// frame.
type Decoder struct {
	sync  *SyncDetector
	block *Deinterleaver
	asm   *Assembler

	state      decoderState
	fiwBuf     uint32
	fiwBits    int
	blockIndex int
	lastFIW    FIW
	haveFIW    bool
}

// NewDecoder returns a decoder searching for FLEX sync.
func NewDecoder(onMessage func(Message)) *Decoder {
	return &Decoder{
		sync:  NewSyncDetector(),
		block: NewDeinterleaver(),
		asm:   NewAssembler(onMessage),
		state: stateSyncSearch,
	}
}

// LastFIW returns the most recently decoded Frame Information Word and
// whether one has been seen yet.
func (d *Decoder) LastFIW() (FIW, bool) { return d.lastFIW, d.haveFIW }

// PushBit feeds one hard-decision bit at the FLEX symbol rate.
func (d *Decoder) PushBit(bit bool) {
	switch d.state {
	case stateSyncSearch:
		if d.sync.PushBit(bit) {
			d.state = stateFIW
			d.fiwBuf = 0
			d.fiwBits = 0
		}
	case stateFIW:
		d.fiwBuf = (d.fiwBuf << 1)
		if bit {
			d.fiwBuf |= 1
		}
		d.fiwBits++
		if d.fiwBits < 32 {
			return
		}
		if fiw, ok := DecodeFIW(d.fiwBuf); ok {
			d.lastFIW = fiw
			d.haveFIW = true
			d.block.Reset()
			d.blockIndex = 0
			d.state = stateBlock
		} else {
			d.state = stateSyncSearch
			d.sync.Reset()
		}
	case stateBlock:
		words, ok, full := d.block.PushBit(bit)
		if !full {
			return
		}
		d.asm.ProcessBlock(words[:], ok[:])
		d.blockIndex++
		if d.blockIndex < blocksPerFrame {
			d.block.Reset()
			return
		}
		d.state = stateSyncSearch
		d.sync.Reset()
	}
}

// Reset returns the decoder to its initial sync-searching state.
func (d *Decoder) Reset() {
	d.sync.Reset()
	d.block.Reset()
	d.state = stateSyncSearch
	d.blockIndex = 0
	d.haveFIW = false
}
