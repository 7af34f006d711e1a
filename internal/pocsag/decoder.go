package pocsag

// Grounded on pager_pocsag.h's pager_pocsag_new callback shape
// (baud/capcode/data/function/freq_hz) and on the teacher's hdlc_rec.go
// state-machine style for consuming a bitstream through a small set of
// explicit states, generalized here from HDLC's bit-destuffing loop to
// POCSAG's sync-word/batch/codeword framing.

// NumericMessage is a decoded numeric (tone/BCD) page.
type NumericMessage struct {
	BaudRate uint16
	Capcode  uint32
	Function uint8
	FreqHz   uint32
	Digits   string
}

// AlphaMessage is a decoded alphanumeric page.
type AlphaMessage struct {
	BaudRate uint16
	Capcode  uint32
	Function uint8
	FreqHz   uint32
	Text     string
}

// numericTable maps a 4-bit BCD nibble to the character POCSAG numeric
// paging conventionally assigns it; digits 0-9 plus four punctuation
// codes and a space, per the common encoder convention (the protocol
// itself only standardizes the digit nibbles, 0-9).
var numericTable = [16]byte{
	'0', '1', '2', '3', '4', '5', '6', '7',
	'8', '9', '*', 'U', ' ', '-', ')', '(',
}

func reverseBits7(v uint8) uint8 {
	var r uint8
	for i := 0; i < 7; i++ {
		r <<= 1
		r |= v & 1
		v >>= 1
	}
	return r
}

// pendingMessage accumulates the message codewords that follow an address
// codeword, until the next address codeword or end of batch closes it.
type pendingMessage struct {
	capcode  uint32
	function uint8
	bits     []bool
}

func (p *pendingMessage) pushData20(data20 uint32) {
	for i := 19; i >= 0; i-- {
		p.bits = append(p.bits, (data20>>uint(i))&1 != 0)
	}
}

func (p *pendingMessage) decodeNumeric() string {
	out := make([]byte, 0, len(p.bits)/4)
	for i := 0; i+4 <= len(p.bits); i += 4 {
		var n uint8
		for j := 0; j < 4; j++ {
			n <<= 1
			if p.bits[i+j] {
				n |= 1
			}
		}
		out = append(out, numericTable[n])
	}
	return string(out)
}

func (p *pendingMessage) decodeAlpha() string {
	out := make([]byte, 0, len(p.bits)/7)
	for i := 0; i+7 <= len(p.bits); i += 7 {
		var n uint8
		for j := 0; j < 7; j++ {
			n <<= 1
			if p.bits[i+j] {
				n |= 1
			}
		}
		c := reverseBits7(n)
		if c == 0 {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

// alphaFunction is the function-bit value conventionally used by POCSAG
// encoders to mark a page as alphanumeric rather than numeric/tone-only.
const alphaFunction = 3

type decoderState int

const (
	stateSyncSearch decoderState = iota
	stateBatch
)

// Decoder consumes a hard-decision, bit-synchronized POCSAG bitstream:
// sync-word acquisition, batch/frame/codeword framing, BCH(31,21)
// error correction, and address/message codeword reassembly into
// complete pages.
type Decoder struct {
	sync  *SyncDetector
	state decoderState

	codewordIdx int
	bitBuf      uint32
	bitsInWord  int

	current *pendingMessage

	baudRate    uint16
	freqHz      uint32
	skipBCH     bool
	onNumeric   func(NumericMessage)
	onAlpha     func(AlphaMessage)
}

// NewDecoder returns a decoder searching for a batch sync word. skipBCH
// disables BCH error correction (codewords must match exactly), matching
// pager_pocsag_new's diagnostic escape hatch.
func NewDecoder(baudRate uint16, freqHz uint32, skipBCH bool, onNumeric func(NumericMessage), onAlpha func(AlphaMessage)) *Decoder {
	return &Decoder{
		sync:      NewSyncDetector(),
		baudRate:  baudRate,
		freqHz:    freqHz,
		skipBCH:   skipBCH,
		onNumeric: onNumeric,
		onAlpha:   onAlpha,
	}
}

// PushBit feeds one hard-decision bit at the POCSAG baud rate.
func (d *Decoder) PushBit(bit bool) {
	switch d.state {
	case stateSyncSearch:
		if d.sync.PushBit(bit) {
			d.finalizeCurrent()
			d.state = stateBatch
			d.codewordIdx = 0
			d.bitBuf = 0
			d.bitsInWord = 0
		}
	case stateBatch:
		d.bitBuf <<= 1
		if bit {
			d.bitBuf |= 1
		}
		d.bitsInWord++
		if d.bitsInWord < 32 {
			return
		}
		d.processCodeword(d.bitBuf)
		d.bitBuf = 0
		d.bitsInWord = 0
		d.codewordIdx++
		if d.codewordIdx >= CodewordsPerBatch {
			d.finalizeCurrent()
			d.state = stateSyncSearch
			d.sync.Reset()
		}
	}
}

func (d *Decoder) processCodeword(codeword uint32) {
	if codeword == IdleCodeword {
		return
	}

	var data21 uint32
	if d.skipBCH {
		data21 = codeword >> 11
	} else {
		got, _, ok := Decode(codeword >> 1)
		if !ok {
			return
		}
		data21 = got
	}

	flag := (data21 >> 20) & 1
	data20 := data21 & 0xfffff

	if flag == 0 {
		d.finalizeCurrent()
		frameIdx := uint32(d.codewordIdx / CodewordsPerFrame)
		addr18 := data20 >> 2
		function := uint8(data20 & 0x3)
		capcode := (addr18 << 3) | frameIdx
		d.current = &pendingMessage{capcode: capcode, function: function}
		return
	}

	if d.current != nil {
		d.current.pushData20(data20)
	}
}

func (d *Decoder) finalizeCurrent() {
	if d.current == nil {
		return
	}
	cur := d.current
	d.current = nil

	if cur.function == alphaFunction {
		if d.onAlpha != nil {
			d.onAlpha(AlphaMessage{
				BaudRate: d.baudRate,
				Capcode:  cur.capcode,
				Function: cur.function,
				FreqHz:   d.freqHz,
				Text:     cur.decodeAlpha(),
			})
		}
		return
	}
	if d.onNumeric != nil {
		d.onNumeric(NumericMessage{
			BaudRate: d.baudRate,
			Capcode:  cur.capcode,
			Function: cur.function,
			FreqHz:   d.freqHz,
			Digits:   cur.decodeNumeric(),
		})
	}
}

// Reset returns the decoder to its initial sync-searching state,
// discarding any in-progress message.
func (d *Decoder) Reset() {
	d.sync.Reset()
	d.state = stateSyncSearch
	d.codewordIdx = 0
	d.bitBuf = 0
	d.bitsInWord = 0
	d.current = nil
}
