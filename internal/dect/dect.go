// Package dect extracts DECT frames from a hard-decision bitstream: sync
// word acquisition, the fixed 64-bit A-field, and a B-field whose length
// is selected by the A-field header's field-type indicator.
package dect

import "encoding/binary"

// FP and PP sync words, searched for independently since either end of a
// DECT link may be the one producing the frame being received.
const (
	FPSync = 0xaaaae98a
	PPSync = 0x55551675
)

const (
	aFieldBytes = 8 // 8-bit header + 40-bit tail + 16-bit CRC
)

// B-field type indicator values from the A-field header, selecting how
// many bytes of B-field follow.
const (
	bFieldNotPresent = 7
	bFieldHalfSlot   = 4
	bFieldDoubleSlot = 2
)

// B-field lengths, in bytes, for each type indicator; anything not one of
// the three special values above is the regular (full-slot) length.
const (
	bFieldLenRegular = 40
	bFieldLenHalf    = 10
	bFieldLenDouble  = 100
)

// AField is a parsed DECT A-field.
type AField struct {
	TailID     uint8
	BFieldType uint8
	Tail       [5]byte
	CRC        uint16
}

func parseAField(raw [aFieldBytes]byte) AField {
	header := raw[0]
	return AField{
		TailID:     (header >> 5) & 0x7,
		BFieldType: (header >> 1) & 0x7,
		Tail:       [5]byte{raw[1], raw[2], raw[3], raw[4], raw[5]},
		CRC:        binary.BigEndian.Uint16(raw[6:8]),
	}
}

func bFieldLengthBytes(bFieldType uint8) int {
	switch bFieldType {
	case bFieldNotPresent:
		return 0
	case bFieldHalfSlot:
		return bFieldLenHalf
	case bFieldDoubleSlot:
		return bFieldLenDouble
	default:
		return bFieldLenRegular
	}
}

// Frame is one extracted DECT frame: its sync word, parsed A-field, and
// raw B-field bytes (nil when the header indicates no B-field).
type Frame struct {
	SyncWord uint32
	A        AField
	B        []byte
}

type frameState int

const (
	stateSyncSearch frameState = iota
	stateAFieldWait
	stateProcessing
)

// Extractor implements the SyncSearch -> AFieldWait -> Processing state
// machine: scan for a sync word, consume the fixed-length A-field, then
// consume whatever B-field length that A-field's header selects.
type Extractor struct {
	state    frameState
	window   uint32
	filled   int
	syncWord uint32

	curByte byte
	curBit  int
	buf     []byte
	need    int

	aField AField

	onFrame func(Frame)
}

// NewExtractor returns an extractor searching for a sync word.
func NewExtractor(onFrame func(Frame)) *Extractor {
	return &Extractor{onFrame: onFrame}
}

// PushBit feeds one hard-decision bit at the DECT symbol rate.
func (e *Extractor) PushBit(bit bool) {
	switch e.state {
	case stateSyncSearch:
		e.window <<= 1
		if bit {
			e.window |= 1
		}
		if e.filled < 32 {
			e.filled++
		}
		if e.filled < 32 {
			return
		}
		if e.window == FPSync || e.window == PPSync {
			e.syncWord = e.window
			e.state = stateAFieldWait
			e.resetByteAccumulator()
			e.need = aFieldBytes
		}

	case stateAFieldWait:
		e.pushRawBit(bit)
		if len(e.buf) < e.need {
			return
		}
		var raw [aFieldBytes]byte
		copy(raw[:], e.buf)
		e.aField = parseAField(raw)

		blen := bFieldLengthBytes(e.aField.BFieldType)
		if blen == 0 {
			e.emit(nil)
			return
		}
		e.resetByteAccumulator()
		e.need = blen
		e.state = stateProcessing

	case stateProcessing:
		e.pushRawBit(bit)
		if len(e.buf) < e.need {
			return
		}
		e.emit(append([]byte(nil), e.buf...))
	}
}

func (e *Extractor) emit(b []byte) {
	if e.onFrame != nil {
		e.onFrame(Frame{SyncWord: e.syncWord, A: e.aField, B: b})
	}
	e.state = stateSyncSearch
	e.window = 0
	e.filled = 0
}

func (e *Extractor) pushRawBit(bit bool) {
	e.curByte <<= 1
	if bit {
		e.curByte |= 1
	}
	e.curBit++
	if e.curBit == 8 {
		e.buf = append(e.buf, e.curByte)
		e.curByte = 0
		e.curBit = 0
	}
}

func (e *Extractor) resetByteAccumulator() {
	e.curByte = 0
	e.curBit = 0
	e.buf = e.buf[:0]
}

// Reset returns the extractor to its initial sync-searching state.
func (e *Extractor) Reset() {
	e.state = stateSyncSearch
	e.window = 0
	e.filled = 0
	e.resetByteAccumulator()
}
