// Package flex decodes FLEX paging frames: biphase sync acquisition, the
// Frame Information Word (FIW), 8×32-bit block deinterleaving shared with
// POCSAG's BCH(31,21) codec, and address/vector/message word reassembly
// into capcode-addressed pages.
package flex

import (
	"math/bits"

	"github.com/tsl-sdr/gochannelizer/internal/pocsag"
)

// sync1600 is the 32-bit sync codeword used by 1600 bps, 2-level FLEX
// after its leading dotting/bit-sync pattern, grounded on the standard
// FLEX air-interface sync word (only the 1600bps 2-level mode is
// implemented; 3200/6400bps 4-level framing is out of scope).
const sync1600 = 0xa6c6aaaa

const maxSyncHammingDistance = 3

// SyncDetector slides a 32-bit window looking for the FLEX sync codeword.
type SyncDetector struct {
	window uint32
	filled int
}

// NewSyncDetector returns an idle sync detector.
func NewSyncDetector() *SyncDetector { return &SyncDetector{} }

// PushBit feeds one hard-decision bit. It returns true once the trailing
// 32 bits match the FLEX sync codeword within tolerance.
func (d *SyncDetector) PushBit(bit bool) bool {
	d.window <<= 1
	if bit {
		d.window |= 1
	}
	if d.filled < 32 {
		d.filled++
		if d.filled < 32 {
			return false
		}
	}
	return bits.OnesCount32(d.window^sync1600) <= maxSyncHammingDistance
}

// Reset clears the sliding window.
func (d *SyncDetector) Reset() {
	d.window = 0
	d.filled = 0
}

// FIW is a decoded Frame Information Word: the hyperframe position (cycle,
// frame) and modulation indicator that precede every FLEX frame's data.
type FIW struct {
	FrameNumber int // 0-127
	CycleNumber int // 0-14
	LevelCode   int // modulation/level indicator bits
}

// DecodeFIW error-corrects and unpacks a 32-bit FIW codeword, sharing the
// BCH(31,21) codec with POCSAG (the FIW is itself a BCH(31,21) codeword
// plus an overall parity bit, same as a POCSAG codeword).
func DecodeFIW(raw uint32) (FIW, bool) {
	data21, _, ok := pocsag.Decode(raw >> 1)
	if !ok {
		return FIW{}, false
	}
	return FIW{
		FrameNumber: int((data21 >> 14) & 0x7f),
		CycleNumber: int((data21 >> 10) & 0xf),
		LevelCode:   int((data21 >> 8) & 0x3),
	}, true
}
