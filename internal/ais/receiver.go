package ais

// receiverState mirrors ais_demod_priv.h's ais_demod_state: search for a
// preamble, or receive a frame once one phase has locked onto it.
type receiverState int

const (
	stateSearchSync receiverState = iota
	stateReceiving
)

// maxSamplesWithoutFrame (in decoded bits) bounds how long the receiver will
// stay locked to a phase that never yields a complete, CRC-valid frame
// before giving up and re-searching for a preamble.
const maxSamplesWithoutFrame = 2 * maxPacketBits

// Receiver demodulates a stream of hard-decision (sign-of-discriminator)
// samples into AIS messages. It owns the blind preamble search and, once
// locked, the bit-destuffing frame assembler for the matched phase.
type Receiver struct {
	state    receiverState
	detector *PreambleDetector
	frame    *FrameAssembler

	// totalSamples counts every raw sample seen since the receiver was
	// created (or last Reset), never reset on a search->receiving
	// transition: the phase a bit lands on is totalSamples%decimationRate,
	// a property of the sample stream, not of when we happened to lock.
	totalSamples int
	lockedPhase  int
	bitsSinceLock int

	prevDecimatedSample bool
	hasPrevDecimated    bool

	onMessage func(Message)
}

// NewReceiver returns an idle receiver. onMessage is invoked synchronously,
// from within PushSample, for every successfully decoded message.
func NewReceiver(onMessage func(Message)) *Receiver {
	return &Receiver{
		state:     stateSearchSync,
		detector:  NewPreambleDetector(),
		frame:     NewFrameAssembler(),
		onMessage: onMessage,
	}
}

// PushSample feeds one raw hard-decision sample at the full (pre-bit-sync)
// input sample rate.
func (r *Receiver) PushSample(raw bool) {
	phase := r.totalSamples % decimationRate
	r.totalSamples++

	switch r.state {
	case stateSearchSync:
		if lockedPhase, locked := r.detector.PushSample(raw); locked {
			r.lockedPhase = lockedPhase
			r.bitsSinceLock = 0
			// The sample that just triggered the lock is the reference
			// level for NRZI decoding the next bit; it must not be
			// re-primed from scratch or the first data bit after the
			// flag is silently lost.
			r.prevDecimatedSample = raw
			r.hasPrevDecimated = true
			r.state = stateReceiving
			r.frame = NewFrameAssembler()
			// The preamble detector matched the flag on its own shift
			// register; replay that fact into the fresh assembler rather
			// than requiring the flag bits to reappear in the stream.
			r.frame.SeedFlag()
		}
	case stateReceiving:
		if phase != r.lockedPhase {
			return
		}

		if !r.hasPrevDecimated {
			r.prevDecimatedSample = raw
			r.hasPrevDecimated = true
			return
		}
		bit := raw == r.prevDecimatedSample // NRZI: no transition decodes to 1
		r.prevDecimatedSample = raw
		r.bitsSinceLock++

		if payload, ok := r.frame.PushBit(bit); ok {
			if msg := Decode(payload); msg != nil && r.onMessage != nil {
				r.onMessage(msg)
			}
		}

		if r.bitsSinceLock > maxSamplesWithoutFrame {
			r.state = stateSearchSync
			r.detector.Reset()
		}
	}
}

// Reset returns the receiver to its initial searching state.
func (r *Receiver) Reset() {
	r.state = stateSearchSync
	r.detector.Reset()
	r.frame = NewFrameAssembler()
	r.totalSamples = 0
	r.bitsSinceLock = 0
}
