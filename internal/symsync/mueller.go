// Package symsync implements Mueller-Müller symbol timing recovery, ported
// from pager/mueller_muller.c with the fixed-size in/out buffer contract
// rewritten as a slice-based streaming API; the recurrence itself
// (error term, PI loop, floor-advance) is kept identical to the reference.
package symsync

import (
	"math"

	"github.com/tsl-sdr/gochannelizer/internal/dsp"
)

// BitSync recovers symbol timing from a baseband-rate sample stream using
// the Mueller-Müller timing error detector and a proportional-integral loop
// steering the sampling instant.
type BitSync struct {
	kw, km             float64
	errorMin, errorMax float64
	samplesPerBit      float64

	nextOffset float64
	w, m       float64
	lastSample float64
}

// NewBitSync creates a symbol synchronizer expecting samplesPerBit samples
// per symbol, with loop gains kw (timing error -> step size) and km
// (amplitude -> step size), and step-size clamp [errorMin, errorMax].
func NewBitSync(samplesPerBit, kw, km, errorMin, errorMax float64) *BitSync {
	return &BitSync{
		kw:            kw,
		km:            km,
		errorMin:      errorMin,
		errorMax:      errorMax,
		samplesPerBit: samplesPerBit,
		w:             samplesPerBit,
		m:             samplesPerBit,
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Process consumes samples at the incoming sample rate and appends one
// decision (the raw Q15 value at the recovered symbol instant) per detected
// symbol to out. Fractional timing state carries over across calls via
// nextOffset/w/m exactly as in the reference implementation.
func (b *BitSync) Process(samples []dsp.Q15, out []dsp.Q15) []dsp.Q15 {
	curSample := b.nextOffset
	nSamples := float64(len(samples))
	w, m := b.w, b.m

	for curSample < nSamples {
		idx := int(curSample + 0.5)
		if idx < 0 {
			idx = 0
		}
		if idx >= len(samples) {
			break
		}
		sample := samples[idx].ToFloat()

		out = append(out, dsp.FloatToQ15(sample))

		wError := sign(b.lastSample)*sample - sign(sample)*b.lastSample

		w += wError * b.kw
		if w < b.errorMin {
			w = b.errorMin
		} else if w > b.errorMax {
			w = b.errorMax
		}

		m += w + b.km*sample
		step := math.Floor(m)
		curSample += step
		m -= step

		b.lastSample = sample
	}

	b.nextOffset = curSample - nSamples
	b.w = w
	b.m = m

	return out
}

// Reset returns the loop to its initial ideal-step-size state.
func (b *BitSync) Reset() {
	b.nextOffset = 0
	b.w = b.samplesPerBit
	b.m = b.samplesPerBit
	b.lastSample = 0
}

// IdealStepSize returns the configured samples-per-symbol the loop was
// initialized with.
func (b *BitSync) IdealStepSize() float64 { return b.samplesPerBit }

// StepSize returns the loop's current (post-clamp) step size estimate.
func (b *BitSync) StepSize() float64 { return b.w }
