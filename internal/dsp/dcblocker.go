package dsp

// DCBlocker removes a DC bias from a real sample stream using a
// differentiator ahead of a leaky integrator, run entirely in Q.15/Q.30
// fixed point. Grounded on filter/dc_blocker.h; the recurrence is kept
// identical to the reference (including its particular choice of which
// terms stay in Q.30 vs Q.15) since the exact fixed-point behavior, not just
// the transfer function, is part of what downstream demodulators expect.
type DCBlocker struct {
	p    Q30 // pole coefficient, (1-pole) scaled to the Q.15 shift, held in a Q30-width field
	xN1  Q30 // x[n-1], in Q.30
	yN1  Q30 // y[n-1], in Q.15 (held as Q30 width to match the reference's int32_t)
	acc  Q30 // running accumulator, in Q.30
}

// NewDCBlocker creates a DC blocker with the given integrator pole, where
// pole is in (0, 1) and closer to 1 means slower DC tracking (a narrower
// notch at DC).
func NewDCBlocker(pole float64) *DCBlocker {
	return &DCBlocker{
		p: Q30(int32((1.0 - pole) * float64(int32(1)<<qRoundShift))),
	}
}

// Apply runs the DC blocker over samples in place.
func (d *DCBlocker) Apply(samples []Q15) {
	for i, s := range samples {
		d.acc -= d.xN1
		d.xN1 = Q30(s) << qRoundShift
		d.acc += d.xN1 - d.p*d.yN1
		d.yN1 = d.acc >> qRoundShift
		samples[i] = Q15(d.yN1)
	}
}

// Reset returns the blocker to its initial (zero-history) state, leaving the
// configured pole unchanged.
func (d *DCBlocker) Reset() {
	d.xN1, d.yN1, d.acc = 0, 0, 0
}
