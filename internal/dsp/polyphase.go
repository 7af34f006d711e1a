package dsp

import (
	"math"

	"github.com/tsl-sdr/gochannelizer/internal/result"
)

// PolyphaseFIR is a rational resampler: L phase filters of M taps each,
// changing the sample rate from f_in to I/D * f_in. Grounded on the
// reference filter library's polyphase_fir, whose phase/offset bookkeeping
// (last_phase, sample_offset) is reproduced here as posAccum/pending.
type PolyphaseFIR struct {
	phases        [][]Q15 // L filters of M taps each
	interpolation int
	decimation    int

	history []Q15 // ring of the last M consumed input samples
	histPos int

	pending  []Q15
	posAccum int // accumulated fractional position, in units of 1/interpolation
}

// NewPolyphaseFIR builds a resampler from a flat prototype filter of
// nrCoeffs taps, split into `interpolation` phase banks of
// ceil(nrCoeffs/interpolation) taps each (zero-padded), where phase p's
// j'th coefficient is coeffs[j*interpolation+p].
func NewPolyphaseFIR(coeffs []Q15, interpolation, decimation int) (*PolyphaseFIR, error) {
	if interpolation <= 0 || decimation <= 0 {
		return nil, result.New("dsp", result.InvalidArgument, "interpolation and decimation must be positive")
	}
	if len(coeffs) == 0 {
		return nil, result.New("dsp", result.InvalidArgument, "polyphase FIR needs at least one coefficient")
	}

	tapsPerPhase := (len(coeffs) + interpolation - 1) / interpolation
	phases := make([][]Q15, interpolation)
	for p := range phases {
		phases[p] = make([]Q15, tapsPerPhase)
	}
	for i, c := range coeffs {
		p := i % interpolation
		j := i / interpolation
		phases[p][j] = c
	}

	return &PolyphaseFIR{
		phases:        phases,
		interpolation: interpolation,
		decimation:    decimation,
		history:       make([]Q15, tapsPerPhase),
	}, nil
}

// Push queues one input sample for later processing.
func (f *PolyphaseFIR) Push(s Q15) { f.pending = append(f.pending, s) }

// CanProcess reports whether enough queued input exists to produce at least
// one more output sample.
func (f *PolyphaseFIR) CanProcess() bool {
	needed := (f.posAccum + f.decimation) / f.interpolation
	return len(f.pending) >= needed
}

// Process emits every output sample that can be produced from the currently
// queued input, appending them to out. Leftover queued input below the
// threshold for another output carries over to the next call.
func (f *PolyphaseFIR) Process(out []Q15) []Q15 {
	tapsPerPhase := len(f.history)

	for {
		next := f.posAccum + f.decimation
		consume := next / f.interpolation
		if len(f.pending) < consume {
			break
		}

		for i := 0; i < consume; i++ {
			f.histPos = (f.histPos + 1) % tapsPerPhase
			f.history[f.histPos] = f.pending[i]
		}
		f.pending = f.pending[consume:]
		f.posAccum = next % f.interpolation

		phase := f.phases[f.posAccum]
		var acc Q30
		for i, tap := range phase {
			idx := (f.histPos - i + tapsPerPhase) % tapsPerPhase
			acc += MulQ15ToQ30(tap, f.history[idx])
		}
		out = append(out, RoundQ30ToQ15(acc))
	}

	return out
}

// Full reports whether the pending queue has grown large enough that it
// should be drained before accepting more input (a backpressure signal for
// callers feeding buffers faster than Process drains them).
func (f *PolyphaseFIR) Full(limit int) bool { return len(f.pending) >= limit }

func (f *PolyphaseFIR) Interpolation() int { return f.interpolation }
func (f *PolyphaseFIR) Decimation() int    { return f.decimation }

// PolyphaseComplexFIR is the complex counterpart of PolyphaseFIR, with an
// optional input-side phase derotator ahead of the phase-bank filtering
// (used to bring a bandpass channel to baseband before resampling), grounded
// on the reference filter library's polyphase_cfir.
type PolyphaseComplexFIR struct {
	phases        [][]Complex15
	interpolation int
	decimation    int

	history []Complex15
	histPos int

	pending  []Complex15
	posAccum int

	rotatorStep  complexUnit
	rotatorPhase complexUnit
	derotate     bool
}

// NewPolyphaseComplexFIR mirrors NewPolyphaseFIR for complex coefficients,
// and optionally configures a derotator shifting freqShiftHz of the input
// signal (sampled at sampleRateHz) to baseband before filtering.
func NewPolyphaseComplexFIR(coeffs []Complex15, interpolation, decimation int, freqShiftHz, sampleRateHz float64) (*PolyphaseComplexFIR, error) {
	if interpolation <= 0 || decimation <= 0 {
		return nil, result.New("dsp", result.InvalidArgument, "interpolation and decimation must be positive")
	}
	if len(coeffs) == 0 {
		return nil, result.New("dsp", result.InvalidArgument, "polyphase complex FIR needs at least one coefficient")
	}

	tapsPerPhase := (len(coeffs) + interpolation - 1) / interpolation
	phases := make([][]Complex15, interpolation)
	for p := range phases {
		phases[p] = make([]Complex15, tapsPerPhase)
	}
	for i, c := range coeffs {
		p := i % interpolation
		j := i / interpolation
		phases[p][j] = c
	}

	f := &PolyphaseComplexFIR{
		phases:        phases,
		interpolation: interpolation,
		decimation:    decimation,
		history:       make([]Complex15, tapsPerPhase),
	}

	if freqShiftHz != 0 && sampleRateHz != 0 {
		f.derotate = true
		f.rotatorStep = unitAt(-2 * math.Pi * freqShiftHz / sampleRateHz)
		f.rotatorPhase = unitAt(0)
	}

	return f, nil
}

func (f *PolyphaseComplexFIR) Push(s Complex15) {
	if f.derotate {
		inF := complexUnit{Re: s.Re.ToFloat(), Im: s.Im.ToFloat()}
		rotated := inF.mul(f.rotatorPhase)
		s = Complex15{Re: FloatToQ15(rotated.Re), Im: FloatToQ15(rotated.Im)}
		f.rotatorPhase = f.rotatorPhase.mul(f.rotatorStep)
		if mag := math.Hypot(f.rotatorPhase.Re, f.rotatorPhase.Im); mag != 0 {
			f.rotatorPhase.Re /= mag
			f.rotatorPhase.Im /= mag
		}
	}
	f.pending = append(f.pending, s)
}

func (f *PolyphaseComplexFIR) CanProcess() bool {
	needed := (f.posAccum + f.decimation) / f.interpolation
	return len(f.pending) >= needed
}

func (f *PolyphaseComplexFIR) Process(out []Complex15) []Complex15 {
	tapsPerPhase := len(f.history)

	for {
		next := f.posAccum + f.decimation
		consume := next / f.interpolation
		if len(f.pending) < consume {
			break
		}

		for i := 0; i < consume; i++ {
			f.histPos = (f.histPos + 1) % tapsPerPhase
			f.history[f.histPos] = f.pending[i]
		}
		f.pending = f.pending[consume:]
		f.posAccum = next % f.interpolation

		phase := f.phases[f.posAccum]
		var acc Complex30
		for i, tap := range phase {
			idx := (f.histPos - i + tapsPerPhase) % tapsPerPhase
			acc = acc.MulAccumulate(tap, f.history[idx])
		}
		out = append(out, acc.Round())
	}

	return out
}

func (f *PolyphaseComplexFIR) Full(limit int) bool { return len(f.pending) >= limit }

func (f *PolyphaseComplexFIR) Interpolation() int { return f.interpolation }
func (f *PolyphaseComplexFIR) Decimation() int    { return f.decimation }
