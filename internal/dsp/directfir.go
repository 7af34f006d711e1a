package dsp

import (
	"math"

	"github.com/tsl-sdr/gochannelizer/internal/result"
)

// DirectFIR is a direct-form complex FIR with an optional phase derotator
// ahead of the tap multiply, decimating its input by a fixed factor. Grounded
// on the reference filter library's direct FIR plus the derotation step
// multifm's receiver chain performs ahead of channel filtering (mixing a
// channel off DC before the decimating lowpass).
type DirectFIR struct {
	taps []Q15 // real, symmetric or not; length == len(ring)

	ring []Complex15 // circular history buffer, length == len(taps), zero-initialized
	pos  int         // index of the most recently pushed sample

	decimate int
	phase    int // samples since last emitted output, [0, decimate)

	// Phase derotator: rotates each input sample by an incrementing angle
	// before it enters the tap history, used to shift a channel of interest
	// onto DC ahead of filtering.
	rotatorStep  complexUnit
	rotatorPhase complexUnit
	derotate     bool
}

// complexUnit is a unit-magnitude complex phasor stored as float64; the
// derotator runs at float precision since its angle accumulates over
// arbitrarily many samples and small per-step error must not accumulate in
// fixed point the way a one-shot Q15 multiply's rounding would.
type complexUnit struct {
	Re, Im float64
}

func unitAt(radians float64) complexUnit {
	return complexUnit{Re: math.Cos(radians), Im: math.Sin(radians)}
}

func (u complexUnit) mul(v complexUnit) complexUnit {
	return complexUnit{
		Re: u.Re*v.Re - u.Im*v.Im,
		Im: u.Re*v.Im + u.Im*v.Re,
	}
}

// NewDirectFIR builds a direct FIR with the given real Q15 taps, decimating
// its output by decimate. If derotateHz and sampleRateHz are both nonzero, an
// input-side phase derotator shifts the signal by -derotateHz before
// filtering.
func NewDirectFIR(taps []Q15, decimate int, derotateHz, sampleRateHz float64) (*DirectFIR, error) {
	if len(taps) == 0 {
		return nil, result.New("dsp", result.InvalidArgument, "direct FIR needs at least one tap")
	}
	if decimate <= 0 {
		return nil, result.New("dsp", result.InvalidArgument, "decimate must be positive")
	}

	f := &DirectFIR{
		taps:     append([]Q15(nil), taps...),
		ring:     make([]Complex15, len(taps)),
		decimate: decimate,
	}

	if derotateHz != 0 && sampleRateHz != 0 {
		f.derotate = true
		radiansPerSample := -2 * math.Pi * derotateHz / sampleRateHz
		f.rotatorStep = unitAt(radiansPerSample)
		f.rotatorPhase = unitAt(0)
	}

	return f, nil
}

// Push feeds one input sample into the tap history, derotating first if
// configured. Returns the output sample and true if this push lands on a
// decimation boundary.
func (f *DirectFIR) Push(in Complex15) (Complex15, bool) {
	if f.derotate {
		inF := complexUnit{Re: in.Re.ToFloat(), Im: in.Im.ToFloat()}
		rotated := inF.mul(f.rotatorPhase)
		in = Complex15{Re: FloatToQ15(rotated.Re), Im: FloatToQ15(rotated.Im)}
		f.rotatorPhase = f.rotatorPhase.mul(f.rotatorStep)
		// Renormalize periodically; float64 phasor drift over millions of
		// samples would otherwise slowly grow |rotatorPhase| away from 1.
		mag := math.Hypot(f.rotatorPhase.Re, f.rotatorPhase.Im)
		if mag != 0 {
			f.rotatorPhase.Re /= mag
			f.rotatorPhase.Im /= mag
		}
	}

	f.pos = (f.pos + 1) % len(f.ring)
	f.ring[f.pos] = in

	f.phase++
	emit := f.phase == f.decimate
	if emit {
		f.phase = 0
	}

	if !emit {
		return Complex15{}, false
	}

	var acc Complex30
	n := len(f.ring)
	for i, tap := range f.taps {
		sampleIdx := (f.pos - i + n) % n
		s := f.ring[sampleIdx]
		acc.Re += MulQ15ToQ30(tap, s.Re)
		acc.Im += MulQ15ToQ30(tap, s.Im)
	}

	return acc.Round(), true
}

// Process runs Push over every input sample, appending each decimation-
// boundary output to out.
func (f *DirectFIR) Process(in []Complex15, out []Complex15) []Complex15 {
	for _, s := range in {
		if o, ok := f.Push(s); ok {
			out = append(out, o)
		}
	}
	return out
}

// Taps returns the filter's coefficients.
func (f *DirectFIR) Taps() []Q15 { return f.taps }

// Decimation returns the configured decimation factor.
func (f *DirectFIR) Decimation() int { return f.decimate }
