// Package demod implements the phase-discriminator FM demodulator and the
// Costas-loop FSK demodulator, carrying state across buffer boundaries the
// way the teacher's per-buffer demodulator functions do, grounded on
// multifm/fm_demod.h and multifm/costas_demod.h for the processing contract.
package demod

import (
	"math"

	"github.com/tsl-sdr/gochannelizer/internal/dsp"
)

// FMDemod is a phase discriminator: y[n] = atan2(Im(x[n]*conj(x[n-1])),
// Re(x[n]*conj(x[n-1]))). State is just the last input sample, carried
// across Process calls so buffer boundaries don't introduce a discontinuity.
type FMDemod struct {
	prev    dsp.Complex15
	hasPrev bool
}

// NewFMDemod returns a phase discriminator with no prior sample.
func NewFMDemod() *FMDemod { return &FMDemod{} }

// Process demodulates in, appending one real Q15 sample per input sample to
// out.
func (f *FMDemod) Process(in []dsp.Complex15, out []dsp.Q15) []dsp.Q15 {
	for _, s := range in {
		if !f.hasPrev {
			f.prev = s
			f.hasPrev = true
			out = append(out, 0)
			continue
		}

		// x[n] * conj(x[n-1])
		re := float64(s.Re)*float64(f.prev.Re) + float64(s.Im)*float64(f.prev.Im)
		im := float64(s.Im)*float64(f.prev.Re) - float64(s.Re)*float64(f.prev.Im)

		angle := fastAtan2(im, re)
		out = append(out, dsp.FloatToQ15(angle/math.Pi))

		f.prev = s
	}
	return out
}

// Reset clears the carried-over previous sample, as if Process had never
// been called.
func (f *FMDemod) Reset() { f.prev = dsp.Complex15{}; f.hasPrev = false }

// fastAtan2 is a bounded-error polynomial approximation of atan2, good to
// within roughly 0.005 radians, avoiding the full math.Atan2 call in a
// per-sample hot path while staying accurate enough for FM demodulation.
func fastAtan2(y, x float64) float64 {
	if x == 0 && y == 0 {
		return 0
	}

	abs := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	}

	ax, ay := abs(x), abs(y)
	var angle float64
	if ax > ay {
		r := ay / ax
		angle = polyAtan(r)
		if x < 0 {
			angle = math.Pi - angle
		}
	} else {
		if ay == 0 {
			return 0
		}
		r := ax / ay
		angle = math.Pi/2 - polyAtan(r)
		if x < 0 {
			angle = math.Pi - angle
		}
	}

	if y < 0 {
		angle = -angle
	}
	return angle
}

// polyAtan approximates atan(r) for r in [0, 1] to within ~0.005 radians.
func polyAtan(r float64) float64 {
	return r * (math.Pi/4 + 0.273*(1-r))
}
