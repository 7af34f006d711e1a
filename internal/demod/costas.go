package demod

import (
	"math"

	"github.com/tsl-sdr/gochannelizer/internal/dsp"
)

// CostasState distinguishes whether the loop has converged onto the carrier
// or is still searching for it.
type CostasState int

const (
	Acquiring CostasState = iota
	Locked
)

func (s CostasState) String() string {
	if s == Locked {
		return "locked"
	}
	return "acquiring"
}

// CostasDemod is a two-branch I/Q Costas loop FSK demodulator: a local NCO
// mixes the input toward baseband, a proportional-integral loop filter
// steers the NCO frequency from the phase-detector error, and a hysteresis
// rule over the recent error magnitude promotes/demotes between Acquiring
// and Locked. Grounded on multifm/costas_demod.h's parameterization
// (f_shift, alpha, beta, e_max).
type CostasDemod struct {
	alpha, beta float64 // PI loop gains
	eMax        float64 // error magnitude threshold distinguishing lock from noise

	ncoPhase float64
	ncoFreq  float64 // radians/sample; starts at 2*pi*f_shift/sampleRate

	integrator float64

	state       CostasState
	lockStreak  int
	unlockCount int
}

// lockHysteresis is the number of consecutive low-error samples required to
// transition Acquiring -> Locked, and the number of consecutive high-error
// samples required to transition back.
const lockHysteresis = 64

// NewCostasDemod builds a Costas loop. fShiftHz/sampleRateHz set the NCO's
// initial free-running frequency; alpha and beta are the proportional and
// integral loop gains; eMax is the phase-error magnitude below which samples
// count toward acquiring lock.
func NewCostasDemod(fShiftHz, sampleRateHz, alpha, beta, eMax float64) *CostasDemod {
	freq := 0.0
	if sampleRateHz != 0 {
		freq = 2 * math.Pi * fShiftHz / sampleRateHz
	}
	return &CostasDemod{
		alpha:   alpha,
		beta:    beta,
		eMax:    eMax,
		ncoFreq: freq,
		state:   Acquiring,
	}
}

// Process runs the Costas loop over in, appending one real Q15 decision
// statistic per input sample to out.
func (c *CostasDemod) Process(in []dsp.Complex15, out []dsp.Q15) []dsp.Q15 {
	for _, s := range in {
		nco := dsp.Complex15{
			Re: dsp.FloatToQ15(math.Cos(c.ncoPhase)),
			Im: dsp.FloatToQ15(-math.Sin(c.ncoPhase)),
		}
		mixed := dsp.Mul(s, nco)

		i, q := mixed.Re.ToFloat(), mixed.Im.ToFloat()

		// Phase detector: the classic Costas I*Q product error term.
		err := i * q

		c.integrator += c.beta * err
		c.ncoFreq += c.alpha*err + c.integrator
		c.ncoPhase += c.ncoFreq
		if c.ncoPhase > math.Pi {
			c.ncoPhase -= 2 * math.Pi
		} else if c.ncoPhase < -math.Pi {
			c.ncoPhase += 2 * math.Pi
		}

		c.updateLockState(err)

		out = append(out, dsp.FloatToQ15(clamp(i, -1, 1)))
	}
	return out
}

func (c *CostasDemod) updateLockState(err float64) {
	if math.Abs(err) <= c.eMax {
		c.lockStreak++
		c.unlockCount = 0
		if c.state == Acquiring && c.lockStreak >= lockHysteresis {
			c.state = Locked
		}
	} else {
		c.unlockCount++
		c.lockStreak = 0
		if c.state == Locked && c.unlockCount >= lockHysteresis {
			c.state = Acquiring
		}
	}
}

// State reports whether the loop currently considers itself locked.
func (c *CostasDemod) State() CostasState { return c.state }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
