// Package dsp implements the fixed-point filtering stages of the pipeline:
// Q.15/Q.30 arithmetic, a direct FIR with an optional phase derotator, a
// polyphase rational resampler (real and complex), and a DC blocker. All of
// it is grounded on filter/complex.h, filter/polyphase_fir*.h and
// filter/dc_blocker.h, rewritten from the fixed-point C into Go newtypes with
// explicit conversions instead of bare int16_t/int32_t aliasing.
package dsp

// Q15 is a signed Q.15 fixed-point value: 1 sign bit, 15 fractional bits,
// representing the range [-1, 1) in steps of 2^-15.
type Q15 int16

// Q30 is the Q.30 accumulator format produced by multiplying two Q15 values.
type Q30 int32

// qRoundShift is the shift used to round a Q30 product back down to Q15.
const qRoundShift = 15

// RoundQ30ToQ15 rounds a Q30 accumulator to the nearest Q15 value, breaking
// ties by examining the bit just below the shift point (round-half-up: an
// exact half rounds toward +infinity).
func RoundQ30ToQ15(a Q30) Q15 {
	return Q15((a >> qRoundShift) + ((a >> (qRoundShift - 1)) & 1))
}

// MulQ15ToQ30 multiplies two Q15 values, returning the full-precision Q30
// product without rounding.
func MulQ15ToQ30(a, b Q15) Q30 {
	return Q30(a) * Q30(b)
}

// MulQ15 multiplies two Q15 values and rounds the result back to Q15.
func MulQ15(a, b Q15) Q15 {
	return RoundQ30ToQ15(MulQ15ToQ30(a, b))
}

// Complex15 is a complex sample with Q15 real/imaginary components.
type Complex15 struct {
	Re, Im Q15
}

// Complex30 is a complex accumulator with Q30 real/imaginary components.
type Complex30 struct {
	Re, Im Q30
}

// MulToQ30 computes the complex product a*b at full Q30 precision:
//
//	re = a.re*b.re - a.im*b.im
//	im = a.re*b.im + a.im*b.re
func MulToQ30(a, b Complex15) Complex30 {
	return Complex30{
		Re: MulQ15ToQ30(a.Re, b.Re) - MulQ15ToQ30(a.Im, b.Im),
		Im: MulQ15ToQ30(a.Re, b.Im) + MulQ15ToQ30(a.Im, b.Re),
	}
}

// Mul computes the complex product a*b, rounded back to Q15.
func Mul(a, b Complex15) Complex15 {
	p := MulToQ30(a, b)
	return Complex15{Re: RoundQ30ToQ15(p.Re), Im: RoundQ30ToQ15(p.Im)}
}

// MulAccumulate adds a*b (full Q30 precision) onto an existing accumulator.
func (acc Complex30) MulAccumulate(a, b Complex15) Complex30 {
	p := MulToQ30(a, b)
	return Complex30{Re: acc.Re + p.Re, Im: acc.Im + p.Im}
}

// Round rounds a Q30 complex accumulator down to Q15.
func (acc Complex30) Round() Complex15 {
	return Complex15{Re: RoundQ30ToQ15(acc.Re), Im: RoundQ30ToQ15(acc.Im)}
}

// FloatToQ15 converts a float64 in [-1, 1) to Q15, saturating at the format's
// limits. Intended for loading filter coefficients and test fixtures, not
// for use in any per-sample hot path.
func FloatToQ15(v float64) Q15 {
	scaled := v * float64(int32(1)<<15)
	switch {
	case scaled >= float64(maxQ15):
		return maxQ15
	case scaled <= float64(minQ15):
		return minQ15
	default:
		return Q15(scaled)
	}
}

// ToFloat converts a Q15 value back to a float64 in [-1, 1).
func (q Q15) ToFloat() float64 {
	return float64(q) / float64(int32(1)<<15)
}

const (
	maxQ15 Q15 = 1<<15 - 1
	minQ15 Q15 = -(1 << 15)
)
