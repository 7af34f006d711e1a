package dsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func impulseTaps() []Q15 {
	return []Q15{FloatToQ15(0.1), FloatToQ15(0.2), FloatToQ15(0.4), FloatToQ15(0.2), FloatToQ15(0.1)}
}

func TestDirectFIRImpulseResponse(t *testing.T) {
	taps := impulseTaps()
	fir, err := NewDirectFIR(taps, 1, 0, 0)
	require.NoError(t, err)

	impulse := make([]Complex15, len(taps)+4)
	impulse[0] = Complex15{Re: FloatToQ15(0.9), Im: 0}

	var out []Complex15
	out = fir.Process(impulse, out)

	require.Len(t, out, len(impulse))
	for i, tap := range taps {
		require.InDelta(t, tap.ToFloat()*impulse[0].Re.ToFloat(), out[i].Re.ToFloat(), 0.002)
	}
	for i := len(taps); i < len(out); i++ {
		require.InDelta(t, 0, out[i].Re.ToFloat(), 1e-6)
	}
}

func TestDirectFIRDecimationRatio(t *testing.T) {
	taps := impulseTaps()
	const decimate = 4
	fir, err := NewDirectFIR(taps, decimate, 0, 0)
	require.NoError(t, err)

	in := make([]Complex15, decimate*10)
	for i := range in {
		in[i] = Complex15{Re: FloatToQ15(0.3), Im: 0}
	}

	var out []Complex15
	out = fir.Process(in, out)

	require.Len(t, out, 10)
}

func TestDirectFIRRejectsInvalidConfig(t *testing.T) {
	_, err := NewDirectFIR(nil, 1, 0, 0)
	require.Error(t, err)

	_, err = NewDirectFIR(impulseTaps(), 0, 0, 0)
	require.Error(t, err)
}

func TestDirectFIRDerotatorShiftsDCToSidebands(t *testing.T) {
	// A constant (DC) input run through a derotator should, after enough
	// samples, no longer sit at DC: the rotator phase should have advanced
	// measurably away from its start.
	taps := []Q15{FloatToQ15(1.0)}
	fir, err := NewDirectFIR(taps, 1, 1000, 8000)
	require.NoError(t, err)

	in := make([]Complex15, 4)
	for i := range in {
		in[i] = Complex15{Re: FloatToQ15(0.5), Im: 0}
	}

	var out []Complex15
	out = fir.Process(in, out)
	require.Len(t, out, len(in))

	require.NotEqual(t, out[0].Im, out[1].Im)
}
