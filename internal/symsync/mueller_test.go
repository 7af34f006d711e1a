package symsync

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsl-sdr/gochannelizer/internal/dsp"
)

func squareWave(samplesPerBit, nBits int) []dsp.Q15 {
	out := make([]dsp.Q15, samplesPerBit*nBits)
	bit := 1.0
	for i := range out {
		if i%samplesPerBit == 0 {
			bit = -bit
		}
		out[i] = dsp.FloatToQ15(bit * 0.8)
	}
	return out
}

func TestBitSyncConvergesToIdealStepSize(t *testing.T) {
	const samplesPerBit = 8
	const nBits = 400

	b := NewBitSync(samplesPerBit, 0.05, 0.01, samplesPerBit-4, samplesPerBit+4)
	samples := squareWave(samplesPerBit, nBits)

	var out []dsp.Q15
	out = b.Process(samples, out)

	require.NotEmpty(t, out)
	require.InDelta(t, samplesPerBit, b.StepSize(), 2)

	require.InDelta(t, nBits, len(out), 5)
}

func TestBitSyncCarriesStateAcrossCalls(t *testing.T) {
	const samplesPerBit = 8
	samples := squareWave(samplesPerBit, 200)

	whole := NewBitSync(samplesPerBit, 0.05, 0.01, -4, 4)
	var wholeOut []dsp.Q15
	wholeOut = whole.Process(samples, wholeOut)

	split := NewBitSync(samplesPerBit, 0.05, 0.01, -4, 4)
	var splitOut []dsp.Q15
	mid := len(samples) / 2
	splitOut = split.Process(samples[:mid], splitOut)
	splitOut = split.Process(samples[mid:], splitOut)

	require.Equal(t, wholeOut, splitOut)
}

func TestBitSyncResetRestoresIdealStepSize(t *testing.T) {
	b := NewBitSync(10, 0.05, 0.01, -4, 4)
	b.Process(squareWave(10, 50), nil)
	require.NotEqual(t, 10.0, b.StepSize())

	b.Reset()
	require.Equal(t, 10.0, b.StepSize())
	require.Equal(t, 10.0, b.IdealStepSize())
}
