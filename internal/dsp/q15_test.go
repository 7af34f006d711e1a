package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRoundQ30ToQ15NearUnity(t *testing.T) {
	one := FloatToQ15(0.999)
	prod := MulQ15ToQ30(one, one)
	got := RoundQ30ToQ15(prod)
	require.InDelta(t, float64(FloatToQ15(0.999*0.999)), float64(got), 2)
}

func TestMulQ15ApproximatesFloatProduct(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Float64Range(-0.999, 0.999).Draw(t, "a")
		b := rapid.Float64Range(-0.999, 0.999).Draw(t, "b")

		qa := FloatToQ15(a)
		qb := FloatToQ15(b)

		got := MulQ15(qa, qb).ToFloat()
		want := qa.ToFloat() * qb.ToFloat()

		require.InDelta(t, want, got, 0.001)
		require.True(t, math.Abs(got) <= 1.0)
	})
}

func TestComplexMulMatchesScalarDecomposition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		draw := func(name string) Q15 {
			return FloatToQ15(rapid.Float64Range(-0.9, 0.9).Draw(t, name))
		}
		a := Complex15{Re: draw("a.re"), Im: draw("a.im")}
		b := Complex15{Re: draw("b.re"), Im: draw("b.im")}

		got := Mul(a, b)

		wantRe := RoundQ30ToQ15(MulQ15ToQ30(a.Re, b.Re) - MulQ15ToQ30(a.Im, b.Im))
		wantIm := RoundQ30ToQ15(MulQ15ToQ30(a.Re, b.Im) + MulQ15ToQ30(a.Im, b.Re))

		require.Equal(t, wantRe, got.Re)
		require.Equal(t, wantIm, got.Im)
	})
}

func TestFloatToQ15Saturates(t *testing.T) {
	require.Equal(t, maxQ15, FloatToQ15(5.0))
	require.Equal(t, minQ15, FloatToQ15(-5.0))
}

func TestMulAccumulateSumsProducts(t *testing.T) {
	a := Complex15{Re: FloatToQ15(0.5), Im: FloatToQ15(0.25)}
	b := Complex15{Re: FloatToQ15(0.1), Im: FloatToQ15(-0.2)}

	var acc Complex30
	acc = acc.MulAccumulate(a, b)
	acc = acc.MulAccumulate(a, b)

	single := MulToQ30(a, b)
	require.Equal(t, single.Re*2, acc.Re)
	require.Equal(t, single.Im*2, acc.Im)
}
