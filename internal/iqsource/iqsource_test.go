package iqsource

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileSourceReadsAndReportsEOF(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "iq-*.raw")
	require.NoError(t, err)
	_, err = f.Write(make([]byte, 16))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	src, err := NewFileSource(f.Name(), 4*48000)
	require.NoError(t, err)
	defer src.Close()

	buf := make([]byte, 8)
	n, t0, err := src.ReadInto(buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Zero(t, t0)

	n, t1, err := src.ReadInto(buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Greater(t, t1, t0)

	_, _, err = src.ReadInto(buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestGeneratorSourceBoundedEmitsEOF(t *testing.T) {
	g := NewGeneratorSource(48000, 1000, 1000, 4)
	buf := make([]byte, 4*4) // 4 I/Q pairs

	n, _, err := g.ReadInto(buf)
	require.NoError(t, err)
	require.Equal(t, 16, n)

	_, _, err = g.ReadInto(buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestGeneratorSourceUnboundedNeverEOFs(t *testing.T) {
	g := NewGeneratorSource(48000, 1000, 1000, 0)
	buf := make([]byte, 400)
	for i := 0; i < 50; i++ {
		n, _, err := g.ReadInto(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
	}
}
