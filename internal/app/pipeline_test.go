package app

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsl-sdr/gochannelizer/internal/buffer"
	"github.com/tsl-sdr/gochannelizer/internal/config"
)

// toneBuffer builds a synthetic complex-int16 buffer containing n samples
// of a tone at toneHz sampled at sampleRateHz, the same wire format
// iqsource.GeneratorSource produces.
func toneBuffer(sampleRateHz, toneHz float64, n int) *buffer.Buffer {
	data := make([]byte, n*4)
	for i := 0; i < n; i++ {
		phase := 2 * math.Pi * toneHz * float64(i) / sampleRateHz
		re := int16(8000 * math.Cos(phase))
		im := int16(8000 * math.Sin(phase))
		binary.LittleEndian.PutUint16(data[4*i:], uint16(re))
		binary.LittleEndian.PutUint16(data[4*i+2:], uint16(im))
	}
	return &buffer.Buffer{
		SampleType: buffer.ComplexI16,
		NumSamples: n,
		Data:       data,
	}
}

func TestChannelPipelinePlainPCMWritesFifo(t *testing.T) {
	fifoPath := filepath.Join(t.TempDir(), "ch0.pcm")
	cfg := config.Channel{
		FreqHz:           162400000,
		OutFifo:          fifoPath,
		DecimationFactor: 1,
		LPFTaps:          []float64{1},
	}

	p, err := NewChannelPipeline(cfg, 48000, nil, nil)
	require.NoError(t, err)
	defer p.Close()

	buf := toneBuffer(48000, 1000, 64)
	p.ProcessBuffer(buf)
	require.NoError(t, p.Close())

	out, err := os.ReadFile(fifoPath)
	require.NoError(t, err)
	require.Equal(t, 64*2, len(out))
}

func TestChannelPipelineAISDoesNotPanicOnNoise(t *testing.T) {
	var got []any
	cfg := config.Channel{
		FreqHz:           161975000,
		DecimationFactor: 1,
		LPFTaps:          []float64{1},
		Decoder:          DecoderAIS,
	}

	p, err := NewChannelPipeline(cfg, 48000, nil, func(freq uint32, m any) {
		got = append(got, m)
	})
	require.NoError(t, err)

	buf := toneBuffer(48000, 9600, 480)
	require.NotPanics(t, func() { p.ProcessBuffer(buf) })
}

func TestChannelPipelinePOCSAGDoesNotPanicOnNoise(t *testing.T) {
	cfg := config.Channel{
		FreqHz:           929662500,
		DecimationFactor: 1,
		LPFTaps:          []float64{1},
		Decoder:          DecoderPOCSAG,
	}

	p, err := NewChannelPipeline(cfg, 48000, nil, nil)
	require.NoError(t, err)

	buf := toneBuffer(48000, 1200, 480)
	require.NotPanics(t, func() { p.ProcessBuffer(buf) })
}

func TestNewChannelPipelineRejectsUnknownDecoder(t *testing.T) {
	cfg := config.Channel{
		FreqHz:           1,
		DecimationFactor: 1,
		Decoder:          "bogus",
	}
	_, err := NewChannelPipeline(cfg, 48000, nil, nil)
	require.Error(t, err)
}
