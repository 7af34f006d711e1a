package iqsource

import (
	"io"
	"math"
	"time"
)

// GeneratorSource produces a deterministic synthetic tone, for tests that
// need a repeatable IQSource without a fixture file on disk. Not reachable
// from configuration — config.Device.Kind only ever resolves to "file".
type GeneratorSource struct {
	sampleRateHz float64
	toneHz       float64
	amplitude    float64

	samplesEmitted int64
	maxSamples     int64 // 0 means unbounded
}

// NewGeneratorSource returns a source emitting a complex tone at toneHz,
// sampled at sampleRateHz, as interleaved little-endian int16 I/Q pairs.
// maxSamples bounds total output (0 for unbounded, useful for tests that
// want a deterministic io.EOF).
func NewGeneratorSource(sampleRateHz, toneHz, amplitude float64, maxSamples int64) *GeneratorSource {
	return &GeneratorSource{
		sampleRateHz: sampleRateHz,
		toneHz:       toneHz,
		amplitude:    amplitude,
		maxSamples:   maxSamples,
	}
}

// ReadInto implements IQSource, filling buf (a whole number of 4-byte I/Q
// pairs) with the next samples of the tone.
func (g *GeneratorSource) ReadInto(buf []byte) (int, time.Duration, error) {
	const bytesPerSample = 4
	n := 0
	startTime := time.Duration(float64(g.samplesEmitted) / g.sampleRateHz * float64(time.Second))

	for n+bytesPerSample <= len(buf) {
		if g.maxSamples > 0 && g.samplesEmitted >= g.maxSamples {
			if n == 0 {
				return 0, startTime, io.EOF
			}
			return n, startTime, nil
		}

		phase := 2 * math.Pi * g.toneHz * float64(g.samplesEmitted) / g.sampleRateHz
		i := int16(g.amplitude * math.Cos(phase))
		q := int16(g.amplitude * math.Sin(phase))

		buf[n] = byte(i)
		buf[n+1] = byte(i >> 8)
		buf[n+2] = byte(q)
		buf[n+3] = byte(q >> 8)

		n += bytesPerSample
		g.samplesEmitted++
	}
	return n, startTime, nil
}

// Close implements IQSource; the generator owns no resources.
func (g *GeneratorSource) Close() error { return nil }
