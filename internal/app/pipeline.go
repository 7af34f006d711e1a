package app

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/tsl-sdr/gochannelizer/internal/ais"
	"github.com/tsl-sdr/gochannelizer/internal/buffer"
	"github.com/tsl-sdr/gochannelizer/internal/channel"
	"github.com/tsl-sdr/gochannelizer/internal/config"
	"github.com/tsl-sdr/gochannelizer/internal/dect"
	"github.com/tsl-sdr/gochannelizer/internal/demod"
	"github.com/tsl-sdr/gochannelizer/internal/dsp"
	"github.com/tsl-sdr/gochannelizer/internal/flex"
	"github.com/tsl-sdr/gochannelizer/internal/pocsag"
	"github.com/tsl-sdr/gochannelizer/internal/symsync"
)

var _ channel.Pipeline = (*ChannelPipeline)(nil)

// bitSink is the common shape of every protocol decoder that consumes a
// hard-decision bit stream at its own symbol rate.
type bitSink interface {
	PushBit(bit bool)
}

// ChannelPipeline is the per-channel demodulation chain a Worker drives:
// DirectFIR -> optional polyphase resampler -> FM or Costas demodulator
// -> optional DC blocker -> either a bit synchronizer feeding a protocol
// decoder, or raw PCM written to the channel's FIFO. The DirectFIR is
// built with derotation off: the channel is filtered and decimated at
// whatever offset it has in the wideband input and is not shifted to DC.
// Exactly the chain spec §5 describes a Worker running inline, never
// suspending mid-decode.
type ChannelPipeline struct {
	cfg config.Channel
	log *log.Logger

	fir      *dsp.DirectFIR
	resample *dsp.PolyphaseComplexFIR

	fm     *demod.FMDemod
	costas *demod.CostasDemod

	dcBlocker *dsp.DCBlocker
	bitSync   *symsync.BitSync

	aisReceiver *ais.Receiver
	decoder     bitSink

	outFifo *os.File

	scratchIQ   []dsp.Complex15
	scratchReal []dsp.Q15
}

// Decoder names which protocol decoder (if any) a channel feeds.
const (
	DecoderNone   = ""
	DecoderAIS    = "ais"
	DecoderPOCSAG = "pocsag"
	DecoderFLEX   = "flex"
	DecoderDECT   = "dect"
)

// NewChannelPipeline builds the demodulation chain for one configured
// channel. sampleRateHz is the wideband input rate shared by every
// channel; onMessage is invoked for every decoded protocol message, tagged
// with the channel's configured frequency. A channel with no decoder never
// calls it.
func NewChannelPipeline(cfg config.Channel, sampleRateHz float64, logger *log.Logger, onMessage func(chanFreqHz uint32, message any)) (*ChannelPipeline, error) {
	taps := make([]dsp.Q15, len(cfg.LPFTaps))
	for i, t := range cfg.LPFTaps {
		taps[i] = dsp.FloatToQ15(t)
	}
	if len(taps) == 0 {
		taps = []dsp.Q15{dsp.FloatToQ15(1)}
	}

	fir, err := dsp.NewDirectFIR(taps, cfg.DecimationFactor, 0, sampleRateHz)
	if err != nil {
		return nil, fmt.Errorf("channel %d Hz: %w", cfg.FreqHz, err)
	}

	p := &ChannelPipeline{cfg: cfg, log: logger, fir: fir}

	chanRateHz := sampleRateHz / float64(cfg.DecimationFactor)

	if cfg.ResampleDecimate > 0 && cfg.ResampleInterpolate > 0 {
		rtaps := make([]dsp.Complex15, len(cfg.ResampleFilterTaps))
		for i, t := range cfg.ResampleFilterTaps {
			rtaps[i] = dsp.Complex15{Re: dsp.FloatToQ15(t), Im: 0}
		}
		if len(rtaps) == 0 {
			rtaps = []dsp.Complex15{{Re: dsp.FloatToQ15(1)}}
		}
		resample, err := dsp.NewPolyphaseComplexFIR(rtaps, cfg.ResampleInterpolate, cfg.ResampleDecimate, 0, chanRateHz)
		if err != nil {
			return nil, fmt.Errorf("channel %d Hz: resampler: %w", cfg.FreqHz, err)
		}
		p.resample = resample
		chanRateHz = chanRateHz * float64(cfg.ResampleInterpolate) / float64(cfg.ResampleDecimate)
	}

	if cfg.EnableDCBlocker {
		p.dcBlocker = dsp.NewDCBlocker(cfg.DCBlockerPole)
	}

	freqHz := cfg.FreqHz
	switch cfg.Decoder {
	case DecoderAIS:
		p.fm = demod.NewFMDemod()
		p.aisReceiver = ais.NewReceiver(func(m ais.Message) {
			if onMessage != nil {
				onMessage(freqHz, m)
			}
		})
	case DecoderPOCSAG:
		p.costas = demod.NewCostasDemod(0, chanRateHz, 0.01, 0.001, 0.3)
		p.bitSync = symsync.NewBitSync(chanRateHz/1200, 0.01, 0.01, 0.5*chanRateHz/1200, 2.0*chanRateHz/1200)
		p.decoder = pocsag.NewDecoder(1200, freqHz, false,
			func(m pocsag.NumericMessage) {
				if onMessage != nil {
					onMessage(freqHz, m)
				}
			},
			func(m pocsag.AlphaMessage) {
				if onMessage != nil {
					onMessage(freqHz, m)
				}
			})
	case DecoderFLEX:
		p.costas = demod.NewCostasDemod(0, chanRateHz, 0.01, 0.001, 0.3)
		p.bitSync = symsync.NewBitSync(chanRateHz/1600, 0.01, 0.01, 0.5*chanRateHz/1600, 2.0*chanRateHz/1600)
		p.decoder = flex.NewDecoder(func(m flex.Message) {
			if onMessage != nil {
				onMessage(freqHz, m)
			}
		})
	case DecoderDECT:
		p.costas = demod.NewCostasDemod(0, chanRateHz, 0.01, 0.001, 0.3)
		p.bitSync = symsync.NewBitSync(chanRateHz/1152000, 0.01, 0.01, 0.5*chanRateHz/1152000, 2.0*chanRateHz/1152000)
		p.decoder = dect.NewExtractor(func(f dect.Frame) {
			if onMessage != nil {
				onMessage(freqHz, f)
			}
		})
	case DecoderNone:
		f, err := os.OpenFile(cfg.OutFifo, os.O_WRONLY|os.O_CREATE, 0o644)
		if err != nil {
			return nil, fmt.Errorf("channel %d Hz: opening outFifo: %w", cfg.FreqHz, err)
		}
		p.outFifo = f
	default:
		return nil, fmt.Errorf("channel %d Hz: unknown decoder %q", cfg.FreqHz, cfg.Decoder)
	}

	return p, nil
}

// ProcessBuffer implements channel.Pipeline.
func (p *ChannelPipeline) ProcessBuffer(buf *buffer.Buffer) {
	iq := decodeComplexI16(buf.Data, buf.NumSamples, p.scratchIQ[:0])
	p.scratchIQ = iq

	filtered := iq[:0]
	for _, s := range iq {
		if out, ok := p.fir.Push(s); ok {
			filtered = append(filtered, out)
		}
	}

	if p.resample != nil {
		resampled := make([]dsp.Complex15, 0, len(filtered))
		for _, s := range filtered {
			p.resample.Push(s)
			for p.resample.CanProcess() {
				resampled = p.resample.Process(resampled)
			}
		}
		filtered = resampled
	}

	switch {
	case p.aisReceiver != nil:
		real := p.fm.Process(filtered, p.scratchReal[:0])
		if p.dcBlocker != nil {
			p.dcBlocker.Apply(real)
		}
		p.scratchReal = real
		for _, s := range real {
			p.aisReceiver.PushSample(s >= 0)
		}

	case p.decoder != nil:
		real := p.costas.Process(filtered, p.scratchReal[:0])
		if p.dcBlocker != nil {
			p.dcBlocker.Apply(real)
		}
		p.scratchReal = real
		symbols := p.bitSync.Process(real, nil)
		for _, s := range symbols {
			p.decoder.PushBit(s >= 0)
		}

	case p.outFifo != nil:
		real := fmProcessOrPassthrough(p.fm, filtered, p.scratchReal[:0])
		if p.dcBlocker != nil {
			p.dcBlocker.Apply(real)
		}
		p.scratchReal = real
		p.writePCM(real)
	}
}

// fmProcessOrPassthrough lets a plain-PCM channel reuse an FM demodulator
// when one is configured, or just copy the real part through when f is
// nil (a channel with no decoder and no FM demod outputs the filtered
// signal's real component directly, e.g. for debugSignalFile capture of
// an already-real baseband).
func fmProcessOrPassthrough(f *demod.FMDemod, in []dsp.Complex15, out []dsp.Q15) []dsp.Q15 {
	if f == nil {
		for _, s := range in {
			out = append(out, s.Re)
		}
		return out
	}
	return f.Process(in, out)
}

func decodeComplexI16(data []byte, numSamples int, dst []dsp.Complex15) []dsp.Complex15 {
	for i := 0; i < numSamples; i++ {
		off := i * 4
		if off+4 > len(data) {
			break
		}
		re := int16(binary.LittleEndian.Uint16(data[off : off+2]))
		im := int16(binary.LittleEndian.Uint16(data[off+2 : off+4]))
		dst = append(dst, dsp.Complex15{Re: dsp.Q15(re), Im: dsp.Q15(im)})
	}
	return dst
}

func (p *ChannelPipeline) writePCM(samples []dsp.Q15) {
	if p.outFifo == nil {
		return
	}
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	if _, err := p.outFifo.Write(buf); err != nil && p.log != nil {
		p.log.Warn("pcm write failed", "channel", p.cfg.FreqHz, "err", err)
	}
}

// Close releases the pipeline's outFifo handle, if one was opened.
func (p *ChannelPipeline) Close() error {
	if p.outFifo != nil {
		return p.outFifo.Close()
	}
	return nil
}
