// Package channel implements the producer/worker concurrency model: one
// goroutine reads raw I/Q from a device and publishes sample buffers to
// every channel's queue; one goroutine per configured channel drains its
// queue and runs that channel's demodulation pipeline. Grounded on the
// teacher's multi_modem.go (one demodulator per channel) and tq.go (a
// per-channel queue with a wake-up signal), re-expressed with Go channels
// and goroutines instead of a hand-rolled linked list guarded by
// sync.Cond — the idiomatic structured-concurrency primitive for exactly
// this "one producer, several independent consumers" shape.
package channel

import (
	"context"
	"io"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/tsl-sdr/gochannelizer/internal/buffer"
	"github.com/tsl-sdr/gochannelizer/internal/iqsource"
)

// QueueDepth is the number of in-flight buffers each channel's queue can
// hold before the producer must drop (and decref) rather than block.
const QueueDepth = 4

// Producer reads fixed-size frames from an IQSource, allocates a buffer
// per frame from the shared FrameAllocator, publishes it with a reference
// for every subscriber queue, and fans it out. A full subscriber queue
// never blocks the producer: the buffer is decref'd immediately for that
// subscriber instead, counted as a drop.
type Producer struct {
	src       iqsource.IQSource
	allocator *buffer.FrameAllocator
	queues    []chan *buffer.Buffer
	log       *log.Logger

	dropped int64
}

// NewProducer returns a producer reading from src, allocating frames from
// allocator, and fanning them out to nSubscribers queues of QueueDepth
// each. The queues are indexed 0 to nSubscribers-1 — the caller wires each
// index to the matching Worker.
func NewProducer(src iqsource.IQSource, allocator *buffer.FrameAllocator, nSubscribers int, logger *log.Logger) *Producer {
	queues := make([]chan *buffer.Buffer, nSubscribers)
	for i := range queues {
		queues[i] = make(chan *buffer.Buffer, QueueDepth)
	}
	return &Producer{src: src, allocator: allocator, queues: queues, log: logger}
}

// Queue returns the receive-only queue for subscriber i, for wiring into
// a Worker.
func (p *Producer) Queue(i int) <-chan *buffer.Buffer { return p.queues[i] }

// Dropped reports how many buffer publications were dropped because a
// subscriber's queue was full.
func (p *Producer) Dropped() int64 { return p.dropped }

// Run reads frames until ctx is cancelled or the source returns io.EOF,
// publishing each to every subscriber queue. It closes every queue before
// returning, the fan-out's shutdown signal to each Worker.
func (p *Producer) Run(ctx context.Context) error {
	defer func() {
		for _, q := range p.queues {
			close(q)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		buf, err := p.allocator.Allocate()
		if err != nil {
			// Pool exhausted: every subscriber is still behind on
			// earlier buffers. Yield rather than busy-spin.
			runtime.Gosched()
			continue
		}

		n, startTime, err := p.src.ReadInto(buf.Data)
		if err != nil {
			buf.Publish(startTime, 1)
			buf.Decref()
			if err == io.EOF {
				return nil
			}
			return err
		}
		buf.NumSamples = n / buf.SampleType.BytesPerSample()

		if !buf.Publish(startTime, len(p.queues)) {
			buf.Decref()
			continue
		}

		for _, q := range p.queues {
			select {
			case q <- buf:
			default:
				p.dropped++
				if p.log != nil {
					p.log.Warn("dropped buffer, subscriber queue full", "dropped_total", p.dropped)
				}
				buf.Decref()
			}
		}
	}
}
