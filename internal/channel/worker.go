package channel

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/tsl-sdr/gochannelizer/internal/buffer"
)

// Pipeline is one channel's full demodulation chain: direct FIR,
// optional resampler, demodulator, DC blocker, bit synchronizer, and
// protocol decoder, wired up by internal/app from a
// channel's configuration. A Worker owns exactly one Pipeline.
type Pipeline interface {
	// ProcessBuffer consumes one published sample buffer. It must not
	// retain buf's Data slice past return, and must not call Decref —
	// the Worker does that once ProcessBuffer returns.
	ProcessBuffer(buf *buffer.Buffer)
}

// Worker drains one channel's queue and runs its Pipeline inline, in the
// same goroutine that reads the queue — protocol decoding never suspends,
// so there is nothing to gain by handing buffers to yet another
// goroutine.
type Worker struct {
	chanID   int
	queue    <-chan *buffer.Buffer
	pipeline Pipeline
	log      *log.Logger
}

// NewWorker returns a worker for channel chanID, reading from queue and
// feeding pipeline.
func NewWorker(chanID int, queue <-chan *buffer.Buffer, pipeline Pipeline, logger *log.Logger) *Worker {
	return &Worker{chanID: chanID, queue: queue, pipeline: pipeline, log: logger}
}

// Run drains the queue until it is closed (producer shutdown) or ctx is
// cancelled, processing buffers in arrival order.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case buf, ok := <-w.queue:
			if !ok {
				if w.log != nil {
					w.log.Info("producer queue closed, worker exiting", "channel", w.chanID)
				}
				return nil
			}
			w.pipeline.ProcessBuffer(buf)
			buf.Decref()
		}
	}
}
