package channel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tsl-sdr/gochannelizer/internal/buffer"
	"github.com/tsl-sdr/gochannelizer/internal/iqsource"
)

type countingPipeline struct {
	mu      sync.Mutex
	samples int
}

func (p *countingPipeline) ProcessBuffer(buf *buffer.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples += buf.NumSamples
}

func (p *countingPipeline) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.samples
}

func TestProducerFansOutToEveryWorker(t *testing.T) {
	alloc, err := buffer.NewFrameAllocator(buffer.ComplexI16, 64, 8)
	require.NoError(t, err)

	src := iqsource.NewGeneratorSource(48000, 1000, 1000, 64*3) // exactly 3 frames
	p := NewProducer(src, alloc, 2, nil)

	pipelines := []*countingPipeline{{}, {}}
	workers := make([]*Worker, 2)
	for i := range workers {
		workers[i] = NewWorker(i, p.Queue(i), pipelines[i], nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1 + len(workers))
	go func() { defer wg.Done(); _ = p.Run(ctx) }()
	for _, w := range workers {
		w := w
		go func() { defer wg.Done(); _ = w.Run(ctx) }()
	}
	wg.Wait()

	require.Equal(t, pipelines[0].total(), pipelines[1].total())
	require.Equal(t, 64*3, pipelines[0].total())
}

func TestProducerDropsWhenQueueFull(t *testing.T) {
	alloc, err := buffer.NewFrameAllocator(buffer.ComplexI16, 16, 32)
	require.NoError(t, err)

	frames := int64(QueueDepth + 5)
	src := iqsource.NewGeneratorSource(48000, 1000, 1000, 16*frames)
	p := NewProducer(src, alloc, 1, nil)

	// Never drain the queue: every publish past QueueDepth must drop.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = p.Run(ctx)

	require.Greater(t, p.Dropped(), int64(0))
}
