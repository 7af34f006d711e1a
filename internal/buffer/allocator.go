package buffer

import (
	"github.com/tsl-sdr/gochannelizer/internal/result"
)

// FrameAllocator is a bounded pool of equally-sized sample buffers. It
// allocates and frees in O(1) and never blocks: allocation failure (pool
// exhaustion) is a normal, gracefully-returned outcome (spec §4.1), not a
// panic or an error that unwinds the caller.
type FrameAllocator struct {
	sampleType SampleType
	frameLen   int // samples per frame

	lock   ticketLock
	frames []*Buffer
	free   []int // indices into frames, LIFO is fine: O(1) push/pop

	allocated int
}

// NewFrameAllocator creates a pool of nFrames buffers, each holding
// frameLen samples of the given type. Pool size and frame size are fixed
// for the allocator's lifetime.
func NewFrameAllocator(sampleType SampleType, frameLen, nFrames int) (*FrameAllocator, error) {
	if frameLen <= 0 || nFrames <= 0 {
		return nil, result.New("buffer", result.InvalidArgument, "frameLen and nFrames must be positive")
	}

	a := &FrameAllocator{
		sampleType: sampleType,
		frameLen:   frameLen,
		frames:     make([]*Buffer, nFrames),
		free:       make([]int, nFrames),
	}

	for i := 0; i < nFrames; i++ {
		idx := i
		buf := newBuffer(sampleType, frameLen, func(b *Buffer) { a.free_(idx) })
		buf.Priv = idx
		a.frames[i] = buf
		a.free[i] = i
	}

	return a, nil
}

// Allocate returns a zero-refcount buffer from the pool, or
// result.Full if the pool is exhausted. It never blocks.
func (a *FrameAllocator) Allocate() (*Buffer, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if len(a.free) == 0 {
		return nil, result.New("frame-alloc", result.Full, "pool exhausted")
	}

	n := len(a.free) - 1
	idx := a.free[n]
	a.free = a.free[:n]
	a.allocated++

	return a.frames[idx], nil
}

// free_ returns a frame to the pool. Called from Buffer.release, which
// itself runs under Decref from any thread — hence the lock.
func (a *FrameAllocator) free_(idx int) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.free = append(a.free, idx)
	a.allocated--
}

// Counts returns (allocated, free); allocated+free == capacity always.
func (a *FrameAllocator) Counts() (allocated, free int) {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.allocated, len(a.free)
}

func (a *FrameAllocator) Capacity() int { return len(a.frames) }
func (a *FrameAllocator) FrameLen() int { return a.frameLen }
