// Package buffer implements the zero-copy, reference-counted sample buffer
// and its bounded frame allocator (spec §3, §4.1). Grounded on
// filter/sample_buf.c's refcount-drop-to-zero release hook and
// tsl/frame_alloc.h's bounded pool, rendered in the teacher's rrbb.go idiom
// of a plain Go struct with explicit lifecycle methods instead of cgo state.
package buffer

import (
	"sync/atomic"
	"time"
)

// SampleType tags the wire representation of the samples held in a Buffer.
type SampleType int

const (
	Unknown SampleType = iota
	RealU16
	ComplexU16
	RealI16
	ComplexI16
	RealU32
	ComplexU32
)

// BytesPerSample returns the size, in bytes, of one sample (one real value,
// or one I+Q pair for complex types) of the given type.
func (t SampleType) BytesPerSample() int {
	switch t {
	case RealU16, RealI16:
		return 2
	case ComplexU16, ComplexI16:
		return 4
	case RealU32:
		return 4
	case ComplexU32:
		return 8
	default:
		return 0
	}
}

func (t SampleType) IsComplex() bool {
	switch t {
	case ComplexU16, ComplexI16, ComplexU32:
		return true
	default:
		return false
	}
}

// ReleaseFunc is invoked exactly once, when a Buffer's reference count drops
// to zero.
type ReleaseFunc func(*Buffer)

// Buffer is a reference-counted, fixed-capacity container of interleaved
// complex or real samples. Once Publish is called it is read-only; any
// number of holders may Decref concurrently, and the last one to observe a
// drop to zero runs the release hook exactly once.
//
// The payload is contiguous: real samples are packed one after another,
// complex samples are interleaved I,Q,I,Q,....
type Buffer struct {
	SampleType  SampleType
	NumSamples  int
	StartTime   time.Duration // since an application-defined epoch, ns resolution
	Data        []byte
	Priv        any

	refcount atomic.Int32
	release  ReleaseFunc
}

// newBuffer constructs an unpublished (refcount 0) buffer. Only the
// FrameAllocator should call this — buffers are otherwise owned by the pool
// that created them.
func newBuffer(st SampleType, numSamples int, release ReleaseFunc) *Buffer {
	return &Buffer{
		SampleType: st,
		NumSamples: numSamples,
		Data:       make([]byte, numSamples*st.BytesPerSample()),
		release:    release,
	}
}

// Publish marks the buffer as ready for consumption by nConsumers readers,
// setting the reference count to nConsumers. Publishing with zero consumers
// is a bug (there would be nothing to ever drop the count to zero, or the
// hook would fire immediately for a buffer nobody asked for) and returns
// false.
func (b *Buffer) Publish(startTime time.Duration, nConsumers int) bool {
	if nConsumers == 0 {
		return false
	}
	b.StartTime = startTime
	b.refcount.Store(int32(nConsumers))
	return true
}

// Decref releases one reference. When the last reference is dropped, the
// release hook runs exactly once and the buffer becomes eligible for reuse
// by its owning allocator.
func (b *Buffer) Decref() {
	if b.refcount.Add(-1) == 0 {
		if b.release != nil {
			b.release(b)
		}
	}
}

// Refcount reports the current reference count. Intended for tests and
// diagnostics only — it is not meant to gate any decision in caller code,
// since by the time a caller observes it the count may already have
// changed.
func (b *Buffer) Refcount() int32 {
	return b.refcount.Load()
}
