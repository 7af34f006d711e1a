package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFrameAllocatorCapacityInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 64).Draw(t, "capacity")
		frameLen := rapid.IntRange(1, 256).Draw(t, "frameLen")

		alloc, err := NewFrameAllocator(ComplexI16, frameLen, capacity)
		require.NoError(t, err)

		nTake := rapid.IntRange(0, capacity+8).Draw(t, "nTake")
		var taken []*Buffer
		for i := 0; i < nTake; i++ {
			buf, err := alloc.Allocate()
			if err != nil {
				require.Equal(t, capacity, len(taken))
				break
			}
			taken = append(taken, buf)
		}

		allocated, free := alloc.Counts()
		require.Equal(t, capacity, allocated+free)
		require.Equal(t, len(taken), allocated)

		for _, buf := range taken {
			buf.Publish(0, 1)
			buf.Decref()
		}

		allocated, free = alloc.Counts()
		require.Equal(t, 0, allocated)
		require.Equal(t, capacity, free)
	})
}

func TestBufferReleaseRunsExactlyOnce(t *testing.T) {
	alloc, err := NewFrameAllocator(ComplexI16, 128, 4)
	require.NoError(t, err)

	buf, err := alloc.Allocate()
	require.NoError(t, err)

	const nConsumers = 3
	require.True(t, buf.Publish(0, nConsumers))

	var wg sync.WaitGroup
	for i := 0; i < nConsumers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf.Decref()
		}()
	}
	wg.Wait()

	allocated, free := alloc.Counts()
	require.Equal(t, 0, allocated)
	require.Equal(t, 4, free)
}

func TestPublishRejectsZeroConsumers(t *testing.T) {
	alloc, err := NewFrameAllocator(RealI16, 16, 1)
	require.NoError(t, err)
	buf, err := alloc.Allocate()
	require.NoError(t, err)
	require.False(t, buf.Publish(0, 0))
}

func TestAllocateNeverBlocksWhenExhausted(t *testing.T) {
	alloc, err := NewFrameAllocator(RealI16, 16, 1)
	require.NoError(t, err)

	_, err = alloc.Allocate()
	require.NoError(t, err)

	_, err = alloc.Allocate()
	require.Error(t, err)

	allocated, free := alloc.Counts()
	require.Equal(t, 1, allocated)
	require.Equal(t, 0, free)
}
