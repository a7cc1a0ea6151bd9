package alloc_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tagheap/tagheap/alloc"
	"github.com/tagheap/tagheap/arena"
	"go.uber.org/mock/gomock"
)

// fitScenario builds a heap with two free gaps in the same size class: a
// 64-byte block at 48 and a 56-byte block at 144, with the wilderness block
// far behind them. The gap order is deliberate: address order and best-fit
// order disagree, so each policy picks differently.
func fitScenario(t *testing.T, policy alloc.FitPolicy) *alloc.Heap {
	heap, err := alloc.New(nil, arena.NewBuffer(0), alloc.CreateOptions{Policy: policy})
	require.NoError(t, err)

	var addrs []alloc.Addr
	for _, size := range []int{24, 56, 24, 52, 24} {
		p, err := heap.Alloc(size)
		require.NoError(t, err)
		addrs = append(addrs, p)
	}
	require.Equal(t, []alloc.Addr{16, 48, 112, 144, 200}, addrs)

	heap.Free(addrs[1])
	heap.Free(addrs[3])
	require.NoError(t, heap.Validate())
	return heap
}

func TestFitFirstTakesLowestAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	heap := fitScenario(t, alloc.FitFirst)

	p, err := heap.Alloc(36)
	require.NoError(t, err)
	require.Equal(t, alloc.Addr(48), p)
	require.NoError(t, heap.Validate())
}

func TestFitBestTakesSmallestSufficient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	heap := fitScenario(t, alloc.FitBest)

	// 144 holds 56 bytes, 48 holds 64: the tighter fit wins even though it
	// sits at the higher address.
	p, err := heap.Alloc(36)
	require.NoError(t, err)
	require.Equal(t, alloc.Addr(144), p)
	require.NoError(t, heap.Validate())
}

func TestFitSegregatedOverflowsToLargerClass(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	heap := fitScenario(t, alloc.FitSegregated)

	// A 36-byte request lands in an empty bucket, so the search falls through
	// to the head of the next populated class and does not hunt for the best
	// fit there.
	p, err := heap.Alloc(36)
	require.NoError(t, err)
	require.Equal(t, alloc.Addr(48), p)
	require.NoError(t, heap.Validate())
}

func TestFitSegregatedExactMatchSkipsSplit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	heap := fitScenario(t, alloc.FitSegregated)
	splitsBefore := heap.Counters().Splits

	p, err := heap.Alloc(52)
	require.NoError(t, err)
	require.Equal(t, alloc.Addr(144), p)
	require.Equal(t, 52, heap.PayloadSize(p))
	require.Equal(t, splitsBefore, heap.Counters().Splits)
	require.NoError(t, heap.Validate())
}

func TestFitNextResumesAtRover(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	heap, err := alloc.New(nil, arena.NewBuffer(0), alloc.CreateOptions{Policy: alloc.FitNext})
	require.NoError(t, err)

	a, err := heap.Alloc(24)
	require.NoError(t, err)
	require.Equal(t, alloc.Addr(16), a)
	_, err = heap.Alloc(24)
	require.NoError(t, err)

	heap.Free(a)

	// First fit would reuse the hole at 16; next fit carries on from the last
	// placement instead.
	c, err := heap.Alloc(24)
	require.NoError(t, err)
	require.Equal(t, alloc.Addr(80), c)

	// Consume the rest of the heap so the rover ends up at the epilogue, then
	// check the search wraps back to the start.
	d, err := heap.Alloc(3996)
	require.NoError(t, err)
	require.Equal(t, alloc.Addr(112), d)

	e, err := heap.Alloc(24)
	require.NoError(t, err)
	require.Equal(t, alloc.Addr(16), e)
	require.NoError(t, heap.Validate())
}
