package alloc_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tagheap/tagheap"
	"github.com/tagheap/tagheap/alloc"
	"github.com/tagheap/tagheap/arena"
)

// Three small allocations sit at the bottom of the heap, so freeing them in
// the right order drives each merge case exactly once.
func newThreeBlockHeap(t *testing.T) (*alloc.Heap, [3]alloc.Addr) {
	t.Helper()

	heap, err := alloc.New(nil, arena.NewBuffer(0), alloc.CreateOptions{})
	require.NoError(t, err)

	var addrs [3]alloc.Addr
	for i := range addrs {
		p, err := heap.Alloc(24)
		require.NoError(t, err)
		addrs[i] = p
	}
	require.Equal(t, [3]alloc.Addr{16, 48, 80}, addrs)
	return heap, addrs
}

func TestCoalesceForwardAndBoth(t *testing.T) {
	heap, addrs := newThreeBlockHeap(t)

	heap.Free(addrs[1])
	require.NoError(t, heap.Validate())

	var stats tagheap.DetailedStatistics
	stats.Clear()
	heap.AddDetailedStatistics(&stats)
	require.Equal(t, 2, stats.FreeRangeCount)
	require.Equal(t, 32, stats.FreeRangeSizeMin)
	require.Equal(t, 4000, stats.FreeRangeSizeMax)
	require.Zero(t, heap.Counters().CoalesceForward)

	heap.Free(addrs[0])
	require.NoError(t, heap.Validate())
	require.Equal(t, 1, heap.Counters().CoalesceForward)

	stats.Clear()
	heap.AddDetailedStatistics(&stats)
	require.Equal(t, 2, stats.FreeRangeCount)
	require.Equal(t, 64, stats.FreeRangeSizeMin)

	heap.Free(addrs[2])
	require.NoError(t, heap.Validate())
	require.Equal(t, 1, heap.Counters().CoalesceBoth)

	stats.Clear()
	heap.AddDetailedStatistics(&stats)
	require.Equal(t, tagheap.DetailedStatistics{
		Statistics: tagheap.Statistics{
			ArenaCount:      1,
			AllocationCount: 0,
			ArenaBytes:      4112,
			AllocationBytes: 0,
		},
		FreeRangeCount:    1,
		AllocationSizeMin: math.MaxInt,
		AllocationSizeMax: 0,
		FreeRangeSizeMin:  4096,
		FreeRangeSizeMax:  4096,
	}, stats)
}

func TestCoalesceBackward(t *testing.T) {
	heap, addrs := newThreeBlockHeap(t)

	heap.Free(addrs[0])
	require.NoError(t, heap.Validate())
	require.Zero(t, heap.Counters().CoalesceBackward)

	heap.Free(addrs[1])
	require.NoError(t, heap.Validate())
	require.Equal(t, 1, heap.Counters().CoalesceBackward)

	var stats tagheap.DetailedStatistics
	stats.Clear()
	heap.AddDetailedStatistics(&stats)
	require.Equal(t, 2, stats.FreeRangeCount)
	require.Equal(t, 64, stats.FreeRangeSizeMin)

	// The merged pair serves a request neither block could alone, without
	// growing the arena.
	growsBefore := heap.Counters().GrowCalls
	p, err := heap.Alloc(60)
	require.NoError(t, err)
	require.Equal(t, addrs[0], p)
	require.Equal(t, growsBefore, heap.Counters().GrowCalls)
	require.NoError(t, heap.Validate())
}

func TestCoalesceNoneAndReuse(t *testing.T) {
	heap, addrs := newThreeBlockHeap(t)

	heap.Free(addrs[1])
	require.NoError(t, heap.Validate())

	counters := heap.Counters()
	require.Zero(t, counters.CoalesceForward)
	require.Zero(t, counters.CoalesceBackward)
	require.Zero(t, counters.CoalesceBoth)

	// The freed middle block is an exact fit for the same request.
	p, err := heap.Alloc(24)
	require.NoError(t, err)
	require.Equal(t, addrs[1], p)
	require.NoError(t, heap.Validate())
}

func TestExtendMergesWithFreeTail(t *testing.T) {
	heap, err := alloc.New(nil, arena.NewBuffer(0), alloc.CreateOptions{ChunkSize: 1024})
	require.NoError(t, err)

	a, err := heap.Alloc(700)
	require.NoError(t, err)
	require.Equal(t, alloc.Addr(336), a)

	b, err := heap.Alloc(200)
	require.NoError(t, err)
	require.Equal(t, alloc.Addr(128), b)

	heap.Free(a)
	require.NoError(t, heap.Validate())

	// The next request fits nothing, so the heap grows; the fresh memory
	// must merge with the free block that ended at the old heap boundary.
	p, err := heap.Alloc(1500)
	require.NoError(t, err)
	require.Equal(t, alloc.Addr(1040), p)
	require.NoError(t, heap.Validate())

	var stats tagheap.DetailedStatistics
	stats.Clear()
	heap.AddDetailedStatistics(&stats)
	require.Equal(t, tagheap.DetailedStatistics{
		Statistics: tagheap.Statistics{
			ArenaCount:      1,
			AllocationCount: 2,
			ArenaBytes:      2544,
			AllocationBytes: 1712,
		},
		FreeRangeCount:    2,
		AllocationSizeMin: 208,
		AllocationSizeMax: 1504,
		FreeRangeSizeMin:  112,
		FreeRangeSizeMax:  704,
	}, stats)

	counters := heap.Counters()
	require.Equal(t, 2, counters.GrowCalls)
	require.Equal(t, 1, counters.CoalesceBackward)
}

func TestRandomAllocFreeTraffic(t *testing.T) {
	heap, err := alloc.New(nil, arena.NewBuffer(0), alloc.CreateOptions{
		Flags: alloc.HeapCreateDisableHotSizes,
	})
	require.NoError(t, err)

	assertNoAdjacentFrees := func() {
		t.Helper()
		prevFree := false
		heap.VisitBlocks(func(p alloc.Addr, size int, allocated bool) bool {
			if !allocated {
				require.False(t, prevFree, "adjacent free blocks at offset %d", p)
			}
			prevFree = !allocated
			return true
		})
	}

	// Every live payload carries a pattern derived from its own address, so a
	// write that crosses a block boundary shows up at the next sweep.
	fillPayload := func(p alloc.Addr) {
		payload := heap.Payload(p)
		for i := range payload {
			payload[i] = byte(p>>3) + byte(i)
		}
	}
	checkPayload := func(p alloc.Addr) {
		t.Helper()
		payload := heap.Payload(p)
		for i := range payload {
			if payload[i] != byte(p>>3)+byte(i) {
				t.Fatalf("payload of block at %d changed at byte %d", p, i)
			}
		}
	}

	rng := rand.New(rand.NewSource(42))
	var live []alloc.Addr
	for i := 0; i < 1500; i++ {
		if len(live) == 0 || rng.Intn(3) != 0 {
			p, err := heap.Alloc(1 + rng.Intn(600))
			require.NoError(t, err)
			require.Zero(t, p%8, "allocation at %d is not 8-byte aligned", p)
			fillPayload(p)
			live = append(live, p)
		} else {
			j := rng.Intn(len(live))
			checkPayload(live[j])
			heap.Free(live[j])
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
		}

		if i%100 == 99 {
			require.NoError(t, heap.Validate())
			assertNoAdjacentFrees()
			for _, p := range live {
				checkPayload(p)
			}
		}
	}

	for _, p := range live {
		checkPayload(p)
		heap.Free(p)
	}
	require.NoError(t, heap.Validate())
	assertNoAdjacentFrees()

	var stats tagheap.DetailedStatistics
	stats.Clear()
	heap.AddDetailedStatistics(&stats)
	require.Zero(t, stats.AllocationCount)
	require.Equal(t, 1, stats.FreeRangeCount)
}