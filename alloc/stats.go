package alloc

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/tagheap/tagheap"
)

// VisitBlocks calls visit for every real block in address order, skipping the
// prologue and epilogue. Returning false stops the walk. The visit callback
// must not mutate the heap.
func (h *Heap) VisitBlocks(visit func(p Addr, size int, allocated bool) bool) {
	for bp := firstBlock; ; bp = h.nextBlock(bp) {
		size := h.blockSize(bp)
		if size == 0 {
			return
		}
		if !visit(bp, size, h.blockAllocated(bp)) {
			return
		}
	}
}

// AddStatistics accumulates the heap's basic usage numbers into stats.
func (h *Heap) AddStatistics(stats *tagheap.Statistics) {
	stats.ArenaCount++
	stats.ArenaBytes += h.mem.Size()
	stats.AllocationCount += h.allocCount
	stats.AllocationBytes += h.allocBytes
}

// AddDetailedStatistics walks the heap and accumulates per-block detail into
// stats, including free range counts and size extremes.
func (h *Heap) AddDetailedStatistics(stats *tagheap.DetailedStatistics) {
	stats.ArenaCount++
	stats.ArenaBytes += h.mem.Size()
	h.VisitBlocks(func(p Addr, size int, allocated bool) bool {
		if allocated {
			stats.AddAllocation(size)
		} else {
			stats.AddFreeRange(size)
		}
		return true
	})
}

// PrintDetailedMap writes a JSON description of the heap: summary statistics,
// detector state, operation counters, and every block with its offset, size,
// and state.
func (h *Heap) PrintDetailedMap(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	var stats tagheap.DetailedStatistics
	stats.Clear()
	h.AddDetailedStatistics(&stats)

	objState.Name("TotalBytes").Int(stats.ArenaBytes)
	objState.Name("UsedBytes").Int(stats.AllocationBytes)
	objState.Name("Allocations").Int(stats.AllocationCount)
	objState.Name("FreeRanges").Int(stats.FreeRangeCount)
	objState.Name("FitPolicy").String(h.policy.String())

	if h.detector.enabled() {
		objState.Name("HotSizeMode").Bool(h.detector.active)
		hotArray := objState.Name("HotSizes").Array()
		for _, size := range h.detector.sizes() {
			hotArray.Int(size)
		}
		hotArray.End()
	}

	countersObj := objState.Name("Counters").Object()
	countersObj.Name("Allocs").Int(h.counters.Allocs)
	countersObj.Name("Frees").Int(h.counters.Frees)
	countersObj.Name("Reallocs").Int(h.counters.Reallocs)
	countersObj.Name("GrowCalls").Int(h.counters.GrowCalls)
	countersObj.Name("Splits").Int(h.counters.Splits)
	countersObj.Name("CoalesceForward").Int(h.counters.CoalesceForward)
	countersObj.Name("CoalesceBackward").Int(h.counters.CoalesceBackward)
	countersObj.Name("CoalesceBoth").Int(h.counters.CoalesceBoth)
	countersObj.Name("HotAllocHits").Int(h.counters.HotAllocHits)
	countersObj.Name("HotFreeDeferrals").Int(h.counters.HotFreeDeferrals)
	countersObj.Name("ReallocInPlace").Int(h.counters.ReallocInPlace)
	countersObj.Name("ReallocMoves").Int(h.counters.ReallocMoves)
	countersObj.End()

	blocksArray := objState.Name("Blocks").Array()
	h.VisitBlocks(func(p Addr, size int, allocated bool) bool {
		obj := blocksArray.Object()
		obj.Name("Offset").Int(int(p))
		obj.Name("Size").Int(size)
		if allocated {
			obj.Name("Type").String("Allocation")
		} else {
			obj.Name("Type").String("Free")
		}
		obj.End()
		return true
	})
	blocksArray.End()
}
