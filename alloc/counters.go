package alloc

// Counters holds cumulative operation counts for one Heap. They are reset by
// Init and are meant for tests, tuning, and the detailed heap map; none of
// them influence allocator decisions.
type Counters struct {
	// Allocs is the number of successful Alloc calls.
	Allocs int
	// Frees is the number of Free calls that released a block.
	Frees int
	// Reallocs is the number of Realloc calls that attempted a resize, in
	// place or not. Calls that only delegated to Alloc or Free are counted
	// by those.
	Reallocs int
	// GrowCalls is the number of heap extensions, counting the initial
	// chunk written by Init but not the 16-byte bootstrap region.
	GrowCalls int
	// Splits counts placements that cut a free block in two.
	Splits int
	// CoalesceForward, CoalesceBackward, and CoalesceBoth count merges with
	// the physical successor, predecessor, or both.
	CoalesceForward  int
	CoalesceBackward int
	CoalesceBoth     int
	// HotAllocHits counts allocations served from an exact-fit hot list.
	HotAllocHits int
	// HotFreeDeferrals counts free blocks that skipped coalescing because
	// their size was hot.
	HotFreeDeferrals int
	// ReallocInPlace counts Realloc calls resolved without moving the
	// payload; ReallocMoves counts the ones that had to copy.
	ReallocInPlace int
	ReallocMoves   int
}

// Counters returns a snapshot of the heap's operation counters.
func (h *Heap) Counters() Counters {
	return h.counters
}
