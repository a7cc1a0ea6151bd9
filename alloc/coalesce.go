package alloc

// coalesce merges the free block at bp with any free physical neighbours,
// files the survivor into the free structure, and returns its address. The
// block must carry free boundary tags and must not be on any list yet.
//
// A block whose size is currently hot skips merging entirely: it keeps its
// exact size and goes straight onto the hot list, so the next allocation of
// that size can take it back in O(1).
func (h *Heap) coalesce(bp Addr) Addr {
	size := h.blockSize(bp)

	if h.detector.slotOf(size) >= 0 {
		h.insertFreeBlock(bp)
		h.setPrevAllocated(h.nextBlock(bp), false)
		h.counters.HotFreeDeferrals++
		return bp
	}

	prevFree := !h.blockPrevAllocated(bp)
	next := h.nextBlock(bp)
	nextFree := !h.blockAllocated(next)

	switch {
	case !prevFree && !nextFree:

	case !prevFree && nextFree:
		h.removeFreeBlock(next)
		size += h.blockSize(next)
		h.counters.CoalesceForward++

	case prevFree && !nextFree:
		prev := h.prevBlock(bp)
		h.removeFreeBlock(prev)
		size += h.blockSize(prev)
		bp = prev
		h.counters.CoalesceBackward++

	default:
		prev := h.prevBlock(bp)
		h.removeFreeBlock(prev)
		h.removeFreeBlock(next)
		size += h.blockSize(prev) + h.blockSize(next)
		bp = prev
		h.counters.CoalesceBoth++
	}

	hdr := packHeader(size, false, h.blockPrevAllocated(bp))
	h.setHeader(bp, hdr)
	h.setFooter(bp, hdr)
	h.setPrevAllocated(h.nextBlock(bp), false)
	h.insertFreeBlock(bp)

	// A rover left inside the merged range would no longer point at a block
	// boundary.
	if h.rover > bp && h.rover < bp+Addr(size) {
		h.rover = bp
	}
	return bp
}
