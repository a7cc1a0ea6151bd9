package alloc

// place converts the free block at bp into an allocation of asize bytes and
// returns the allocation's address. When the leftover space is worth keeping
// it is split off as a free block: large requests take the high end of the
// split so that long-lived big allocations gather away from the small ones,
// everything else takes the low end. The split threshold doubles for hot
// sizes, which keeps their blocks intact for exact reuse.
func (h *Heap) place(bp Addr, asize int) Addr {
	h.removeFreeBlock(bp)
	size := h.blockSize(bp)
	prevAllocated := h.blockPrevAllocated(bp)

	threshold := minBlockSize
	if h.detector.slotOf(asize) >= 0 {
		threshold *= 2
	}

	remainder := size - asize
	if remainder < threshold {
		// The whole block becomes the allocation; the slack stays inside
		// it. The old footer is left behind in the payload, where nothing
		// will read it.
		h.setHeader(bp, packHeader(size, true, prevAllocated))
		h.setPrevAllocated(h.nextBlock(bp), true)
		h.rover = h.nextBlock(bp)
		return bp
	}

	h.counters.Splits++
	if asize >= h.largeCutoff {
		rhdr := packHeader(remainder, false, prevAllocated)
		h.setHeader(bp, rhdr)
		h.setFooter(bp, rhdr)
		abp := bp + Addr(remainder)
		h.setHeader(abp, packHeader(asize, true, false))
		h.setPrevAllocated(h.nextBlock(abp), true)
		// The remainder may touch a free block left below by a deferred
		// free, so it is filed through coalesce rather than inserted
		// directly.
		h.coalesce(bp)
		h.rover = h.nextBlock(abp)
		return abp
	}

	h.setHeader(bp, packHeader(asize, true, prevAllocated))
	rbp := bp + Addr(asize)
	rhdr := packHeader(remainder, false, true)
	h.setHeader(rbp, rhdr)
	h.setFooter(rbp, rhdr)
	h.rover = h.coalesce(rbp)
	return bp
}
