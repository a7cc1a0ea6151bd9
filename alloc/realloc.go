package alloc

import "github.com/tagheap/tagheap"

// Realloc resizes the allocation at p so its payload can hold at least size
// bytes, moving it only when it must. Realloc(NoAddr, size) is Alloc(size);
// Realloc(p, 0) frees p and returns NoAddr. On any error the block at p is
// untouched and still valid.
//
// A shrinking request always keeps the block. A growing request first tries
// to absorb a free physical successor; failing that the payload is copied to
// a fresh allocation and p is freed. Only min(old payload capacity, size)
// bytes survive a move.
func (h *Heap) Realloc(p Addr, size int) (Addr, error) {
	if p == NoAddr {
		return h.Alloc(size)
	}
	if size <= 0 {
		h.Free(p)
		return NoAddr, nil
	}
	if size > maxRequestSize {
		return NoAddr, ErrOutOfMemory
	}
	if debugChecksEnabled {
		h.assertLive(p)
	}

	h.counters.Reallocs++
	h.metrics.TrackRealloc()

	asize := adjustedSize(size)
	cur := h.blockSize(p)
	if asize <= cur {
		h.counters.ReallocInPlace++
		return p, nil
	}

	next := h.nextBlock(p)
	if !h.blockAllocated(next) && cur+h.blockSize(next) >= asize {
		nsize := h.blockSize(next)
		h.removeFreeBlock(next)
		h.setHeader(p, packHeader(cur+nsize, true, h.blockPrevAllocated(p)))
		h.setPrevAllocated(h.nextBlock(p), true)
		h.allocBytes += nsize
		if h.rover == next {
			h.rover = h.nextBlock(p)
		}
		h.counters.ReallocInPlace++
		h.metrics.SetUsage(h.allocBytes, h.freeBytes, h.mem.Size())
		tagheap.DebugValidate(h)
		return p, nil
	}

	np, err := h.Alloc(size)
	if err != nil {
		return NoAddr, err
	}
	n := cur - wordSize
	if size < n {
		n = size
	}
	copy(h.buf[np:int(np)+n], h.buf[p:int(p)+n])
	h.Free(p)
	h.counters.ReallocMoves++
	return np, nil
}
