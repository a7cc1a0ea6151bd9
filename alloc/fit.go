package alloc

import "math"

// findFit searches the free blocks for one that can hold a request of asize
// bytes, according to the heap's fit policy. Alloc has already tried the
// exact-fit hot list for this size, so findFit never needs to.
func (h *Heap) findFit(asize int) Addr {
	switch h.policy {
	case FitFirst:
		return h.findFirstFit(asize)
	case FitNext:
		return h.findNextFit(asize)
	case FitBest:
		return h.findBestFit(asize)
	default:
		return h.findSegregatedFit(asize)
	}
}

// findFirstFit walks the heap in address order and returns the first free
// block large enough. The walk sees every free block, hot-listed or not.
func (h *Heap) findFirstFit(asize int) Addr {
	for bp := firstBlock; h.blockSize(bp) > 0; bp = h.nextBlock(bp) {
		if !h.blockAllocated(bp) && h.blockSize(bp) >= asize {
			return bp
		}
	}
	return NoAddr
}

// findNextFit walks like findFirstFit but resumes at the rover, wrapping
// around to the heap start and stopping where it began.
func (h *Heap) findNextFit(asize int) Addr {
	start := h.rover
	if start == NoAddr {
		start = firstBlock
	}
	for bp := start; h.blockSize(bp) > 0; bp = h.nextBlock(bp) {
		if !h.blockAllocated(bp) && h.blockSize(bp) >= asize {
			return bp
		}
	}
	for bp := firstBlock; bp != start && h.blockSize(bp) > 0; bp = h.nextBlock(bp) {
		if !h.blockAllocated(bp) && h.blockSize(bp) >= asize {
			return bp
		}
	}
	return NoAddr
}

// findBestFit scans every bucket that could hold the request and returns the
// smallest sufficient block. An exact size match ends the scan early. Blocks
// on hot lists are not considered; they are reserved for requests of exactly
// their size.
func (h *Heap) findBestFit(asize int) Addr {
	best := NoAddr
	bestSize := math.MaxInt
	for class := classIndex(asize); class < classCount; class++ {
		for bp := h.bucketHead[class]; bp != NoAddr; bp = h.freeSucc(bp) {
			size := h.blockSize(bp)
			if size < asize {
				continue
			}
			if size == asize {
				return bp
			}
			if size < bestSize {
				best = bp
				bestSize = size
			}
		}
	}
	return best
}

// findSegregatedFit searches the request's own size-class bucket for the
// smallest sufficient block, then falls back to the head of the first larger
// non-empty bucket. Every block in a larger class exceeds the home class
// bound, so the head is always big enough. Hot-listed blocks are not
// considered.
func (h *Heap) findSegregatedFit(asize int) Addr {
	class := classIndex(asize)

	best := NoAddr
	bestSize := math.MaxInt
	for bp := h.bucketHead[class]; bp != NoAddr; bp = h.freeSucc(bp) {
		size := h.blockSize(bp)
		if size < asize {
			continue
		}
		if size == asize {
			return bp
		}
		if size < bestSize {
			best = bp
			bestSize = size
		}
	}
	if best != NoAddr {
		return best
	}

	for class++; class < classCount; class++ {
		if h.bucketHead[class] != NoAddr {
			return h.bucketHead[class]
		}
	}
	return NoAddr
}
