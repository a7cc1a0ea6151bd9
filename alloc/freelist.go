package alloc

import "fmt"

// classUpperBounds lists the inclusive upper block size of each size-class
// bucket. Blocks larger than the last bound share a final catch-all bucket.
var classUpperBounds = [11]int{32, 48, 64, 96, 128, 192, 256, 512, 1024, 2048, 4096}

const classCount = len(classUpperBounds) + 1

// classIndex maps a block size to its bucket. The table is small enough that
// a linear scan beats a binary search.
func classIndex(size int) int {
	for i, bound := range classUpperBounds {
		if size <= bound {
			return i
		}
	}
	return len(classUpperBounds)
}

// Free-list links live in the first two payload words of a free block, as
// arena offsets: the predecessor link at bp, the successor link one word up.

func (h *Heap) freePred(bp Addr) Addr {
	return Addr(h.word(bp))
}

func (h *Heap) setFreePred(bp, pred Addr) {
	h.setWord(bp, uint32(pred))
}

func (h *Heap) freeSucc(bp Addr) Addr {
	return Addr(h.word(bp + wordSize))
}

func (h *Heap) setFreeSucc(bp, succ Addr) {
	h.setWord(bp+wordSize, uint32(succ))
}

// insertFreeBlock files the free block at bp into the data structure that owns
// its size: the exact-fit hot list when the size is monitored, otherwise its
// size-class bucket in address order.
func (h *Heap) insertFreeBlock(bp Addr) {
	size := h.blockSize(bp)
	if slot := h.detector.slotOf(size); slot >= 0 {
		h.pushHotBlock(slot, bp)
		h.freeCount++
		h.freeBytes += size
		return
	}

	class := classIndex(size)
	pred := NoAddr
	succ := h.bucketHead[class]
	for succ != NoAddr && succ < bp {
		pred = succ
		succ = h.freeSucc(succ)
	}
	if succ == bp {
		panic(fmt.Sprintf("free block at offset %d inserted twice", bp))
	}

	if pred == NoAddr {
		h.bucketHead[class] = bp
	} else {
		h.setFreeSucc(pred, bp)
	}
	h.setFreePred(bp, pred)
	h.setFreeSucc(bp, succ)
	if succ != NoAddr {
		h.setFreePred(succ, bp)
	}

	h.freeCount++
	h.freeBytes += size
}

// pushHotBlock prepends bp to the exact-fit list of the given hot slot. Hot
// lists are LIFO: the most recently freed block is reused first.
func (h *Heap) pushHotBlock(slot int, bp Addr) {
	head := h.hotHead[slot]
	h.setFreePred(bp, NoAddr)
	h.setFreeSucc(bp, head)
	if head != NoAddr {
		h.setFreePred(head, bp)
	}
	h.hotHead[slot] = bp
}

// removeFreeBlock unlinks the free block at bp from whichever list holds it.
// The links alone cannot tell a bucket head from a hot-list head, so head
// removal consults the hot slot for the block's size first and falls back to
// the size-class bucket.
func (h *Heap) removeFreeBlock(bp Addr) {
	pred := h.freePred(bp)
	succ := h.freeSucc(bp)

	if pred != NoAddr {
		h.setFreeSucc(pred, succ)
	} else {
		size := h.blockSize(bp)
		if slot := h.detector.slotOf(size); slot >= 0 && h.hotHead[slot] == bp {
			h.hotHead[slot] = succ
		} else if class := classIndex(size); h.bucketHead[class] == bp {
			h.bucketHead[class] = succ
		} else {
			panic(fmt.Sprintf("free block at offset %d has no predecessor but heads no list", bp))
		}
	}
	if succ != NoAddr {
		h.setFreePred(succ, pred)
	}

	h.freeCount--
	h.freeBytes -= h.blockSize(bp)
}
