package alloc

import (
	"fmt"

	"github.com/pkg/errors"
)

// Validate walks the whole heap and every free list, checking each structural
// invariant the allocator relies on. It returns the first inconsistency found.
// Debug builds run it after every mutating operation; release builds only run
// it when the caller asks.
func (h *Heap) Validate() error {
	prologue := h.word(wordSize)
	if headerSize(prologue) != 2*wordSize || !headerAllocated(prologue) || prologue != h.word(2*wordSize) {
		return errors.New("the prologue block is damaged")
	}

	var allocCount, allocBytes, freeCount, freeBytes int
	prevAllocated := true
	prevFree := false
	prevSize := 0
	roverSeen := h.rover == NoAddr

	bp := firstBlock
	for {
		hdr := h.header(bp)
		size := headerSize(hdr)
		if size == 0 {
			if !headerAllocated(hdr) {
				return errors.Errorf("the epilogue header at offset %d is not marked allocated", bp)
			}
			if int(bp) != len(h.buf) {
				return errors.Errorf("the epilogue sits at offset %d, but the arena ends at %d", bp, len(h.buf))
			}
			if headerPrevAllocated(hdr) != prevAllocated {
				return errors.Errorf("the epilogue disagrees about the state of the block before it")
			}
			if bp == h.rover {
				roverSeen = true
			}
			break
		}

		if bp%Alignment != 0 {
			return errors.Errorf("block at offset %d is not aligned to %d bytes", bp, Alignment)
		}
		if size < minBlockSize || size%Alignment != 0 {
			return errors.Errorf("block at offset %d has an illegal size %d", bp, size)
		}
		if int(bp)+size > len(h.buf) {
			return errors.Errorf("block at offset %d runs past the end of the %d-byte arena", bp, len(h.buf))
		}
		if headerPrevAllocated(hdr) != prevAllocated {
			return errors.Errorf("block at offset %d disagrees about the state of the block before it", bp)
		}
		if bp == h.rover {
			roverSeen = true
		}

		if headerAllocated(hdr) {
			allocCount++
			allocBytes += size
			prevAllocated = true
			prevFree = false
		} else {
			if h.word(bp+Addr(size)-2*wordSize) != hdr {
				return errors.Errorf("free block at offset %d has a footer that does not match its header", bp)
			}
			if prevFree {
				if !h.detector.active {
					return errors.Errorf("free blocks at offsets %d and %d are adjacent but uncoalesced", bp-Addr(prevSize), bp)
				}
				if h.detector.slotOf(prevSize) < 0 && h.detector.slotOf(size) < 0 {
					return errors.Errorf("free blocks at offsets %d and %d are adjacent, but neither size is hot", bp-Addr(prevSize), bp)
				}
			}
			freeCount++
			freeBytes += size
			prevAllocated = false
			prevFree = true
		}

		prevSize = size
		bp += Addr(size)
	}

	if !roverSeen {
		return errors.Errorf("the next-fit rover at offset %d does not point at a block", h.rover)
	}
	if allocCount != h.allocCount || allocBytes != h.allocBytes {
		return errors.Errorf("the heap accounts for %d allocated blocks over %d bytes, but the walk found %d over %d",
			h.allocCount, h.allocBytes, allocCount, allocBytes)
	}
	if freeCount != h.freeCount || freeBytes != h.freeBytes {
		return errors.Errorf("the heap accounts for %d free blocks over %d bytes, but the walk found %d over %d",
			h.freeCount, h.freeBytes, freeCount, freeBytes)
	}

	listed := 0
	for class := 0; class < classCount; class++ {
		count, err := h.validateBucket(class)
		if err != nil {
			return err
		}
		listed += count
	}
	for slot := range h.hotHead {
		count, err := h.validateHotList(slot)
		if err != nil {
			return err
		}
		listed += count
	}
	if listed != freeCount {
		return errors.Errorf("the free lists hold %d blocks, but the heap walk found %d free blocks", listed, freeCount)
	}

	return nil
}

// validateBucket checks one size-class bucket: every member is free, belongs
// to the class, appears in ascending address order, and links both ways.
func (h *Heap) validateBucket(class int) (int, error) {
	count := 0
	pred := NoAddr
	for bp := h.bucketHead[class]; bp != NoAddr; bp = h.freeSucc(bp) {
		if h.blockAllocated(bp) {
			return 0, errors.Errorf("block at offset %d is in a free list but is not free", bp)
		}
		if h.freePred(bp) != pred {
			return 0, errors.Errorf("block at offset %d does not link back to its list predecessor", bp)
		}
		if pred != NoAddr && bp <= pred {
			return 0, errors.Errorf("bucket %d is not in ascending address order at offset %d", class, bp)
		}
		if classIndex(h.blockSize(bp)) != class {
			return 0, errors.Errorf("block at offset %d has size %d, which does not belong in bucket %d", bp, h.blockSize(bp), class)
		}
		count++
		if count > h.freeCount {
			return 0, errors.Errorf("bucket %d has more entries than the heap has free blocks, the list must be cyclic", class)
		}
		pred = bp
	}
	return count, nil
}

// validateHotList checks one exact-fit list: every member is free, has
// exactly the monitored size of the slot, and links both ways.
func (h *Heap) validateHotList(slot int) (int, error) {
	head := h.hotHead[slot]
	if head != NoAddr && slot >= len(h.detector.monitored) {
		return 0, errors.Errorf("hot slot %d holds blocks but monitors no size", slot)
	}
	count := 0
	pred := NoAddr
	for bp := head; bp != NoAddr; bp = h.freeSucc(bp) {
		if h.blockAllocated(bp) {
			return 0, errors.Errorf("block at offset %d is in a hot list but is not free", bp)
		}
		if h.freePred(bp) != pred {
			return 0, errors.Errorf("block at offset %d does not link back to its list predecessor", bp)
		}
		if h.blockSize(bp) != int(h.detector.monitored[slot]) {
			return 0, errors.Errorf("block at offset %d has size %d, but hot slot %d monitors size %d",
				bp, h.blockSize(bp), slot, h.detector.monitored[slot])
		}
		count++
		if count > h.freeCount {
			return 0, errors.Errorf("hot slot %d has more entries than the heap has free blocks, the list must be cyclic", slot)
		}
		pred = bp
	}
	return count, nil
}

// assertLive panics unless p plausibly addresses a live allocated block. It
// backs the debug-build misuse checks; corrupt addresses that slip past it
// are caught by Validate after the operation completes.
func (h *Heap) assertLive(p Addr) {
	if p%Alignment != 0 || p < firstBlock || int(p) >= len(h.buf) {
		panic(fmt.Sprintf("address %d is not a heap block payload", p))
	}
	if !h.blockAllocated(p) {
		panic(fmt.Sprintf("block at offset %d is not allocated; double free or stale address", p))
	}
	size := h.blockSize(p)
	if size < minBlockSize || size%Alignment != 0 || int(p)+size-wordSize > len(h.buf) {
		panic(fmt.Sprintf("block at offset %d carries a corrupt size %d", p, size))
	}
}
