package alloc

import (
	"fmt"
	"math"

	"github.com/tagheap/tagheap"
)

const (
	// wordSize is the width of a boundary tag in bytes.
	wordSize = 4
	// Alignment is the guaranteed alignment of every payload address, and
	// the granularity of block sizes.
	Alignment = 8
	// minBlockSize is the smallest legal block: header, two free-list link
	// words, and footer.
	minBlockSize = 16

	allocatedBit     uint32 = 0x1
	prevAllocatedBit uint32 = 0x2
	sizeMask         uint32 = ^uint32(Alignment - 1)

	// maxRequestSize bounds a single request so that adjustedSize and the
	// block arithmetic can never overflow, even on 32-bit platforms.
	maxRequestSize = math.MaxInt32 - 2*minBlockSize
)

// firstBlock is the payload address of the first real block, directly above
// the padding word and the prologue.
const firstBlock Addr = 16

// packHeader encodes a boundary tag. Block sizes are always multiples of
// Alignment, leaving the low bits free for the two state flags.
func packHeader(size int, allocated, prevAllocated bool) uint32 {
	if debugChecksEnabled && size&(Alignment-1) != 0 {
		panic(fmt.Sprintf("block size %d is not a multiple of %d", size, Alignment))
	}
	hdr := uint32(size)
	if allocated {
		hdr |= allocatedBit
	}
	if prevAllocated {
		hdr |= prevAllocatedBit
	}
	return hdr
}

func headerSize(hdr uint32) int {
	return int(hdr & sizeMask)
}

func headerAllocated(hdr uint32) bool {
	return hdr&allocatedBit != 0
}

func headerPrevAllocated(hdr uint32) bool {
	return hdr&prevAllocatedBit != 0
}

// adjustedSize converts a requested payload size into a block size: one tag
// word of overhead, rounded up to the alignment granularity, floored at the
// minimum block size.
func adjustedSize(size int) int {
	asize := tagheap.AlignUp(size+wordSize, Alignment)
	if asize < minBlockSize {
		asize = minBlockSize
	}
	return asize
}

// header returns the boundary tag of the block at bp. The tag occupies the
// word directly below the payload address.
func (h *Heap) header(bp Addr) uint32 {
	return h.word(bp - wordSize)
}

func (h *Heap) setHeader(bp Addr, hdr uint32) {
	h.setWord(bp-wordSize, hdr)
}

// setFooter mirrors hdr into the block's footer word. Only meaningful for
// free blocks; allocated blocks have no footer.
func (h *Heap) setFooter(bp Addr, hdr uint32) {
	h.setWord(bp+Addr(headerSize(hdr))-2*wordSize, hdr)
}

func (h *Heap) blockSize(bp Addr) int {
	return headerSize(h.header(bp))
}

func (h *Heap) blockAllocated(bp Addr) bool {
	return headerAllocated(h.header(bp))
}

func (h *Heap) blockPrevAllocated(bp Addr) bool {
	return headerPrevAllocated(h.header(bp))
}

// nextBlock returns the payload address of the physical successor. Walking
// past the epilogue is a caller bug and trips the bounds check in word.
func (h *Heap) nextBlock(bp Addr) Addr {
	return bp + Addr(h.blockSize(bp))
}

// prevBlock returns the payload address of the physical predecessor. Valid
// only while the predecessor is free: allocated predecessors have no footer
// to read the distance from.
func (h *Heap) prevBlock(bp Addr) Addr {
	return bp - Addr(headerSize(h.word(bp-2*wordSize)))
}

// setPrevAllocated rewrites the predecessor-state bit in the header of the
// block at bp. Free blocks mirror the change into their footer so both tags
// stay in agreement; the epilogue has no footer and is left header-only.
func (h *Heap) setPrevAllocated(bp Addr, prevAllocated bool) {
	hdr := h.header(bp)
	if prevAllocated {
		hdr |= prevAllocatedBit
	} else {
		hdr &^= prevAllocatedBit
	}
	h.setHeader(bp, hdr)
	if !headerAllocated(hdr) && headerSize(hdr) != 0 {
		h.setFooter(bp, hdr)
	}
}
