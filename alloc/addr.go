package alloc

import (
	"encoding/binary"
	"fmt"
)

// Addr is the address of a block payload, expressed as a byte offset from the
// start of the heap's arena. Addresses returned by Alloc are always multiples
// of 8. The zero value NoAddr never identifies a block, since the low bytes of
// the arena are occupied by the padding word and the prologue.
type Addr uint32

// NoAddr is the null address. Alloc returns it when the request cannot be
// satisfied, and free-list links use it as their list terminator.
const NoAddr Addr = 0

// word reads the 4-byte little-endian word at the given byte offset. An
// underflowed offset wraps far past the arena end and is caught by the same
// bounds check.
func (h *Heap) word(off Addr) uint32 {
	end := int(off) + wordSize
	if end > len(h.buf) {
		panic(fmt.Sprintf("heap read at offset %d is outside the %d-byte arena", off, len(h.buf)))
	}
	return binary.LittleEndian.Uint32(h.buf[off:end])
}

// setWord writes the 4-byte little-endian word at the given byte offset.
func (h *Heap) setWord(off Addr, value uint32) {
	end := int(off) + wordSize
	if end > len(h.buf) {
		panic(fmt.Sprintf("heap write at offset %d is outside the %d-byte arena", off, len(h.buf)))
	}
	binary.LittleEndian.PutUint32(h.buf[off:end], value)
}
