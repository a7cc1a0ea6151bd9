//go:build debug_tagheap

package alloc

// debugChecksEnabled gates the misuse assertions in Free, Realloc, Payload,
// and PayloadSize, plus the whole-heap validation after every mutating
// operation. It is true only when the debug_tagheap build tag is present.
const debugChecksEnabled = true
