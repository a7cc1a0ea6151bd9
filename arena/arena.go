package arena

// WordSize is the unit of growth for managed arenas, in bytes. Heap
// bookkeeping is written in 4-byte words, so arenas only ever change size by
// a multiple of this value.
const WordSize = 4

// Arena is a single contiguous byte range that can grow at its high end.
// Consumers address the range by byte offset rather than by pointer, so
// implementations are free to relocate the backing memory during Grow as long
// as existing contents are preserved at their offsets.
//
// Implementations are not safe for concurrent use.
type Arena interface {
	// Bytes returns the managed range. The returned slice is only valid until
	// the next call to Grow or Reset.
	Bytes() []byte
	// Size returns the current length of the managed range in bytes.
	Size() int
	// Grow extends the range by words*WordSize bytes and returns the offset
	// where the new region begins, which is always the previous size. The
	// contents of the new region are unspecified. On failure the range is
	// unchanged.
	Grow(words int) (int, error)
	// Reset truncates the range to zero length, retaining whatever backing
	// capacity the implementation holds. All previously issued offsets become
	// invalid.
	Reset()
}
