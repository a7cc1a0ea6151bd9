package arena

import (
	"golang.org/x/exp/slices"
)

// Buffer is a heap-backed Arena. Growth reallocates through the Go runtime,
// so the backing array may move, but contents are preserved at their offsets.
type Buffer struct {
	data  []byte
	limit int
}

var _ Arena = &Buffer{}

// NewBuffer creates an empty Buffer. A positive limit caps the total size in
// bytes and Grow calls that would exceed it fail with ErrArenaLimit. A limit
// of zero or less means the buffer is bounded only by available memory.
func NewBuffer(limit int) *Buffer {
	return &Buffer{limit: limit}
}

func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) Size() int {
	return len(b.data)
}

func (b *Buffer) Grow(words int) (int, error) {
	if words <= 0 {
		return 0, ErrBadGrowCount
	}

	gain := words * WordSize
	oldSize := len(b.data)
	if b.limit > 0 && oldSize+gain > b.limit {
		return 0, ErrArenaLimit
	}

	b.data = slices.Grow(b.data, gain)[:oldSize+gain]
	return oldSize, nil
}

func (b *Buffer) Reset() {
	b.data = b.data[:0]
}
