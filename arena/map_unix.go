//go:build unix

package arena

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Map is an Arena backed by an anonymous memory mapping. The full capacity is
// reserved up front, so the backing memory never moves and Grow never copies.
// Pages are committed by the operating system on first touch.
type Map struct {
	mapping []byte
	size    int
}

var _ Arena = &Map{}

// NewMap reserves an anonymous private mapping of capacity bytes and returns
// a Map of size zero over it. The capacity is rounded up to a whole number of
// words. Close must be called to release the mapping.
func NewMap(capacity int) (*Map, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("mapping capacity must be positive: %d", capacity)
	}

	capacity = (capacity + WordSize - 1) &^ (WordSize - 1)
	mapping, err := unix.Mmap(-1, 0, capacity,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to map %d anonymous bytes", capacity)
	}

	return &Map{mapping: mapping}, nil
}

func (m *Map) Bytes() []byte {
	return m.mapping[:m.size]
}

func (m *Map) Size() int {
	return m.size
}

func (m *Map) Grow(words int) (int, error) {
	if words <= 0 {
		return 0, ErrBadGrowCount
	}

	gain := words * WordSize
	if m.size+gain > len(m.mapping) {
		return 0, ErrArenaLimit
	}

	oldSize := m.size
	m.size += gain
	return oldSize, nil
}

func (m *Map) Reset() {
	m.size = 0
}

// Close releases the mapping. The Map must not be used afterward.
func (m *Map) Close() error {
	if m.mapping == nil {
		return nil
	}

	err := unix.Munmap(m.mapping)
	m.mapping = nil
	m.size = 0
	if err != nil {
		return errors.Wrap(err, "failed to unmap arena")
	}
	return nil
}
