//go:build !unix

package arena

import "github.com/pkg/errors"

// Map is an Arena backed by an anonymous memory mapping. It is only available
// on unix platforms.
type Map struct{}

// NewMap reserves an anonymous private mapping of capacity bytes. It is only
// available on unix platforms.
func NewMap(capacity int) (*Map, error) {
	return nil, errors.New("anonymous mappings are not supported on this platform")
}

func (m *Map) Bytes() []byte { return nil }

func (m *Map) Size() int { return 0 }

func (m *Map) Grow(words int) (int, error) {
	return 0, ErrArenaLimit
}

func (m *Map) Reset() {}

// Close releases the mapping.
func (m *Map) Close() error { return nil }
