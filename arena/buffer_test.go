package arena_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tagheap/tagheap/arena"
)

func TestBufferGrowReturnsOldLength(t *testing.T) {
	buf := arena.NewBuffer(0)
	require.Zero(t, buf.Size())

	start, err := buf.Grow(4)
	require.NoError(t, err)
	require.Zero(t, start)
	require.Equal(t, 16, buf.Size())

	start, err = buf.Grow(2)
	require.NoError(t, err)
	require.Equal(t, 16, start)
	require.Equal(t, 24, buf.Size())
	require.Len(t, buf.Bytes(), 24)
}

func TestBufferContentsSurviveGrowth(t *testing.T) {
	buf := arena.NewBuffer(0)
	_, err := buf.Grow(4)
	require.NoError(t, err)

	data := buf.Bytes()
	for i := range data {
		data[i] = byte(i + 1)
	}

	// Big enough to force a fresh backing array.
	_, err = buf.Grow(4096)
	require.NoError(t, err)

	data = buf.Bytes()
	require.Len(t, data, 16400)
	for i := 0; i < 16; i++ {
		require.Equal(t, byte(i+1), data[i])
	}
	for _, b := range data[16:] {
		require.Zero(t, b)
	}
}

func TestBufferLimit(t *testing.T) {
	buf := arena.NewBuffer(24)

	_, err := buf.Grow(4)
	require.NoError(t, err)

	_, err = buf.Grow(4)
	require.ErrorIs(t, err, arena.ErrArenaLimit)
	require.Equal(t, 16, buf.Size())

	_, err = buf.Grow(2)
	require.NoError(t, err)
	require.Equal(t, 24, buf.Size())

	_, err = buf.Grow(1)
	require.ErrorIs(t, err, arena.ErrArenaLimit)
}

func TestBufferRejectsBadGrowCount(t *testing.T) {
	buf := arena.NewBuffer(0)

	_, err := buf.Grow(0)
	require.ErrorIs(t, err, arena.ErrBadGrowCount)

	_, err = buf.Grow(-1)
	require.ErrorIs(t, err, arena.ErrBadGrowCount)
	require.Zero(t, buf.Size())
}

func TestBufferReset(t *testing.T) {
	buf := arena.NewBuffer(0)
	_, err := buf.Grow(6)
	require.NoError(t, err)

	buf.Reset()
	require.Zero(t, buf.Size())
	require.Empty(t, buf.Bytes())

	start, err := buf.Grow(4)
	require.NoError(t, err)
	require.Zero(t, start)
}
