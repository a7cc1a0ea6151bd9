package alloc_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tagheap/tagheap/alloc"
	"github.com/tagheap/tagheap/arena"
	mock_arena "github.com/tagheap/tagheap/arena/mocks"
	"go.uber.org/mock/gomock"
)

// The heap's view of the arena is a handful of calls with a strict shape: one
// Reset, then growths in even word counts, reading Bytes back after each. A
// mock backed by a real buffer pins that sequence down.
func TestHeapArenaContract(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	backing := arena.NewBuffer(0)
	mem := mock_arena.NewMockArena(ctrl)
	mem.EXPECT().Reset().Do(backing.Reset).Times(1)
	mem.EXPECT().Bytes().DoAndReturn(backing.Bytes).AnyTimes()
	mem.EXPECT().Size().DoAndReturn(backing.Size).AnyTimes()
	gomock.InOrder(
		// The 16-byte bootstrap region for the padding word, the prologue,
		// and the epilogue.
		mem.EXPECT().Grow(4).DoAndReturn(backing.Grow),
		// The initial chunk.
		mem.EXPECT().Grow(1024).DoAndReturn(backing.Grow),
		// Requests beyond the chunk size grow by the adjusted block size,
		// which is a multiple of 8 bytes and so always an even word count.
		mem.EXPECT().Grow(2002).Return(0, arena.ErrArenaLimit),
	)

	heap, err := alloc.New(nil, mem, alloc.CreateOptions{})
	require.NoError(t, err)

	p, err := heap.Alloc(8000)
	require.ErrorIs(t, err, alloc.ErrOutOfMemory)
	require.Equal(t, alloc.NoAddr, p)
	require.NoError(t, heap.Validate())

	// The failed growth left the chunk intact; a small request still fits.
	p, err = heap.Alloc(100)
	require.NoError(t, err)
	require.NotEqual(t, alloc.NoAddr, p)
	require.NoError(t, heap.Validate())
}

func TestHeapSurvivesArenaRelocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	heap, err := alloc.New(nil, arena.NewBuffer(0), alloc.CreateOptions{})
	require.NoError(t, err)

	p1, err := heap.Alloc(24)
	require.NoError(t, err)
	payload := heap.Payload(p1)
	for i := range payload {
		payload[i] = 0xAB
	}

	// Far larger than the remaining chunk, so the buffer reallocates and the
	// backing array moves.
	p2, err := heap.Alloc(8000)
	require.NoError(t, err)
	require.NotEqual(t, alloc.NoAddr, p2)
	require.NoError(t, heap.Validate())

	for _, b := range heap.Payload(p1) {
		require.Equal(t, byte(0xAB), b)
	}
}
