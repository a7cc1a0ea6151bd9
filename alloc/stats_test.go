package alloc_test

import (
	"encoding/json"
	"testing"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/tagheap/tagheap"
	"github.com/tagheap/tagheap/alloc"
	"github.com/tagheap/tagheap/arena"
	"go.uber.org/mock/gomock"
)

func TestAddStatisticsAccumulatesAcrossHeaps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	heap1, err := alloc.New(nil, arena.NewBuffer(0), alloc.CreateOptions{})
	require.NoError(t, err)
	heap2, err := alloc.New(nil, arena.NewBuffer(0), alloc.CreateOptions{})
	require.NoError(t, err)

	_, err = heap1.Alloc(100)
	require.NoError(t, err)
	_, err = heap2.Alloc(200)
	require.NoError(t, err)

	var stats tagheap.Statistics
	heap1.AddStatistics(&stats)
	heap2.AddStatistics(&stats)

	require.Equal(t, tagheap.Statistics{
		ArenaCount:      2,
		AllocationCount: 2,
		ArenaBytes:      8224,
		AllocationBytes: 312,
	}, stats)
}

func TestVisitBlocksStopsEarly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	heap, err := alloc.New(nil, arena.NewBuffer(0), alloc.CreateOptions{})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := heap.Alloc(24)
		require.NoError(t, err)
	}

	visited := 0
	heap.VisitBlocks(func(p alloc.Addr, size int, allocated bool) bool {
		visited++
		return visited < 2
	})
	require.Equal(t, 2, visited)
}

func TestPrintDetailedMap(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	heap, err := alloc.New(nil, arena.NewBuffer(0), alloc.CreateOptions{})
	require.NoError(t, err)
	_, err = heap.Alloc(100)
	require.NoError(t, err)

	writer := jwriter.NewWriter()
	heap.PrintDetailedMap(&writer)
	require.NoError(t, writer.Error())

	var report struct {
		TotalBytes  int
		UsedBytes   int
		Allocations int
		FreeRanges  int
		FitPolicy   string
		HotSizeMode bool
		HotSizes    []int
		Counters    struct {
			Allocs    int
			Frees     int
			GrowCalls int
			Splits    int
		}
		Blocks []struct {
			Offset int
			Size   int
			Type   string
		}
	}
	require.NoError(t, json.Unmarshal(writer.Bytes(), &report))

	require.Equal(t, 4112, report.TotalBytes)
	require.Equal(t, 104, report.UsedBytes)
	require.Equal(t, 1, report.Allocations)
	require.Equal(t, 1, report.FreeRanges)
	require.Equal(t, "FitSegregated", report.FitPolicy)
	require.False(t, report.HotSizeMode)
	require.Empty(t, report.HotSizes)
	require.Equal(t, 1, report.Counters.Allocs)
	require.Zero(t, report.Counters.Frees)
	require.Equal(t, 1, report.Counters.GrowCalls)
	require.Equal(t, 1, report.Counters.Splits)

	require.Len(t, report.Blocks, 2)
	require.Equal(t, 16, report.Blocks[0].Offset)
	require.Equal(t, 3992, report.Blocks[0].Size)
	require.Equal(t, "Free", report.Blocks[0].Type)
	require.Equal(t, 4008, report.Blocks[1].Offset)
	require.Equal(t, 104, report.Blocks[1].Size)
	require.Equal(t, "Allocation", report.Blocks[1].Type)
}
