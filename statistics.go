package tagheap

import "math"

// Statistics is a set of basic accounting numbers for a heap. The Add methods
// on Heap accumulate into an existing value, so statistics from several
// independent heaps can be combined by reusing one Statistics value.
type Statistics struct {
	// ArenaCount is the number of managed arenas contributing to this value
	ArenaCount int
	// AllocationCount is the number of live allocations
	AllocationCount int
	// ArenaBytes is the total size of the managed arenas in bytes, including
	// block headers and bookkeeping overhead
	ArenaBytes int
	// AllocationBytes is the total size in bytes of all live allocated blocks
	AllocationBytes int
}

func (s *Statistics) Clear() {
	s.ArenaCount = 0
	s.AllocationCount = 0
	s.ArenaBytes = 0
	s.AllocationBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.ArenaCount += other.ArenaCount
	s.AllocationCount += other.AllocationCount
	s.ArenaBytes += other.ArenaBytes
	s.AllocationBytes += other.AllocationBytes
}

// DetailedStatistics extends Statistics with free-range accounting and
// min/max block sizes. Somewhat more expensive to collect than Statistics,
// since it requires a full walk of the arena.
type DetailedStatistics struct {
	Statistics
	// FreeRangeCount is the number of free blocks between allocations
	FreeRangeCount int
	// AllocationSizeMin is the size in bytes of the smallest live allocated block
	AllocationSizeMin int
	// AllocationSizeMax is the size in bytes of the largest live allocated block
	AllocationSizeMax int
	// FreeRangeSizeMin is the size in bytes of the smallest free block
	FreeRangeSizeMin int
	// FreeRangeSizeMax is the size in bytes of the largest free block
	FreeRangeSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.FreeRangeCount = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.FreeRangeSizeMin = math.MaxInt
	s.FreeRangeSizeMax = 0
}

func (s *DetailedStatistics) AddFreeRange(size int) {
	s.FreeRangeCount++

	if size < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = size
	}

	if size > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = size
	}
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.FreeRangeCount += other.FreeRangeCount

	if other.FreeRangeSizeMin < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = other.FreeRangeSizeMin
	}

	if other.FreeRangeSizeMax > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = other.FreeRangeSizeMax
	}

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}

	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}
}
