package alloc

import (
	"strings"

	"github.com/tagheap/tagheap/metrics"
)

// FitPolicy selects the strategy a Heap uses to search its free lists for a
// block that can hold a request.
type FitPolicy uint32

const (
	// FitSegregated searches only the size-class bucket of the request and,
	// failing that, takes the head of the first larger non-empty bucket. This
	// is the default policy and the fastest on mixed workloads.
	FitSegregated FitPolicy = iota
	// FitBest scans every bucket that could hold the request and picks the
	// smallest sufficient block, stopping early on an exact size match.
	FitBest
	// FitFirst walks the heap in address order and takes the first free
	// block large enough.
	FitFirst
	// FitNext behaves like FitFirst but resumes each search where the
	// previous one left off, wrapping around to the heap start.
	FitNext
)

var fitPolicyMapping = map[FitPolicy]string{
	FitSegregated: "FitSegregated",
	FitBest:       "FitBest",
	FitFirst:      "FitFirst",
	FitNext:       "FitNext",
}

func (p FitPolicy) String() string {
	return fitPolicyMapping[p]
}

// CreateFlags alter optional Heap behavior at construction time.
type CreateFlags uint32

const (
	// HeapCreateDisableHotSizes turns the hot-size detector off entirely.
	// Every free coalesces eagerly and no exact-fit lists are kept.
	HeapCreateDisableHotSizes CreateFlags = 1 << iota
)

var createFlagsMapping = map[CreateFlags]string{
	HeapCreateDisableHotSizes: "HeapCreateDisableHotSizes",
}

func (f CreateFlags) String() string {
	var sb strings.Builder
	for bit := CreateFlags(1); bit != 0 && bit <= f; bit <<= 1 {
		if f&bit == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteRune('|')
		}
		sb.WriteString(createFlagsMapping[bit])
	}
	return sb.String()
}

const (
	// DefaultChunkSize is the minimum number of bytes the heap requests from
	// the arena when it runs out of free blocks.
	DefaultChunkSize = 4096
	// DefaultLargeCutoff is the adjusted size at or above which a request is
	// placed at the high end of a split block.
	DefaultLargeCutoff = 96
	// DefaultHotSlots is the number of sizes the hot-size detector can
	// monitor at once.
	DefaultHotSlots = 4
	// DefaultHotHitMin is the number of times a single size must be
	// requested before it can latch the detector.
	DefaultHotHitMin = 512
	// DefaultHotTotalMin is the total number of allocations the heap must
	// have served before the detector can latch.
	DefaultHotTotalMin = 4096

	maxHotSlots = 64
)

// CreateOptions configures a new Heap. The zero value selects segregated fit
// and the package defaults for every threshold.
type CreateOptions struct {
	// Flags are optional behavior switches.
	Flags CreateFlags
	// Policy is the free-list search strategy. The zero value is
	// FitSegregated.
	Policy FitPolicy
	// ChunkSize is the minimum arena growth in bytes. It must be a power of
	// two no smaller than 64. 0 means DefaultChunkSize.
	ChunkSize int
	// LargeCutoff is the adjusted block size at or above which a request is
	// carved from the high end of a split. It must be a multiple of 8 and at
	// least 16. 0 means DefaultLargeCutoff.
	LargeCutoff int
	// HotSlots caps how many distinct sizes the hot-size detector monitors.
	// 0 means DefaultHotSlots; use HeapCreateDisableHotSizes to turn the
	// detector off.
	HotSlots int
	// HotHitMin is the per-size request count a size needs before latching
	// the detector. 0 means DefaultHotHitMin.
	HotHitMin int
	// HotTotalMin is the total allocation count the heap needs before the
	// detector may latch. 0 means DefaultHotTotalMin.
	HotTotalMin int
	// Metrics is an optional sink for operation and usage metrics. It may be
	// nil, in which case nothing is recorded.
	Metrics *metrics.Metrics
}
