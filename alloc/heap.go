package alloc

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/tagheap/tagheap"
	"github.com/tagheap/tagheap/arena"
	"github.com/tagheap/tagheap/metrics"
	"golang.org/x/exp/slog"
)

// Heap is a boundary-tag allocator over a single arena. It is not safe for
// concurrent use.
type Heap struct {
	logger *slog.Logger
	mem    arena.Arena
	// buf caches mem.Bytes and is refreshed after every growth or reset,
	// since growth may move the backing array.
	buf []byte

	policy      FitPolicy
	chunkSize   int
	largeCutoff int
	metrics     *metrics.Metrics

	bucketHead [classCount]Addr
	hotHead    []Addr
	detector   hotSizeDetector
	// rover is the resume point for FitNext searches.
	rover Addr

	allocCount int
	allocBytes int
	freeCount  int
	freeBytes  int
	counters   Counters
}

var _ tagheap.Validatable = &Heap{}

// New creates a Heap on top of the provided arena and initializes it with one
// chunk of free memory. The arena must be empty.
//
// logger - Optional destination for heap events. nil means slog.Default()
//
// mem - The arena that backs the heap. The heap takes ownership: nothing else
// may grow or reset it
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, mem arena.Arena, options CreateOptions) (*Heap, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if mem == nil {
		return nil, errors.New("alloc.New requires an arena, but mem was nil")
	}
	if _, ok := fitPolicyMapping[options.Policy]; !ok {
		return nil, errors.Errorf("CreateOptions.Policy is %d, which is not a known fit policy", options.Policy)
	}

	heap := &Heap{
		logger:  logger,
		mem:     mem,
		policy:  options.Policy,
		metrics: options.Metrics,
	}

	if options.ChunkSize == 0 {
		heap.chunkSize = DefaultChunkSize
	} else {
		heap.chunkSize = options.ChunkSize
	}
	if heap.chunkSize < 64 {
		return nil, errors.Errorf("CreateOptions.ChunkSize must be at least 64, but is %d", heap.chunkSize)
	}
	err := tagheap.CheckPow2(heap.chunkSize, "CreateOptions.ChunkSize")
	if err != nil {
		return nil, err
	}

	if options.LargeCutoff == 0 {
		heap.largeCutoff = DefaultLargeCutoff
	} else {
		heap.largeCutoff = options.LargeCutoff
	}
	if heap.largeCutoff%Alignment != 0 || heap.largeCutoff < minBlockSize {
		return nil, errors.Errorf("CreateOptions.LargeCutoff must be a multiple of %d no smaller than %d, but is %d",
			Alignment, minBlockSize, heap.largeCutoff)
	}

	slots := options.HotSlots
	if slots == 0 {
		slots = DefaultHotSlots
	}
	if slots < 0 || slots > maxHotSlots {
		return nil, errors.Errorf("CreateOptions.HotSlots must be between 1 and %d, but is %d", maxHotSlots, options.HotSlots)
	}
	if options.Flags&HeapCreateDisableHotSizes != 0 {
		slots = 0
	}
	heap.detector.slots = slots

	if options.HotHitMin == 0 {
		heap.detector.hitMin = DefaultHotHitMin
	} else if options.HotHitMin < 0 {
		return nil, errors.Errorf("CreateOptions.HotHitMin must be positive, but is %d", options.HotHitMin)
	} else {
		heap.detector.hitMin = options.HotHitMin
	}

	if options.HotTotalMin == 0 {
		heap.detector.totalMin = DefaultHotTotalMin
	} else if options.HotTotalMin < 0 {
		return nil, errors.Errorf("CreateOptions.HotTotalMin must be positive, but is %d", options.HotTotalMin)
	} else {
		heap.detector.totalMin = options.HotTotalMin
	}

	err = heap.Init()
	if err != nil {
		return nil, err
	}
	return heap, nil
}

// Init discards every block and restores the heap to its initial state: the
// prologue, the epilogue, and one chunk-sized free block. All previously
// returned addresses become invalid. New calls it automatically; callers only
// need it to recycle a heap.
func (h *Heap) Init() error {
	h.mem.Reset()
	h.buf = nil
	for i := range h.bucketHead {
		h.bucketHead[i] = NoAddr
	}
	h.hotHead = make([]Addr, h.detector.slots)
	h.detector.reset()
	h.rover = NoAddr
	h.allocCount = 0
	h.allocBytes = 0
	h.freeCount = 0
	h.freeBytes = 0
	h.counters = Counters{}

	start, err := h.mem.Grow(4)
	if err != nil {
		return errors.Wrap(err, "the arena rejected the 16-byte bootstrap growth")
	}
	if start != 0 {
		panic(fmt.Sprintf("arena was not empty at heap init: growth began at offset %d", start))
	}
	h.buf = h.mem.Bytes()

	h.setWord(0, 0)
	prologue := packHeader(2*wordSize, true, true)
	h.setWord(4, prologue)
	h.setWord(8, prologue)
	h.setWord(12, packHeader(0, true, true))

	_, err = h.extendHeap(h.chunkSize / wordSize)
	if err != nil {
		return errors.Wrap(err, "the arena rejected the initial chunk growth")
	}

	h.metrics.SetUsage(h.allocBytes, h.freeBytes, h.mem.Size())
	h.metrics.SetHotSizeMode(false)
	return nil
}

// extendHeap grows the arena by the requested number of words, rounded up to
// keep block sizes a multiple of the alignment, and turns the new memory into
// a free block. The block begins where the old epilogue header was, and a new
// epilogue is written at the far end. Returns the free block after coalescing
// with a free predecessor.
func (h *Heap) extendHeap(words int) (Addr, error) {
	if words%2 != 0 {
		words++
	}
	start, err := h.mem.Grow(words)
	if err != nil {
		return NoAddr, err
	}
	h.buf = h.mem.Bytes()
	h.counters.GrowCalls++
	h.metrics.TrackGrow()

	size := words * wordSize
	bp := Addr(start)
	oldEpilogue := h.header(bp)
	if headerSize(oldEpilogue) != 0 || !headerAllocated(oldEpilogue) {
		panic(fmt.Sprintf("heap tail at offset %d does not hold an epilogue header", start-wordSize))
	}

	hdr := packHeader(size, false, headerPrevAllocated(oldEpilogue))
	h.setHeader(bp, hdr)
	h.setFooter(bp, hdr)
	h.setHeader(bp+Addr(size), packHeader(0, true, false))

	return h.coalesce(bp), nil
}

// Alloc reserves a block whose payload can hold at least size bytes and
// returns its address. Requests of zero or negative size return NoAddr with
// no error. When no free block fits, the heap grows the arena by at least one
// chunk; if the arena refuses, Alloc returns ErrOutOfMemory and the heap is
// unchanged.
func (h *Heap) Alloc(size int) (Addr, error) {
	if size <= 0 {
		return NoAddr, nil
	}
	if size > maxRequestSize {
		return NoAddr, ErrOutOfMemory
	}
	asize := adjustedSize(size)

	if h.detector.observe(asize) {
		h.logger.LogAttrs(context.Background(), slog.LevelInfo, "hot-size mode latched",
			slog.Int("size", asize),
			slog.Int("totalAllocs", h.detector.totalAllocs))
		h.metrics.SetHotSizeMode(true)
	}

	var bp Addr
	if slot := h.detector.slotOf(asize); slot >= 0 && h.hotHead[slot] != NoAddr {
		bp = h.place(h.hotHead[slot], asize)
		h.counters.HotAllocHits++
	} else if fit := h.findFit(asize); fit != NoAddr {
		bp = h.place(fit, asize)
	} else {
		growBytes := asize
		if growBytes < h.chunkSize {
			growBytes = h.chunkSize
		}
		fresh, err := h.extendHeap(growBytes / wordSize)
		if err != nil {
			h.logger.LogAttrs(context.Background(), slog.LevelDebug, "arena growth failed",
				slog.Int("bytes", growBytes),
				slog.Any("error", err))
			return NoAddr, ErrOutOfMemory
		}
		bp = h.place(fresh, asize)
	}

	h.allocCount++
	h.allocBytes += h.blockSize(bp)
	h.counters.Allocs++
	h.metrics.TrackAlloc()
	h.metrics.SetUsage(h.allocBytes, h.freeBytes, h.mem.Size())
	tagheap.DebugValidate(h)
	return bp, nil
}

// Free releases the block at p. p must be an address returned by Alloc or
// Realloc that has not been freed since; Free(NoAddr) is a no-op. The block
// merges with free physical neighbours unless its size is currently hot, in
// which case it goes straight onto the exact-fit list for reuse.
func (h *Heap) Free(p Addr) {
	if p == NoAddr {
		return
	}
	if debugChecksEnabled {
		h.assertLive(p)
	}

	size := h.blockSize(p)
	if tagheap.PoisonFreedMemory {
		tagheap.WritePoisonValue(h.buf, int(p)+2*wordSize, size-minBlockSize)
	}
	hdr := packHeader(size, false, h.blockPrevAllocated(p))
	h.setHeader(p, hdr)
	h.setFooter(p, hdr)

	h.allocCount--
	h.allocBytes -= size
	h.coalesce(p)

	h.counters.Frees++
	h.metrics.TrackFree()
	h.metrics.SetUsage(h.allocBytes, h.freeBytes, h.mem.Size())
	tagheap.DebugValidate(h)
}

// Payload returns the usable bytes of the allocated block at p. The slice is
// at least as long as the size passed to Alloc and remains valid only until
// the next operation that can grow or reset the arena.
func (h *Heap) Payload(p Addr) []byte {
	if p == NoAddr {
		return nil
	}
	if debugChecksEnabled {
		h.assertLive(p)
	}
	return h.buf[p : int(p)+h.blockSize(p)-wordSize]
}

// PayloadSize returns the usable capacity in bytes of the allocated block at
// p. It can exceed the requested size because of alignment and the minimum
// block size.
func (h *Heap) PayloadSize(p Addr) int {
	if p == NoAddr {
		return 0
	}
	if debugChecksEnabled {
		h.assertLive(p)
	}
	return h.blockSize(p) - wordSize
}

// HotSizeActive reports whether the hot-size detector has latched.
func (h *Heap) HotSizeActive() bool {
	return h.detector.active
}

// Close verifies that every allocation has been freed and releases the heap's
// hold on the arena. A heap with live allocations logs each leaked block and
// returns an error without releasing anything, so the leak can be inspected.
func (h *Heap) Close() error {
	if h.allocCount > 0 {
		h.logger.LogAttrs(context.Background(), slog.LevelError, "heap closed with live allocations",
			slog.Int("count", h.allocCount),
			slog.Int("bytes", h.allocBytes))
		h.VisitBlocks(func(p Addr, size int, allocated bool) bool {
			if allocated {
				h.logger.LogAttrs(context.Background(), slog.LevelError, "unfreed block",
					slog.Int("offset", int(p)),
					slog.Int("size", size))
			}
			return true
		})
		return errors.Errorf("%d heap blocks were not freed before close", h.allocCount)
	}

	h.buf = nil
	h.mem = nil
	return nil
}
