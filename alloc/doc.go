// Package alloc implements a malloc-style heap over a growable byte arena.
//
// # Overview
//
// A Heap carves an arena.Arena into blocks bounded by 4-byte tags and hands
// out payload addresses aligned to 8 bytes. Allocation, freeing, in-place
// resizing, coalescing of neighbours, and heap-order growth all follow the
// classic boundary-tag design, with two refinements:
//
//   - Footer elimination: only free blocks carry a footer. Allocated blocks
//     give the footer word back to the payload, and every header mirrors the
//     allocation state of its physical predecessor in a dedicated bit so that
//     backward coalescing never needs to read an allocated block's footer.
//
//   - Hot-size acceleration: the heap watches the stream of adjusted request
//     sizes. Once a size proves dominant it is moved onto an exact-fit LIFO
//     list, frees of that size skip coalescing, and matching allocations are
//     served in O(1) from the list head.
//
// # Blocks
//
// Every block is at least 16 bytes and a multiple of 8. The payload address
// identifies the block; its header lives in the word just below. Free blocks
// store their free-list links in the first two payload words, so the payload
// of a freed block is always destroyed.
//
// The arena begins with a padding word, an 8-byte prologue block, and ends
// with a zero-size epilogue header. Both are permanently allocated and exist
// only so boundary cases of coalescing disappear.
//
// # Free lists
//
// Free blocks are filed into size-class buckets, each an address-ordered
// doubly linked list threaded through the blocks' own payload bytes. The fit
// policy chosen at construction (segregated, best, first, or next fit)
// decides how a request searches them.
//
// # Misuse and corruption
//
// Freeing an address that was never returned by Alloc, or using a payload
// after Free, is undefined behaviour. Builds with the debug_tagheap tag add
// assertions that catch most such misuse and poison freed payloads; release
// builds pay no cost for them. When the heap detects that its own structures
// are inconsistent it panics.
//
// # Concurrency
//
// A Heap is not safe for concurrent use. Callers owning more than one
// goroutine must synchronize externally or give each goroutine its own Heap.
package alloc
