package alloc

import "github.com/dolthub/swiss"

// hotSizeDetector watches the stream of adjusted allocation sizes and flips
// the heap into hot-size mode once a single size dominates. The latch is one
// way: once active the detector stays active until the heap is reinitialized,
// so a workload that changes shape later keeps its exact-fit lists.
type hotSizeDetector struct {
	slots    int
	hitMin   int
	totalMin int

	totalAllocs int
	hits        *swiss.Map[uint32, int]
	active      bool
	monitored   []uint32
}

// reset clears all observation state while keeping the configured thresholds.
func (d *hotSizeDetector) reset() {
	d.totalAllocs = 0
	d.active = false
	d.monitored = d.monitored[:0]
	if d.slots > 0 {
		d.hits = swiss.NewMap[uint32, int](64)
	} else {
		d.hits = nil
	}
}

func (d *hotSizeDetector) enabled() bool {
	return d.slots > 0
}

// observe records one allocation of the given adjusted size. It returns true
// exactly once, on the allocation that flips the detector into hot-size mode.
// A size starts being monitored when its own hit count and the total
// allocation count have both crossed their thresholds and a slot is free;
// sizes crossing the thresholds later fill the remaining slots silently.
func (d *hotSizeDetector) observe(size int) bool {
	if !d.enabled() {
		return false
	}
	d.totalAllocs++

	key := uint32(size)
	hits, _ := d.hits.Get(key)
	hits++
	d.hits.Put(key, hits)

	if hits < d.hitMin || d.totalAllocs < d.totalMin {
		return false
	}
	if d.indexOf(key) < 0 && len(d.monitored) < d.slots {
		d.monitored = append(d.monitored, key)
	}
	if !d.active && d.indexOf(key) >= 0 {
		d.active = true
		return true
	}
	return false
}

// slotOf returns the hot slot monitoring the given block size, or -1 when the
// detector is not active or the size is not monitored.
func (d *hotSizeDetector) slotOf(size int) int {
	if !d.active {
		return -1
	}
	return d.indexOf(uint32(size))
}

func (d *hotSizeDetector) indexOf(key uint32) int {
	for i, monitored := range d.monitored {
		if monitored == key {
			return i
		}
	}
	return -1
}

// sizes returns the monitored sizes in slot order.
func (d *hotSizeDetector) sizes() []int {
	out := make([]int, len(d.monitored))
	for i, monitored := range d.monitored {
		out[i] = int(monitored)
	}
	return out
}
