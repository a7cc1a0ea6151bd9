// Package metrics provides an optional Prometheus sink for heap activity.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a set of Prometheus collectors that a heap reports into as it
// operates. A nil *Metrics is valid: every method no-ops, so callers that do
// not monitor can pass nil without guarding call sites.
type Metrics struct {
	// Allocs counts successful block allocations
	Allocs prometheus.Counter
	// Frees counts freed blocks
	Frees prometheus.Counter
	// Reallocs counts reallocate requests, whether served in place or by moving
	Reallocs prometheus.Counter
	// GrowCalls counts arena growth requests issued by the heap
	GrowCalls prometheus.Counter

	// AllocatedBytes tracks the total size of live allocated blocks
	AllocatedBytes prometheus.Gauge
	// FreeBytes tracks the total size of free blocks
	FreeBytes prometheus.Gauge
	// ArenaBytes tracks the size of the managed arena
	ArenaBytes prometheus.Gauge
	// HotSizeMode is 1 once the heap's hot-size mode has latched, 0 before
	HotSizeMode prometheus.Gauge
}

// New creates a Metrics with every collector initialized under the provided
// namespace. The collectors are not registered anywhere; pass a registerer to
// Register or register the fields individually.
func New(namespace string) *Metrics {
	return &Metrics{
		Allocs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "heap",
			Name:      "allocs_total",
			Help:      "Number of successful block allocations.",
		}),
		Frees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "heap",
			Name:      "frees_total",
			Help:      "Number of freed blocks.",
		}),
		Reallocs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "heap",
			Name:      "reallocs_total",
			Help:      "Number of reallocate requests.",
		}),
		GrowCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "heap",
			Name:      "grow_calls_total",
			Help:      "Number of arena growth requests.",
		}),
		AllocatedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "heap",
			Name:      "allocated_bytes",
			Help:      "Total size of live allocated blocks in bytes.",
		}),
		FreeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "heap",
			Name:      "free_bytes",
			Help:      "Total size of free blocks in bytes.",
		}),
		ArenaBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "heap",
			Name:      "arena_bytes",
			Help:      "Size of the managed arena in bytes.",
		}),
		HotSizeMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "heap",
			Name:      "hot_size_mode",
			Help:      "1 once the hot-size mode has latched, 0 before.",
		}),
	}
}

// Register registers every collector with the provided registerer.
func (m *Metrics) Register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.Allocs, m.Frees, m.Reallocs, m.GrowCalls,
		m.AllocatedBytes, m.FreeBytes, m.ArenaBytes, m.HotSizeMode,
	}
	for _, collector := range collectors {
		err := registerer.Register(collector)
		if err != nil {
			return errors.Wrap(err, "failed to register heap collector")
		}
	}
	return nil
}

func (m *Metrics) TrackAlloc() {
	if m == nil {
		return
	}

	m.Allocs.Inc()
}

func (m *Metrics) TrackFree() {
	if m == nil {
		return
	}

	m.Frees.Inc()
}

func (m *Metrics) TrackRealloc() {
	if m == nil {
		return
	}

	m.Reallocs.Inc()
}

func (m *Metrics) TrackGrow() {
	if m == nil {
		return
	}

	m.GrowCalls.Inc()
}

// SetUsage publishes the heap's current byte accounting.
func (m *Metrics) SetUsage(allocatedBytes, freeBytes, arenaBytes int) {
	if m == nil {
		return
	}

	m.AllocatedBytes.Set(float64(allocatedBytes))
	m.FreeBytes.Set(float64(freeBytes))
	m.ArenaBytes.Set(float64(arenaBytes))
}

// SetHotSizeMode publishes whether the heap's hot-size mode has latched.
func (m *Metrics) SetHotSizeMode(active bool) {
	if m == nil {
		return
	}

	if active {
		m.HotSizeMode.Set(1)
	} else {
		m.HotSizeMode.Set(0)
	}
}
