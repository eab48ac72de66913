package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rv64sim/rv64sim/internal/dut"
)

// Metrics tracks run-level statistics: cycle/commit counters and sampled
// DUT performance counters. This is passive observation only — the
// simulator never models DUT performance, it just counts what the DUT
// itself reports (see SPEC_FULL.md §1 Non-goals).
type Metrics struct {
	CyclesExecuted uint64
	Commits        uint64
	Exceptions     uint64
	Interrupts     uint64
	Divergences    uint64

	StartTime atomic.Int64
	StopTime  atomic.Int64

	mu       sync.Mutex
	counters map[string]*PerfCounter
}

// PerfCounter is a named hit/total pair sampled from the DUT each cycle.
type PerfCounter struct {
	Name  string
	Hit   uint64
	Total uint64
}

// NewMetrics creates a Metrics instance with its clock started.
func NewMetrics() *Metrics {
	m := &Metrics{counters: make(map[string]*PerfCounter)}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordCommit increments cycle-independent commit counters based on the
// committed instruction's flags.
func (m *Metrics) RecordCommit(exception, interrupt bool) {
	atomic.AddUint64(&m.Commits, 1)
	if exception {
		atomic.AddUint64(&m.Exceptions, 1)
	}
	if interrupt {
		atomic.AddUint64(&m.Interrupts, 1)
	}
}

// RecordCycle increments the cycle counter. Called once per rising edge.
func (m *Metrics) RecordCycle() {
	atomic.AddUint64(&m.CyclesExecuted, 1)
}

// RecordDivergence increments the divergence counter, called when the
// differential checker finds a mismatch.
func (m *Metrics) RecordDivergence() {
	atomic.AddUint64(&m.Divergences, 1)
}

// SamplePerfCounters copies the current value of every DUT-exposed
// performance counter into this Metrics instance's snapshot table.
func (m *Metrics) SamplePerfCounters(specs []dut.PerfCounterSpec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, spec := range specs {
		var hit, total uint64
		if spec.Hit != nil {
			hit = *spec.Hit
		}
		if spec.Total != nil {
			total = *spec.Total
		}
		m.counters[spec.Name] = &PerfCounter{Name: spec.Name, Hit: hit, Total: total}
	}
}

// Stop marks the run as finished for uptime accounting.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time, read-only copy of Metrics.
type MetricsSnapshot struct {
	CyclesExecuted uint64
	Commits        uint64
	Exceptions     uint64
	Interrupts     uint64
	Divergences    uint64
	UptimeNs       uint64
	PerfCounters   map[string]PerfCounter
}

// Snapshot returns a copy of the current metrics state.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		CyclesExecuted: atomic.LoadUint64(&m.CyclesExecuted),
		Commits:        atomic.LoadUint64(&m.Commits),
		Exceptions:     atomic.LoadUint64(&m.Exceptions),
		Interrupts:     atomic.LoadUint64(&m.Interrupts),
		Divergences:    atomic.LoadUint64(&m.Divergences),
		PerfCounters:   make(map[string]PerfCounter, len(m.counters)),
	}

	start := m.StartTime.Load()
	stop := m.StopTime.Load()
	if stop > 0 {
		snap.UptimeNs = uint64(stop - start)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - start)
	}

	for k, v := range m.counters {
		snap.PerfCounters[k] = *v
	}
	return snap
}

// Observer allows pluggable metrics collection, decoupling the scheduler
// from any one Metrics implementation (e.g. a test spy).
type Observer interface {
	ObserveCommit(exception, interrupt bool)
	ObserveCycle()
	ObserveDivergence()
}

// NoOpObserver discards every observation.
type NoOpObserver struct{}

func (NoOpObserver) ObserveCommit(bool, bool) {}
func (NoOpObserver) ObserveCycle()            {}
func (NoOpObserver) ObserveDivergence()       {}

// MetricsObserver implements Observer by recording into a Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver wraps m as an Observer.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveCommit(exception, interrupt bool) {
	o.metrics.RecordCommit(exception, interrupt)
}
func (o *MetricsObserver) ObserveCycle()      { o.metrics.RecordCycle() }
func (o *MetricsObserver) ObserveDivergence() { o.metrics.RecordDivergence() }

var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
