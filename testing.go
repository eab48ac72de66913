package sim

import "sync"

// FakeDevice is a configurable Device used by bus and scheduler tests. It
// claims a single region and tracks every Enqueue/Tick call for assertion.
type FakeDevice struct {
	mu      sync.Mutex
	region  AddrRegion
	onRead  func(addr uint64) uint64
	onWrite func(req WriteReq)

	pendingRead  *uint64
	pendingWrite *WriteReq

	enqueueCalls int
	tickCalls    int
}

// NewFakeDevice creates a FakeDevice claiming [start, end) under name.
func NewFakeDevice(name string, start, end uint64) *FakeDevice {
	return &FakeDevice{region: AddrRegion{Start: start, End: end, Name: name}}
}

// OnRead sets the function called to resolve a pending read; a nil onRead
// resolves any pending read to 0.
func (f *FakeDevice) OnRead(fn func(addr uint64) uint64) *FakeDevice {
	f.onRead = fn
	return f
}

// OnWrite sets the function called when a pending write is resolved.
func (f *FakeDevice) OnWrite(fn func(req WriteReq)) *FakeDevice {
	f.onWrite = fn
	return f
}

func (f *FakeDevice) InRange(addr uint64) bool {
	return addr >= f.region.Start && addr < f.region.End
}

func (f *FakeDevice) Regions() []AddrRegion { return []AddrRegion{f.region} }

func (f *FakeDevice) Enqueue(readAddr *uint64, write *WriteReq) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueueCalls++
	f.pendingRead = readAddr
	f.pendingWrite = write
}

func (f *FakeDevice) Tick() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickCalls++

	var result uint64
	if f.pendingRead != nil {
		if f.onRead != nil {
			result = f.onRead(*f.pendingRead)
		}
	}
	if f.pendingWrite != nil && f.onWrite != nil {
		f.onWrite(*f.pendingWrite)
	}
	f.pendingRead = nil
	f.pendingWrite = nil
	return result
}

// EnqueueCalls returns how many times Enqueue has been called.
func (f *FakeDevice) EnqueueCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enqueueCalls
}

// TickCalls returns how many times Tick has been called.
func (f *FakeDevice) TickCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickCalls
}

var _ Device = (*FakeDevice)(nil)
