package sim

import (
	"fmt"

	"github.com/rv64sim/rv64sim/internal/logging"
)

// entry pairs a registered device with the regions it claimed, so overlap
// checks don't need to call back into the device on every registration.
type entry struct {
	dev     Device
	regions []AddrRegion
}

// Manager is the memory-mapped bus: a registration-ordered device registry,
// first-match address routing, and per-cycle tick dispatch.
type Manager struct {
	entries []entry
	log     *logging.Logger
}

// NewManager creates an empty bus manager. A nil logger uses
// logging.Default().
func NewManager(log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Default()
	}
	return &Manager{log: log}
}

// Register adds a device to the bus, rejecting it if any of its regions
// overlaps a region already claimed by a previously registered device.
func (m *Manager) Register(dev Device) error {
	regions := dev.Regions()
	for _, r := range regions {
		for _, e := range m.entries {
			for _, er := range e.regions {
				if r.Overlaps(er) {
					return NewError("Register", ErrCodeBus,
						"region "+r.Name+" overlaps "+er.Name)
				}
			}
		}
	}
	m.entries = append(m.entries, entry{dev: dev, regions: regions})
	for _, r := range regions {
		m.log.Info("device registered", "name", r.Name, "start", r.Start, "end", r.End)
	}
	return nil
}

// Devices returns the registration-ordered list of registered device info,
// for startup diagnostics.
func (m *Manager) Devices() []DeviceInfo {
	var out []DeviceInfo
	for _, e := range m.entries {
		for _, r := range e.regions {
			out = append(out, DeviceInfo{Name: r.Name, Start: r.Start, End: r.End})
		}
	}
	return out
}

// Tick routes txn to the first device whose region contains the read/write
// address (evaluated independently per side), enqueues it, and resolves
// every registered device's tick in registration order. It returns the
// 64-bit value read this cycle: the value reported by whichever device had
// a non-empty read queue, or 0 if no device did (no carry-over across
// cycles — see DESIGN.md open question 3).
//
// A read or write address that matches no device is a fatal routing error:
// unmapped access is a run-abort condition, not a silently dropped access.
// The read side is checked before the write side; if both are unmapped, the
// read error is returned. Devices still observe whichever side did route,
// since a device's own commit can be valid even when the other side isn't.
func (m *Manager) Tick(txn BusTxn) (uint64, error) {
	var readTarget *uint64
	if txn.ReadEn {
		addr := txn.ReadAddr
		readTarget = &addr
	}
	var writeTarget *WriteReq
	if txn.WriteEn {
		w := txn.Write
		writeTarget = &w
	}

	var readRouted, writeRouted bool
	for _, e := range m.entries {
		var r *uint64
		var w *WriteReq
		if readTarget != nil && e.dev.InRange(*readTarget) {
			r = readTarget
			readRouted = true
		}
		if writeTarget != nil && e.dev.InRange(writeTarget.WAddr) {
			w = writeTarget
			writeRouted = true
		}
		if r != nil || w != nil {
			e.dev.Enqueue(r, w)
		}
	}

	var err error
	switch {
	case readTarget != nil && !readRouted:
		err = fmt.Errorf("read address out of range: %#018x", *readTarget)
	case writeTarget != nil && !writeRouted:
		err = fmt.Errorf("write address out of range: %#018x", writeTarget.WAddr)
	}

	var result uint64
	for _, e := range m.entries {
		v := e.dev.Tick()
		if readTarget != nil && e.dev.InRange(*readTarget) {
			result = v
		}
	}
	return result, err
}
