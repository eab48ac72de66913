package sim

// AddrRegion is a half-open address range [Start, End) claimed by a device.
type AddrRegion struct {
	Start uint64
	End   uint64
	Name  string
}

// Overlaps reports whether a and b cover any address in common.
func (a AddrRegion) Overlaps(b AddrRegion) bool {
	return a.Start < b.End && b.Start < a.End
}

// WriteReq is a pending bus write, byte-lane masked by WStrb.
type WriteReq struct {
	WAddr uint64
	WData uint64
	WStrb uint8
}

// BusTxn is the set of signals the DUT drives onto the bus in a given
// cycle: an optional read and an optional write, resolved independently.
type BusTxn struct {
	ReadAddr uint64
	ReadEn   bool
	Write    WriteReq
	WriteEn  bool
}

// Device is the contract every memory-mapped peripheral implements. The bus
// manager holds devices in a registration-ordered slice and never owns them
// cyclically; a device never reaches back into the manager.
type Device interface {
	// InRange reports whether addr falls inside one of this device's
	// registered regions.
	InRange(addr uint64) bool

	// Regions returns the address ranges this device claims. Called once
	// at registration time.
	Regions() []AddrRegion

	// Enqueue accepts this cycle's bus transaction for this device. readAddr
	// is non-nil only when the bus has an active read targeting this
	// device; write is non-nil only when the bus has an active write
	// targeting this device. A device may receive both in the same cycle.
	Enqueue(readAddr *uint64, write *WriteReq)

	// Tick resolves any enqueued read and returns its 64-bit value (0 if no
	// read was enqueued this cycle), applying any enqueued write as a side
	// effect. Read resolution happens before the write is considered
	// committed, matching the read-before-write ordering of a single bus
	// cycle.
	Tick() uint64
}

// DeviceInfo summarizes a registered device for diagnostics.
type DeviceInfo struct {
	Name  string
	Start uint64
	End   uint64
}
