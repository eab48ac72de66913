// Package dut defines the narrow interface the scheduler uses to drive the
// hardware design under test and inspect what it committed on the last
// rising edge. The real implementation lives behind whatever HDL-generated
// cycle-step primitive the build links against; this package defines the
// contract, a cgo bridge to that primitive (rv64dut_cgo build tag), a stub
// handle used otherwise, and a fake for tests.
package dut

// PerfCounterSpec names a performance counter the DUT exposes and the
// DUT-owned storage the scheduler reads it from on every step.
type PerfCounterSpec struct {
	Name  string
	Hit   *uint64
	Total *uint64
}

// Handle is the contract the scheduler and device manager drive the DUT
// through. A half-cycle step toggles the clock; reset assertion and commit
// introspection are separate so the scheduler can assert reset for
// ResetHalfCycles edges before taking the DUT out of reset.
type Handle interface {
	// Step toggles the clock by one half-cycle and evaluates the design.
	Step()

	// SetReset asserts or deasserts the DUT's reset input for the next
	// Step.
	SetReset(asserted bool)

	// Bus returns the bus transaction the DUT drove this half-cycle.
	Bus() BusSignals

	// SetReadData provides the bus manager's resolved read value back to
	// the DUT ahead of the next Step.
	SetReadData(data uint64)

	// DifftestValid reports whether the DUT committed an instruction on
	// the last rising edge.
	DifftestValid() bool
	// CommitWidth is the number of instructions committed (usually 1;
	// some cores commit multiple per cycle).
	CommitWidth() int
	// LastPC is the PC of the most recently committed instruction.
	LastPC() uint64
	// IsRVC reports whether the committed instruction was compressed.
	IsRVC() bool
	// HasException reports whether the commit trapped.
	HasException() bool
	// HasInterrupt reports whether an interrupt was taken on commit.
	HasInterrupt() bool
	// HasMMIO reports whether the commit touched an MMIO address, which
	// the differential checker must skip rather than step-and-compare.
	HasMMIO() bool
	// HasCSRSkip reports whether the commit wrote a CSR the differential
	// checker is told to skip (e.g. a cycle counter).
	HasCSRSkip() bool
	// ExceptionCause returns the trap cause when HasException is true.
	ExceptionCause() uint64
	// InterruptCause returns the interrupt cause when HasInterrupt is true.
	InterruptCause() uint64
	// IsHalted reports whether the DUT has reached a terminal halt state
	// (e.g. an AM ebreak).
	IsHalted() bool

	// GPR returns the value of general-purpose register i (0..31).
	GPR(i int) uint64
	// CSR returns the value of the CSR at the given address.
	CSR(addr uint16) uint64

	// PerfCounters returns the set of counters to sample each cycle.
	PerfCounters() []PerfCounterSpec
}

// BusSignals are the bus-facing outputs the DUT drives in a half-cycle.
type BusSignals struct {
	ReadAddr uint64
	ReadEn   bool
	WAddr    uint64
	WData    uint64
	WStrb    uint8
	WriteEn  bool
}
