//go:build !rv64dut_cgo

// +build !rv64dut_cgo

package dut

// StubHandle is the default (non-cgo) Handle: it never drives real bus
// traffic or commits instructions. It exists so cmd/rv64sim links and the
// scheduler's lifecycle (reset, step, termination) is exercisable without
// the Verilator-generated design linked in. It halts immediately so a run
// against it terminates cleanly instead of spinning to max_cycles.
type StubHandle struct {
	reset bool
	steps int
}

// New constructs the stub DUT handle used when no rv64dut_cgo-tagged
// design is linked in.
func New() (Handle, error) {
	return &StubHandle{}, nil
}

func (h *StubHandle) Step() { h.steps++ }

func (h *StubHandle) SetReset(asserted bool) { h.reset = asserted }

func (h *StubHandle) Bus() BusSignals { return BusSignals{} }

func (h *StubHandle) SetReadData(data uint64) {}

func (h *StubHandle) DifftestValid() bool    { return false }
func (h *StubHandle) CommitWidth() int       { return 1 }
func (h *StubHandle) LastPC() uint64         { return 0 }
func (h *StubHandle) IsRVC() bool            { return false }
func (h *StubHandle) HasException() bool     { return false }
func (h *StubHandle) HasInterrupt() bool     { return false }
func (h *StubHandle) HasMMIO() bool          { return false }
func (h *StubHandle) HasCSRSkip() bool       { return false }
func (h *StubHandle) ExceptionCause() uint64 { return 0 }
func (h *StubHandle) InterruptCause() uint64 { return 0 }

// IsHalted returns true once reset has been deasserted, so a run against
// the stub finishes immediately rather than burning its cycle budget.
func (h *StubHandle) IsHalted() bool { return !h.reset && h.steps > 0 }

func (h *StubHandle) GPR(i int) uint64      { return 0 }
func (h *StubHandle) CSR(addr uint16) uint64 { return 0 }

func (h *StubHandle) PerfCounters() []PerfCounterSpec { return nil }

var _ Handle = (*StubHandle)(nil)
