// Package diff implements the per-commit differential checker: it steps a
// golden software model in lockstep with the DUT and compares architectural
// state after every committed instruction, following the same skip/step
// protocol as the reference co-simulation harness this module replaces.
package diff

import (
	"fmt"

	"github.com/rv64sim/rv64sim/internal/dut"
	"github.com/rv64sim/rv64sim/internal/golden"
	"github.com/rv64sim/rv64sim/internal/logging"
)

// DefaultAuditCSRs is the narrower CSR set the original reference checker
// audits. See SPEC_FULL.md §4.5 and DESIGN.md open question 2.
var DefaultAuditCSRs = []uint16{0x341, 0x342, 0x305, 0x300, 0x304, 0x343}

// FullAuditCSRs is the complete CSR audit set named in the governing
// specification; this is the default wired into the CLI.
var FullAuditCSRs = []uint16{
	0x301, 0x300, 0x304, 0x305, 0x341, 0x342, 0x343, 0x302, 0x303,
	0x340, 0x100, 0x141, 0x142, 0x143, 0x105, 0x180,
}

// abiNames maps GPR index to its RISC-V calling-convention name, used when
// logging a mismatch.
var abiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// Mismatch describes the first point of divergence found on a commit.
type Mismatch struct {
	Kind     string // "pc", "gpr", "csr"
	Index    int    // GPR index, or -1
	CSR      uint16 // CSR address, when Kind == "csr"
	Name     string
	Expected uint64
	Actual   uint64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s mismatch: %s expected=%#x actual=%#x", m.Kind, m.Name, m.Expected, m.Actual)
}

// Checker runs the per-commit comparison protocol against a golden model.
type Checker struct {
	model     golden.Model
	auditCSRs []uint16
	log       *logging.Logger

	commitSeq uint64
}

// NewChecker builds a Checker. auditCSRs defaults to FullAuditCSRs when nil.
// A nil logger uses logging.Default().
func NewChecker(model golden.Model, auditCSRs []uint16, log *logging.Logger) *Checker {
	if auditCSRs == nil {
		auditCSRs = FullAuditCSRs
	}
	if log == nil {
		log = logging.Default()
	}
	return &Checker{model: model, auditCSRs: auditCSRs, log: log}
}

// Check runs one commit through the differential protocol. It returns the
// first Mismatch found (nil if none), or an error if the commit violates
// the exclusivity invariant (more than one of exception/interrupt/mmio-skip/
// csr-skip set at once).
func (c *Checker) Check(h dut.Handle) (*Mismatch, error) {
	if !h.DifftestValid() {
		return nil, nil
	}
	c.commitSeq++

	exclusive := 0
	for _, set := range []bool{h.HasException(), h.HasInterrupt(), h.HasMMIO(), h.HasCSRSkip()} {
		if set {
			exclusive++
		}
	}
	if exclusive > 1 {
		return nil, fmt.Errorf("diff: commit %d sets more than one of exception/interrupt/mmio-skip/csr-skip", c.commitSeq)
	}

	kind := "normal"
	switch {
	case h.HasException():
		kind = "exception"
	case h.HasInterrupt():
		kind = "interrupt"
	case h.HasMMIO():
		kind = "skip-mmio"
	case h.HasCSRSkip():
		kind = "skip-csr"
	}
	log := c.log.WithCommit(c.commitSeq, kind)

	if h.HasMMIO() || h.HasCSRSkip() {
		c.skip(h)
		log.Debug("commit skipped")
		return nil, nil
	}

	if h.HasInterrupt() {
		c.model.RaiseInterrupt(h.InterruptCause())
	}

	width := h.CommitWidth()
	if width <= 0 {
		width = 1
	}
	if err := c.model.Step(width); err != nil {
		return nil, fmt.Errorf("diff: golden model step failed at commit %d: %w", c.commitSeq, err)
	}

	mismatch := c.compare(h)
	if mismatch != nil {
		log.Critical("divergence detected", "detail", mismatch.String())
	} else {
		log.Debug("commit matched")
	}
	return mismatch, nil
}

// skip overwrites the golden model's PC and GPRs from the DUT without
// stepping, for commits the checker is told not to replay (MMIO-visible
// reads, or CSR writes excluded from audit). The PC is set to next_pc, not
// the committed instruction's own PC: the golden model must land where the
// DUT will fetch next, exactly as if it had stepped past this instruction.
func (c *Checker) skip(h dut.Handle) {
	width := uint64(4)
	if h.IsRVC() {
		width = 2
	}
	c.model.SetPC(h.LastPC() + width)
	for i := 0; i < 32; i++ {
		c.model.SetReg(i, h.GPR(i))
	}
}

// compare checks PC, all 32 GPRs, and the configured CSR audit set,
// returning the first mismatch found in that order.
func (c *Checker) compare(h dut.Handle) *Mismatch {
	if want, got := h.LastPC(), c.model.GetPC(); want != got {
		return &Mismatch{Kind: "pc", Index: -1, Name: "pc", Expected: got, Actual: want}
	}
	for i := 0; i < 32; i++ {
		want := h.GPR(i)
		got := c.model.GetReg(i)
		if want != got {
			return &Mismatch{Kind: "gpr", Index: i, Name: abiNames[i], Expected: got, Actual: want}
		}
	}
	for _, addr := range c.auditCSRs {
		want := h.CSR(addr)
		got := c.model.GetCSR(addr)
		if want != got {
			return &Mismatch{Kind: "csr", Index: -1, CSR: addr, Name: fmt.Sprintf("csr(%#x)", addr), Expected: got, Actual: want}
		}
	}
	return nil
}
