//go:build rv64dut_cgo

// +build rv64dut_cgo

package dut

/*
#cgo LDFLAGS: -lrv64dut -lstdc++
#include <stdint.h>
#include <stdlib.h>

typedef struct {
	uint64_t raddr;
	uint64_t waddr;
	uint64_t wdata;
	uint8_t  wstrb;
	uint8_t  ren;
	uint8_t  wen;
} dut_bus_t;

extern void*    dut_create();
extern void     dut_destroy(void* h);
extern void     dut_step(void* h);
extern void     dut_set_reset(void* h, uint8_t asserted);
extern dut_bus_t dut_bus(void* h);
extern void     dut_set_read_data(void* h, uint64_t data);
extern uint8_t  dut_difftest_valid(void* h);
extern int      dut_commit_width(void* h);
extern uint64_t dut_last_pc(void* h);
extern uint8_t  dut_is_rvc(void* h);
extern uint8_t  dut_has_exception(void* h);
extern uint8_t  dut_has_interrupt(void* h);
extern uint8_t  dut_has_mmio(void* h);
extern uint8_t  dut_has_csr_skip(void* h);
extern uint64_t dut_exception_cause(void* h);
extern uint64_t dut_interrupt_cause(void* h);
extern uint8_t  dut_is_halted(void* h);
extern uint64_t dut_gpr(void* h, int i);
extern uint64_t dut_csr(void* h, uint16_t addr);
*/
import "C"
import "unsafe"

// cgoHandle bridges to the Verilator-generated design (Vtop) through a thin
// extern "C" shim, mirroring SimBase's rising-edge accessors one for one.
type cgoHandle struct {
	ptr unsafe.Pointer
}

// New constructs the real cgo-backed DUT handle.
func New() (Handle, error) {
	ptr := C.dut_create()
	return &cgoHandle{ptr: ptr}, nil
}

func (h *cgoHandle) Step() { C.dut_step(h.ptr) }

func (h *cgoHandle) SetReset(asserted bool) {
	var v C.uint8_t
	if asserted {
		v = 1
	}
	C.dut_set_reset(h.ptr, v)
}

func (h *cgoHandle) Bus() BusSignals {
	b := C.dut_bus(h.ptr)
	return BusSignals{
		ReadAddr: uint64(b.raddr),
		ReadEn:   b.ren != 0,
		WAddr:    uint64(b.waddr),
		WData:    uint64(b.wdata),
		WStrb:    uint8(b.wstrb),
		WriteEn:  b.wen != 0,
	}
}

func (h *cgoHandle) SetReadData(data uint64) { C.dut_set_read_data(h.ptr, C.uint64_t(data)) }

func (h *cgoHandle) DifftestValid() bool    { return C.dut_difftest_valid(h.ptr) != 0 }
func (h *cgoHandle) CommitWidth() int       { return int(C.dut_commit_width(h.ptr)) }
func (h *cgoHandle) LastPC() uint64         { return uint64(C.dut_last_pc(h.ptr)) }
func (h *cgoHandle) IsRVC() bool            { return C.dut_is_rvc(h.ptr) != 0 }
func (h *cgoHandle) HasException() bool     { return C.dut_has_exception(h.ptr) != 0 }
func (h *cgoHandle) HasInterrupt() bool     { return C.dut_has_interrupt(h.ptr) != 0 }
func (h *cgoHandle) HasMMIO() bool          { return C.dut_has_mmio(h.ptr) != 0 }
func (h *cgoHandle) HasCSRSkip() bool       { return C.dut_has_csr_skip(h.ptr) != 0 }
func (h *cgoHandle) ExceptionCause() uint64 { return uint64(C.dut_exception_cause(h.ptr)) }
func (h *cgoHandle) InterruptCause() uint64 { return uint64(C.dut_interrupt_cause(h.ptr)) }
func (h *cgoHandle) IsHalted() bool         { return C.dut_is_halted(h.ptr) != 0 }

func (h *cgoHandle) GPR(i int) uint64 { return uint64(C.dut_gpr(h.ptr, C.int(i))) }
func (h *cgoHandle) CSR(addr uint16) uint64 { return uint64(C.dut_csr(h.ptr, C.uint16_t(addr))) }

func (h *cgoHandle) PerfCounters() []PerfCounterSpec { return nil }

var _ Handle = (*cgoHandle)(nil)
