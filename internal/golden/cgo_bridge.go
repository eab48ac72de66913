//go:build rv64emu_cgo
// +build rv64emu_cgo

// Package golden, cgo variant: bindings against a linked librv64emu
// providing the construct/destroy/load_file/step/get-set extern "C" ABI.
package golden

/*
#cgo LDFLAGS: -lrv64emu
#include <stdint.h>
#include <stdlib.h>

void *create_rv64emu(void);
void destroy_rv64emu(void *handle);
int load_file_rv64emu(void *handle, const char *path);
int step_rv64emu(void *handle, int n);
void raise_intr_rv64emu(void *handle, uint64_t cause);
uint64_t get_pc_rv64emu(void *handle);
void set_pc_rv64emu(void *handle, uint64_t pc);
uint64_t get_reg_rv64emu(void *handle, int i);
void set_reg_rv64emu(void *handle, int i, uint64_t v);
uint64_t get_csr_rv64emu(void *handle, uint16_t addr);
void set_csr_rv64emu(void *handle, uint16_t addr, uint64_t v);
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// cgoModel implements Model against the linked reference emulator.
type cgoModel struct {
	handle unsafe.Pointer
}

// New constructs the real golden model bridge.
func New() (Model, error) {
	h := C.create_rv64emu()
	if h == nil {
		return nil, fmt.Errorf("golden: create_rv64emu returned nil")
	}
	return &cgoModel{handle: h}, nil
}

func (m *cgoModel) LoadFile(path string) error {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	if rc := C.load_file_rv64emu(m.handle, cpath); rc != 0 {
		return fmt.Errorf("golden: load_file failed, rc=%d", int(rc))
	}
	return nil
}

func (m *cgoModel) Step(n int) error {
	if rc := C.step_rv64emu(m.handle, C.int(n)); rc != 0 {
		return fmt.Errorf("golden: step failed, rc=%d", int(rc))
	}
	return nil
}

func (m *cgoModel) RaiseInterrupt(cause uint64) {
	C.raise_intr_rv64emu(m.handle, C.uint64_t(cause))
}

func (m *cgoModel) GetPC() uint64     { return uint64(C.get_pc_rv64emu(m.handle)) }
func (m *cgoModel) SetPC(pc uint64)   { C.set_pc_rv64emu(m.handle, C.uint64_t(pc)) }
func (m *cgoModel) GetReg(i int) uint64 {
	return uint64(C.get_reg_rv64emu(m.handle, C.int(i)))
}
func (m *cgoModel) SetReg(i int, v uint64) {
	C.set_reg_rv64emu(m.handle, C.int(i), C.uint64_t(v))
}
func (m *cgoModel) GetCSR(addr uint16) uint64 {
	return uint64(C.get_csr_rv64emu(m.handle, C.uint16_t(addr)))
}
func (m *cgoModel) SetCSR(addr uint16, v uint64) {
	C.set_csr_rv64emu(m.handle, C.uint16_t(addr), C.uint64_t(v))
}

func (m *cgoModel) Close() error {
	if m.handle != nil {
		C.destroy_rv64emu(m.handle)
		m.handle = nil
	}
	return nil
}
