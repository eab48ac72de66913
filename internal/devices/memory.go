// Package devices implements the memory-mapped peripherals driven by the
// bus manager: main memory (with ELF loading and signature dump), UART,
// RTC, VGA, and keyboard. Each type implements sim.Device; wiring them
// into a sim.Manager happens in cmd/rv64sim, never in the root package,
// to avoid an import cycle between sim and devices.
package devices

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
	"os"

	sim "github.com/rv64sim/rv64sim"
	"github.com/rv64sim/rv64sim/internal/logging"
)

// Display is the out-of-scope video presentation collaborator the VGA
// device delegates pixel output to; declared here so every device file in
// this package can share one import.
type Display interface {
	Present(frame []byte, width, height int)
}

// Memory is the main memory device: 8-byte aligned reads/writes with
// byte-lane write masking, a tohost FESVR word, and an optional signature
// region for riscv-tests-style conformance dumps.
type Memory struct {
	base uint64
	mem  []byte

	tohostAddr   uint64
	hasTohost    bool
	sigStart     uint64
	sigEnd       uint64
	hasSignature bool

	log *logging.Logger

	pendingRead  *uint64
	pendingWrite *sim.WriteReq

	tohostHit func(value uint64)
}

// NewMemory creates a zero-filled memory device covering [base, base+size).
func NewMemory(base, size uint64, log *logging.Logger) *Memory {
	if log == nil {
		log = logging.Default()
	}
	return &Memory{base: base, mem: make([]byte, size), log: log}
}

// OnTohost registers a callback invoked when a write to the tohost address
// leaves a non-zero 64-bit value there; the callback receives that value and
// the word is then cleared to zero. Used by the tohost termination watcher.
func (m *Memory) OnTohost(fn func(value uint64)) { m.tohostHit = fn }

// TohostAddr returns the tohost symbol's address and whether one was
// found when the image was loaded.
func (m *Memory) TohostAddr() (uint64, bool) { return m.tohostAddr, m.hasTohost }

// LoadFile loads path as an ELF image (64-bit LE RISC-V), copying every
// PT_LOAD segment and recording the symbol table. Files that fail to parse
// as ELF are copied verbatim starting at the device's base address.
func (m *Memory) LoadFile(path string) (map[string]uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("devices: read %s: %w", path, err)
	}

	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		m.log.Warn("not an ELF file, loading as raw binary", "path", path)
		if err := m.copyAt(m.base, data); err != nil {
			return nil, err
		}
		return nil, nil
	}
	defer f.Close()

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		buf := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(buf, 0); err != nil && err != io.EOF {
			return nil, fmt.Errorf("devices: read PT_LOAD segment: %w", err)
		}
		if err := m.copyAt(prog.Paddr, buf); err != nil {
			return nil, err
		}
	}

	symbols := make(map[string]uint64)
	syms, err := f.Symbols()
	if err == nil {
		for _, sym := range syms {
			if sym.Name != "" {
				symbols[sym.Name] = sym.Value
			}
		}
	}

	if addr, ok := symbols["tohost"]; ok {
		m.tohostAddr = addr
		m.hasTohost = true
	}
	if start, ok := symbols["begin_signature"]; ok {
		if end, ok := symbols["end_signature"]; ok {
			m.sigStart, m.sigEnd = start, end
			m.hasSignature = true
		}
	}
	return symbols, nil
}

func (m *Memory) copyAt(paddr uint64, data []byte) error {
	if paddr < m.base || paddr-m.base+uint64(len(data)) > uint64(len(m.mem)) {
		return fmt.Errorf("devices: segment at %#x (len %d) out of memory range [%#x, %#x)",
			paddr, len(data), m.base, m.base+uint64(len(m.mem)))
	}
	copy(m.mem[paddr-m.base:], data)
	return nil
}

func (m *Memory) InRange(addr uint64) bool {
	return addr >= m.base && addr < m.base+uint64(len(m.mem))
}

func (m *Memory) Regions() []sim.AddrRegion {
	return []sim.AddrRegion{{Start: m.base, End: m.base + uint64(len(m.mem)), Name: "memory"}}
}

func (m *Memory) Enqueue(readAddr *uint64, write *sim.WriteReq) {
	m.pendingRead = readAddr
	m.pendingWrite = write
}

// Tick resolves the pending read before applying the pending write,
// matching the bus's read-before-write-within-a-tick ordering.
func (m *Memory) Tick() uint64 {
	var result uint64
	if m.pendingRead != nil {
		result = m.read64(*m.pendingRead)
	}
	if m.pendingWrite != nil {
		m.write64(m.pendingWrite.WAddr, m.pendingWrite.WData, m.pendingWrite.WStrb)
		if m.hasTohost && m.pendingWrite.WAddr == m.tohostAddr && m.tohostHit != nil {
			value := m.read64(m.tohostAddr)
			if value != 0 {
				m.tohostHit(value)
				m.write64(m.tohostAddr, 0, 0xff)
			}
		}
	}
	m.pendingRead = nil
	m.pendingWrite = nil
	return result
}

// checkAligned panics with a fatal sim.Error when off is not 8-byte aligned
// or the resulting 8-byte word falls outside the backing array. Unaligned or
// out-of-range access to a word-granular device is an invariant violation,
// not a recoverable condition — the caller is expected to have validated
// the address map and access width before ever reaching this device.
func (m *Memory) checkAligned(off uint64) {
	if off%8 != 0 {
		panic(sim.NewError("Memory.access", sim.ErrCodeInvariant,
			fmt.Sprintf("unaligned access to word-granular device at offset %#x", off)))
	}
	if off+8 > uint64(len(m.mem)) {
		panic(sim.NewError("Memory.access", sim.ErrCodeInvariant,
			fmt.Sprintf("out-of-range access to word-granular device at offset %#x", off)))
	}
}

func (m *Memory) read64(addr uint64) uint64 {
	off := addr - m.base
	m.checkAligned(off)
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(m.mem[off+uint64(i)]) << (8 * i)
	}
	return v
}

func (m *Memory) write64(addr, data uint64, strb uint8) {
	off := addr - m.base
	m.checkAligned(off)
	for i := 0; i < 8; i++ {
		if strb&(1<<uint(i)) != 0 {
			m.mem[off+uint64(i)] = byte(data >> (8 * i))
		}
	}
}

// DumpSignature writes the signature region (if present) as lowercase,
// zero-padded 32-bit little-endian hex lines, one word per line, matching
// the riscv-tests conformance output format.
func (m *Memory) DumpSignature(w io.Writer) error {
	if !m.hasSignature {
		return fmt.Errorf("devices: no signature region recorded")
	}
	for addr := m.sigStart; addr+4 <= m.sigEnd; addr += 4 {
		off := addr - m.base
		if off+4 > uint64(len(m.mem)) {
			break
		}
		word := uint32(m.mem[off]) | uint32(m.mem[off+1])<<8 | uint32(m.mem[off+2])<<16 | uint32(m.mem[off+3])<<24
		if _, err := fmt.Fprintf(w, "%08x\n", word); err != nil {
			return err
		}
	}
	return nil
}

var _ sim.Device = (*Memory)(nil)
