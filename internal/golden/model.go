// Package golden defines the narrow FFI surface to the golden software
// model used by the differential checker. The contract mirrors the
// extern "C" ABI of the reference RV64 emulator: construct/destroy,
// load an ELF or raw binary, single-step N instructions, raise an
// interrupt before the next step, and get/set architectural state.
package golden

// Model is implemented by both the cgo bridge (linked against the real
// emulator) and the pure-Go stub used in tests and non-cgo builds.
type Model interface {
	// LoadFile loads an ELF or raw binary image, matching the memory image
	// the DUT was also loaded with.
	LoadFile(path string) error

	// Step advances the model by n committed instructions.
	Step(n int) error

	// RaiseInterrupt requests that the model take the given interrupt
	// cause before its next Step.
	RaiseInterrupt(cause uint64)

	GetPC() uint64
	SetPC(pc uint64)

	GetReg(i int) uint64
	SetReg(i int, v uint64)

	GetCSR(addr uint16) uint64
	SetCSR(addr uint16, v uint64)

	// Close releases any resources (the real bridge frees the linked
	// emulator instance; the stub is a no-op).
	Close() error
}
