// Package constants holds the default address map, CLI defaults, and task
// periods shared across the simulator.
package constants

import "time"

// Default address map, matching the reference AM environment.
const (
	// MemBase is the base address of main memory.
	MemBase = 0x8000_0000
	// MemSize is the default size of main memory (128MB).
	MemSize = 0x8800_0000 - MemBase
	// DeviceBase is the base address of the MMIO device window.
	DeviceBase = 0xa000_0000
	// SerialPort is the UART data register address.
	SerialPort = DeviceBase + 0x0000_03f8
	// RTCAddr is the RTC base address.
	RTCAddr = DeviceBase + 0x0000_0048
	// KBDAddr is the keyboard base address.
	KBDAddr = DeviceBase + 0x0000_0060
	// VGACtrlAddr is the VGA control register address.
	VGACtrlAddr = DeviceBase + 0x0000_0100
	// FBAddr is the VGA framebuffer base address.
	FBAddr = 0xa100_0000
	// BootPC is the address the DUT and golden model both start execution at.
	BootPC = 0x8000_0000
)

// VGA display geometry.
const (
	VGAWidth  = 400
	VGAHeight = 300
	// VGAWindowScale is the window-to-framebuffer scale factor.
	VGAWindowScale = 2
)

// CLI defaults (spec §6).
const (
	DefaultMaxCycles = 50000
	DefaultRBBPort   = 23456
)

// Task periods in cycles (spec §4.6).
const (
	DeadlockCheckPeriod = 4096
	TohostCheckPeriod   = 1024
)

// ResetHalfCycles is how many half-cycles the clock is toggled with reset
// asserted before the first normal step (spec §4.4).
const ResetHalfCycles = 10

// UARTRXPollInterval is a named RX polling interval that nothing in the
// module consumes: the UART device polls the RX producer on each read of its
// data register, not on a timer.
const UARTRXPollInterval = 2 * time.Millisecond

// Producer queue capacities.
const (
	KeyboardQueueDepth = 128
	UARTRXQueueDepth   = 256
)
