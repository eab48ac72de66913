package sim

import "github.com/rv64sim/rv64sim/internal/constants"

// Re-export the address map and defaults as part of the public API, so
// callers configuring a Driver don't need to import internal/constants
// directly.
const (
	MemBase     = constants.MemBase
	MemSize     = constants.MemSize
	DeviceBase  = constants.DeviceBase
	SerialPort  = constants.SerialPort
	RTCAddr     = constants.RTCAddr
	KBDAddr     = constants.KBDAddr
	VGACtrlAddr = constants.VGACtrlAddr
	FBAddr      = constants.FBAddr
	BootPC      = constants.BootPC

	VGAWidth       = constants.VGAWidth
	VGAHeight      = constants.VGAHeight
	VGAWindowScale = constants.VGAWindowScale

	DefaultMaxCycles = constants.DefaultMaxCycles
	DefaultRBBPort   = constants.DefaultRBBPort

	DeadlockCheckPeriod = constants.DeadlockCheckPeriod
	TohostCheckPeriod   = constants.TohostCheckPeriod

	ResetHalfCycles = constants.ResetHalfCycles
)
