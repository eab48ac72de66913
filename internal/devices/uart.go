package devices

import (
	"fmt"
	"io"

	sim "github.com/rv64sim/rv64sim"
	"github.com/rv64sim/rv64sim/internal/logging"
)

// UART is a write-only console output register plus a non-blocking RX
// source. A write's low byte is copied to the configured output stream;
// reads drain the RX source one byte at a time, returning 0 when it's
// empty.
type UART struct {
	base uint64
	out  io.Writer
	rx   RXSource
	log  *logging.Logger

	pendingRead  *uint64
	pendingWrite *sim.WriteReq
}

// RXSource is implemented by the uartrx producer; kept as a narrow
// interface so the device package doesn't need to import uartrx directly.
type RXSource interface {
	Poll(buf []byte) (int, error)
}

// NewUART creates a UART device claiming one 8-byte word at base. A nil rx
// disables the RX path (reads always return 0).
func NewUART(base uint64, out io.Writer, rx RXSource, log *logging.Logger) *UART {
	if log == nil {
		log = logging.Default()
	}
	return &UART{base: base, out: out, rx: rx, log: log}
}

func (u *UART) InRange(addr uint64) bool { return addr == u.base }

func (u *UART) Regions() []sim.AddrRegion {
	return []sim.AddrRegion{{Start: u.base, End: u.base + 8, Name: "uart"}}
}

func (u *UART) Enqueue(readAddr *uint64, write *sim.WriteReq) {
	u.pendingRead = readAddr
	u.pendingWrite = write
}

func (u *UART) Tick() uint64 {
	var result uint64
	if u.pendingRead != nil && u.rx != nil {
		var b [1]byte
		n, err := u.rx.Poll(b[:])
		if err != nil {
			u.log.Warn("uart rx poll failed", "error", err)
		} else if n > 0 {
			result = uint64(b[0])
		}
	}
	if u.pendingWrite != nil {
		fmt.Fprintf(u.out, "%c", byte(u.pendingWrite.WData))
	}
	u.pendingRead = nil
	u.pendingWrite = nil
	return result
}

var _ sim.Device = (*UART)(nil)
