package devices

import (
	sim "github.com/rv64sim/rv64sim"
	"github.com/rv64sim/rv64sim/internal/kbdinput"
)

// Keyboard exposes two independent 4-byte lanes — raw scancode at offset 0
// and translated ASCII at offset 4 — each backed by a bounded queue polled
// through kbdinput.InputSource. An empty lane read returns 0.
type Keyboard struct {
	base uint64
	src  kbdinput.InputSource

	pendingRead  *uint64
	pendingWrite *sim.WriteReq
}

// NewKeyboard creates a Keyboard device claiming 8 bytes at base.
func NewKeyboard(base uint64, src kbdinput.InputSource) *Keyboard {
	return &Keyboard{base: base, src: src}
}

func (k *Keyboard) InRange(addr uint64) bool {
	return addr == k.base || addr == k.base+4
}

func (k *Keyboard) Regions() []sim.AddrRegion {
	return []sim.AddrRegion{{Start: k.base, End: k.base + 8, Name: "keyboard"}}
}

func (k *Keyboard) Enqueue(readAddr *uint64, write *sim.WriteReq) {
	k.pendingRead = readAddr
	k.pendingWrite = write
}

func (k *Keyboard) Tick() uint64 {
	var result uint64
	if k.pendingRead != nil {
		if *k.pendingRead == k.base {
			if v, ok := k.src.PollScancode(); ok {
				result = uint64(v)
			}
		} else {
			if v, ok := k.src.PollASCII(); ok {
				result = uint64(v)
			}
		}
	}
	// Keyboard lanes are read-only; writes are accepted and ignored.
	k.pendingRead = nil
	k.pendingWrite = nil
	return result
}

var _ sim.Device = (*Keyboard)(nil)
