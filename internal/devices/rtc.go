package devices

import (
	"time"

	sim "github.com/rv64sim/rv64sim"
)

// RTC exposes a microsecond timestamp as two 32-bit words. Reading offset
// 0 latches a fresh snapshot; reading offset 4 returns the high 32 bits of
// whatever was last latched, so a driver reading both words back-to-back
// sees a single consistent 64-bit value even though the words are fetched
// in two separate bus cycles.
type RTC struct {
	base   uint64
	now    func() time.Time
	latch  uint64
	pendingRead  *uint64
	pendingWrite *sim.WriteReq
}

// NewRTC creates an RTC device claiming two 32-bit words at base.
func NewRTC(base uint64) *RTC {
	return &RTC{base: base, now: time.Now}
}

func (r *RTC) InRange(addr uint64) bool {
	return addr == r.base || addr == r.base+4
}

func (r *RTC) Regions() []sim.AddrRegion {
	return []sim.AddrRegion{{Start: r.base, End: r.base + 8, Name: "rtc"}}
}

func (r *RTC) Enqueue(readAddr *uint64, write *sim.WriteReq) {
	r.pendingRead = readAddr
	r.pendingWrite = write
}

func (r *RTC) Tick() uint64 {
	var result uint64
	if r.pendingRead != nil {
		addr := *r.pendingRead
		if addr == r.base {
			r.latch = uint64(r.now().UnixMicro())
			result = r.latch & 0xffffffff
		} else {
			result = (r.latch >> 32) & 0xffffffff
		}
	}
	// RTC is read-only; writes are accepted and ignored.
	r.pendingRead = nil
	r.pendingWrite = nil
	return result
}

var _ sim.Device = (*RTC)(nil)
