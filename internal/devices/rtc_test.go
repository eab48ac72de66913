package devices

import "testing"

func TestRTCLatchesOnOffsetZeroRead(t *testing.T) {
	r := NewRTC(0xa000_0048)

	lo := uint64(0xa000_0048)
	r.Enqueue(&lo, nil)
	_ = r.Tick()

	hi := uint64(0xa000_004c)
	r.Enqueue(&hi, nil)
	got := r.Tick()
	want := (r.latch >> 32) & 0xffffffff
	if got != want {
		t.Errorf("high word = %#x, want %#x", got, want)
	}
}

func TestRTCInRangeCoversBothWords(t *testing.T) {
	r := NewRTC(0xa000_0048)
	if !r.InRange(0xa000_0048) || !r.InRange(0xa000_004c) {
		t.Error("InRange() should cover both offset 0 and offset 4")
	}
	if r.InRange(0xa000_0050) {
		t.Error("InRange() should not cover offset 8")
	}
}
