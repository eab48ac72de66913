package dut

import "testing"

func TestNewReturnsUsableStubHandle(t *testing.T) {
	h, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if h.DifftestValid() {
		t.Error("stub should never report a valid commit")
	}
}

func TestStubHaltsAfterResetDeasserted(t *testing.T) {
	h, _ := New()
	h.SetReset(true)
	h.Step()
	if h.IsHalted() {
		t.Error("should not halt while reset is asserted")
	}
	h.SetReset(false)
	h.Step()
	if !h.IsHalted() {
		t.Error("should halt on the first step after reset is deasserted")
	}
}
