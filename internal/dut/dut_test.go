package dut

import "testing"

func TestFakeImplementsHandle(t *testing.T) {
	var _ Handle = NewFake()
}

func TestFakeStepCountsCalls(t *testing.T) {
	f := NewFake()
	f.Step()
	f.Step()
	if f.Steps != 2 {
		t.Errorf("Steps = %d, want 2", f.Steps)
	}
}

func TestFakeGPROutOfRangeReturnsZero(t *testing.T) {
	f := NewFake()
	f.GPRs[5] = 0xdead
	if got := f.GPR(5); got != 0xdead {
		t.Errorf("GPR(5) = %x, want dead", got)
	}
	if got := f.GPR(99); got != 0 {
		t.Errorf("GPR(99) = %x, want 0", got)
	}
	if got := f.GPR(-1); got != 0 {
		t.Errorf("GPR(-1) = %x, want 0", got)
	}
}

func TestFakeCSRDefaultsToZero(t *testing.T) {
	f := NewFake()
	if got := f.CSR(0x300); got != 0 {
		t.Errorf("CSR(0x300) = %x, want 0", got)
	}
	f.CSRs[0x300] = 0x8
	if got := f.CSR(0x300); got != 0x8 {
		t.Errorf("CSR(0x300) = %x, want 8", got)
	}
}

func TestFakePerfCounters(t *testing.T) {
	var hit, total uint64
	f := NewFake().WithCounter(PerfCounterSpec{Name: "icache", Hit: &hit, Total: &total})
	specs := f.PerfCounters()
	if len(specs) != 1 || specs[0].Name != "icache" {
		t.Errorf("PerfCounters() = %+v, want one spec named icache", specs)
	}
}
