package golden

import "testing"

func TestStubNewReturnsUsableModel(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer m.Close()

	if err := m.LoadFile("/tmp/doesnotneedtoexist.elf"); err != nil {
		t.Errorf("LoadFile() error = %v", err)
	}
}

func TestStubRegsAndCSRsRoundTrip(t *testing.T) {
	m, _ := New()
	defer m.Close()

	m.SetPC(0x80000000)
	if got := m.GetPC(); got != 0x80000000 {
		t.Errorf("GetPC() = %x, want 80000000", got)
	}

	m.SetReg(10, 0x42)
	if got := m.GetReg(10); got != 0x42 {
		t.Errorf("GetReg(10) = %x, want 42", got)
	}

	m.SetCSR(0x300, 0x8)
	if got := m.GetCSR(0x300); got != 0x8 {
		t.Errorf("GetCSR(0x300) = %x, want 8", got)
	}
}

func TestStubOutOfRangeRegIsNoop(t *testing.T) {
	m, _ := New()
	defer m.Close()

	m.SetReg(99, 0x1)
	if got := m.GetReg(99); got != 0 {
		t.Errorf("GetReg(99) = %x, want 0", got)
	}
}

func TestStubStepRejectsNegativeCount(t *testing.T) {
	m, _ := New()
	defer m.Close()

	if err := m.Step(-1); err == nil {
		t.Error("Step(-1) expected error, got nil")
	}
	if err := m.Step(1); err != nil {
		t.Errorf("Step(1) error = %v", err)
	}
}
