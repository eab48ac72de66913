package sim

import (
	"testing"

	"github.com/rv64sim/rv64sim/internal/dut"
)

type fakeTohost struct {
	fn func(uint64)
}

func (f *fakeTohost) OnTohost(fn func(uint64)) { f.fn = fn }

func TestDriverAMEbreakSetsExitCode(t *testing.T) {
	h := dut.NewFake()
	h.NextValid = true
	h.NextException = true
	h.NextExcCause = 3
	h.GPRs[10] = 0

	d := NewDriver(DriverConfig{
		Handle:    h,
		Bus:       NewManager(nil),
		MaxCycles: 100,
		AMMode:    true,
	}, nil)

	report := d.Run()
	if report.State != Finished {
		t.Errorf("state = %v, want Finished", report.State)
	}
	if !report.AMExited {
		t.Error("expected AMExited")
	}
	if report.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", report.ExitCode())
	}
}

func TestDriverAMEbreakNonzeroA0Fails(t *testing.T) {
	h := dut.NewFake()
	h.NextValid = true
	h.NextException = true
	h.NextExcCause = 3
	h.GPRs[10] = 7

	d := NewDriver(DriverConfig{
		Handle:    h,
		Bus:       NewManager(nil),
		MaxCycles: 100,
		AMMode:    true,
	}, nil)

	report := d.Run()
	if report.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", report.ExitCode())
	}
}

func TestDriverTohostPassStopsRun(t *testing.T) {
	h := dut.NewFake()
	tohost := &fakeTohost{}

	d := NewDriver(DriverConfig{
		Handle:    h,
		Bus:       NewManager(nil),
		MaxCycles: 100,
		Tohost:    tohost,
	}, nil)

	if tohost.fn == nil {
		t.Fatal("expected Tohost.OnTohost to be registered")
	}
	tohost.fn(1) // device 0, command 0, bit 0 set, code 0 -> pass

	report := d.Run()
	if !report.TohostDone || !report.TohostPass {
		t.Errorf("report = %+v, want done+pass", report)
	}
	if report.ExitCode() != 0 {
		t.Errorf("ExitCode() = %d, want 0", report.ExitCode())
	}
}

func TestDriverDeadlockWatchAborts(t *testing.T) {
	h := dut.NewFake()
	h.NextValid = false // never commits

	d := NewDriver(DriverConfig{
		Handle:    h,
		Bus:       NewManager(nil),
		MaxCycles: 20000,
	}, nil)

	report := d.Run()
	if report.State != Aborted {
		t.Errorf("state = %v, want Aborted", report.State)
	}
	if report.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", report.ExitCode())
	}
}
