package dut

// Fake is a scriptable Handle used by scheduler and bus tests. Callers set
// the exported fields to shape what the Handle getters report; the getters
// return those fields directly, and Step only counts its calls.
type Fake struct {
	Reset bool

	NextBus BusSignals

	NextValid     bool
	NextWidth     int
	NextPC        uint64
	NextRVC       bool
	NextException bool
	NextInterrupt bool
	NextMMIO      bool
	NextCSRSkip   bool
	NextExcCause  uint64
	NextIntCause  uint64
	NextHalted    bool

	GPRs [32]uint64
	CSRs map[uint16]uint64

	ReadData uint64
	Steps    int

	counters []PerfCounterSpec
}

// NewFake returns a Fake ready for use, with an empty CSR map.
func NewFake() *Fake {
	return &Fake{CSRs: make(map[uint16]uint64)}
}

func (f *Fake) Step() { f.Steps++ }

func (f *Fake) SetReset(asserted bool) { f.Reset = asserted }

func (f *Fake) Bus() BusSignals { return f.NextBus }

func (f *Fake) SetReadData(data uint64) { f.ReadData = data }

func (f *Fake) DifftestValid() bool   { return f.NextValid }
func (f *Fake) CommitWidth() int      { return f.NextWidth }
func (f *Fake) LastPC() uint64        { return f.NextPC }
func (f *Fake) IsRVC() bool           { return f.NextRVC }
func (f *Fake) HasException() bool    { return f.NextException }
func (f *Fake) HasInterrupt() bool    { return f.NextInterrupt }
func (f *Fake) HasMMIO() bool         { return f.NextMMIO }
func (f *Fake) HasCSRSkip() bool      { return f.NextCSRSkip }
func (f *Fake) ExceptionCause() uint64 { return f.NextExcCause }
func (f *Fake) InterruptCause() uint64 { return f.NextIntCause }
func (f *Fake) IsHalted() bool        { return f.NextHalted }

func (f *Fake) GPR(i int) uint64 {
	if i < 0 || i >= len(f.GPRs) {
		return 0
	}
	return f.GPRs[i]
}

func (f *Fake) CSR(addr uint16) uint64 { return f.CSRs[addr] }

func (f *Fake) PerfCounters() []PerfCounterSpec { return f.counters }

// WithCounter registers a counter for PerfCounters to report.
func (f *Fake) WithCounter(spec PerfCounterSpec) *Fake {
	f.counters = append(f.counters, spec)
	return f
}
