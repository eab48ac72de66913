package sim

import (
	"github.com/rv64sim/rv64sim/internal/constants"
	"github.com/rv64sim/rv64sim/internal/diff"
	"github.com/rv64sim/rv64sim/internal/dut"
	"github.com/rv64sim/rv64sim/internal/logging"
)

// Scheduler drives the DUT one half-cycle at a time, routes its bus
// transactions through a Manager, optionally checks each commit against a
// differential Checker, and dispatches pre-rise/post-rise/once tasks.
// It is strictly single-threaded and cooperative: producers external to
// the scheduler only ever push into bounded queues the devices poll.
type Scheduler struct {
	handle  dut.Handle
	bus     *Manager
	checker *diff.Checker
	log     *logging.Logger

	maxCycles uint64
	cycleNum  uint64

	preRise  []*Task
	postRise []*Task
	once     []*Task

	state    RunState
	stopFlag func() bool // polled between cycles; SIGINT-style external signal

	obs     Observer
	metrics *Metrics // optional; samples DUT perf counters when set

	notCommitNum uint64 // consecutive cycles since the last valid commit
}

// SchedulerConfig configures a new Scheduler.
type SchedulerConfig struct {
	Handle    dut.Handle
	Bus       *Manager
	Checker   *diff.Checker // nil disables differential checking
	Log       *logging.Logger
	MaxCycles uint64
	StopFlag  func() bool
	Observer  Observer // nil uses NoOpObserver
	Metrics   *Metrics // nil disables perf counter sampling
}

// NewScheduler constructs a Scheduler in the Stopped state.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	log := cfg.Log
	if log == nil {
		log = logging.Default()
	}
	stop := cfg.StopFlag
	if stop == nil {
		stop = func() bool { return false }
	}
	obs := cfg.Observer
	if obs == nil {
		obs = NoOpObserver{}
	}
	return &Scheduler{
		handle:    cfg.Handle,
		bus:       cfg.Bus,
		checker:   cfg.Checker,
		log:       log,
		maxCycles: cfg.MaxCycles,
		state:     Stopped,
		stopFlag:  stop,
		obs:       obs,
		metrics:   cfg.Metrics,
	}
}

// AddTask registers a task. Order among tasks of the same Kind is
// preserved: tasks run in registration order on each eligible edge.
func (s *Scheduler) AddTask(t *Task) {
	switch t.Kind {
	case TaskPreRise:
		s.preRise = append(s.preRise, t)
	case TaskPostRise:
		s.postRise = append(s.postRise, t)
	case TaskOnce:
		s.once = append(s.once, t)
	}
}

// CycleNum returns the number of rising edges observed so far.
func (s *Scheduler) CycleNum() uint64 { return s.cycleNum }

// NotCommitNum returns the number of consecutive cycles since the last
// valid commit, for the deadlock watcher task.
func (s *Scheduler) NotCommitNum() uint64 { return s.notCommitNum }

// Halted reports whether the DUT's debug-halt signal is currently set,
// exposed so the deadlock watcher can distinguish a real stall from a
// debug pause.
func (s *Scheduler) Halted() bool { return s.handle.IsHalted() }

// forceFinish transitions directly to Finished, used by termination
// watchers (AM ebreak, tohost pass/fail) that detect a clean stop outside
// the IsHalted() signal path.
func (s *Scheduler) forceFinish() {
	if next, ok := transition(s.state, Finished); ok {
		s.state = next
	}
}

// State returns the current run state.
func (s *Scheduler) State() RunState { return s.state }

// Abort transitions the scheduler to Aborted, recording why via log. It is
// a no-op if the scheduler is already in a terminal state.
func (s *Scheduler) Abort(reason string) {
	if next, ok := transition(s.state, Aborted); ok {
		s.state = next
		s.log.Critical("run aborted", "reason", reason, "cycle", s.cycleNum)
	}
}

// reset asserts reset for constants.ResetHalfCycles half-cycles, draining
// once-tasks first, then deasserts and enters Running.
func (s *Scheduler) reset() {
	for _, t := range s.once {
		t.Body()
	}
	s.handle.SetReset(true)
	for i := 0; i < constants.ResetHalfCycles; i++ {
		s.handle.Step()
	}
	s.handle.SetReset(false)
	if next, ok := transition(s.state, Running); ok {
		s.state = next
	}
}

// step advances exactly one half-cycle: toggles the clock, evaluates the
// DUT, dispatches the appropriate pre/post-rise tasks, and on a rising
// edge runs the differential checker.
func (s *Scheduler) step() {
	bus := s.handle.Bus()
	readData, err := s.bus.Tick(BusTxn{
		ReadAddr: bus.ReadAddr,
		ReadEn:   bus.ReadEn,
		Write:    WriteReq{WAddr: bus.WAddr, WData: bus.WData, WStrb: bus.WStrb},
		WriteEn:  bus.WriteEn,
	})
	if err != nil {
		s.Abort(err.Error())
		return
	}
	s.handle.SetReadData(readData)

	for _, t := range s.preRise {
		if t.due() {
			t.Body()
		}
	}

	s.handle.Step()
	s.cycleNum++
	s.obs.ObserveCycle()

	if s.handle.DifftestValid() {
		s.obs.ObserveCommit(s.handle.HasException(), s.handle.HasInterrupt())
		s.notCommitNum = 0
	} else {
		s.notCommitNum++
	}
	if s.metrics != nil {
		s.metrics.SamplePerfCounters(s.handle.PerfCounters())
	}

	if s.checker != nil {
		if mismatch, err := s.checker.Check(s.handle); err != nil {
			s.Abort(err.Error())
			return
		} else if mismatch != nil {
			s.obs.ObserveDivergence()
			s.Abort(mismatch.String())
			return
		}
	}

	if s.handle.IsHalted() {
		if next, ok := transition(s.state, Finished); ok {
			s.state = next
		}
	}

	for _, t := range s.postRise {
		if t.due() {
			t.Body()
		}
	}
}

// Run resets the DUT and then steps it until the run state leaves Running:
// via an aborted/finished transition from within step, the external stop
// flag, or the configured max-cycle watchdog.
func (s *Scheduler) Run() RunState {
	s.reset()
	for s.state == Running {
		if s.stopFlag() {
			s.Abort("external stop signal")
			break
		}
		if s.maxCycles > 0 && s.cycleNum >= s.maxCycles {
			if next, ok := transition(s.state, Finished); ok {
				s.state = next
			}
			s.log.Info("run finished: max cycle limit reached", "cycle", s.cycleNum)
			break
		}
		s.step()
	}
	return s.state
}
