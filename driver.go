package sim

import (
	"fmt"
	"io"

	"github.com/rv64sim/rv64sim/internal/constants"
	"github.com/rv64sim/rv64sim/internal/diff"
	"github.com/rv64sim/rv64sim/internal/dut"
	"github.com/rv64sim/rv64sim/internal/logging"
	"github.com/rv64sim/rv64sim/internal/rbbd"
	"github.com/rv64sim/rv64sim/internal/uartrx"
)

// TohostSource is implemented by a memory device exposing the FESVR tohost
// protocol hook. Declared here rather than imported from internal/devices
// to keep the root package free of a dependency on its own device
// implementations (internal/devices imports sim, not the reverse).
type TohostSource interface {
	OnTohost(fn func(value uint64))
}

// DriverConfig wires together everything a single simulation run needs:
// the DUT handle, the bus, optional differential checking, the four named
// log sinks, and the optional termination/transport extras.
type DriverConfig struct {
	Handle dut.Handle
	Bus    *Manager
	Log    *logging.Logger // console sink; nil uses logging.Default()

	MaxCycles uint64
	StopFlag  func() bool

	// Checker, when non-nil, enables per-commit differential checking. Its
	// own diff-trace sink is threaded in by the caller via diff.NewChecker,
	// not duplicated here.
	Checker *diff.Checker

	// ITrace, when set, logs every committed instruction's PC. PerfTrace,
	// when set together with Metrics, periodically dumps perf counters.
	ITrace    *logging.Logger
	PerfTrace *logging.Logger

	// Tohost, when non-nil, enables the FESVR tohost termination watcher.
	Tohost TohostSource

	// AMMode enables the ebreak/a0 termination convention.
	AMMode bool

	// Metrics, when non-nil, samples DUT perf counters each cycle and is
	// dumped periodically to PerfTrace.
	Metrics *Metrics

	// RBB, when non-nil, is ticked once per cycle as a post-rise task; the
	// caller is responsible for constructing the listener.
	RBB *rbbd.Server

	// UARTRX is the UART RX producer goroutine, closed when the run ends.
	// The keyboard producer has no driver-owned lifecycle: its queues are
	// pushed to directly by the caller's own input-polling goroutine and
	// read by the keyboard device, never touched by Driver.
	UARTRX *uartrx.Producer
}

// ExitReport summarizes how a run ended, sufficient to compute the
// process exit code per spec.md §6.
type ExitReport struct {
	State      RunState
	AMExitCode uint64 // valid only when AMMode and the run finished via ebreak
	AMExited   bool
	TohostPass bool
	TohostDone bool
}

// ExitCode returns 0 iff the run did not abort and, in AM mode, a0 was 0,
// and (if the tohost protocol ran) the FESVR exit code was 0.
func (r ExitReport) ExitCode() int {
	if r.State == Aborted {
		return 1
	}
	if r.AMExited && r.AMExitCode != 0 {
		return 1
	}
	if r.TohostDone && !r.TohostPass {
		return 1
	}
	return 0
}

// Driver is the top-level orchestration object: it owns the scheduler,
// registers the termination watchers named in spec.md §4.6, and closes the
// UART RX producer goroutine when the run ends.
type Driver struct {
	sched *Scheduler
	log   *logging.Logger

	uartrx *uartrx.Producer

	amExited bool
	amCode   uint64

	tohostDone bool
	tohostPass bool

	stdout io.Writer
}

// NewDriver constructs a Driver and registers every enabled termination
// watcher and transport task. It does not start the run.
func NewDriver(cfg DriverConfig, stdout io.Writer) *Driver {
	log := cfg.Log
	if log == nil {
		log = logging.Default()
	}
	if stdout == nil {
		stdout = io.Discard
	}

	var metrics *Metrics
	var obs Observer = NoOpObserver{}
	if cfg.Metrics != nil {
		metrics = cfg.Metrics
		obs = NewMetricsObserver(cfg.Metrics)
	}

	sched := NewScheduler(SchedulerConfig{
		Handle:    cfg.Handle,
		Bus:       cfg.Bus,
		Checker:   cfg.Checker,
		Log:       log,
		MaxCycles: cfg.MaxCycles,
		StopFlag:  cfg.StopFlag,
		Observer:  obs,
		Metrics:   metrics,
	})

	d := &Driver{
		sched:  sched,
		log:    log,
		uartrx: cfg.UARTRX,
		stdout: stdout,
	}

	if cfg.Tohost != nil {
		cfg.Tohost.OnTohost(d.handleTohost)
	}

	sched.AddTask(&Task{
		Name:   "deadlock-watch",
		Kind:   TaskPostRise,
		Period: constants.DeadlockCheckPeriod,
		Body:   d.deadlockWatch,
	})

	if cfg.AMMode {
		sched.AddTask(&Task{
			Name:   "am-ebreak-watch",
			Kind:   TaskPostRise,
			Period: 0,
			Body:   func() { d.amEbreakWatch(cfg.Handle) },
		})
	}

	if cfg.ITrace != nil {
		itrace := cfg.ITrace
		handle := cfg.Handle
		sched.AddTask(&Task{
			Name:   "itrace",
			Kind:   TaskPostRise,
			Period: 0,
			Body: func() {
				if handle.DifftestValid() {
					itrace.Info("commit", "pc", fmt.Sprintf("%#018x", handle.LastPC()), "rvc", handle.IsRVC())
				}
			},
		})
	}

	if cfg.RBB != nil {
		rbb := cfg.RBB
		sched.AddTask(&Task{
			Name:   "rbb-tick",
			Kind:   TaskPostRise,
			Period: 0,
			Body: func() {
				rbb.Tick(false)
				if rbb.QuitRequested() {
					log.Info("remote-bitbang client disconnected")
				}
			},
		})
	}

	if cfg.PerfTrace != nil && cfg.Metrics != nil {
		perfTrace := cfg.PerfTrace
		m := cfg.Metrics
		sched.AddTask(&Task{
			Name:   "perf-trace-dump",
			Kind:   TaskPostRise,
			Period: constants.DeadlockCheckPeriod,
			Body: func() {
				snap := m.Snapshot()
				for name, pc := range snap.PerfCounters {
					perfTrace.Info("perf counter", "name", name, "hit", pc.Hit, "total", pc.Total)
				}
			},
		})
	}

	return d
}

// deadlockWatch aborts the run if the DUT has gone constants.DeadlockCheckPeriod
// cycles without a valid commit while not halted for debug.
func (d *Driver) deadlockWatch() {
	if d.sched.NotCommitNum() > constants.DeadlockCheckPeriod && !d.sched.Halted() {
		d.sched.Abort(fmt.Sprintf("dead lock at pc: %#016x", d.sched.handle.LastPC()))
	}
}

// amEbreakWatch implements the AM-mode termination convention: any
// committed ebreak (exception cause 3) ends the run and a0 becomes the
// reported exit code.
func (d *Driver) amEbreakWatch(h dut.Handle) {
	if d.amExited || !h.DifftestValid() || !h.HasException() || h.ExceptionCause() != 3 {
		return
	}
	d.amExited = true
	d.amCode = h.GPR(10) // a0
	d.log.Info(fmt.Sprintf("AM exit(ebreak) at pc: %#018x", h.LastPC()))
	d.sched.forceFinish()
}

// handleTohost decodes the Spike/FESVR syscall-device convention described
// in spec.md §4.6 and either stops the run with a pass/fail exit code or
// writes a character to stdout.
func (d *Driver) handleTohost(value uint64) {
	device := value >> 56
	command := (value >> 48) & 0xff
	switch {
	case device == 0 && command == 0 && value&1 != 0:
		code := (value & 0xffff_ffff_ffff) >> 1
		d.tohostDone = true
		d.tohostPass = code == 0
		if code == 0 {
			d.log.Info("PASS")
		} else {
			d.log.Critical("FAIL", "code", code)
		}
		d.sched.forceFinish()
	case device == 1 && command == 1:
		fmt.Fprintf(d.stdout, "%c", byte(value))
	}
}

// Run resets and drives the scheduler to completion, then tears down the
// producer goroutines it owns.
func (d *Driver) Run() ExitReport {
	state := d.sched.Run()
	if d.uartrx != nil {
		d.uartrx.Close()
	}
	return ExitReport{
		State:      state,
		AMExitCode: d.amCode,
		AMExited:   d.amExited,
		TohostPass: d.tohostPass,
		TohostDone: d.tohostDone,
	}
}

// Scheduler exposes the underlying Scheduler for callers that need direct
// access (e.g. CLI code printing a final cycle count).
func (d *Driver) Scheduler() *Scheduler { return d.sched }
