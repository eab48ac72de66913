package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	sim "github.com/rv64sim/rv64sim"
	"github.com/rv64sim/rv64sim/internal/constants"
	"github.com/rv64sim/rv64sim/internal/devices"
	"github.com/rv64sim/rv64sim/internal/diff"
	"github.com/rv64sim/rv64sim/internal/dut"
	"github.com/rv64sim/rv64sim/internal/golden"
	"github.com/rv64sim/rv64sim/internal/kbdinput"
	"github.com/rv64sim/rv64sim/internal/logging"
	"github.com/rv64sim/rv64sim/internal/rbbd"
	"github.com/rv64sim/rv64sim/internal/uartrx"
)

func main() {
	var (
		file        = flag.String("file", "", "image (ELF or raw) to load at memory base")
		signature   = flag.String("signature", "", "write riscof signature to PATH")
		clk         = flag.Uint64("clk", constants.DefaultMaxCycles, "maximum cycles")
		am          = flag.Bool("am", false, "enable AM-mode ebreak termination and a0-based exit code")
		wave        = flag.Bool("wave", false, "enable waveform dump")
		waveStime   = flag.Uint64("wave_stime", 0, "suppress wave output until simulator time > 2N")
		difftest    = flag.Bool("difftest", false, "enable differential checker")
		diffLog     = flag.Bool("diff-log", false, "enable diff-trace log sink")
		itrace      = flag.Bool("itrace", false, "enable instruction disassembly trace")
		perfTrace   = flag.Bool("perf-trace", false, "enable periodic perf-counter dump")
		vga         = flag.Bool("vga", false, "instantiate VGA+keyboard")
		rbb         = flag.Bool("rbb", false, "enable remote-bitbang JTAG TCP server")
		rbbPort     = flag.Uint64("rbb-port", constants.DefaultRBBPort, "TCP port for remote bitbang")
		tohostCheck = flag.Bool("tohost-check", false, "enable tohost termination protocol")
	)
	flag.StringVar(file, "f", *file, "shorthand for --file")
	flag.StringVar(signature, "s", *signature, "shorthand for --signature")
	flag.BoolVar(wave, "w", *wave, "shorthand for --wave")
	flag.BoolVar(difftest, "d", *difftest, "shorthand for --difftest")
	flag.Parse()
	_ = waveStime // wave tracing sink is out of scope; flag is accepted and otherwise unused

	if *file == "" {
		fmt.Fprintln(os.Stderr, "rv64sim: -f/--file is required")
		os.Exit(1)
	}

	console := logging.NewNamed("console", logging.DefaultConfig())
	logging.SetDefault(console)

	diffCfg := logging.DefaultConfig()
	if !*diffLog {
		diffCfg.Level = logging.LevelCritical + 1
	}
	diffTrace := logging.NewNamed("diff_trace", diffCfg)

	itraceCfg := logging.DefaultConfig()
	if !*itrace {
		itraceCfg.Level = logging.LevelCritical + 1
	}
	itraceLog := logging.NewNamed("itrace", itraceCfg)

	perfCfg := logging.DefaultConfig()
	if !*perfTrace {
		perfCfg.Level = logging.LevelCritical + 1
	}
	perfTraceLog := logging.NewNamed("perf_trace", perfCfg)

	bus := sim.NewManager(console)

	mem := devices.NewMemory(constants.MemBase, constants.MemSize, console)
	if _, err := mem.LoadFile(*file); err != nil {
		console.Error("failed to load image", "path", *file, "error", err)
		os.Exit(1)
	}
	if err := bus.Register(mem); err != nil {
		console.Error("failed to register memory device", "error", err)
		os.Exit(1)
	}

	uartProducer, err := uartrx.NewProducer(os.Stdin, console)
	if err != nil {
		console.Error("failed to start UART RX producer", "error", err)
		os.Exit(1)
	}
	uart := devices.NewUART(constants.SerialPort, os.Stdout, uartProducer, console)
	if err := bus.Register(uart); err != nil {
		console.Error("failed to register UART device", "error", err)
		os.Exit(1)
	}

	rtc := devices.NewRTC(constants.RTCAddr)
	if err := bus.Register(rtc); err != nil {
		console.Error("failed to register RTC device", "error", err)
		os.Exit(1)
	}

	if *vga {
		scancodes := kbdinput.NewQueue(constants.KeyboardQueueDepth)
		ascii := kbdinput.NewQueue(constants.KeyboardQueueDepth)
		kbdSrc := &kbdinput.QueueSource{Scancodes: scancodes, ASCII: ascii}
		kbd := devices.NewKeyboard(constants.KBDAddr, kbdSrc)
		if err := bus.Register(kbd); err != nil {
			console.Error("failed to register keyboard device", "error", err)
			os.Exit(1)
		}

		vgaDev := devices.NewVGA(constants.FBAddr, constants.VGACtrlAddr, constants.VGAWidth, constants.VGAHeight, nil)
		if err := bus.Register(vgaDev); err != nil {
			console.Error("failed to register VGA device", "error", err)
			os.Exit(1)
		}
	}

	handle, err := dut.New()
	if err != nil {
		console.Error("failed to construct DUT handle", "error", err)
		os.Exit(1)
	}

	var checker *diff.Checker
	if *difftest {
		model, err := golden.New()
		if err != nil {
			console.Error("failed to construct golden model", "error", err)
			os.Exit(1)
		}
		if err := model.LoadFile(*file); err != nil {
			console.Error("golden model failed to load image", "error", err)
			os.Exit(1)
		}
		checker = diff.NewChecker(model, diff.FullAuditCSRs, diffTrace)
	}

	var rbbServer *rbbd.Server
	if *rbb {
		addr := fmt.Sprintf(":%d", *rbbPort)
		rbbServer, err = rbbd.NewServer(addr, console)
		if err != nil {
			console.Error("failed to start remote-bitbang server", "error", err)
			os.Exit(1)
		}
		defer rbbServer.Close()
	}

	metrics := sim.NewMetrics()

	var stopped atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		console.Info("received shutdown signal")
		stopped.Store(true)
	}()

	var tohostSource sim.TohostSource
	if *tohostCheck {
		tohostSource = mem
	}

	driver := sim.NewDriver(sim.DriverConfig{
		Handle:    handle,
		Bus:       bus,
		Log:       console,
		MaxCycles: *clk,
		StopFlag:  stopped.Load,
		Checker:   checker,
		ITrace:    itraceLog,
		PerfTrace: perfTraceLog,
		Tohost:    tohostSource,
		AMMode:    *am,
		Metrics:   metrics,
		RBB:       rbbServer,
		UARTRX:    uartProducer,
	}, os.Stdout)

	report := driver.Run()
	metrics.Stop()

	console.Info("run complete", "state", report.State.String(), "cycles", driver.Scheduler().CycleNum())

	if *signature != "" {
		f, err := os.Create(*signature)
		if err != nil {
			console.Error("failed to create signature file", "path", *signature, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := mem.DumpSignature(f); err != nil {
			console.Error("failed to dump signature", "error", err)
			os.Exit(1)
		}
	}

	if *am && report.AMExited {
		console.Info(fmt.Sprintf("AM exit(ebreak), a0=%#x", report.AMExitCode))
	}

	os.Exit(report.ExitCode())
}
