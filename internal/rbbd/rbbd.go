// Package rbbd implements a remote-bitbang JTAG transport: a single-client,
// non-blocking TCP command server that decodes the classic OpenOCD
// remote_bitbang protocol one byte at a time and exposes the resulting
// (tck, tms, tdi) triple for the scheduler to drive onto the DUT's JTAG
// pins, queuing tdo bits to flush back to the client.
package rbbd

import (
	"bytes"
	"errors"
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/rv64sim/rv64sim/internal/logging"
)

// Signals is the JTAG pin state derived from the last decoded command.
type Signals struct {
	TCK bool
	TMS bool
	TDI bool
}

// Server is a single-client, non-blocking remote-bitbang TCP server.
// Tick is called once per scheduler edge; it never blocks.
type Server struct {
	ln   net.Listener
	conn net.Conn
	log  *logging.Logger

	signals Signals
	tdoOut  bytes.Buffer

	// quit is set by command 'Q' to request the run stop.
	quit bool
	// reset is set/cleared by commands 'r'/'R' and 'b'/'B' in turn, per
	// the protocol's blink/reset request bytes — surfaced for the caller
	// to act on.
	resetRequested bool
}

// NewServer starts listening on addr (host:port) and returns a Server ready
// for Tick. A nil logger uses logging.Default().
func NewServer(addr string, log *logging.Logger) (*Server, error) {
	if log == nil {
		log = logging.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if err := setNonBlocking(ln); err != nil {
		ln.Close()
		return nil, err
	}
	return &Server{ln: ln, log: log}, nil
}

// setNonBlocking puts the listener's underlying file descriptor into
// non-blocking mode so Accept never blocks the simulation thread.
func setNonBlocking(ln net.Listener) error {
	tl, ok := ln.(*net.TCPListener)
	if !ok {
		return nil
	}
	sc, err := tl.SyscallConn()
	if err != nil {
		return err
	}
	var setErr error
	err = sc.Control(func(fd uintptr) {
		setErr = unix.SetNonblock(int(fd), true)
	})
	if err != nil {
		return err
	}
	return setErr
}

// Close shuts down the listener and any active connection.
func (s *Server) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return s.ln.Close()
}

// Signals returns the JTAG pin state published by the last Tick.
func (s *Server) Signals() Signals { return s.signals }

// QuitRequested reports whether the client sent command 'Q'.
func (s *Server) QuitRequested() bool { return s.quit }

// ResetRequested reports whether the client's last reset command was 'R'
// (asserted) rather than 'r' (deasserted).
func (s *Server) ResetRequested() bool { return s.resetRequested }

// Tick runs one non-blocking iteration of the protocol: accept a client if
// idle, otherwise read and apply at most one command byte, then flush any
// pending tdo bytes.
func (s *Server) Tick(tdo bool) {
	if s.conn == nil {
		s.acceptIfIdle()
		return
	}

	buf := make([]byte, 1)
	n, err := s.conn.Read(buf)
	if err != nil {
		if !isWouldBlock(err) {
			s.log.Warn("rbbd client disconnected", "error", err)
			s.conn.Close()
			s.conn = nil
		}
		return
	}
	if n == 0 {
		return
	}
	s.apply(buf[0])
	s.flush(tdo)
}

func (s *Server) acceptIfIdle() {
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		sc, serr := tc.SyscallConn()
		if serr == nil {
			sc.Control(func(fd uintptr) {
				unix.SetNonblock(int(fd), true)
			})
		}
	}
	s.conn = conn
	s.log.Info("rbbd client connected")
}

func (s *Server) apply(b byte) {
	switch b {
	case '0':
		s.signals = Signals{TCK: false, TMS: false, TDI: false}
	case '1':
		s.signals = Signals{TCK: false, TMS: false, TDI: true}
	case '2':
		s.signals = Signals{TCK: false, TMS: true, TDI: false}
	case '3':
		s.signals = Signals{TCK: false, TMS: true, TDI: true}
	case '4':
		s.signals = Signals{TCK: true, TMS: false, TDI: false}
	case '5':
		s.signals = Signals{TCK: true, TMS: false, TDI: true}
	case '6':
		s.signals = Signals{TCK: true, TMS: true, TDI: false}
	case '7':
		s.signals = Signals{TCK: true, TMS: true, TDI: true}
	case 'R':
		s.resetRequested = true
	case 'r':
		s.resetRequested = false
	case 'Q':
		s.quit = true
	case 'b', 'B':
		// Blink request: acknowledged, no simulator-visible effect.
	}
}

// flush writes one '1' or '0' byte for the tdo sample taken this tick.
func (s *Server) flush(tdo bool) {
	if tdo {
		s.conn.Write([]byte{'1'})
	} else {
		s.conn.Write([]byte{'0'})
	}
}

func isWouldBlock(err error) bool {
	var sysErr *net.OpError
	if errors.As(err, &sysErr) {
		return sysErr.Timeout() || errors.Is(sysErr.Err, syscall.EAGAIN) || errors.Is(sysErr.Err, syscall.EWOULDBLOCK)
	}
	return false
}
