// Package uartrx feeds bytes from an external reader (normally the
// process's stdin) into a non-blocking OS pipe that the simulation thread
// polls once per cycle, so the UART device's RX path never blocks the main
// loop on stdin I/O.
package uartrx

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/rv64sim/rv64sim/internal/logging"
)

// Producer runs a background goroutine copying from an io.Reader into a
// non-blocking pipe. Poll reads whatever is currently buffered without
// blocking the caller.
type Producer struct {
	readFD  int
	writeFD int

	log    *logging.Logger
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
}

// NewProducer starts copying from src in a background goroutine. A nil
// logger uses logging.Default().
func NewProducer(src io.Reader, log *logging.Logger) (*Producer, error) {
	if log == nil {
		log = logging.Default()
	}
	fds, err := unix.Pipe2(unix.O_NONBLOCK)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Producer{readFD: fds[0], writeFD: fds[1], log: log, cancel: cancel, done: make(chan struct{})}
	go p.run(ctx, src)
	return p, nil
}

func (p *Producer) run(ctx context.Context, src io.Reader) {
	defer close(p.done)
	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, err := src.Read(buf)
		if n > 0 {
			if werr := writeAll(p.writeFD, buf[:n]); werr != nil {
				p.log.Warn("uartrx: write to pipe failed", "error", werr)
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				p.log.Warn("uartrx: source read failed", "error", err)
			}
			return
		}
	}
}

func writeAll(fd int, data []byte) error {
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if err != nil {
			if err == unix.EAGAIN {
				continue
			}
			return err
		}
		data = data[n:]
	}
	return nil
}

// Poll reads up to len(buf) bytes currently available without blocking. It
// returns 0, nil when nothing is pending.
func (p *Producer) Poll(buf []byte) (int, error) {
	n, err := unix.Read(p.readFD, buf)
	if err != nil {
		if err == unix.EAGAIN {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Close stops the background goroutine and closes both pipe ends.
func (p *Producer) Close() error {
	p.closeOnce.Do(func() {
		p.cancel()
		<-p.done
		unix.Close(p.writeFD)
		unix.Close(p.readFD)
	})
	return nil
}
