// Package serial implements the mock serial device used by the debugger.
package serial

import (
	"errors"
	"log/slog"

	"github.com/valerio/go-gbdbg/gbdbg/addr"
	"github.com/valerio/go-gbdbg/gbdbg/bit"
)

// ErrUnderflow is returned by Recv and Peek when the buffer holds no bytes.
var ErrUnderflow = errors.New("serial: buffer underflow")

// Loopback implements a serial device behind SB/SC whose traffic is captured
// in a FIFO the debugger can inspect. Bytes transmitted by the emulated
// program are enqueued, and the debugger can enqueue bytes itself to mimic
// program output. The transmitted byte is echoed back into SB on completion.
type Loopback struct {
	irqHandler     func()
	sb, sc         byte
	transferActive bool
	countdown      int
	logger         *slog.Logger

	// settings
	immediate bool

	fifo []byte
}

type LoopbackOption func(*Loopback)

// WithFixedTiming sets the device to complete transfers after a fixed
// countdown (~4096 CPU cycles per byte on DMG) instead of immediately.
func WithFixedTiming() LoopbackOption { return func(s *Loopback) { s.immediate = false } }

// WithLogger sets the logger used for transfer tracing.
func WithLogger(l *slog.Logger) LoopbackOption { return func(s *Loopback) { s.logger = l } }

// NewLoopback creates a new loopback serial device. The passed function is
// called when a transfer completes, should be wired to request the Serial
// interrupt.
func NewLoopback(irq func(), opts ...LoopbackOption) *Loopback {
	s := &Loopback{
		irqHandler: irq,
		immediate:  true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

func (s *Loopback) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStartTransfer()
	default:
		panic("serial.Loopback: invalid write address")
	}
}

func (s *Loopback) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc
	default:
		panic("serial.Loopback: invalid read address")
	}
}

func (s *Loopback) Tick(cycles int) {
	if s.immediate || !s.transferActive {
		return
	}
	s.countdown -= cycles
	if s.countdown <= 0 {
		s.completeTransfer()
		s.countdown = 0
	}
}

// Reset restores the hardware latches to their power-on values. The capture
// buffer is session state and survives, see Clear.
func (s *Loopback) Reset() {
	s.sb = 0x00
	s.sc = 0x00
	s.transferActive = false
	s.countdown = 0
}

// Clear drops all buffered bytes.
func (s *Loopback) Clear() {
	s.fifo = s.fifo[:0]
}

// Send enqueues a payload as though the emulated program had transmitted it.
func (s *Loopback) Send(payload []byte) {
	s.fifo = append(s.fifo, payload...)
}

// Recv dequeues and returns the oldest buffered byte.
// Returns ErrUnderflow when the buffer is empty.
func (s *Loopback) Recv() (byte, error) {
	if len(s.fifo) == 0 {
		return 0, ErrUnderflow
	}
	b := s.fifo[0]
	s.fifo = s.fifo[1:]
	return b, nil
}

// Peek returns the oldest buffered byte without dequeueing it.
// Returns ErrUnderflow when the buffer is empty.
func (s *Loopback) Peek() (byte, error) {
	if len(s.fifo) == 0 {
		return 0, ErrUnderflow
	}
	return s.fifo[0], nil
}

// Len returns the number of buffered bytes.
func (s *Loopback) Len() int {
	return len(s.fifo)
}

func (s *Loopback) maybeStartTransfer() {
	if s.transferActive {
		return
	}
	// a transfer starts when bit 7 (start) and bit 0 (clock source) of SC are set.
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	s.fifo = append(s.fifo, s.sb)
	s.logger.Debug("serial transfer", "byte", s.sb)

	if s.immediate {
		s.completeTransfer()
		return
	}

	// fixed timing: DMG ~4096 CPU cycles per byte
	s.transferActive = true
	s.countdown = 4096
}

func (s *Loopback) completeTransfer() {
	// loopback: the program reads back the byte it sent
	s.sc = bit.Clear(7, s.sc)
	s.transferActive = false
	if s.irqHandler != nil {
		s.irqHandler()
	}
}
