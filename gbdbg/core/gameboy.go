// Package core implements a compact, cycle-counted DMG system: SM83 CPU
// subset, flat-memory MMU with memory-mapped peripherals, timer and a
// timing-only PPU. It exposes exactly the surface the debugger drives.
package core

import (
	"log/slog"
)

// GameBoy wires the CPU, MMU and peripherals into a steppable system.
type GameBoy struct {
	cpu    *CPU
	mmu    *MMU
	ppu    *PPU
	logger *slog.Logger
}

type Option func(*GameBoy)

// WithSerialPort attaches a serial device behind SB/SC.
func WithSerialPort(port SerialPort) Option {
	return func(g *GameBoy) { g.mmu.serial = port }
}

// WithLogger sets the logger used by the core components.
func WithLogger(logger *slog.Logger) Option {
	return func(g *GameBoy) {
		g.logger = logger
		g.mmu.logger = logger
		g.cpu.logger = logger
	}
}

// New creates a powered-on system with the given program image at 0x0000.
func New(rom []byte, opts ...Option) *GameBoy {
	g := &GameBoy{logger: slog.Default()}
	g.ppu = NewPPU(nil)
	g.mmu = NewMMU(rom, nil, g.ppu, g.logger)
	g.ppu.interrupt = g.mmu.RequestInterrupt
	g.cpu = NewCPU(g.mmu, g.logger)
	for _, opt := range opts {
		opt(g)
	}
	// options may replace the serial port after the MMU reset ran
	if g.mmu.serial != nil {
		g.mmu.serial.Reset()
	}
	return g
}

// Cycle executes one instruction and advances the clocked peripherals,
// returning the dots consumed. A stopped system does not advance.
func (g *GameBoy) Cycle() int {
	if g.cpu.stopped {
		return 0
	}
	cycles := g.cpu.Exec()
	g.mmu.Tick(cycles)
	return cycles
}

// Reset returns the system to its power-on state. Only emulated hardware is
// affected; debugger-owned state (breakpoints, capture buffers) is not ours.
func (g *GameBoy) Reset() {
	g.mmu.Reset()
	g.cpu.Reset()
}

// Stopped reports whether the program has executed STOP.
func (g *GameBoy) Stopped() bool { return g.cpu.stopped }

// CPU returns the processor for register access.
func (g *GameBoy) CPU() *CPU { return g.cpu }

// Read returns the byte at the given address, going through the IO dispatch.
func (g *GameBoy) Read(address uint16) byte { return g.mmu.Read(address) }

// Write stores a byte at the given address, going through the IO dispatch.
func (g *GameBoy) Write(address uint16, value byte) { g.mmu.Write(address, value) }

// PC returns the current program counter.
func (g *GameBoy) PC() uint16 { return g.cpu.GetPC() }

// SetPC forces the program counter.
func (g *GameBoy) SetPC(address uint16) { g.cpu.SetPC(address) }

// Frames returns the number of completed PPU frames since power-on.
func (g *GameBoy) Frames() uint64 { return g.ppu.Frames() }

// Scanline returns the current LY value.
func (g *GameBoy) Scanline() byte { return g.ppu.Scanline() }
