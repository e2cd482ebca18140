package core

import (
	"log/slog"

	"github.com/valerio/go-gbdbg/gbdbg/addr"
)

// SerialPort is the minimal interface for a serial device connected to SB/SC.
// Implementations MUST only accept reads/writes to addr.SB and addr.SC.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
	Reset()
}

// IODevice is a block of memory-mapped registers claiming an address range.
type IODevice interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// MMU maps the 16-bit address space onto a flat backing array plus the
// memory-mapped peripherals (timer, serial, PPU registers). Cartridge
// banking is not modelled, the loaded image is addressed directly.
type MMU struct {
	rom    []byte
	memory []byte
	timer  Timer
	serial SerialPort
	ppu    *PPU
	logger *slog.Logger
}

// NewMMU creates a memory unit with the given program image loaded at 0x0000.
func NewMMU(rom []byte, serial SerialPort, ppu *PPU, logger *slog.Logger) *MMU {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MMU{
		rom:    rom,
		serial: serial,
		ppu:    ppu,
		logger: logger,
	}
	m.timer.interrupt = func() { m.RequestInterrupt(addr.TimerInterrupt) }
	m.Reset()
	return m
}

// Reset restores power-on memory contents: the program image followed by
// cleared RAM, peripherals reset.
func (m *MMU) Reset() {
	m.memory = make([]byte, 0x10000)
	copy(m.memory, m.rom)
	m.timer.Reset()
	if m.serial != nil {
		m.serial.Reset()
	}
	if m.ppu != nil {
		m.ppu.Reset()
	}
	m.initIO()
}

// initIO seeds the IO registers with their DMG power-on values.
func (m *MMU) initIO() {
	m.memory[addr.P1] = 0xCF
	m.memory[addr.IF] = 0xE1
	m.memory[addr.IE] = 0x00
	m.memory[addr.BGP] = 0xFC
	m.memory[addr.OBP0] = 0xFF
	m.memory[addr.OBP1] = 0xFF
}

func (m *MMU) Read(address uint16) byte {
	switch {
	case address == addr.SB || address == addr.SC:
		if m.serial != nil {
			return m.serial.Read(address)
		}
		return 0xFF
	case address >= addr.DIV && address <= addr.TAC:
		return m.timer.Read(address)
	case address >= addr.LCDC && address <= addr.WX:
		if m.ppu != nil {
			return m.ppu.Read(address)
		}
		return 0xFF
	}
	return m.memory[address]
}

func (m *MMU) Write(address uint16, value byte) {
	switch {
	case address == addr.SB || address == addr.SC:
		if m.serial != nil {
			m.serial.Write(address, value)
			return
		}
	case address >= addr.DIV && address <= addr.TAC:
		m.timer.Write(address, value)
		return
	case address >= addr.LCDC && address <= addr.WX:
		if m.ppu != nil {
			m.ppu.Write(address, value)
			return
		}
	}
	m.memory[address] = value
}

// Tick advances the clocked peripherals by the given number of dots.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	if m.serial != nil {
		m.serial.Tick(cycles)
	}
	if m.ppu != nil {
		m.ppu.Tick(cycles)
	}
}

// RequestInterrupt sets the corresponding bit in the IF register.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.memory[addr.IF] |= byte(interrupt)
}
