package core

import (
	"log/slog"

	"github.com/valerio/go-gbdbg/gbdbg/addr"
	"github.com/valerio/go-gbdbg/gbdbg/bit"
)

// Flag is one of the 4 flags in the flag register (low byte of AF).
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

const baseInterruptAddress uint16 = 0x40

// Bus provides the CPU's view of memory.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// CPU holds SM83 state and executes a compact subset of the instruction set:
// loads, ALU, control flow, stack ops, CB-prefixed bit ops, HALT/STOP and
// interrupt dispatch. Unimplemented opcodes execute as no-ops and are logged.
type CPU struct {
	a, f uint8
	b, c uint8
	d, e uint8
	h, l uint8
	sp   uint16
	pc   uint16

	ime       bool
	eiPending bool // EI enables interrupts after the following instruction
	halted    bool
	stopped   bool
	cycles    uint64

	bus    Bus
	logger *slog.Logger
}

// NewCPU returns a CPU with DMG power-on register values.
func NewCPU(bus Bus, logger *slog.Logger) *CPU {
	if logger == nil {
		logger = slog.Default()
	}
	cpu := &CPU{bus: bus, logger: logger}
	cpu.Reset()
	return cpu
}

// Reset restores the DMG power-on register state.
func (c *CPU) Reset() {
	c.SetAF(0x01B0)
	c.SetBC(0x0013)
	c.SetDE(0x00D8)
	c.SetHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.ime = false
	c.eiPending = false
	c.halted = false
	c.stopped = false
	c.cycles = 0
}

// Exec executes a single instruction and returns the dots consumed.
func (c *CPU) Exec() int {
	serviced, pending := c.handleInterrupts()
	if serviced > 0 {
		c.cycles += uint64(serviced)
		return serviced
	}

	if c.halted {
		if pending {
			c.halted = false
		} else {
			c.cycles += 4
			return 4
		}
	}

	enableIME := c.eiPending
	c.eiPending = false

	op := c.fetch()
	cycles := c.execute(op)
	c.cycles += uint64(cycles)

	// EI takes effect after the following instruction; DI cancels it
	if enableIME && op != 0xF3 {
		c.ime = true
	}
	return cycles
}

// handleInterrupts services the highest-priority pending interrupt when IME
// is set. Returns the cycles consumed and whether any interrupt is pending.
func (c *CPU) handleInterrupts() (int, bool) {
	enabled := c.bus.Read(addr.IE)
	fired := c.bus.Read(addr.IF)
	pending := enabled&fired&0x1F != 0

	if !c.ime || !pending {
		return 0, pending
	}

	for i := uint8(0); i < 5; i++ {
		if bit.IsSet(i, fired) && bit.IsSet(i, enabled) {
			c.bus.Write(addr.IF, bit.Clear(i, fired))
			c.push(c.pc)
			c.pc = baseInterruptAddress + uint16(i)*8
			c.ime = false
			c.halted = false
			return 20, true
		}
	}
	return 0, pending
}

func (c *CPU) fetch() uint8 {
	op := c.bus.Read(c.pc)
	c.pc++
	return op
}

func (c *CPU) fetch16() uint16 {
	low := c.fetch()
	high := c.fetch()
	return bit.Combine(high, low)
}

func (c *CPU) push(value uint16) {
	c.sp -= 2
	c.bus.Write(c.sp, bit.Low(value))
	c.bus.Write(c.sp+1, bit.High(value))
}

func (c *CPU) pop() uint16 {
	low := c.bus.Read(c.sp)
	high := c.bus.Read(c.sp + 1)
	c.sp += 2
	return bit.Combine(high, low)
}

// reg8 maps the 3-bit register encoding, 0..7 = B C D E H L (HL) A.
func (c *CPU) reg8(i uint8) uint8 {
	switch i {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.bus.Read(c.GetHL())
	default:
		return c.a
	}
}

func (c *CPU) setReg8(i uint8, v uint8) {
	switch i {
	case 0:
		c.b = v
	case 1:
		c.c = v
	case 2:
		c.d = v
	case 3:
		c.e = v
	case 4:
		c.h = v
	case 5:
		c.l = v
	case 6:
		c.bus.Write(c.GetHL(), v)
	default:
		c.a = v
	}
}

// reg16 maps the 2-bit register-pair encoding, 0..3 = BC DE HL SP.
func (c *CPU) reg16(i uint8) uint16 {
	switch i {
	case 0:
		return c.GetBC()
	case 1:
		return c.GetDE()
	case 2:
		return c.GetHL()
	default:
		return c.sp
	}
}

func (c *CPU) setReg16(i uint8, v uint16) {
	switch i {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.sp = v
	}
}

// condition maps the 2-bit condition encoding, 0..3 = NZ Z NC C.
func (c *CPU) condition(i uint8) bool {
	switch i {
	case 0:
		return !c.isSet(zeroFlag)
	case 1:
		return c.isSet(zeroFlag)
	case 2:
		return !c.isSet(carryFlag)
	default:
		return c.isSet(carryFlag)
	}
}

func (c *CPU) isSet(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

func (c *CPU) setFlag(flag Flag, on bool) {
	if on {
		c.f |= uint8(flag)
	} else {
		c.f &^= uint8(flag)
	}
}

// 16-bit register pairs

func (c *CPU) SetBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) GetBC() uint16 { return bit.Combine(c.b, c.c) }

func (c *CPU) SetDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) GetDE() uint16 { return bit.Combine(c.d, c.e) }

func (c *CPU) SetHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

func (c *CPU) GetHL() uint16 { return bit.Combine(c.h, c.l) }

func (c *CPU) SetAF(value uint16) {
	c.a = bit.High(value)
	// low nibble of F is always zero
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) GetAF() uint16 { return bit.Combine(c.a, c.f) }

// Accessors used by the debugger for register display and store.

func (c *CPU) GetA() uint8       { return c.a }
func (c *CPU) GetF() uint8       { return c.f }
func (c *CPU) GetB() uint8       { return c.b }
func (c *CPU) GetC() uint8       { return c.c }
func (c *CPU) GetD() uint8       { return c.d }
func (c *CPU) GetE() uint8       { return c.e }
func (c *CPU) GetH() uint8       { return c.h }
func (c *CPU) GetL() uint8       { return c.l }
func (c *CPU) GetSP() uint16     { return c.sp }
func (c *CPU) GetPC() uint16     { return c.pc }
func (c *CPU) GetCycles() uint64 { return c.cycles }

func (c *CPU) SetA(v uint8)   { c.a = v }
func (c *CPU) SetF(v uint8)   { c.f = v & 0xF0 }
func (c *CPU) SetB(v uint8)   { c.b = v }
func (c *CPU) SetC(v uint8)   { c.c = v }
func (c *CPU) SetD(v uint8)   { c.d = v }
func (c *CPU) SetE(v uint8)   { c.e = v }
func (c *CPU) SetH(v uint8)   { c.h = v }
func (c *CPU) SetL(v uint8)   { c.l = v }
func (c *CPU) SetSP(v uint16) { c.sp = v }

// SetPC forces the program counter. Used by the debugger's jump command.
func (c *CPU) SetPC(v uint16) {
	c.pc = v
	c.halted = false
}

// IsStopped reports whether a STOP instruction has been executed.
func (c *CPU) IsStopped() bool { return c.stopped }

// IsHalted reports whether the CPU is waiting for an interrupt.
func (c *CPU) IsHalted() bool { return c.halted }

// GetIME reports whether interrupts are enabled.
func (c *CPU) GetIME() bool { return c.ime }

// GetFlagString returns a human-readable view of the flag register.
func (c *CPU) GetFlagString() string {
	flags := [4]byte{'-', '-', '-', '-'}
	if c.isSet(zeroFlag) {
		flags[0] = 'Z'
	}
	if c.isSet(subFlag) {
		flags[1] = 'N'
	}
	if c.isSet(halfCarryFlag) {
		flags[2] = 'H'
	}
	if c.isSet(carryFlag) {
		flags[3] = 'C'
	}
	return string(flags[:])
}
