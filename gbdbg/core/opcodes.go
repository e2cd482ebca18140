package core

import (
	"github.com/valerio/go-gbdbg/gbdbg/bit"
)

// execute runs a single decoded instruction, returning dots consumed.
// The opcode byte has already been fetched.
func (c *CPU) execute(op uint8) int {
	switch op {
	case 0x00: // NOP
		return 4
	case 0x10: // STOP
		c.fetch() // second byte of STOP is ignored
		c.stopped = true
		return 4
	case 0x76: // HALT
		c.halted = true
		return 4
	case 0xF3: // DI
		c.ime = false
		c.eiPending = false
		return 4
	case 0xFB: // EI
		c.eiPending = true
		return 4

	case 0x01, 0x11, 0x21, 0x31: // LD rr,nn
		c.setReg16((op>>4)&3, c.fetch16())
		return 12
	case 0x03, 0x13, 0x23, 0x33: // INC rr
		i := (op >> 4) & 3
		c.setReg16(i, c.reg16(i)+1)
		return 8
	case 0x0B, 0x1B, 0x2B, 0x3B: // DEC rr
		i := (op >> 4) & 3
		c.setReg16(i, c.reg16(i)-1)
		return 8
	case 0x09, 0x19, 0x29, 0x39: // ADD HL,rr
		c.addHL(c.reg16((op >> 4) & 3))
		return 8
	case 0x08: // LD (nn),SP
		nn := c.fetch16()
		c.bus.Write(nn, bit.Low(c.sp))
		c.bus.Write(nn+1, bit.High(c.sp))
		return 20
	case 0xF9: // LD SP,HL
		c.sp = c.GetHL()
		return 8

	case 0x02: // LD (BC),A
		c.bus.Write(c.GetBC(), c.a)
		return 8
	case 0x12: // LD (DE),A
		c.bus.Write(c.GetDE(), c.a)
		return 8
	case 0x22: // LD (HL+),A
		c.bus.Write(c.GetHL(), c.a)
		c.SetHL(c.GetHL() + 1)
		return 8
	case 0x32: // LD (HL-),A
		c.bus.Write(c.GetHL(), c.a)
		c.SetHL(c.GetHL() - 1)
		return 8
	case 0x0A: // LD A,(BC)
		c.a = c.bus.Read(c.GetBC())
		return 8
	case 0x1A: // LD A,(DE)
		c.a = c.bus.Read(c.GetDE())
		return 8
	case 0x2A: // LD A,(HL+)
		c.a = c.bus.Read(c.GetHL())
		c.SetHL(c.GetHL() + 1)
		return 8
	case 0x3A: // LD A,(HL-)
		c.a = c.bus.Read(c.GetHL())
		c.SetHL(c.GetHL() - 1)
		return 8

	case 0xE0: // LDH (n),A
		c.bus.Write(0xFF00+uint16(c.fetch()), c.a)
		return 12
	case 0xF0: // LDH A,(n)
		c.a = c.bus.Read(0xFF00 + uint16(c.fetch()))
		return 12
	case 0xE2: // LD (C),A
		c.bus.Write(0xFF00+uint16(c.c), c.a)
		return 8
	case 0xF2: // LD A,(C)
		c.a = c.bus.Read(0xFF00 + uint16(c.c))
		return 8
	case 0xEA: // LD (nn),A
		c.bus.Write(c.fetch16(), c.a)
		return 16
	case 0xFA: // LD A,(nn)
		c.a = c.bus.Read(c.fetch16())
		return 16

	case 0x07: // RLCA
		carry := c.a >> 7
		c.a = c.a<<1 | carry
		c.rotateFlags(carry)
		return 4
	case 0x0F: // RRCA
		carry := c.a & 1
		c.a = c.a>>1 | carry<<7
		c.rotateFlags(carry)
		return 4
	case 0x17: // RLA
		carry := c.a >> 7
		c.a = c.a << 1
		if c.isSet(carryFlag) {
			c.a |= 1
		}
		c.rotateFlags(carry)
		return 4
	case 0x1F: // RRA
		carry := c.a & 1
		c.a = c.a >> 1
		if c.isSet(carryFlag) {
			c.a |= 0x80
		}
		c.rotateFlags(carry)
		return 4
	case 0x2F: // CPL
		c.a = ^c.a
		c.setFlag(subFlag, true)
		c.setFlag(halfCarryFlag, true)
		return 4
	case 0x37: // SCF
		c.setFlag(subFlag, false)
		c.setFlag(halfCarryFlag, false)
		c.setFlag(carryFlag, true)
		return 4
	case 0x3F: // CCF
		c.setFlag(subFlag, false)
		c.setFlag(halfCarryFlag, false)
		c.setFlag(carryFlag, !c.isSet(carryFlag))
		return 4

	case 0x18: // JR
		return c.jr(true)
	case 0x20, 0x28, 0x30, 0x38: // JR cc
		return c.jr(c.condition((op >> 3) & 3))
	case 0xC3: // JP nn
		c.pc = c.fetch16()
		return 16
	case 0xC2, 0xCA, 0xD2, 0xDA: // JP cc,nn
		return c.jp(c.condition((op >> 3) & 3))
	case 0xE9: // JP HL
		c.pc = c.GetHL()
		return 4
	case 0xCD: // CALL nn
		return c.call(true)
	case 0xC4, 0xCC, 0xD4, 0xDC: // CALL cc,nn
		return c.call(c.condition((op >> 3) & 3))
	case 0xC9: // RET
		c.pc = c.pop()
		return 16
	case 0xD9: // RETI
		c.pc = c.pop()
		c.ime = true
		return 16
	case 0xC0, 0xC8, 0xD0, 0xD8: // RET cc
		if c.condition((op >> 3) & 3) {
			c.pc = c.pop()
			return 20
		}
		return 8
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF: // RST
		c.push(c.pc)
		c.pc = uint16(op & 0x38)
		return 16

	case 0xC5: // PUSH BC
		c.push(c.GetBC())
		return 16
	case 0xD5: // PUSH DE
		c.push(c.GetDE())
		return 16
	case 0xE5: // PUSH HL
		c.push(c.GetHL())
		return 16
	case 0xF5: // PUSH AF
		c.push(c.GetAF())
		return 16
	case 0xC1: // POP BC
		c.SetBC(c.pop())
		return 12
	case 0xD1: // POP DE
		c.SetDE(c.pop())
		return 12
	case 0xE1: // POP HL
		c.SetHL(c.pop())
		return 12
	case 0xF1: // POP AF
		c.SetAF(c.pop())
		return 12

	case 0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE: // ALU A,n
		c.alu((op>>3)&7, c.fetch())
		return 8

	case 0xCB:
		return c.executeCB(c.fetch())
	}

	switch {
	case op >= 0x40 && op <= 0x7F: // LD r,r'
		dst := (op >> 3) & 7
		src := op & 7
		c.setReg8(dst, c.reg8(src))
		if dst == 6 || src == 6 {
			return 8
		}
		return 4
	case op >= 0x80 && op <= 0xBF: // ALU A,r
		src := op & 7
		c.alu((op>>3)&7, c.reg8(src))
		if src == 6 {
			return 8
		}
		return 4
	case op < 0x40 && op&0xC7 == 0x04: // INC r
		i := (op >> 3) & 7
		c.setReg8(i, c.inc8(c.reg8(i)))
		if i == 6 {
			return 12
		}
		return 4
	case op < 0x40 && op&0xC7 == 0x05: // DEC r
		i := (op >> 3) & 7
		c.setReg8(i, c.dec8(c.reg8(i)))
		if i == 6 {
			return 12
		}
		return 4
	case op < 0x40 && op&0xC7 == 0x06: // LD r,n
		i := (op >> 3) & 7
		c.setReg8(i, c.fetch())
		if i == 6 {
			return 12
		}
		return 8
	}

	c.logger.Warn("unimplemented opcode, executing as NOP", "opcode", op, "pc", c.pc-1)
	return 4
}

// executeCB runs a CB-prefixed instruction (rotates, shifts, bit ops).
func (c *CPU) executeCB(cb uint8) int {
	i := cb & 7
	n := (cb >> 3) & 7
	v := c.reg8(i)

	switch cb >> 6 {
	case 1: // BIT n,r
		c.setFlag(zeroFlag, !bit.IsSet(n, v))
		c.setFlag(subFlag, false)
		c.setFlag(halfCarryFlag, true)
		if i == 6 {
			return 12
		}
		return 8
	case 2: // RES n,r
		c.setReg8(i, bit.Clear(n, v))
	case 3: // SET n,r
		c.setReg8(i, bit.Set(n, v))
	default: // rotate/shift group
		var out, carry uint8
		switch n {
		case 0: // RLC
			carry = v >> 7
			out = v<<1 | carry
		case 1: // RRC
			carry = v & 1
			out = v>>1 | carry<<7
		case 2: // RL
			carry = v >> 7
			out = v << 1
			if c.isSet(carryFlag) {
				out |= 1
			}
		case 3: // RR
			carry = v & 1
			out = v >> 1
			if c.isSet(carryFlag) {
				out |= 0x80
			}
		case 4: // SLA
			carry = v >> 7
			out = v << 1
		case 5: // SRA
			carry = v & 1
			out = v>>1 | v&0x80
		case 6: // SWAP
			carry = 0
			out = v<<4 | v>>4
		case 7: // SRL
			carry = v & 1
			out = v >> 1
		}
		c.setReg8(i, out)
		c.setFlag(zeroFlag, out == 0)
		c.setFlag(subFlag, false)
		c.setFlag(halfCarryFlag, false)
		c.setFlag(carryFlag, carry == 1)
	}

	if i == 6 {
		return 16
	}
	return 8
}

// alu applies the 3-bit ALU op encoding, 0..7 = ADD ADC SUB SBC AND XOR OR CP.
func (c *CPU) alu(op uint8, v uint8) {
	switch op {
	case 0:
		c.add(v, false)
	case 1:
		c.add(v, c.isSet(carryFlag))
	case 2:
		c.sub(v, false, true)
	case 3:
		c.sub(v, c.isSet(carryFlag), true)
	case 4: // AND
		c.a &= v
		c.setFlag(zeroFlag, c.a == 0)
		c.setFlag(subFlag, false)
		c.setFlag(halfCarryFlag, true)
		c.setFlag(carryFlag, false)
	case 5: // XOR
		c.a ^= v
		c.logicFlags()
	case 6: // OR
		c.a |= v
		c.logicFlags()
	case 7: // CP
		c.sub(v, false, false)
	}
}

func (c *CPU) add(v uint8, withCarry bool) {
	carry := uint16(0)
	if withCarry {
		carry = 1
	}
	sum := uint16(c.a) + uint16(v) + carry
	half := c.a&0xF + v&0xF + uint8(carry)

	c.setFlag(zeroFlag, uint8(sum) == 0)
	c.setFlag(subFlag, false)
	c.setFlag(halfCarryFlag, half > 0xF)
	c.setFlag(carryFlag, sum > 0xFF)
	c.a = uint8(sum)
}

func (c *CPU) sub(v uint8, withBorrow bool, store bool) {
	borrow := uint16(0)
	if withBorrow {
		borrow = 1
	}
	diff := uint16(c.a) - uint16(v) - borrow

	c.setFlag(zeroFlag, uint8(diff) == 0)
	c.setFlag(subFlag, true)
	c.setFlag(halfCarryFlag, uint16(c.a&0xF) < uint16(v&0xF)+borrow)
	c.setFlag(carryFlag, diff > 0xFF)
	if store {
		c.a = uint8(diff)
	}
}

func (c *CPU) logicFlags() {
	c.setFlag(zeroFlag, c.a == 0)
	c.setFlag(subFlag, false)
	c.setFlag(halfCarryFlag, false)
	c.setFlag(carryFlag, false)
}

func (c *CPU) rotateFlags(carry uint8) {
	c.setFlag(zeroFlag, false)
	c.setFlag(subFlag, false)
	c.setFlag(halfCarryFlag, false)
	c.setFlag(carryFlag, carry == 1)
}

func (c *CPU) inc8(v uint8) uint8 {
	out := v + 1
	c.setFlag(zeroFlag, out == 0)
	c.setFlag(subFlag, false)
	c.setFlag(halfCarryFlag, v&0xF == 0xF)
	return out
}

func (c *CPU) dec8(v uint8) uint8 {
	out := v - 1
	c.setFlag(zeroFlag, out == 0)
	c.setFlag(subFlag, true)
	c.setFlag(halfCarryFlag, v&0xF == 0)
	return out
}

func (c *CPU) addHL(v uint16) {
	hl := c.GetHL()
	sum := uint32(hl) + uint32(v)
	c.setFlag(subFlag, false)
	c.setFlag(halfCarryFlag, hl&0xFFF+v&0xFFF > 0xFFF)
	c.setFlag(carryFlag, sum > 0xFFFF)
	c.SetHL(uint16(sum))
}

func (c *CPU) jr(taken bool) int {
	offset := int8(c.fetch())
	if taken {
		c.pc = uint16(int32(c.pc) + int32(offset))
		return 12
	}
	return 8
}

func (c *CPU) jp(taken bool) int {
	nn := c.fetch16()
	if taken {
		c.pc = nn
		return 16
	}
	return 12
}

func (c *CPU) call(taken bool) int {
	nn := c.fetch16()
	if taken {
		c.push(c.pc)
		c.pc = nn
		return 24
	}
	return 12
}
