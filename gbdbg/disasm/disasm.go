// Package disasm renders SM83 instructions for the debugger's listing
// output. It covers the instruction subset the core executes; anything else
// is shown as a raw data byte.
package disasm

import (
	"fmt"

	"github.com/valerio/go-gbdbg/gbdbg/bit"
)

// Reader provides read-only access to the emulated memory.
type Reader interface {
	Read(address uint16) byte
}

// Line is a single disassembled instruction.
type Line struct {
	Address uint16
	Text    string
	Length  int
}

func (l Line) String() string {
	return fmt.Sprintf("$%04X: %s", l.Address, l.Text)
}

var (
	reg8Names  = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	reg16Names = [4]string{"BC", "DE", "HL", "SP"}
	aluNames   = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
	condNames  = [4]string{"NZ", "Z", "NC", "C"}
	rotNames   = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
	cbNames    = [4]string{"", "BIT", "RES", "SET"}
)

// At disassembles the instruction at the given address.
func At(address uint16, mem Reader) Line {
	op := mem.Read(address)
	imm8 := func() uint8 { return mem.Read(address + 1) }
	imm16 := func() uint16 { return bit.Combine(mem.Read(address+2), mem.Read(address+1)) }

	text, length := "", 1
	switch op {
	case 0x00:
		text = "NOP"
	case 0x10:
		text, length = "STOP", 2
	case 0x76:
		text = "HALT"
	case 0xF3:
		text = "DI"
	case 0xFB:
		text = "EI"
	case 0x01, 0x11, 0x21, 0x31:
		text, length = fmt.Sprintf("LD %s,$%04X", reg16Names[(op>>4)&3], imm16()), 3
	case 0x03, 0x13, 0x23, 0x33:
		text = fmt.Sprintf("INC %s", reg16Names[(op>>4)&3])
	case 0x0B, 0x1B, 0x2B, 0x3B:
		text = fmt.Sprintf("DEC %s", reg16Names[(op>>4)&3])
	case 0x09, 0x19, 0x29, 0x39:
		text = fmt.Sprintf("ADD HL,%s", reg16Names[(op>>4)&3])
	case 0x08:
		text, length = fmt.Sprintf("LD ($%04X),SP", imm16()), 3
	case 0xF9:
		text = "LD SP,HL"
	case 0x02:
		text = "LD (BC),A"
	case 0x12:
		text = "LD (DE),A"
	case 0x22:
		text = "LD (HL+),A"
	case 0x32:
		text = "LD (HL-),A"
	case 0x0A:
		text = "LD A,(BC)"
	case 0x1A:
		text = "LD A,(DE)"
	case 0x2A:
		text = "LD A,(HL+)"
	case 0x3A:
		text = "LD A,(HL-)"
	case 0xE0:
		text, length = fmt.Sprintf("LDH ($FF%02X),A", imm8()), 2
	case 0xF0:
		text, length = fmt.Sprintf("LDH A,($FF%02X)", imm8()), 2
	case 0xE2:
		text = "LD (C),A"
	case 0xF2:
		text = "LD A,(C)"
	case 0xEA:
		text, length = fmt.Sprintf("LD ($%04X),A", imm16()), 3
	case 0xFA:
		text, length = fmt.Sprintf("LD A,($%04X)", imm16()), 3
	case 0x07:
		text = "RLCA"
	case 0x0F:
		text = "RRCA"
	case 0x17:
		text = "RLA"
	case 0x1F:
		text = "RRA"
	case 0x2F:
		text = "CPL"
	case 0x37:
		text = "SCF"
	case 0x3F:
		text = "CCF"
	case 0x18:
		target := address + 2 + uint16(int16(int8(imm8())))
		text, length = fmt.Sprintf("JR $%04X", target), 2
	case 0x20, 0x28, 0x30, 0x38:
		target := address + 2 + uint16(int16(int8(imm8())))
		text, length = fmt.Sprintf("JR %s,$%04X", condNames[(op>>3)&3], target), 2
	case 0xC3:
		text, length = fmt.Sprintf("JP $%04X", imm16()), 3
	case 0xC2, 0xCA, 0xD2, 0xDA:
		text, length = fmt.Sprintf("JP %s,$%04X", condNames[(op>>3)&3], imm16()), 3
	case 0xE9:
		text = "JP HL"
	case 0xCD:
		text, length = fmt.Sprintf("CALL $%04X", imm16()), 3
	case 0xC4, 0xCC, 0xD4, 0xDC:
		text, length = fmt.Sprintf("CALL %s,$%04X", condNames[(op>>3)&3], imm16()), 3
	case 0xC9:
		text = "RET"
	case 0xD9:
		text = "RETI"
	case 0xC0, 0xC8, 0xD0, 0xD8:
		text = fmt.Sprintf("RET %s", condNames[(op>>3)&3])
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		text = fmt.Sprintf("RST $%02X", op&0x38)
	case 0xC5:
		text = "PUSH BC"
	case 0xD5:
		text = "PUSH DE"
	case 0xE5:
		text = "PUSH HL"
	case 0xF5:
		text = "PUSH AF"
	case 0xC1:
		text = "POP BC"
	case 0xD1:
		text = "POP DE"
	case 0xE1:
		text = "POP HL"
	case 0xF1:
		text = "POP AF"
	case 0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE:
		text, length = fmt.Sprintf("%s$%02X", aluNames[(op>>3)&7], imm8()), 2
	case 0xCB:
		cb := imm8()
		length = 2
		if group := cb >> 6; group == 0 {
			text = fmt.Sprintf("%s %s", rotNames[(cb>>3)&7], reg8Names[cb&7])
		} else {
			text = fmt.Sprintf("%s %d,%s", cbNames[group], (cb>>3)&7, reg8Names[cb&7])
		}
	default:
		switch {
		case op >= 0x40 && op <= 0x7F:
			text = fmt.Sprintf("LD %s,%s", reg8Names[(op>>3)&7], reg8Names[op&7])
		case op >= 0x80 && op <= 0xBF:
			text = fmt.Sprintf("%s%s", aluNames[(op>>3)&7], reg8Names[op&7])
		case op < 0x40 && op&0xC7 == 0x04:
			text = fmt.Sprintf("INC %s", reg8Names[(op>>3)&7])
		case op < 0x40 && op&0xC7 == 0x05:
			text = fmt.Sprintf("DEC %s", reg8Names[(op>>3)&7])
		case op < 0x40 && op&0xC7 == 0x06:
			text, length = fmt.Sprintf("LD %s,$%02X", reg8Names[(op>>3)&7], imm8()), 2
		default:
			text = fmt.Sprintf("db $%02X", op)
		}
	}

	return Line{Address: address, Text: text, Length: length}
}

// Window disassembles count instructions starting at the given address.
func Window(start uint16, count int, mem Reader) []Line {
	lines := make([]Line, 0, count)
	pc := uint32(start)
	for i := 0; i < count && pc < 0x10000; i++ {
		line := At(uint16(pc), mem)
		lines = append(lines, line)
		pc += uint32(line.Length)
	}
	return lines
}
