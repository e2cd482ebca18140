package lang

import (
	"strings"

	"github.com/valerio/go-gbdbg/gbdbg/addr"
)

// Location is an addressable register or memory-mapped IO target with a
// fixed bit width.
type Location interface {
	location()
	// Width returns the location's bit width, 8 or 16.
	Width() int
	String() string
}

// ByteReg is one of the 8-bit CPU registers.
type ByteReg uint8

const (
	RegA ByteReg = iota
	RegF
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
)

// WordReg is one of the 16-bit CPU registers or register pairs.
type WordReg uint8

const (
	RegAF WordReg = iota
	RegBC
	RegDE
	RegHL
	RegSP
	RegPC
)

// IOReg is a memory-mapped IO register. All IO registers are 8 bits wide.
type IOReg uint8

const (
	IoIF IOReg = iota
	IoIE
	IoLCDC
	IoSTAT
	IoSCY
	IoSCX
	IoLY
	IoLYC
	IoDMA
	IoBGP
	IoOBP0
	IoOBP1
	IoWY
	IoWX
	IoSB
	IoSC
	IoDIV
	IoTIMA
	IoTMA
	IoTAC
)

func (ByteReg) location() {}
func (WordReg) location() {}
func (IOReg) location()   {}

func (ByteReg) Width() int { return 8 }
func (WordReg) Width() int { return 16 }
func (IOReg) Width() int   { return 8 }

var byteRegNames = [...]string{"a", "f", "b", "c", "d", "e", "h", "l"}

func (r ByteReg) String() string {
	return strings.ToUpper(byteRegNames[r])
}

var wordRegNames = [...]string{"af", "bc", "de", "hl", "sp", "pc"}

func (r WordReg) String() string {
	return strings.ToUpper(wordRegNames[r])
}

// ioRegs maps IO register names to their memory-mapped addresses, in the
// order of the IOReg constants.
var ioRegs = [...]struct {
	name    string
	address uint16
}{
	{"if", addr.IF},
	{"ie", addr.IE},
	{"lcdc", addr.LCDC},
	{"stat", addr.STAT},
	{"scy", addr.SCY},
	{"scx", addr.SCX},
	{"ly", addr.LY},
	{"lyc", addr.LYC},
	{"dma", addr.DMA},
	{"bgp", addr.BGP},
	{"obp0", addr.OBP0},
	{"obp1", addr.OBP1},
	{"wy", addr.WY},
	{"wx", addr.WX},
	{"sb", addr.SB},
	{"sc", addr.SC},
	{"div", addr.DIV},
	{"tima", addr.TIMA},
	{"tma", addr.TMA},
	{"tac", addr.TAC},
}

func (r IOReg) String() string {
	return strings.ToUpper(ioRegs[r].name)
}

// Address returns the memory-mapped address of the IO register.
func (r IOReg) Address() uint16 {
	return ioRegs[r].address
}

// parseLocation resolves a location keyword, case-insensitively. Byte
// registers are tried first, then word registers, then IO registers.
func parseLocation(tok string) (Location, bool) {
	s := strings.ToLower(tok)
	for i, name := range byteRegNames {
		if s == name {
			return ByteReg(i), true
		}
	}
	for i, name := range wordRegNames {
		if s == name {
			return WordReg(i), true
		}
	}
	for i, reg := range ioRegs {
		if s == reg.name {
			return IOReg(i), true
		}
	}
	return nil, false
}
