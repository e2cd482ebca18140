package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sliceMem []byte

func (m sliceMem) Read(address uint16) byte {
	if int(address) >= len(m) {
		return 0
	}
	return m[address]
}

func TestAt(t *testing.T) {
	tests := []struct {
		name  string
		code  []byte
		text  string
		width int
	}{
		{"nop", []byte{0x00}, "NOP", 1},
		{"stop", []byte{0x10, 0x00}, "STOP", 2},
		{"halt", []byte{0x76}, "HALT", 1},
		{"ld rr nn", []byte{0x21, 0x34, 0x12}, "LD HL,$1234", 3},
		{"ld r n", []byte{0x3E, 0x42}, "LD A,$42", 2},
		{"ld r r", []byte{0x78}, "LD A,B", 1},
		{"ld hl indirect", []byte{0x22}, "LD (HL+),A", 1},
		{"ldh write", []byte{0xE0, 0x01}, "LDH ($FF01),A", 2},
		{"alu reg", []byte{0xA9}, "XOR C", 1},
		{"alu imm", []byte{0xFE, 0x90}, "CP $90", 2},
		{"inc r", []byte{0x0C}, "INC C", 1},
		{"dec hl ind", []byte{0x35}, "DEC (HL)", 1},
		{"jp", []byte{0xC3, 0x50, 0x01}, "JP $0150", 3},
		{"jp cond", []byte{0xC2, 0x00, 0x02}, "JP NZ,$0200", 3},
		{"call", []byte{0xCD, 0x00, 0x02}, "CALL $0200", 3},
		{"ret cond", []byte{0xD8}, "RET C", 1},
		{"rst", []byte{0xEF}, "RST $28", 1},
		{"push", []byte{0xF5}, "PUSH AF", 1},
		{"cb bit", []byte{0xCB, 0x7C}, "BIT 7,H", 2},
		{"cb swap", []byte{0xCB, 0x37}, "SWAP A", 2},
		{"cb set", []byte{0xCB, 0xC6}, "SET 0,(HL)", 2},
		{"unknown", []byte{0xD3}, "db $D3", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := At(0, sliceMem(tt.code))
			assert.Equal(t, tt.text, line.Text)
			assert.Equal(t, tt.width, line.Length)
		})
	}
}

// Relative jumps render their resolved absolute target.
func TestAtRelativeTargets(t *testing.T) {
	mem := make(sliceMem, 0x200)
	mem[0x100] = 0x18 // JR -2, a self loop
	mem[0x101] = 0xFE
	mem[0x102] = 0x28 // JR Z,+4
	mem[0x103] = 0x04

	assert.Equal(t, "JR $0100", At(0x100, mem).Text)
	assert.Equal(t, "JR Z,$0108", At(0x102, mem).Text)
}

func TestWindow(t *testing.T) {
	mem := make(sliceMem, 0x200)
	copy(mem[0x100:], []byte{
		0x00, // NOP
		0x3E, 0x42, // LD A,$42
		0xC3, 0x50, 0x01, // JP $0150
	})

	lines := Window(0x100, 3, mem)
	assert.Len(t, lines, 3)
	assert.Equal(t, "$0100: NOP", lines[0].String())
	assert.Equal(t, "$0101: LD A,$42", lines[1].String())
	assert.Equal(t, "$0103: JP $0150", lines[2].String())

	t.Run("stops at the end of the address space", func(t *testing.T) {
		lines := Window(0xFFFF, 4, mem)
		assert.Len(t, lines, 1)
	})
}
