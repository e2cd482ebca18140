package lang

import "strings"

// Frequency is the unit of progress for one step.
type Frequency int

const (
	// Dot is a single clock tick.
	Dot Frequency = iota
	// Machine is one machine cycle, four dots.
	Machine
	// Instruction is one fetch-execute cycle.
	Instruction
	// Scanline is one PPU scanline, 456 dots.
	Scanline
	// Frame is one PPU frame, 154 scanlines.
	Frame
)

func (f Frequency) String() string {
	switch f {
	case Dot:
		return "dot"
	case Machine:
		return "machine"
	case Instruction:
		return "instruction"
	case Scanline:
		return "scanline"
	case Frame:
		return "frame"
	}
	return "unknown"
}

// frequencies is the ordered keyword table for frequency arguments,
// first match wins.
var frequencies = []struct {
	names []string
	freq  Frequency
}{
	{[]string{"d", "dot"}, Dot},
	{[]string{"m", "mach", "machine"}, Machine},
	{[]string{"i", "insn", "instruction"}, Instruction},
	{[]string{"sl", "scan", "scanline"}, Scanline},
	{[]string{"f", "fr", "frame"}, Frame},
}

func parseFrequency(tok string) (Frequency, bool) {
	for _, entry := range frequencies {
		for _, name := range entry.names {
			if strings.EqualFold(tok, name) {
				return entry.freq, true
			}
		}
	}
	return 0, false
}
