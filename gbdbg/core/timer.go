package core

import (
	"github.com/valerio/go-gbdbg/gbdbg/addr"
	"github.com/valerio/go-gbdbg/gbdbg/bit"
)

// tacClockBit maps the TAC clock select (bits 1-0) to the bit of the internal
// divider whose falling edge clocks TIMA:
//
//	00 -> bit 9  (4096 Hz)
//	01 -> bit 3  (262144 Hz)
//	10 -> bit 5  (65536 Hz)
//	11 -> bit 7  (16384 Hz)
var tacClockBit = [4]uint8{9, 3, 5, 7}

// Timer implements the DIV/TIMA/TMA/TAC block. DIV is the upper byte of a
// 16-bit counter incremented every dot; TIMA increments on falling edges of
// the selected counter bit while enabled.
type Timer struct {
	counter     uint16
	lastEdgeBit bool

	tima byte
	tma  byte
	tac  byte

	interrupt func()
}

func (t *Timer) Reset() {
	t.counter = 0
	t.lastEdgeBit = false
	t.tima = 0
	t.tma = 0
	t.tac = 0
}

func (t *Timer) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		t.counter++

		if !bit.IsSet(2, t.tac) {
			t.lastEdgeBit = false
			continue
		}

		edgeBit := bit.IsSet16(tacClockBit[t.tac&0x03], t.counter)
		if t.lastEdgeBit && !edgeBit {
			t.tima++
			if t.tima == 0 {
				t.tima = t.tma
				if t.interrupt != nil {
					t.interrupt()
				}
			}
		}
		t.lastEdgeBit = edgeBit
	}
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return byte(t.counter >> 8)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac
	}
	return 0xFF
}

func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		t.counter = 0 // any write resets the counter
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value
	}
}
