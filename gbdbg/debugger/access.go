package debugger

import (
	"fmt"

	"github.com/valerio/go-gbdbg/gbdbg/debugger/lang"
)

// loadLocation reads the current value of a register/IO location.
func (d *Debugger) loadLocation(loc lang.Location) uint16 {
	switch l := loc.(type) {
	case lang.ByteReg:
		switch l {
		case lang.RegA:
			return uint16(d.regs.GetA())
		case lang.RegF:
			return uint16(d.regs.GetF())
		case lang.RegB:
			return uint16(d.regs.GetB())
		case lang.RegC:
			return uint16(d.regs.GetC())
		case lang.RegD:
			return uint16(d.regs.GetD())
		case lang.RegE:
			return uint16(d.regs.GetE())
		case lang.RegH:
			return uint16(d.regs.GetH())
		case lang.RegL:
			return uint16(d.regs.GetL())
		}
	case lang.WordReg:
		switch l {
		case lang.RegAF:
			return d.regs.GetAF()
		case lang.RegBC:
			return d.regs.GetBC()
		case lang.RegDE:
			return d.regs.GetDE()
		case lang.RegHL:
			return d.regs.GetHL()
		case lang.RegSP:
			return d.regs.GetSP()
		case lang.RegPC:
			return d.regs.GetPC()
		}
	case lang.IOReg:
		return uint16(d.sys.Read(l.Address()))
	}
	panic(fmt.Sprintf("debugger: unhandled location %v", loc))
}

// storeLocation writes a value through a location's register/IO path,
// rejecting values that do not fit its bit width.
func (d *Debugger) storeLocation(loc lang.Location, value uint64) error {
	if max := uint64(1)<<loc.Width() - 1; value > max {
		return errWidth(value, loc.String(), loc.Width())
	}

	switch l := loc.(type) {
	case lang.ByteReg:
		v := uint8(value)
		switch l {
		case lang.RegA:
			d.regs.SetA(v)
		case lang.RegF:
			d.regs.SetF(v)
		case lang.RegB:
			d.regs.SetB(v)
		case lang.RegC:
			d.regs.SetC(v)
		case lang.RegD:
			d.regs.SetD(v)
		case lang.RegE:
			d.regs.SetE(v)
		case lang.RegH:
			d.regs.SetH(v)
		case lang.RegL:
			d.regs.SetL(v)
		}
	case lang.WordReg:
		v := uint16(value)
		switch l {
		case lang.RegAF:
			d.regs.SetAF(v)
		case lang.RegBC:
			d.regs.SetBC(v)
		case lang.RegDE:
			d.regs.SetDE(v)
		case lang.RegHL:
			d.regs.SetHL(v)
		case lang.RegSP:
			d.regs.SetSP(v)
		case lang.RegPC:
			d.regs.SetPC(v)
		}
	case lang.IOReg:
		d.sys.Write(l.Address(), uint8(value))
	default:
		panic(fmt.Sprintf("debugger: unhandled location %v", loc))
	}
	return nil
}

// readRange returns the bytes covering [lo, hi).
func (d *Debugger) readRange(r lang.Range) ([]byte, error) {
	if r.Hi < r.Lo {
		return nil, &OperandRangeError{Msg: fmt.Sprintf("invalid range %s", r)}
	}
	out := make([]byte, 0, r.Len())
	for a := r.Lo; a < r.Hi; a++ {
		out = append(out, d.sys.Read(uint16(a)))
	}
	return out, nil
}

// writeRange stores the low 8 bits of value at each covered address.
func (d *Debugger) writeRange(r lang.Range, value uint64) error {
	if r.Hi < r.Lo {
		return &OperandRangeError{Msg: fmt.Sprintf("invalid range %s", r)}
	}
	for a := r.Lo; a < r.Hi; a++ {
		d.sys.Write(uint16(a), uint8(value))
	}
	return nil
}
