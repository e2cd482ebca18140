package debugger

import (
	"context"
	"fmt"

	"github.com/valerio/go-gbdbg/gbdbg/addr"
	"github.com/valerio/go-gbdbg/gbdbg/bit"
	"github.com/valerio/go-gbdbg/gbdbg/debugger/lang"
)

// State is the execution controller's state.
type State int

const (
	Paused State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "paused"
}

// dots per step unit for the fixed-size frequencies
const (
	machineDots  = 4
	scanlineDots = 456
)

// continueRun drives the clock forward until a breakpoint pauses execution,
// the context is cancelled, or the program stops. Breakpoints are evaluated
// at every instruction boundary; cancellation is polled there too, which is
// the finest boundary the core exposes, so an in-progress instruction is
// never split.
func (d *Debugger) continueRun(ctx context.Context) ([]*Breakpoint, error) {
	d.state = Running
	defer func() { d.state = Paused }()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.sys.Stopped() || d.sys.Cycle() == 0 {
			return nil, nil
		}
		if hits := d.breaks.Check(d.sys.PC()); len(hits) > 0 {
			return hits, nil
		}
	}
}

// step advances exactly count units of the given frequency, staying
// logically paused between boundaries. Breakpoints are only consulted when
// they coincide with a unit boundary; a hit ends the step early.
func (d *Debugger) step(ctx context.Context, count uint32, freq lang.Frequency) ([]*Breakpoint, error) {
	for i := uint32(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.sys.Stopped() {
			return nil, nil
		}
		if err := d.stepUnit(ctx, freq); err != nil {
			return nil, err
		}
		if hits := d.breaks.Check(d.sys.PC()); len(hits) > 0 {
			return hits, nil
		}
	}
	return nil, nil
}

func (d *Debugger) stepUnit(ctx context.Context, freq lang.Frequency) error {
	switch freq {
	case lang.Instruction:
		d.sys.Cycle()
	case lang.Dot:
		d.advanceDots(ctx, 1)
	case lang.Machine:
		d.advanceDots(ctx, machineDots)
	case lang.Scanline:
		start := d.sys.Scanline()
		for d.sys.Scanline() == start {
			if err := d.checkLCD(freq); err != nil {
				return err
			}
			if ctx.Err() != nil || d.sys.Stopped() || d.sys.Cycle() == 0 {
				return nil
			}
		}
	case lang.Frame:
		start := d.sys.Frames()
		for d.sys.Frames() == start {
			if err := d.checkLCD(freq); err != nil {
				return err
			}
			if ctx.Err() != nil || d.sys.Stopped() || d.sys.Cycle() == 0 {
				return nil
			}
		}
	}
	return nil
}

// checkLCD rejects scanline/frame units while the LCD is disabled: the dot
// counter does not advance then, so such a unit would never complete.
// Checked inside the unit loop too, the program can switch the LCD off
// mid-unit.
func (d *Debugger) checkLCD(freq lang.Frequency) error {
	if !bit.IsSet(7, d.sys.Read(addr.LCDC)) {
		return fmt.Errorf("cannot step by %s while the lcd is off", freq)
	}
	return nil
}

// advanceDots runs whole instructions until at least n dots have elapsed.
// The overshoot past n stays within the final instruction: dot and machine
// steps land on the next instruction boundary at or after the requested
// amount, never inside an instruction.
func (d *Debugger) advanceDots(ctx context.Context, n int) {
	for n > 0 {
		if ctx.Err() != nil || d.sys.Stopped() {
			return
		}
		cycles := d.sys.Cycle()
		if cycles == 0 {
			return
		}
		n -= cycles
	}
}
