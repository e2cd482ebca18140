// Package debugger implements the interactive debugger: command dispatch,
// the breakpoint registry, the execution controller and register/memory
// access. It drives the emulated system strictly synchronously; one command
// executes at a time on the calling goroutine.
package debugger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/valerio/go-gbdbg/gbdbg/debugger/lang"
	"github.com/valerio/go-gbdbg/gbdbg/disasm"
	"github.com/valerio/go-gbdbg/gbdbg/logfilter"
	"github.com/valerio/go-gbdbg/gbdbg/serial"
)

// Registers is the debugger's view of the CPU register file.
// *core.CPU implements it.
type Registers interface {
	GetA() uint8
	GetF() uint8
	GetB() uint8
	GetC() uint8
	GetD() uint8
	GetE() uint8
	GetH() uint8
	GetL() uint8
	GetAF() uint16
	GetBC() uint16
	GetDE() uint16
	GetHL() uint16
	GetSP() uint16
	GetPC() uint16
	SetA(uint8)
	SetF(uint8)
	SetB(uint8)
	SetC(uint8)
	SetD(uint8)
	SetE(uint8)
	SetH(uint8)
	SetL(uint8)
	SetAF(uint16)
	SetBC(uint16)
	SetDE(uint16)
	SetHL(uint16)
	SetSP(uint16)
	SetPC(uint16)
	GetFlagString() string
	GetCycles() uint64
}

// System is the debugger's view of the emulated machine.
// *core.GameBoy implements it.
type System interface {
	// Cycle executes one instruction and returns the dots consumed,
	// zero when the program has stopped.
	Cycle() int
	// Reset returns the hardware to its power-on state.
	Reset()
	// Stopped reports program termination.
	Stopped() bool
	PC() uint16
	SetPC(address uint16)
	Read(address uint16) byte
	Write(address uint16, value byte)
	Frames() uint64
	Scanline() byte
}

// Debugger is one interactive session. It exclusively owns the breakpoint
// registry, the serial buffer handle and the log filter handle for its
// lifetime.
type Debugger struct {
	sys    System
	regs   Registers
	breaks *Breakpoints
	serial *serial.Loopback
	filter *logfilter.Filter

	freq      lang.Frequency
	state     State
	quit      bool
	out       io.Writer
	logger    *slog.Logger
	interrupt <-chan os.Signal
}

type Option func(*Debugger)

// WithOutput directs operator-visible output to w. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(d *Debugger) { d.out = w }
}

// WithSerial attaches the mock serial device for the serial command.
func WithSerial(s *serial.Loopback) Option {
	return func(d *Debugger) { d.serial = s }
}

// WithFilter attaches the log filter reconfigured by the log command.
func WithFilter(f *logfilter.Filter) Option {
	return func(d *Debugger) { d.filter = f }
}

// WithLogger sets the session's own logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Debugger) { d.logger = l }
}

// WithInterrupt arms each executed line with the given signal channel: a
// signal during the line cancels that line's context, pausing execution at
// the next instruction boundary. The channel is re-armed per line, so
// interrupting one continue never poisons the next.
func WithInterrupt(ch <-chan os.Signal) Option {
	return func(d *Debugger) { d.interrupt = ch }
}

// New creates a session over the given system, initially paused with
// instruction frequency.
func New(sys System, regs Registers, opts ...Option) *Debugger {
	d := &Debugger{
		sys:    sys,
		regs:   regs,
		breaks: newBreakpoints(),
		freq:   lang.Instruction,
		state:  Paused,
		out:    os.Stdout,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the controller state. Outside of Act the session is always
// paused; Running is only observable from another goroutine (front ends).
func (d *Debugger) State() State { return d.state }

// Frequency returns the granularity used by bare step commands.
func (d *Debugger) Frequency() lang.Frequency { return d.freq }

// Breakpoints exposes the registry, for front-end display.
func (d *Debugger) Breakpoints() *Breakpoints { return d.breaks }

// Done reports whether a quit command has ended the session.
func (d *Debugger) Done() bool { return d.quit }

// Run is the interactive loop: read a line, parse, dispatch, report.
// Command failures are printed and leave the session paused; only a quit
// command or input exhaustion ends the loop.
func (d *Debugger) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for !d.quit {
		fmt.Fprint(d.out, "(gbdbg) ")
		if !scanner.Scan() {
			break
		}
		if err := d.RunLine(ctx, scanner.Text()); err != nil {
			fmt.Fprintf(d.out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// RunLine parses and executes one input line. Execution stops at the first
// failing command; commands already executed are not rolled back.
func (d *Debugger) RunLine(ctx context.Context, line string) error {
	cmds, err := lang.Parse(line)
	if err != nil {
		return err
	}

	if d.interrupt != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-d.interrupt:
				cancel()
			case <-done:
			}
		}()
	}

	for _, cmd := range cmds {
		if d.quit {
			break
		}
		if err := d.Act(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

// Act executes a single parsed command. The mapping is 1:1; semantic
// validation lives in the invoked component and surfaces as a typed error,
// leaving the session paused.
func (d *Debugger) Act(ctx context.Context, cmd lang.Command) error {
	switch c := cmd.(type) {
	case lang.Break:
		b := d.breaks.Add(c.Address)
		d.printf("breakpoint %d set at $%04X\n", b.ID, b.Address)
	case lang.Continue:
		hits, err := d.continueRun(ctx)
		d.reportHalt(hits, err)
	case lang.Delete:
		if err := d.breaks.Delete(c.ID); err != nil {
			return err
		}
		d.printf("breakpoint %d deleted\n", c.ID)
	case lang.Disable:
		if err := d.breaks.Disable(c.ID); err != nil {
			return err
		}
	case lang.Enable:
		if err := d.breaks.Enable(c.ID); err != nil {
			return err
		}
	case lang.Freq:
		d.freq = c.Frequency
		d.printf("frequency: %s\n", d.freq)
	case lang.Goto:
		d.sys.SetPC(c.Address)
	case lang.Help:
		d.printf("%s", lang.HelpText())
	case lang.Ignore:
		if err := d.breaks.Ignore(c.ID, c.Count); err != nil {
			return err
		}
		d.printf("breakpoint %d ignores the next %d hit(s)\n", c.ID, c.Count)
	case lang.Info:
		d.printInfo(c.Break)
	case lang.Jump:
		d.sys.SetPC(c.Address)
	case lang.List:
		for _, line := range disasm.Window(d.sys.PC(), 8, d.sys) {
			d.printf("%s\n", line)
		}
	case lang.Load:
		for _, loc := range c.Locations {
			d.printf("%s = $%0*X\n", loc, loc.Width()/4, d.loadLocation(loc))
		}
	case lang.Log:
		return d.actLog(c)
	case lang.Quit:
		d.quit = true
	case lang.Read:
		data, err := d.readRange(c.Range)
		if err != nil {
			return err
		}
		d.printDump(c.Range.Lo, data)
	case lang.Reset:
		d.sys.Reset()
		d.printf("system reset\n")
	case lang.Serial:
		return d.actSerial(c)
	case lang.Step:
		freq := d.freq
		if c.FreqSet {
			freq = c.Frequency
		}
		hits, err := d.step(ctx, c.Count, freq)
		switch {
		case err != nil && ctx.Err() != nil:
			d.reportHalt(hits, err)
		case err != nil:
			return err
		case len(hits) > 0:
			d.reportHalt(hits, nil)
		default:
			d.printf("%s\n", disasm.At(d.sys.PC(), d.sys))
		}
	case lang.Store:
		if err := d.storeLocation(c.Location, c.Value); err != nil {
			return err
		}
	case lang.Write:
		return d.writeRange(c.Range, c.Value)
	default:
		// the lang.Command set is closed; a new variant here is a bug
		panic(fmt.Sprintf("debugger: unhandled command %T", cmd))
	}
	return nil
}

func (d *Debugger) actLog(c lang.Log) error {
	if d.filter == nil {
		return errors.New("no log filter attached")
	}
	if !c.Set {
		d.printf("log filter: %s\n", d.filter)
		return nil
	}
	directives, err := logfilter.ParseDirectives(c.Filter)
	if err != nil {
		return err
	}
	d.filter.Apply(directives)
	return nil
}

func (d *Debugger) actSerial(c lang.Serial) error {
	if d.serial == nil {
		return errors.New("no serial device attached")
	}
	switch {
	case c.Peek:
		b, err := d.serial.Peek()
		if err != nil {
			return &IOError{Op: "peek", Err: err}
		}
		d.printf("peek %s\n", formatByte(b))
	case c.Payload != nil:
		d.serial.Send(c.Payload)
		d.printf("sent %d byte(s)\n", len(c.Payload))
	default:
		b, err := d.serial.Recv()
		if err != nil {
			return &IOError{Op: "recv", Err: err}
		}
		d.printf("recv %s\n", formatByte(b))
	}
	return nil
}

// reportHalt prints why execution returned to the prompt.
func (d *Debugger) reportHalt(hits []*Breakpoint, err error) {
	switch {
	case err != nil:
		d.printf("interrupted at $%04X\n", d.sys.PC())
	case len(hits) > 0:
		for _, b := range hits {
			d.printf("breakpoint %d hit at $%04X\n", b.ID, b.Address)
		}
	case d.sys.Stopped():
		d.printf("program stopped at $%04X\n", d.sys.PC())
	}
}

func (d *Debugger) printInfo(breakOnly bool) {
	if !breakOnly {
		d.printf("state:     %s\n", d.state)
		d.printf("frequency: %s\n", d.freq)
		d.printf("cycles:    %d\n", d.regs.GetCycles())
		d.printf("AF=$%04X BC=$%04X DE=$%04X HL=$%04X SP=$%04X PC=$%04X [%s]\n",
			d.regs.GetAF(), d.regs.GetBC(), d.regs.GetDE(), d.regs.GetHL(),
			d.regs.GetSP(), d.regs.GetPC(), d.regs.GetFlagString())
	}
	if d.breaks.Len() == 0 {
		d.printf("no breakpoints\n")
		return
	}
	d.printf("breakpoints:\n")
	for _, b := range d.breaks.All() {
		status := "enabled"
		if !b.Enabled {
			status = "disabled"
		}
		d.printf("  %d: $%04X %s ignore=%d\n", b.ID, b.Address, status, b.IgnoreCount)
	}
}

// printDump writes a 16-bytes-per-row hex dump starting at base.
func (d *Debugger) printDump(base uint32, data []byte) {
	for row := 0; row < len(data); row += 16 {
		end := min(row+16, len(data))
		d.printf("$%04X:", base+uint32(row))
		for _, b := range data[row:end] {
			d.printf(" %02X", b)
		}
		d.printf("\n")
	}
}

func formatByte(b byte) string {
	if b >= 0x20 && b < 0x7F {
		return fmt.Sprintf("$%02X %s", b, strconv.QuoteRune(rune(b)))
	}
	return fmt.Sprintf("$%02X", b)
}

func (d *Debugger) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}
