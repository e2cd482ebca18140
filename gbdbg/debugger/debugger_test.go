package debugger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-gbdbg/gbdbg/core"
	"github.com/valerio/go-gbdbg/gbdbg/debugger/lang"
	"github.com/valerio/go-gbdbg/gbdbg/logfilter"
	"github.com/valerio/go-gbdbg/gbdbg/serial"
)

// testROM places a program at the reset entry point 0x0100.
func testROM(program ...byte) []byte {
	rom := make([]byte, 0x200)
	copy(rom[0x100:], program)
	return rom
}

// patch overlays bytes at an arbitrary address.
func patch(rom []byte, at uint16, b ...byte) []byte {
	copy(rom[at:], b)
	return rom
}

type fixture struct {
	d      *Debugger
	gb     *core.GameBoy
	serial *serial.Loopback
	filter *logfilter.Filter
	out    *bytes.Buffer
}

func newFixture(t *testing.T, rom []byte) *fixture {
	t.Helper()
	loop := serial.NewLoopback(nil)
	gb := core.New(rom, core.WithSerialPort(loop))
	filter := logfilter.New(slog.NewTextHandler(io.Discard, nil))
	out := &bytes.Buffer{}
	d := New(gb, gb.CPU(),
		WithOutput(out),
		WithSerial(loop),
		WithFilter(filter),
		WithLogger(filter.Logger("debugger")),
	)
	return &fixture{d: d, gb: gb, serial: loop, filter: filter, out: out}
}

func (f *fixture) run(t *testing.T, line string) {
	t.Helper()
	require.NoError(t, f.d.RunLine(context.Background(), line))
}

func TestBreakAndContinue(t *testing.T) {
	rom := testROM(
		0x00, // NOP
		0xC3, 0x50, 0x01, // JP $0150
	)
	patch(rom, 0x150,
		0x3E, 0x42, // LD A,$42
		0x10, 0x00, // STOP
	)
	f := newFixture(t, rom)

	f.run(t, "break 0x150; continue")
	assert.Equal(t, uint16(0x150), f.gb.PC())
	assert.NotEqual(t, uint8(0x42), f.gb.CPU().GetA(), "paused before the target instruction ran")
	assert.Contains(t, f.out.String(), "breakpoint 1 set at $0150")
	assert.Contains(t, f.out.String(), "breakpoint 1 hit at $0150")
	assert.Equal(t, Paused, f.d.State())

	f.run(t, "continue")
	assert.True(t, f.gb.Stopped())
	assert.Equal(t, uint8(0x42), f.gb.CPU().GetA())
	assert.Contains(t, f.out.String(), "program stopped")
}

func TestContinueInterrupted(t *testing.T) {
	// JR -2: a tight infinite loop
	f := newFixture(t, testROM(0x18, 0xFE))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, f.d.Act(ctx, lang.Continue{}))
	assert.Contains(t, f.out.String(), "interrupted at")
	assert.Equal(t, Paused, f.d.State())
}

func TestStep(t *testing.T) {
	f := newFixture(t, testROM(
		0x00, 0x00, 0x00, 0x00, // NOP x4
		0x10, 0x00, // STOP
	))

	f.run(t, "step")
	assert.Equal(t, uint16(0x101), f.gb.PC())
	assert.Contains(t, f.out.String(), "$0101: NOP")

	f.run(t, "step 2")
	assert.Equal(t, uint16(0x103), f.gb.PC())

	t.Run("breakpoint ends a multi-step early", func(t *testing.T) {
		f := newFixture(t, testROM(0x00, 0x00, 0x00, 0x00, 0x10, 0x00))
		f.run(t, "break 0x102; step 10")
		assert.Equal(t, uint16(0x102), f.gb.PC())
		assert.Contains(t, f.out.String(), "breakpoint 1 hit at $0102")
	})

	t.Run("stepping a stopped program is a no-op", func(t *testing.T) {
		f := newFixture(t, testROM(0x10, 0x00))
		f.run(t, "step; step")
		assert.True(t, f.gb.Stopped())
	})
}

func TestStepFrequencies(t *testing.T) {
	loop := []byte{0x18, 0xFE} // JR -2

	t.Run("dot lands on instruction boundary", func(t *testing.T) {
		f := newFixture(t, testROM(loop...))
		f.run(t, "freq dot; step")
		// a single dot cannot split the jump, the whole instruction runs
		assert.Equal(t, uint16(0x100), f.gb.PC())
		assert.Equal(t, uint64(12), f.gb.CPU().GetCycles())
	})

	t.Run("machine", func(t *testing.T) {
		f := newFixture(t, testROM(0x00, 0x00, 0x00, 0x00, 0x18, 0xFE))
		f.run(t, "freq machine; step")
		assert.Equal(t, uint16(0x101), f.gb.PC())
	})

	t.Run("scanline", func(t *testing.T) {
		f := newFixture(t, testROM(loop...))
		start := f.gb.Scanline()
		f.run(t, "freq scanline; step")
		assert.NotEqual(t, start, f.gb.Scanline())
	})

	t.Run("frame", func(t *testing.T) {
		f := newFixture(t, testROM(loop...))
		f.run(t, "freq frame; step")
		assert.Equal(t, uint64(1), f.gb.Frames())
	})

	t.Run("one-shot frequency leaves the session's alone", func(t *testing.T) {
		f := newFixture(t, testROM(loop...))
		start := f.gb.Scanline()
		f.run(t, "step scanline")
		assert.NotEqual(t, start, f.gb.Scanline())
		assert.Equal(t, lang.Instruction, f.d.Frequency())
	})

	t.Run("lcd off rejects a scanline step", func(t *testing.T) {
		f := newFixture(t, testROM(loop...))
		f.run(t, "store lcdc 0")
		err := f.d.RunLine(context.Background(), "freq scanline; step")
		require.ErrorContains(t, err, "lcd is off")
		assert.Equal(t, lang.Scanline, f.d.Frequency(), "freq before the failing step applied")
	})

	t.Run("lcd switched off mid unit", func(t *testing.T) {
		// LD A,$00; LDH (LCDC),A; loop forever
		f := newFixture(t, testROM(0x3E, 0x00, 0xE0, 0x40, 0x18, 0xFE))
		err := f.d.RunLine(context.Background(), "step frame")
		require.ErrorContains(t, err, "lcd is off")
		assert.Equal(t, uint64(0), f.gb.Frames())
	})
}

// An operator interrupt pauses the line it lands on and nothing more: the
// next line runs under a fresh context.
func TestInterruptRearmsPerLine(t *testing.T) {
	gb := core.New(testROM(0x18, 0xFE)) // JR -2 forever
	out := &bytes.Buffer{}
	sig := make(chan os.Signal, 1)
	d := New(gb, gb.CPU(), WithOutput(out), WithInterrupt(sig))

	sig <- syscall.SIGINT
	require.NoError(t, d.RunLine(context.Background(), "continue"))
	assert.Contains(t, out.String(), "interrupted at")
	assert.Equal(t, Paused, d.State())

	out.Reset()
	require.NoError(t, d.RunLine(context.Background(), "break 0x100; continue"))
	assert.Contains(t, out.String(), "breakpoint 1 hit at $0100")
	assert.NotContains(t, out.String(), "interrupted")
}

func TestGotoAndJump(t *testing.T) {
	f := newFixture(t, testROM(0x00))
	f.run(t, "goto 0x150")
	assert.Equal(t, uint16(0x150), f.gb.PC())
	f.run(t, "jump 0x180")
	assert.Equal(t, uint16(0x180), f.gb.PC())
}

func TestLoadStore(t *testing.T) {
	f := newFixture(t, testROM(0x00))

	f.run(t, "store a 0x12; store bc 0x1234; store lcdc 0x80")
	assert.Equal(t, uint8(0x12), f.gb.CPU().GetA())
	assert.Equal(t, uint16(0x1234), f.gb.CPU().GetBC())
	assert.Equal(t, uint8(0x80), f.gb.Read(0xFF40))

	f.run(t, "load a bc lcdc")
	assert.Contains(t, f.out.String(), "A = $12")
	assert.Contains(t, f.out.String(), "BC = $1234")
	assert.Contains(t, f.out.String(), "LCDC = $80")

	t.Run("byte width enforced", func(t *testing.T) {
		err := f.d.Act(context.Background(), lang.Store{Location: lang.RegA, Value: 300})
		var oerr *OperandRangeError
		require.ErrorAs(t, err, &oerr)
		assert.Equal(t, uint8(0x12), f.gb.CPU().GetA(), "failed store must not write")
	})

	t.Run("word width enforced", func(t *testing.T) {
		err := f.d.Act(context.Background(), lang.Store{Location: lang.RegHL, Value: 0x10000})
		var oerr *OperandRangeError
		require.ErrorAs(t, err, &oerr)
	})
}

func TestReadWriteMemory(t *testing.T) {
	f := newFixture(t, testROM(0x00))

	f.run(t, "write 0xC000..0xC004 0xAB")
	for a := uint16(0xC000); a < 0xC004; a++ {
		assert.Equal(t, uint8(0xAB), f.gb.Read(a))
	}
	assert.Zero(t, f.gb.Read(0xC004), "write stops at the exclusive bound")

	f.run(t, "read 0xC000..0xC004")
	assert.Contains(t, f.out.String(), "$C000: AB AB AB AB")

	t.Run("inverted range rejected", func(t *testing.T) {
		err := f.d.RunLine(context.Background(), "read 0x200..0x100")
		var oerr *OperandRangeError
		require.ErrorAs(t, err, &oerr)
	})
}

func TestSerialCommands(t *testing.T) {
	f := newFixture(t, testROM(0x00))

	f.run(t, `serial "Hi"`)
	assert.Contains(t, f.out.String(), "sent 2 byte(s)")

	f.run(t, "serial peek")
	assert.Contains(t, f.out.String(), "peek $48 'H'")

	f.run(t, "serial; serial")
	assert.Contains(t, f.out.String(), "recv $48 'H'")
	assert.Contains(t, f.out.String(), "recv $69 'i'")

	t.Run("underflow", func(t *testing.T) {
		err := f.d.RunLine(context.Background(), "serial")
		require.ErrorIs(t, err, serial.ErrUnderflow)
		var ioerr *IOError
		require.ErrorAs(t, err, &ioerr)
		assert.Equal(t, "recv", ioerr.Op)
	})
}

// A program writing to SB/SC lands bytes in the capture buffer the recv
// command drains.
func TestSerialCapturesProgramOutput(t *testing.T) {
	f := newFixture(t, testROM(
		0x3E, 0x55, // LD A,$55
		0xE0, 0x01, // LDH ($01),A  ; SB
		0x3E, 0x81, // LD A,$81
		0xE0, 0x02, // LDH ($02),A  ; SC, start transfer
		0x10, 0x00, // STOP
	))

	f.run(t, "continue")
	require.True(t, f.gb.Stopped())
	f.run(t, "serial")
	assert.Contains(t, f.out.String(), "recv $55")
}

func TestResetPreservesSession(t *testing.T) {
	f := newFixture(t, testROM(0x00, 0x00, 0x10, 0x00))
	f.run(t, "break 0x102; store a 0x99; step")
	f.serial.Send([]byte{0x01})

	f.run(t, "reset")
	assert.Equal(t, uint16(0x100), f.gb.PC())
	assert.Equal(t, uint8(0x01), f.gb.CPU().GetA(), "power-on A")
	assert.Equal(t, 1, f.d.Breakpoints().Len(), "breakpoints survive reset")
	assert.Equal(t, 1, f.serial.Len(), "capture buffer survives reset")
}

func TestLogCommand(t *testing.T) {
	f := newFixture(t, testROM(0x00))

	f.run(t, "log core.cpu=trace,warn")
	f.run(t, "log")
	report := f.out.String()
	assert.Contains(t, report, "warn")
	assert.Contains(t, report, "core.cpu=trace")

	t.Run("bad directive", func(t *testing.T) {
		err := f.d.RunLine(context.Background(), "log core=hourly")
		require.Error(t, err)
	})
}

func TestInfo(t *testing.T) {
	f := newFixture(t, testROM(0x00))
	f.run(t, "break 0x150; disable 1; info")
	report := f.out.String()
	assert.Contains(t, report, "state:     paused")
	assert.Contains(t, report, "frequency: instruction")
	assert.Contains(t, report, "PC=$0100")
	assert.Contains(t, report, "1: $0150 disabled ignore=0")

	t.Run("info break only", func(t *testing.T) {
		f := newFixture(t, testROM(0x00))
		f.run(t, "info break")
		assert.Contains(t, f.out.String(), "no breakpoints")
		assert.NotContains(t, f.out.String(), "state:")
	})
}

func TestRunLoop(t *testing.T) {
	f := newFixture(t, testROM(0x00, 0x10, 0x00))
	in := strings.NewReader("step\nbogus\nquit\nstep\n")

	err := f.d.Run(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, f.d.Done())
	assert.Contains(t, f.out.String(), "(gbdbg) ")
	assert.Contains(t, f.out.String(), `error: parse error at "bogus": unknown command`)
	// the step after quit never ran
	assert.Equal(t, uint16(0x101), f.gb.PC())
}

func TestRunLineStopsAtFirstError(t *testing.T) {
	f := newFixture(t, testROM(0x00))
	err := f.d.RunLine(context.Background(), "delete 7; store a 1")
	var rerr *ResolutionError
	require.ErrorAs(t, err, &rerr)
	// the store after the failing delete never ran, A keeps its power-on value
	assert.Equal(t, uint8(0x01), f.gb.CPU().GetA())
}

func TestListDisassembles(t *testing.T) {
	f := newFixture(t, testROM(
		0x00, // NOP
		0x3E, 0x42, // LD A,$42
		0xC3, 0x50, 0x01, // JP $0150
	))
	f.run(t, "list")
	out := f.out.String()
	assert.Contains(t, out, "$0100: NOP")
	assert.Contains(t, out, "$0101: LD A,$42")
	assert.Contains(t, out, "$0103: JP $0150")
}

func TestDetachedSerialAndFilter(t *testing.T) {
	gb := core.New(testROM(0x00))
	out := &bytes.Buffer{}
	d := New(gb, gb.CPU(), WithOutput(out))

	err := d.RunLine(context.Background(), "serial")
	require.EqualError(t, err, "no serial device attached")
	err = d.RunLine(context.Background(), "log")
	require.EqualError(t, err, "no log filter attached")
}
