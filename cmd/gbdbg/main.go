package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/valerio/go-gbdbg/gbdbg/core"
	"github.com/valerio/go-gbdbg/gbdbg/debugger"
	"github.com/valerio/go-gbdbg/gbdbg/frontend/term"
	"github.com/valerio/go-gbdbg/gbdbg/logfilter"
	"github.com/valerio/go-gbdbg/gbdbg/serial"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbdbg"
	app.Description = "An interactive debugger for Game Boy programs"
	app.Usage = "gbdbg [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "log",
			Usage: "Initial log filter, e.g. \"warn,core.cpu=debug\"",
			Value: "info",
		},
		cli.BoolFlag{
			Name:  "plain",
			Usage: "Use a plain stdin/stdout prompt instead of the full-screen console",
		},
		cli.BoolFlag{
			Name:  "serial-timing",
			Usage: "Complete serial transfers on DMG timing instead of instantly",
		},
	}
	app.Action = runDebugger

	if err := app.Run(os.Args); err != nil {
		slog.Error("error running debugger", "error", err)
		os.Exit(1)
	}
}

func runDebugger(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return err
	}

	filter := logfilter.New(slog.NewTextHandler(os.Stderr, nil))
	directives, err := logfilter.ParseDirectives(c.String("log"))
	if err != nil {
		return err
	}
	filter.Apply(directives)
	slog.SetDefault(filter.Logger("gbdbg"))

	var serialOpts []serial.LoopbackOption
	if c.Bool("serial-timing") {
		serialOpts = append(serialOpts, serial.WithFixedTiming())
	}
	serialOpts = append(serialOpts, serial.WithLogger(filter.Logger("serial")))
	loop := serial.NewLoopback(nil, serialOpts...)

	gb := core.New(rom,
		core.WithSerialPort(loop),
		core.WithLogger(filter.Logger("core")),
	)

	if c.Bool("plain") {
		// SIGINT pauses the line being executed; the channel re-arms for
		// every line, so the prompt always comes back runnable
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)

		d := debugger.New(gb, gb.CPU(),
			debugger.WithSerial(loop),
			debugger.WithFilter(filter),
			debugger.WithLogger(filter.Logger("debugger")),
			debugger.WithInterrupt(sig),
		)
		return d.Run(context.Background(), os.Stdin)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console, err := term.New()
	if err != nil {
		return err
	}
	defer console.Close()

	d := debugger.New(gb, gb.CPU(),
		debugger.WithOutput(console),
		debugger.WithSerial(loop),
		debugger.WithFilter(filter),
		debugger.WithLogger(filter.Logger("debugger")),
	)
	return console.Run(ctx, d)
}
