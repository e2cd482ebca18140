// Package term implements the interactive terminal console using tcell:
// a scrollback region for debugger output and a single edit line feeding
// the session. Ctrl-C cancels a running command instead of killing the
// process; quit or Ctrl-D ends the session.
package term

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-gbdbg/gbdbg/debugger"
)

const (
	prompt        = "(gbdbg) "
	scrollbackMax = 1000
	historyMax    = 100
)

// Console is a full-screen terminal front end for a debugger session.
// It is the session's output writer, so everything the debugger prints
// lands in the scrollback.
type Console struct {
	screen tcell.Screen

	mu    sync.Mutex
	lines []string
	part  string // unterminated output tail

	input   []rune
	history []string
	histPos int
}

// New initializes the terminal screen.
func New() (*Console, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal init: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal init: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorWhite))
	screen.Clear()
	return &Console{screen: screen}, nil
}

// Close restores the terminal.
func (c *Console) Close() {
	c.screen.Fini()
}

// Write implements io.Writer for the debugger's output. Complete lines go
// to the scrollback; a trailing partial line is held until terminated.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := c.part + string(p)
	parts := strings.Split(text, "\n")
	c.part = parts[len(parts)-1]
	for _, line := range parts[:len(parts)-1] {
		c.lines = append(c.lines, line)
	}
	if len(c.lines) > scrollbackMax {
		c.lines = c.lines[len(c.lines)-scrollbackMax:]
	}
	return len(p), nil
}

// Run drives the session until quit, Ctrl-D or context cancellation. The
// debugger should have been created with WithOutput(c); the interactive
// prompt is drawn by the console itself.
func (c *Console) Run(ctx context.Context, d *debugger.Debugger) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go c.screen.ChannelEvents(events, quit)
	defer close(quit)

	for !d.Done() {
		c.draw()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				c.screen.Sync()
			case *tcell.EventKey:
				if done := c.handleKey(ctx, d, ev, events); done {
					return nil
				}
			}
		}
	}
	return nil
}

// handleKey processes one key event at the prompt. Returns true when the
// console should shut down.
func (c *Console) handleKey(ctx context.Context, d *debugger.Debugger, ev *tcell.EventKey, events <-chan tcell.Event) bool {
	switch ev.Key() {
	case tcell.KeyCtrlD:
		return true
	case tcell.KeyCtrlC:
		// at the prompt there is nothing to cancel, just clear the line
		c.input = c.input[:0]
	case tcell.KeyEnter:
		line := strings.TrimSpace(string(c.input))
		c.input = c.input[:0]
		c.echo(prompt + line)
		if line != "" {
			c.remember(line)
			c.execute(ctx, d, line, events)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(c.input) > 0 {
			c.input = c.input[:len(c.input)-1]
		}
	case tcell.KeyUp:
		c.recall(-1)
	case tcell.KeyDown:
		c.recall(1)
	case tcell.KeyRune:
		c.input = append(c.input, ev.Rune())
	}
	return false
}

// execute runs one input line on its own goroutine so the event channel
// stays drained: Ctrl-C while the line runs cancels its context, pausing
// the execution controller at the next instruction boundary.
func (c *Console) execute(ctx context.Context, d *debugger.Debugger, line string, events <-chan tcell.Event) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.RunLine(runCtx, line) }()

	for {
		select {
		case err := <-done:
			if err != nil {
				c.echo("error: " + err.Error())
			}
			return
		case ev, ok := <-events:
			if !ok {
				cancel()
				<-done
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				c.screen.Sync()
				c.draw()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyCtrlC {
					cancel()
				}
			}
		}
	}
}

func (c *Console) echo(line string) {
	c.mu.Lock()
	c.lines = append(c.lines, line)
	if len(c.lines) > scrollbackMax {
		c.lines = c.lines[len(c.lines)-scrollbackMax:]
	}
	c.mu.Unlock()
}

func (c *Console) remember(line string) {
	if n := len(c.history); n == 0 || c.history[n-1] != line {
		c.history = append(c.history, line)
	}
	if len(c.history) > historyMax {
		c.history = c.history[len(c.history)-historyMax:]
	}
	c.histPos = len(c.history)
}

// recall moves through history; past the newest entry the line clears.
func (c *Console) recall(dir int) {
	pos := c.histPos + dir
	if pos < 0 || pos > len(c.history) {
		return
	}
	c.histPos = pos
	if pos == len(c.history) {
		c.input = c.input[:0]
		return
	}
	c.input = []rune(c.history[pos])
}

func (c *Console) draw() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.screen.Clear()
	w, h := c.screen.Size()
	if w == 0 || h < 2 {
		c.screen.Show()
		return
	}

	style := tcell.StyleDefault
	viewport := h - 1
	start := 0
	if len(c.lines) > viewport {
		start = len(c.lines) - viewport
	}
	for row, line := range c.lines[start:] {
		drawText(c.screen, 0, row, w, line, style)
	}

	// input line with cursor
	edit := prompt + string(c.input)
	drawText(c.screen, 0, h-1, w, edit, style.Bold(true))
	c.screen.ShowCursor(min(len([]rune(edit)), w-1), h-1)
	c.screen.Show()
}

func drawText(s tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= maxWidth {
			break
		}
		s.SetContent(col, y, r, nil, style)
		col++
	}
}
