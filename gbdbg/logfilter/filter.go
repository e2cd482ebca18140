// Package logfilter provides per-module log level control on top of log/slog.
//
// Loggers are handed out per module path ("core.cpu", "debugger"). A Filter
// holds the active level rules and is consulted dynamically, so applying a
// new directive immediately affects every logger created through it.
package logfilter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// LevelTrace sits below slog.LevelDebug for very chatty emulation tracing.
const LevelTrace = slog.LevelDebug - 4

// LevelOff disables all output for a module.
const LevelOff = slog.Level(1000)

// Directive is a single (module?, level) pair from a filter string.
// An empty Module sets the default level.
type Directive struct {
	Module string
	Level  slog.Level
}

type rule struct {
	path  string
	level slog.Level
	seq   int
}

// Filter resolves a module path to its effective log level.
type Filter struct {
	mu    sync.RWMutex
	sink  slog.Handler
	def   slog.Level
	rules []rule
	seq   int
}

// New creates a Filter writing through the given sink handler. The sink
// should be created with the lowest level it may ever emit (e.g. LevelTrace),
// the Filter gates records before they reach it.
func New(sink slog.Handler) *Filter {
	return &Filter{
		sink: sink,
		def:  slog.LevelInfo,
	}
}

// Logger returns a logger for the given module path. Records carry a
// "module" attribute and are gated by the filter's rules for that path.
func (f *Filter) Logger(module string) *slog.Logger {
	module = normalize(module)
	return slog.New(&moduleHandler{
		filter: f,
		module: module,
		inner:  f.sink.WithAttrs([]slog.Attr{slog.String("module", module)}),
	})
}

// SetLevel sets the level for a module path, or the default level when the
// module is empty. This is the reconfiguration entry point consumed by the
// debugger's log command.
func (f *Filter) SetLevel(module string, level slog.Level) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLevel(normalize(module), level)
}

// Apply applies an ordered directive list. Later directives override earlier
// ones for an identical module path.
func (f *Filter) Apply(directives []Directive) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range directives {
		f.setLevel(normalize(d.Module), d.Level)
	}
}

func (f *Filter) setLevel(module string, level slog.Level) {
	f.seq++
	if module == "" {
		f.def = level
		return
	}
	for i := range f.rules {
		if f.rules[i].path == module {
			f.rules[i].level = level
			f.rules[i].seq = f.seq
			return
		}
	}
	f.rules = append(f.rules, rule{path: module, level: level, seq: f.seq})
}

// Level returns the effective level for a module path: the most specific
// matching rule wins, ties are broken by the most recently set rule.
func (f *Filter) Level(module string) slog.Level {
	module = normalize(module)
	f.mu.RLock()
	defer f.mu.RUnlock()

	best := -1
	for i, r := range f.rules {
		if !matches(r.path, module) {
			continue
		}
		if best < 0 ||
			len(r.path) > len(f.rules[best].path) ||
			(len(r.path) == len(f.rules[best].path) && r.seq > f.rules[best].seq) {
			best = i
		}
	}
	if best < 0 {
		return f.def
	}
	return f.rules[best].level
}

// String reports the current configuration in filter-string form.
func (f *Filter) String() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	parts := []string{levelName(f.def)}
	sorted := make([]rule, len(f.rules))
	copy(sorted, f.rules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].path < sorted[j].path })
	for _, r := range sorted {
		parts = append(parts, fmt.Sprintf("%s=%s", r.path, levelName(r.level)))
	}
	return strings.Join(parts, ",")
}

// matches reports whether a rule path covers a module path. A rule covers its
// own module and all submodules below it.
func matches(rulePath, module string) bool {
	if rulePath == module {
		return true
	}
	return strings.HasPrefix(module, rulePath+".")
}

// normalize folds Rust-style "::" separators into dots.
func normalize(module string) string {
	return strings.ReplaceAll(module, "::", ".")
}

// ParseDirectives parses an env_logger-style filter string, e.g.
// "info,core.cpu=trace". Each comma-separated directive is either a bare
// level (setting the default) or module=level.
func ParseDirectives(s string) ([]Directive, error) {
	var out []Directive
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if module, levelStr, ok := strings.Cut(part, "="); ok {
			level, err := parseLevel(strings.TrimSpace(levelStr))
			if err != nil {
				return nil, err
			}
			module = strings.TrimSpace(module)
			if module == "" {
				return nil, fmt.Errorf("logfilter: empty module in directive %q", part)
			}
			out = append(out, Directive{Module: module, Level: level})
			continue
		}
		level, err := parseLevel(part)
		if err != nil {
			return nil, err
		}
		out = append(out, Directive{Level: level})
	}
	return out, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "off":
		return LevelOff, nil
	}
	return 0, fmt.Errorf("logfilter: unknown level %q", s)
}

func levelName(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "trace"
	case slog.LevelDebug:
		return "debug"
	case slog.LevelInfo:
		return "info"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	case LevelOff:
		return "off"
	}
	return l.String()
}

// moduleHandler gates records for one module path through its filter.
type moduleHandler struct {
	filter *Filter
	module string
	inner  slog.Handler
}

func (h *moduleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.filter.Level(h.module)
}

func (h *moduleHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *moduleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &moduleHandler{filter: h.filter, module: h.module, inner: h.inner.WithAttrs(attrs)}
}

func (h *moduleHandler) WithGroup(name string) slog.Handler {
	return &moduleHandler{filter: h.filter, module: h.module, inner: h.inner.WithGroup(name)}
}
