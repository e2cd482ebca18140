package logfilter

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFilter() *Filter {
	return New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: LevelTrace}))
}

func TestParseDirectives(t *testing.T) {
	t.Run("default and module levels", func(t *testing.T) {
		ds, err := ParseDirectives("info,core.cpu=trace")
		require.NoError(t, err)
		require.Len(t, ds, 2)
		assert.Equal(t, Directive{Level: slog.LevelInfo}, ds[0])
		assert.Equal(t, Directive{Module: "core.cpu", Level: LevelTrace}, ds[1])
	})

	t.Run("scoped paths accepted", func(t *testing.T) {
		ds, err := ParseDirectives("core::cpu=debug")
		require.NoError(t, err)
		require.Len(t, ds, 1)
		assert.Equal(t, "core::cpu", ds[0].Module)
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := ParseDirectives("core.cpu=loud")
		assert.Error(t, err)
	})

	t.Run("empty module", func(t *testing.T) {
		_, err := ParseDirectives("=debug")
		assert.Error(t, err)
	})

	t.Run("blank directives skipped", func(t *testing.T) {
		ds, err := ParseDirectives("info,,")
		require.NoError(t, err)
		assert.Len(t, ds, 1)
	})
}

func TestFilterPrecedence(t *testing.T) {
	f := newTestFilter()

	ds, err := ParseDirectives("info,core.cpu=trace")
	require.NoError(t, err)
	f.Apply(ds)

	assert.Equal(t, slog.LevelInfo, f.Level("core.ppu"))
	assert.Equal(t, LevelTrace, f.Level("core.cpu"))
	assert.Equal(t, LevelTrace, f.Level("core.cpu.decode"), "rules cover submodules")

	// a later directive changes only the named module
	ds, err = ParseDirectives("core.cpu=debug")
	require.NoError(t, err)
	f.Apply(ds)

	assert.Equal(t, slog.LevelDebug, f.Level("core.cpu"))
	assert.Equal(t, slog.LevelInfo, f.Level("core.ppu"))
}

func TestFilterMostSpecificWins(t *testing.T) {
	f := newTestFilter()
	f.SetLevel("core", slog.LevelWarn)
	f.SetLevel("core.cpu", LevelTrace)

	assert.Equal(t, LevelTrace, f.Level("core.cpu"))
	assert.Equal(t, slog.LevelWarn, f.Level("core.ppu"))
	assert.Equal(t, slog.LevelWarn, f.Level("core"))

	// "coretest" is not a submodule of "core"
	assert.Equal(t, slog.LevelInfo, f.Level("coretest"))
}

func TestFilterGatesLoggers(t *testing.T) {
	var buf bytes.Buffer
	f := New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))

	log := f.Logger("core.cpu")
	log.Debug("hidden")
	assert.Empty(t, buf.String())

	f.SetLevel("core.cpu", slog.LevelDebug)
	log.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "module=core.cpu")
}

func TestFilterString(t *testing.T) {
	f := newTestFilter()
	ds, err := ParseDirectives("warn,core.cpu=trace,debugger=off")
	require.NoError(t, err)
	f.Apply(ds)

	assert.Equal(t, "warn,core.cpu=trace,debugger=off", f.String())
}
