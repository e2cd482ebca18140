package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakpointIDsNeverReused(t *testing.T) {
	bp := newBreakpoints()
	b1 := bp.Add(0x100)
	b2 := bp.Add(0x200)
	assert.Equal(t, 1, b1.ID)
	assert.Equal(t, 2, b2.ID)

	require.NoError(t, bp.Delete(1))
	require.NoError(t, bp.Delete(2))
	assert.Zero(t, bp.Len())

	b3 := bp.Add(0x100)
	assert.Equal(t, 3, b3.ID)
}

func TestBreakpointCheck(t *testing.T) {
	bp := newBreakpoints()
	b := bp.Add(0x150)
	bp.Add(0x300)

	assert.Empty(t, bp.Check(0x100))
	assert.Equal(t, []*Breakpoint{b}, bp.Check(0x150))

	t.Run("disabled never hits", func(t *testing.T) {
		require.NoError(t, bp.Disable(b.ID))
		assert.Empty(t, bp.Check(0x150))
		require.NoError(t, bp.Enable(b.ID))
		assert.Len(t, bp.Check(0x150), 1)
	})

	t.Run("shared address hits all", func(t *testing.T) {
		other := bp.Add(0x150)
		hits := bp.Check(0x150)
		assert.Equal(t, []*Breakpoint{b, other}, hits)
	})
}

func TestBreakpointIgnore(t *testing.T) {
	bp := newBreakpoints()
	b := bp.Add(0x150)
	require.NoError(t, bp.Ignore(b.ID, 2))

	// the first two hits burn the skip counter without pausing
	assert.Empty(t, bp.Check(0x150))
	assert.Empty(t, bp.Check(0x150))
	assert.Equal(t, []*Breakpoint{b}, bp.Check(0x150))
	assert.Zero(t, b.IgnoreCount)

	// a disabled breakpoint does not burn skips
	require.NoError(t, bp.Ignore(b.ID, 1))
	require.NoError(t, bp.Disable(b.ID))
	assert.Empty(t, bp.Check(0x150))
	assert.Equal(t, uint32(1), b.IgnoreCount)
}

func TestBreakpointResolution(t *testing.T) {
	bp := newBreakpoints()
	b := bp.Add(0x100)
	require.NoError(t, bp.Delete(b.ID))

	var rerr *ResolutionError
	for name, err := range map[string]error{
		"delete":  bp.Delete(b.ID),
		"enable":  bp.Enable(b.ID),
		"disable": bp.Disable(b.ID),
		"ignore":  bp.Ignore(b.ID, 1),
	} {
		require.ErrorAs(t, err, &rerr, name)
		assert.Equal(t, b.ID, rerr.ID, name)
	}
}
