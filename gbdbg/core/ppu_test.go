package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-gbdbg/gbdbg/addr"
)

func TestPPUScanlineProgression(t *testing.T) {
	p := NewPPU(nil)

	p.Tick(DotsPerScanline - 1)
	assert.Equal(t, byte(0), p.Scanline())
	p.Tick(1)
	assert.Equal(t, byte(1), p.Scanline())

	p.Tick(DotsPerScanline * 10)
	assert.Equal(t, byte(11), p.Scanline())
}

func TestPPUFrameAndVBlank(t *testing.T) {
	var requested []addr.Interrupt
	p := NewPPU(func(i addr.Interrupt) { requested = append(requested, i) })

	p.Tick(DotsPerScanline * int(VisibleScanlines))
	assert.Contains(t, requested, addr.VBlankInterrupt)
	assert.Equal(t, byte(VisibleScanlines), p.Scanline())
	assert.Equal(t, uint64(0), p.Frames())

	p.Tick(DotsPerScanline * (ScanlinesPerFrame - VisibleScanlines))
	assert.Equal(t, uint64(1), p.Frames())
	assert.Equal(t, byte(0), p.Scanline())
}

func TestPPUModeBits(t *testing.T) {
	p := NewPPU(nil)

	p.Tick(1)
	assert.Equal(t, byte(2), p.Read(addr.STAT)&0x03, "oam scan")
	p.Tick(oamScanDots)
	assert.Equal(t, byte(3), p.Read(addr.STAT)&0x03, "drawing")
	p.Tick(drawingDots)
	assert.Equal(t, byte(0), p.Read(addr.STAT)&0x03, "hblank")

	p.Tick(DotsPerScanline * int(VisibleScanlines))
	assert.Equal(t, byte(1), p.Read(addr.STAT)&0x03, "vblank")
}

func TestPPULYCCoincidence(t *testing.T) {
	var requested []addr.Interrupt
	p := NewPPU(func(i addr.Interrupt) { requested = append(requested, i) })
	p.Write(addr.LYC, 2)
	p.Write(addr.STAT, 0x40) // LYC interrupt enable

	p.Tick(DotsPerScanline * 2)
	assert.NotZero(t, p.Read(addr.STAT)&0x04, "coincidence bit")
	assert.Contains(t, requested, addr.LCDSTATInterrupt)

	p.Tick(DotsPerScanline)
	assert.Zero(t, p.Read(addr.STAT)&0x04)
}

func TestPPULCDOff(t *testing.T) {
	p := NewPPU(nil)
	p.Write(addr.LCDC, 0x00)
	p.Tick(DotsPerScanline * 5)
	assert.Equal(t, byte(0), p.Scanline())
	assert.Equal(t, uint64(0), p.Frames())
}
