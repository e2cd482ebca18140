package core

import (
	"github.com/valerio/go-gbdbg/gbdbg/addr"
	"github.com/valerio/go-gbdbg/gbdbg/bit"
)

// PPU frame timing, in dots.
const (
	DotsPerScanline   = 456
	ScanlinesPerFrame = 154
	VisibleScanlines  = 144
	DotsPerFrame      = DotsPerScanline * ScanlinesPerFrame
)

// mode durations within a visible scanline, in dots
const (
	oamScanDots = 80
	drawingDots = 172
)

// PPU models the timing side of the pixel processing unit: the dot counter,
// LY progression, STAT mode bits and the VBlank/STAT interrupts. No pixels
// are produced.
type PPU struct {
	lcdc byte
	stat byte
	scy  byte
	scx  byte
	ly   byte
	lyc  byte
	dma  byte
	bgp  byte
	obp0 byte
	obp1 byte
	wy   byte
	wx   byte

	dot    int
	frames uint64

	interrupt func(addr.Interrupt)
}

func NewPPU(interrupt func(addr.Interrupt)) *PPU {
	p := &PPU{interrupt: interrupt}
	p.Reset()
	return p
}

func (p *PPU) Reset() {
	p.lcdc = 0x91
	p.stat = 0x85
	p.scy = 0
	p.scx = 0
	p.ly = 0
	p.lyc = 0
	p.dma = 0
	p.bgp = 0xFC
	p.obp0 = 0xFF
	p.obp1 = 0xFF
	p.wy = 0
	p.wx = 0
	p.dot = 0
	p.frames = 0
}

// Frames returns the number of completed frames since power-on.
func (p *PPU) Frames() uint64 {
	return p.frames
}

// Scanline returns the current LY value.
func (p *PPU) Scanline() byte {
	return p.ly
}

func (p *PPU) Tick(cycles int) {
	if !bit.IsSet(7, p.lcdc) {
		return // LCD off, no timing advances
	}
	for i := 0; i < cycles; i++ {
		p.dot++
		if p.dot == DotsPerScanline {
			p.dot = 0
			p.ly++
			switch {
			case p.ly == VisibleScanlines:
				if p.interrupt != nil {
					p.interrupt(addr.VBlankInterrupt)
				}
			case p.ly == ScanlinesPerFrame:
				p.ly = 0
				p.frames++
			}
			p.compareLYC()
		}
		p.updateMode()
	}
}

func (p *PPU) updateMode() {
	var mode byte
	switch {
	case p.ly >= VisibleScanlines:
		mode = 1 // vblank
	case p.dot < oamScanDots:
		mode = 2 // oam scan
	case p.dot < oamScanDots+drawingDots:
		mode = 3 // drawing
	default:
		mode = 0 // hblank
	}
	p.stat = (p.stat &^ 0x03) | mode
}

func (p *PPU) compareLYC() {
	if p.ly == p.lyc {
		p.stat = bit.Set(2, p.stat)
		if bit.IsSet(6, p.stat) && p.interrupt != nil {
			p.interrupt(addr.LCDSTATInterrupt)
		}
	} else {
		p.stat = bit.Clear(2, p.stat)
	}
}

func (p *PPU) Read(address uint16) byte {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return p.stat
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.DMA:
		return p.dma
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	}
	return 0xFF
}

func (p *PPU) Write(address uint16, value byte) {
	switch address {
	case addr.LCDC:
		p.lcdc = value
	case addr.STAT:
		// mode and coincidence bits are read-only
		p.stat = (p.stat & 0x07) | (value &^ 0x07)
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LY:
		// read-only
	case addr.LYC:
		p.lyc = value
		p.compareLYC()
	case addr.DMA:
		p.dma = value
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	}
}
