// Package ppu implements the 2C02 PPU hardware in the NES.
package ppu

import "image"

const (
	VRAM_SIZE    = 2048
	OAM_SIZE     = 256
	PALETTE_SIZE = 32
)

// Display constants
const (
	NES_RES_WIDTH  = 256
	NES_RES_HEIGHT = 240
)

// Register addresses, as seen on the CPU bus.
const (
	PPUCTRL   = 0x2000
	PPUMASK   = 0x2001
	PPUSTATUS = 0x2002
	OAMADDR   = 0x2003
	OAMDATA   = 0x2004
	PPUSCROLL = 0x2005
	PPUADDR   = 0x2006
	PPUDATA   = 0x2007
)

// Mirroring mode, sourced from the cartridge header.
const (
	MIRROR_HORIZONTAL = iota
	MIRROR_VERTICAL
	MIRROR_FOUR_SCREEN
)

const (
	nametable0 = 0x2000
	paletteRAM = 0x3F00
)

// Bus abstracts what the PPU needs from the rest of the console: CHR
// space on the cartridge, and the NMI line it can raise.
type Bus interface {
	ChrRead(addr uint16) uint8
	ChrWrite(addr uint16, val uint8)
	TriggerNMI()
}

type PPU struct {
	bus Bus

	ctrl   ctrlRegister
	mask   maskRegister
	status statusRegister
	scroll scrollRegister
	addr   *addrRegister

	oamAddr uint8
	oamData [OAM_SIZE]uint8

	// vram carries the console's 2KB of nametable RAM plus the
	// extra 2KB a four-screen cartridge supplies on the board;
	// horizontal/vertical folding never reaches the upper half.
	vram         [2 * VRAM_SIZE]uint8
	paletteTable [PALETTE_SIZE]uint8
	mirrorMode   uint8

	// bufferData holds the value returned by the *next* PPUDATA
	// read, per the one-read-behind buffering rule.
	bufferData uint8

	cycle    int16 // 0 through 340
	scanline int16 // 0 through 261

	nmiLine bool

	framebuffer *image.RGBA

	// bgOpaque marks which framebuffer pixels the background pass
	// wrote, so behind-background sprites know where they may draw.
	bgOpaque [NES_RES_WIDTH * NES_RES_HEIGHT]bool
}

func New(b Bus) *PPU {
	return &PPU{
		bus:         b,
		addr:        newAddrRegister(),
		framebuffer: image.NewRGBA(image.Rect(0, 0, NES_RES_WIDTH, NES_RES_HEIGHT)),
	}
}

// SetMirrorMode is called once, at startup, with the mirroring mode
// read from the cartridge header.
func (p *PPU) SetMirrorMode(m uint8) {
	p.mirrorMode = m
}

func (p *PPU) GetPixels() *image.RGBA {
	return p.framebuffer
}

func (p *PPU) GetResolution() (int, int) {
	return NES_RES_WIDTH, NES_RES_HEIGHT
}

// WriteReg dispatches a CPU-side write to one of the PPU's registers.
// r must already be folded to 0x2000-0x2007 by the bus.
func (p *PPU) WriteReg(r uint16, val uint8) {
	switch r {
	case PPUCTRL:
		if p.ctrl.update(val) && p.status.isInVblank() {
			p.nmiLine = true
			p.bus.TriggerNMI()
		}
	case PPUMASK:
		p.mask.update(val)
	case OAMADDR:
		p.oamAddr = val
	case OAMDATA:
		p.oamData[p.oamAddr] = val
		p.oamAddr++
	case PPUSCROLL:
		p.scroll.write(val)
	case PPUADDR:
		p.addr.update(val)
	case PPUDATA:
		p.writeData(val)
	}
}

// ReadReg dispatches a CPU-side read from one of the PPU's registers.
func (p *PPU) ReadReg(r uint16) uint8 {
	switch r {
	case PPUSTATUS:
		v := p.status.snapshot()
		p.scroll.resetLatch()
		p.addr.resetLatch()
		return v
	case OAMDATA:
		return p.oamData[p.oamAddr]
	case PPUDATA:
		return p.readData()
	}

	return 0
}

// WriteOAM is used by the bus for the OAMDMA (0x4014) transfer, which
// writes 256 bytes starting at the current OAM address without
// touching any other register.
func (p *PPU) WriteOAM(val uint8) {
	p.oamData[p.oamAddr] = val
	p.oamAddr++
}

// mirrorNametable folds a nametable-relative index (0x0000-0x0FFF)
// down to a physical VRAM offset: 0x0000-0x07FF for horizontal and
// vertical mirroring, unchanged (up to 0x0FFF) for four-screen:
// https://www.nesdev.org/wiki/Mirroring#Nametable_Mirroring
func (p *PPU) mirrorNametable(idx uint16) uint16 {
	nt := idx / 0x400

	switch p.mirrorMode {
	case MIRROR_VERTICAL:
		if nt == 2 || nt == 3 {
			return idx - 0x800
		}
		return idx
	case MIRROR_HORIZONTAL:
		switch nt {
		case 1, 2:
			return idx - 0x400
		case 3:
			return idx - 0x800
		default:
			return idx
		}
	default: // MIRROR_FOUR_SCREEN
		// all four nametables are distinct, backed by the
		// cartridge's extra VRAM
		return idx
	}
}

// paletteIndex folds a palette-space address to its canonical slot,
// aliasing the four background-colour mirrors (0x10/0x14/0x18/0x1C)
// down to their base (0x00/0x04/0x08/0x0C).
func paletteIndex(addr uint16) uint16 {
	idx := addr % 0x20
	if idx >= 0x10 && idx%4 == 0 {
		idx -= 0x10
	}
	return idx
}

func (p *PPU) readData() uint8 {
	addr := p.addr.get()
	p.addr.increment(p.ctrl.vramAddrIncrement())

	switch {
	case addr < nametable0:
		ret := p.bufferData
		p.bufferData = p.bus.ChrRead(addr)
		return ret
	case addr < paletteRAM:
		ret := p.bufferData
		p.bufferData = p.vram[p.mirrorNametable((addr-nametable0)%0x1000)]
		return ret
	default:
		// Palette reads bypass the buffer, but the buffer is
		// still refilled from the mirrored nametable address
		// underneath the palette window.
		p.bufferData = p.vram[p.mirrorNametable((addr-0x1000-nametable0)%0x1000)]
		return p.paletteTable[paletteIndex(addr)]
	}
}

func (p *PPU) writeData(val uint8) {
	addr := p.addr.get()
	p.addr.increment(p.ctrl.vramAddrIncrement())

	switch {
	case addr < nametable0:
		p.bus.ChrWrite(addr, val)
	case addr < paletteRAM:
		p.vram[p.mirrorNametable((addr-nametable0)%0x1000)] = val
	default:
		p.paletteTable[paletteIndex(addr)] = val
	}
}

// PollNMI returns the current NMI line state and clears it, the way
// the real level-triggered line is polled once per CPU instruction.
func (p *PPU) PollNMI() bool {
	v := p.nmiLine
	p.nmiLine = false
	return v
}

// Tick advances the PPU by n cycles (the bus supplies cpu_cycles*3)
// and reports whether a new frame just began (the scanline wrapped
// past 261).
func (p *PPU) Tick(n int) bool {
	newFrame := false

	for i := 0; i < n; i++ {
		if p.tick() {
			newFrame = true
		}
	}

	return newFrame
}

func (p *PPU) tick() bool {
	p.evalSprite0()

	p.cycle++
	if p.cycle < 341 {
		return false
	}
	p.cycle = 0
	p.scanline++

	if p.scanline == 241 {
		p.status.setVblank()
		if p.ctrl.generateNMI() {
			p.nmiLine = true
			p.bus.TriggerNMI()
		}
		p.render()
		return false
	}

	if p.scanline >= 262 {
		p.scanline = 0
		p.status.resetVblank()
		p.status.clear(STATUS_SPRITE_0_HIT)
		p.nmiLine = false
		return true
	}

	return false
}

// evalSprite0 approximates sprite-0 hit by flagging any cycle inside
// sprite 0's bounding window while rendering is on. Sufficient for
// the titles this renderer targets, not a faithful per-pixel
// collision test.
func (p *PPU) evalSprite0() {
	if !p.mask.showBackground() || !p.mask.showSprites() {
		return
	}

	y := p.oamData[0]
	x := p.oamData[3]
	height := int16(p.ctrl.spriteHeight())

	if p.scanline >= int16(y)+1 && p.scanline <= int16(y)+height &&
		p.cycle >= int16(x) && p.cycle < int16(x)+8+20 {
		p.status.set(STATUS_SPRITE_0_HIT)
	}
}
