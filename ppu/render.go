package ppu

import "image/color"

// SYSTEM_PALETTE is the fixed NES hardware colour table: 64 entries
// indexed by the 6-bit value stored in palette RAM.
var SYSTEM_PALETTE [64]color.RGBA = [64]color.RGBA{
	rgb(0x80, 0x80, 0x80), rgb(0x00, 0x3D, 0xA6), rgb(0x00, 0x12, 0xB0), rgb(0x44, 0x00, 0x96), rgb(0xA1, 0x00, 0x5E),
	rgb(0xC7, 0x00, 0x28), rgb(0xBA, 0x06, 0x00), rgb(0x8C, 0x17, 0x00), rgb(0x5C, 0x2F, 0x00), rgb(0x10, 0x45, 0x00),
	rgb(0x05, 0x4A, 0x00), rgb(0x00, 0x47, 0x2E), rgb(0x00, 0x41, 0x66), rgb(0x00, 0x00, 0x00), rgb(0x05, 0x05, 0x05),
	rgb(0x05, 0x05, 0x05), rgb(0xC7, 0xC7, 0xC7), rgb(0x00, 0x77, 0xFF), rgb(0x21, 0x55, 0xFF), rgb(0x82, 0x37, 0xFA),
	rgb(0xEB, 0x2F, 0xB5), rgb(0xFF, 0x29, 0x50), rgb(0xFF, 0x22, 0x00), rgb(0xD6, 0x32, 0x00), rgb(0xC4, 0x62, 0x00),
	rgb(0x35, 0x80, 0x00), rgb(0x05, 0x8F, 0x00), rgb(0x00, 0x8A, 0x55), rgb(0x00, 0x99, 0xCC), rgb(0x21, 0x21, 0x21),
	rgb(0x09, 0x09, 0x09), rgb(0x09, 0x09, 0x09), rgb(0xFF, 0xFF, 0xFF), rgb(0x0F, 0xD7, 0xFF), rgb(0x69, 0xA2, 0xFF),
	rgb(0xD4, 0x80, 0xFF), rgb(0xFF, 0x45, 0xF3), rgb(0xFF, 0x61, 0x8B), rgb(0xFF, 0x88, 0x33), rgb(0xFF, 0x9C, 0x12),
	rgb(0xFA, 0xBC, 0x20), rgb(0x9F, 0xE3, 0x0E), rgb(0x2B, 0xF0, 0x35), rgb(0x0C, 0xF0, 0xA4), rgb(0x05, 0xFB, 0xFF),
	rgb(0x5E, 0x5E, 0x5E), rgb(0x0D, 0x0D, 0x0D), rgb(0x0D, 0x0D, 0x0D), rgb(0xFF, 0xFF, 0xFF), rgb(0xA6, 0xFC, 0xFF),
	rgb(0xB3, 0xEC, 0xFF), rgb(0xDA, 0xAB, 0xEB), rgb(0xFF, 0xA8, 0xF9), rgb(0xFF, 0xAB, 0xB3), rgb(0xFF, 0xD2, 0xB0),
	rgb(0xFF, 0xEF, 0xA6), rgb(0xFF, 0xF7, 0x9C), rgb(0xD7, 0xE8, 0x95), rgb(0xA6, 0xED, 0xAF), rgb(0xA2, 0xF2, 0xDA),
	rgb(0x99, 0xFF, 0xFC), rgb(0xDD, 0xDD, 0xDD), rgb(0x11, 0x11, 0x11), rgb(0x11, 0x11, 0x11),
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// render builds the whole-frame 256x240 image at the vblank edge from
// a snapshot of PPU state. It is not a per-cycle/per-dot renderer:
// mid-scanline register writes are not reproduced.
func (p *PPU) render() {
	for i := range p.bgOpaque {
		p.bgOpaque[i] = false
	}
	p.renderBackground()
	p.renderSprites()
}

func (p *PPU) renderBackground() {
	if !p.mask.showBackground() {
		return
	}

	baseNT := p.ctrl.nametableAddr() - nametable0
	bank := p.ctrl.backgroundPatternAddr()

	for y := 0; y < NES_RES_HEIGHT; y++ {
		sy := y + int(p.scroll.y)
		nt := baseNT
		if sy >= NES_RES_HEIGHT {
			sy -= NES_RES_HEIGHT
			nt ^= 0x0800 // toggle vertical nametable bit
		}

		for x := 0; x < NES_RES_WIDTH; x++ {
			sx := x + int(p.scroll.x)
			ntx := nt
			if sx >= NES_RES_WIDTH {
				sx -= NES_RES_WIDTH
				ntx ^= 0x0400 // toggle horizontal nametable bit
			}

			tileIdx := uint16(sy/8)*32 + uint16(sx/8)
			tile := uint16(p.vram[p.mirrorNametable(ntx+tileIdx)])

			attrIdx := ntx + 0x3C0 + uint16(sy/32)*8 + uint16(sx/32)
			attr := p.vram[p.mirrorNametable(attrIdx)]

			quadrant := ((sx % 32) / 16) | (((sy % 32) / 16) << 1)
			paletteGroup := (attr >> (uint(quadrant) * 2)) & 0x03

			lo := p.bus.ChrRead(bank + tile*16 + uint16(sy%8))
			hi := p.bus.ChrRead(bank + tile*16 + uint16(sy%8) + 8)
			shift := uint(7 - sx%8)
			bit := ((hi>>shift)&1)<<1 | ((lo >> shift) & 1)

			if bit == 0 {
				continue // transparent: the pixel is not written
			}

			idx := uint16(paletteGroup)*4 + uint16(bit)
			p.framebuffer.Set(x, y, SYSTEM_PALETTE[p.paletteTable[idx]&0x3F])
			p.bgOpaque[y*NES_RES_WIDTH+x] = true
		}
	}
}

func (p *PPU) renderSprites() {
	if !p.mask.showSprites() {
		return
	}

	height := uint8(8)
	sprite16 := p.ctrl.contains(CTRL_SPRITE_SIZE)
	if sprite16 {
		height = 16
	}

	// Iterate from the last OAM entry to the first so that
	// lower-index sprites overdraw later ones.
	for i := OAM_SIZE - 4; i >= 0; i -= 4 {
		o := OAMFromBytes(p.oamData[i : i+4])

		var bank uint16
		tile := uint16(o.tileId)
		if sprite16 {
			bank = uint16(o.tileId&0x01) * 0x1000
			tile = uint16(o.tileId &^ 0x01)
		} else {
			bank = p.ctrl.spritePatternAddr()
		}

		for row := uint8(0); row < height; row++ {
			srcRow := row
			if o.flipV {
				srcRow = height - 1 - row
			}

			t := tile
			r := srcRow
			if sprite16 {
				if srcRow >= 8 {
					t++
					r -= 8
				}
			}

			lo := p.bus.ChrRead(bank + t*16 + uint16(r))
			hi := p.bus.ChrRead(bank + t*16 + uint16(r) + 8)

			for col := uint8(0); col < 8; col++ {
				srcCol := col
				if o.flipH {
					srcCol = 7 - col
				}
				shift := uint(7 - srcCol)
				bit := ((hi>>shift)&1)<<1 | ((lo >> shift) & 1)
				if bit == 0 {
					continue
				}

				px := int(o.x) + int(col)
				py := int(o.y) + 1 + int(row)
				if px >= NES_RES_WIDTH || py >= NES_RES_HEIGHT {
					continue
				}

				// behind-background sprites only show through
				// transparent background pixels
				if o.renderP == BACK && p.bgOpaque[py*NES_RES_WIDTH+px] {
					continue
				}

				paletteOff := 0x10 + uint16(o.palette)*4 + uint16(bit)
				p.framebuffer.Set(px, py, SYSTEM_PALETTE[p.paletteTable[paletteOff]&0x3F])
			}
		}
	}
}
