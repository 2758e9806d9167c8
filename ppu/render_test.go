package ppu

import "testing"

func TestRenderBackgroundTile(t *testing.T) {
	p, b := newTestPPU()
	p.SetMirrorMode(MIRROR_VERTICAL)

	// Tile 1: low bit plane all set, so every pixel has colour index 1.
	for i := 0; i < 8; i++ {
		b.chr[16+i] = 0xFF
	}
	p.vram[0] = 1             // nametable entry (0,0) -> tile 1
	p.paletteTable[1] = 0x21  // background palette 0, colour 1
	p.paletteTable[13] = 0x16 // some other slot; must not be used

	p.WriteReg(PPUMASK, MASK_SHOW_BACKGROUND)
	p.render()

	want := SYSTEM_PALETTE[0x21]
	if got := p.framebuffer.RGBAAt(0, 0); got != want {
		t.Errorf("pixel (0,0) = %v, want %v", got, want)
	}
	if got := p.framebuffer.RGBAAt(7, 7); got != want {
		t.Errorf("pixel (7,7) = %v, want %v (whole tile filled)", got, want)
	}

	// The neighbouring tile is 0, whose pattern is empty: those
	// pixels are transparent and stay at the framebuffer's zero
	// value.
	zero := p.framebuffer.RGBAAt(200, 200)
	if got := p.framebuffer.RGBAAt(8, 0); got != zero {
		t.Errorf("pixel (8,0) = %v, want untouched (transparent)", got)
	}
}

func TestRenderBackgroundAttributeQuadrants(t *testing.T) {
	p, b := newTestPPU()
	p.SetMirrorMode(MIRROR_VERTICAL)

	for i := 0; i < 8; i++ {
		b.chr[16+i] = 0xFF
	}
	// Tiles at (0,0) and (2,0): same pattern, different attribute
	// quadrants of attribute byte 0.
	p.vram[0] = 1
	p.vram[2] = 1
	// Quadrant selector: right-half tiles (x%32 >= 16) use bits 2-3.
	p.vram[0x3C0] = 0b0000_0100 // left quadrants palette 0, right palette 1
	p.paletteTable[1] = 0x21    // palette 0, colour 1
	p.paletteTable[5] = 0x16    // palette 1, colour 1

	p.WriteReg(PPUMASK, MASK_SHOW_BACKGROUND)
	p.render()

	if got, want := p.framebuffer.RGBAAt(0, 0), SYSTEM_PALETTE[0x21]; got != want {
		t.Errorf("left-quadrant pixel = %v, want palette 0 colour (%v)", got, want)
	}
	if got, want := p.framebuffer.RGBAAt(16, 0), SYSTEM_PALETTE[0x16]; got != want {
		t.Errorf("right-quadrant pixel = %v, want palette 1 colour (%v)", got, want)
	}
}

func TestRenderSprite(t *testing.T) {
	p, b := newTestPPU()

	// Tile 2: only the leftmost pixel of each row set.
	for i := 0; i < 8; i++ {
		b.chr[2*16+i] = 0x80
	}
	p.oamData[0] = 10   // y
	p.oamData[1] = 2    // tile
	p.oamData[2] = 0x01 // sprite palette 1
	p.oamData[3] = 20   // x
	p.paletteTable[0x15] = 0x2A

	p.WriteReg(PPUMASK, MASK_SHOW_SPRITES)
	p.render()

	// Sprites draw one scanline below their OAM y.
	want := SYSTEM_PALETTE[0x2A]
	if got := p.framebuffer.RGBAAt(20, 11); got != want {
		t.Errorf("sprite pixel (20,11) = %v, want %v", got, want)
	}
}

func TestRenderSpriteHorizontalFlip(t *testing.T) {
	p, b := newTestPPU()

	for i := 0; i < 8; i++ {
		b.chr[2*16+i] = 0x80
	}
	p.oamData[0] = 10
	p.oamData[1] = 2
	p.oamData[2] = 0x41 // palette 1, horizontal flip
	p.oamData[3] = 20
	p.paletteTable[0x15] = 0x2A

	p.WriteReg(PPUMASK, MASK_SHOW_SPRITES)
	p.render()

	want := SYSTEM_PALETTE[0x2A]
	if got := p.framebuffer.RGBAAt(27, 11); got != want {
		t.Errorf("flipped sprite pixel (27,11) = %v, want %v", got, want)
	}
}

func TestRenderBehindBackgroundPriority(t *testing.T) {
	p, b := newTestPPU()
	p.SetMirrorMode(MIRROR_VERTICAL)

	// Tile 1: opaque background everywhere in its 8x8 cell.
	for i := 0; i < 8; i++ {
		b.chr[16+i] = 0xFF
	}
	p.vram[0] = 1
	p.paletteTable[1] = 0x21

	// Tile 2: a fully opaque sprite placed over that cell, flagged
	// behind-background.
	for i := 0; i < 8; i++ {
		b.chr[2*16+i] = 0xFF
	}
	p.oamData[0] = 0    // y: rows draw at 1..8
	p.oamData[1] = 2    // tile
	p.oamData[2] = 0x20 // palette 0, behind background
	p.oamData[3] = 0    // x
	p.paletteTable[0x11] = 0x16

	p.WriteReg(PPUMASK, MASK_SHOW_BACKGROUND|MASK_SHOW_SPRITES)
	p.render()

	// Over opaque background the sprite must not show.
	if got, want := p.framebuffer.RGBAAt(2, 2), SYSTEM_PALETTE[0x21]; got != want {
		t.Errorf("pixel over opaque background = %v, want background colour %v", got, want)
	}

	// The sprite's last row hangs below the background tile, where
	// the background is transparent: there the sprite shows.
	if got, want := p.framebuffer.RGBAAt(2, 8), SYSTEM_PALETTE[0x16]; got != want {
		t.Errorf("pixel over transparent background = %v, want sprite colour %v", got, want)
	}
}

func TestRenderLowerIndexSpriteWins(t *testing.T) {
	p, b := newTestPPU()

	for i := 0; i < 8; i++ {
		b.chr[2*16+i] = 0x80
	}
	// Sprites 0 and 1 at the same position, different palettes;
	// sprite 0 must overdraw sprite 1.
	for s, pal := range []uint8{0x00, 0x01} {
		p.oamData[s*4+0] = 10
		p.oamData[s*4+1] = 2
		p.oamData[s*4+2] = pal
		p.oamData[s*4+3] = 20
	}
	p.paletteTable[0x11] = 0x21 // sprite palette 0
	p.paletteTable[0x15] = 0x16 // sprite palette 1

	p.WriteReg(PPUMASK, MASK_SHOW_SPRITES)
	p.render()

	if got, want := p.framebuffer.RGBAAt(20, 11), SYSTEM_PALETTE[0x21]; got != want {
		t.Errorf("overlapping sprite pixel = %v, want sprite 0's colour %v", got, want)
	}
}
