// Package console wires the CPU, PPU, cartridge mapper and joypad
// together into a complete NES and drives ebiten's Game loop.
package console

import (
	"fmt"
	"io"
	"math"

	"github.com/bdwalton/gintendo/mappers"
	"github.com/bdwalton/gintendo/mos6502"
	"github.com/bdwalton/gintendo/ppu"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	NES_BASE_MEMORY = 0x800 // 2KB built-in RAM

	MAX_ADDRESS          = math.MaxUint16
	MAX_NES_BASE_RAM     = 0x1FFF
	MAX_PPU_REG_MIRRORED = 0x3FFF
	MAX_IO_REG           = 0x4020
	MIN_PRG_ROM          = 0x8000
)

const (
	JOY1   = 0x4016
	JOY2   = 0x4017
	OAMDMA = 0x4014 // Triggers DMA from CPU memory to OAM
)

// Bus implements the ebiten.Game interface and the full NES CPU
// memory map: https://www.nesdev.org/wiki/CPU_memory_map
type Bus struct {
	cpu    *mos6502.CPU
	ppu    *ppu.PPU
	mapper mappers.Mapper
	ram    []uint8

	joy1, joy2 Joypad

	mode mos6502.Mode

	// fault records a mid-instruction bus error (a ROM-space write
	// in conformance mode); Update surfaces it at the next
	// instruction boundary.
	fault error

	// frameFn runs exactly once per frame, when the PPU reports the
	// frame edge. It gets a read-only view of the PPU and the
	// player-1 joypad to feed input into; it must not re-enter the
	// bus or CPU.
	frameFn func(p *ppu.PPU, joy *Joypad)
}

// New builds a free-run console: the forgiving mode games get, where
// a write aimed at ROM is ignored the way the real board ignores it.
func New(m mappers.Mapper) *Bus {
	return NewWithMode(m, mos6502.ModeFreeRun)
}

// NewWithMode builds a console whose CPU and bus share mode:
// conformance makes BRK halt the machine and a ROM-space write a
// fatal fault, both of which the test drivers rely on.
func NewWithMode(m mappers.Mapper, mode mos6502.Mode) *Bus {
	b := &Bus{mapper: m, mode: mode, ram: make([]uint8, NES_BASE_MEMORY)}

	b.ppu = ppu.New(b)
	b.ppu.SetMirrorMode(m.MirroringMode())
	b.cpu = mos6502.NewWithMode(b, mode)

	// Default host behavior: poll the keyboard into the player-1
	// joypad once per frame.
	b.frameFn = func(_ *ppu.PPU, joy *Joypad) {
		joy.SetButtonState(pollKeys())
	}

	ebiten.SetWindowTitle("Gintendo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return b
}

// SetFrameCallback replaces the per-frame host hook. Passing nil
// disables it (and with it the default keyboard polling).
func (b *Bus) SetFrameCallback(fn func(p *ppu.PPU, joy *Joypad)) {
	b.frameFn = fn
}

// TraceTo logs one conformance-format line per executed instruction
// to w. Note that formatting a line reads operand targets through the
// bus, so tracing a program that touches PPU data registers will
// consume their read side effects.
func (b *Bus) TraceTo(w io.Writer) {
	b.cpu.SetStepCallback(func(c *mos6502.CPU) {
		fmt.Fprintln(w, c.Trace())
	})
}

// Resolution returns the NES's fixed display resolution, for callers
// (e.g. main) that want to size the window before the game loop
// starts.
func (b *Bus) Resolution() (int, int) {
	return b.ppu.GetResolution()
}

// TriggerNMI is used by the PPU to signal the CPU that vblank has
// started and NMI generation is enabled.
func (b *Bus) TriggerNMI() {
	b.cpu.TriggerNMI()
}

// ChrRead/ChrWrite are used by the PPU to access CHR space on the
// loaded mapper.
func (b *Bus) ChrRead(addr uint16) uint8 {
	return b.mapper.ChrRead(addr)
}

func (b *Bus) ChrWrite(addr uint16, val uint8) {
	b.mapper.ChrWrite(addr, val)
}

// Read implements mos6502.Bus: the full CPU-visible address space.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr <= MAX_NES_BASE_RAM:
		return b.ram[addr&0x07FF] // mirrored every 0x800 bytes
	case addr <= MAX_PPU_REG_MIRRORED:
		return b.ppu.ReadReg(0x2000 + addr&0x0007)
	case addr < MAX_IO_REG:
		switch addr {
		case JOY1:
			return b.joy1.read()
		case JOY2:
			return b.joy2.read()
		}
		return 0
	case addr < MIN_PRG_ROM:
		// expansion and cartridge SRAM windows; nothing mapped
		return 0
	case addr <= MAX_ADDRESS:
		return b.mapper.PrgRead(addr)
	}

	panic("unreachable")
}

func (b *Bus) Write(addr uint16, val uint8) {
	switch {
	case addr <= MAX_NES_BASE_RAM:
		b.ram[addr&0x07FF] = val
	case addr <= MAX_PPU_REG_MIRRORED:
		b.ppu.WriteReg(0x2000+addr&0x0007, val)
	case addr < MAX_IO_REG:
		switch addr {
		case OAMDMA:
			base := uint16(val) << 8
			for i := uint16(0); i < 256; i++ {
				b.ppu.WriteOAM(b.Read(base + i))
			}
			b.cpu.AddDMACycles()
		case JOY1:
			// Both controllers latch off the same strobe write,
			// per https://www.nesdev.org/wiki/Standard_controller
			b.joy1.write(val)
			b.joy2.write(val)
		}
	case addr < MIN_PRG_ROM:
		// nothing mapped here yet
	case addr <= MAX_ADDRESS:
		if err := b.mapper.PrgWrite(addr, val); err != nil && b.mode == mos6502.ModeConformance {
			b.fault = err
		}
	}
}

// Layout is part of the ebiten.Game interface; returning the fixed
// NES resolution forces ebiten to do any scaling itself.
func (b *Bus) Layout(w, h int) (int, int) {
	return b.ppu.GetResolution()
}

// Draw copies the PPU's framebuffer onto the ebiten screen.
func (b *Bus) Draw(screen *ebiten.Image) {
	px := b.ppu.GetPixels()
	rect := px.Bounds()

	for x := 0; x < rect.Dx(); x++ {
		for y := 0; y < rect.Dy(); y++ {
			screen.Set(x, y, px.At(x, y))
		}
	}
}

// Update is ebiten's once-per-frame hook, and is what drives the
// whole emulation: it steps the CPU until the PPU reports that a new
// frame has begun, then runs the frame callback. Unlike the original
// design (a background goroutine racing against ebiten's own loop),
// stepping happens synchronously here so there's exactly one thing
// advancing machine state at a time. A fault (illegal opcode, halt,
// or a conformance-mode ROM write) propagates out and ends the
// ebiten game loop.
func (b *Bus) Update() error {
	for {
		cycles, err := b.cpu.Step()
		if err != nil {
			return err
		}
		if b.fault != nil {
			err := b.fault
			b.fault = nil
			return err
		}
		if b.ppu.Tick(int(cycles) * 3) {
			if b.frameFn != nil {
				b.frameFn(b.ppu, &b.joy1)
			}
			return nil
		}
	}
}

func (b *Bus) String() string {
	return b.cpu.String()
}
