// Package mappers implements and registers mappers that are
// referenced numerically by iNES and NES2.0 ROM files.
package mappers

import (
	"errors"
	"fmt"

	"github.com/bdwalton/gintendo/nesrom"
)

// ErrWriteToROM is returned (wrapped) by a mapper's PrgWrite when the
// target address is cartridge ROM rather than mapper-controlled
// state. The bus decides whether that's fatal.
var ErrWriteToROM = errors.New("write to cartridge ROM space")

// A global registry of mapper prototypes, keyed by mapper id. Each
// mapper registers itself via RegisterMapper from an init() function
// in its own file, the way the NROM implementation in mapper0.go does.
var allMappers map[uint16]Mapper = map[uint16]Mapper{}

func RegisterMapper(id uint16, m Mapper) {
	if om, ok := allMappers[id]; ok {
		panic(fmt.Sprintf("can't re-register mapper id %d, already used by %q", id, om.Name()))
	}
	allMappers[id] = m
}

// Get returns a mapper bound to rom, or an error if rom names a
// mapper id this build doesn't implement.
func Get(rom *nesrom.ROM) (Mapper, error) {
	id := rom.MapperNum()
	proto, ok := allMappers[id]
	if !ok {
		return nil, fmt.Errorf("unknown mapper id %d", id)
	}

	m := proto.New()
	m.Init(rom)
	return m, nil
}

// Mapper abstracts cartridge-specific address decoding for PRG and
// CHR space. The bus owns CPU RAM directly, so Mapper only deals with
// cartridge-resident memory.
type Mapper interface {
	ID() uint16
	// New returns a fresh, zeroed instance of this mapper so that
	// Get never hands out a shared prototype to more than one ROM.
	New() Mapper
	Init(*nesrom.ROM)
	Name() string
	PrgRead(uint16) uint8 // Read PRG data, addressed from 0x8000
	// Write PRG space, addressed from 0x8000. Mappers with
	// registers in this range accept the write; plain ROM returns
	// a wrapped ErrWriteToROM.
	PrgWrite(uint16, uint8) error
	ChrRead(uint16) uint8   // Read CHR data
	ChrWrite(uint16, uint8) // Write CHR data
	MirroringMode() uint8   // Which mirroring mode nametable data uses
	HasSaveRAM() bool       // Whether the cartridge exposes Save RAM at 0x6000-0x7FFF
}

type baseMapper struct {
	id   uint16
	rom  *nesrom.ROM
	name string
}

func (bm *baseMapper) ID() uint16 {
	return bm.id
}

func (bm *baseMapper) String() string {
	return bm.name
}

func (bm *baseMapper) Name() string {
	return bm.name
}

func (bm *baseMapper) Init(r *nesrom.ROM) {
	bm.rom = r
}

func (bm *baseMapper) MirroringMode() uint8 {
	return bm.rom.MirroringMode()
}

func (bm *baseMapper) HasSaveRAM() bool {
	return bm.rom.HasSaveRAM()
}
