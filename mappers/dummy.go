package mappers

import (
	"math"

	"github.com/bdwalton/gintendo/nesrom"
)

// dummyMapper is a test double giving direct, addressable access to a
// flat 64KB memory block, used by bus/ppu/cpu tests that need a
// Mapper without a real cartridge.
type dummyMapper struct {
	memory []uint8
	MM     uint8 // mirroring mode - tests can set as needed
	sram   bool
}

func (dm *dummyMapper) ID() uint16 {
	return 0
}

func (dm *dummyMapper) New() Mapper {
	return &dummyMapper{memory: make([]uint8, math.MaxUint16+1), sram: true}
}

func (dm *dummyMapper) Init(r *nesrom.ROM) {}

func (dm *dummyMapper) Name() string {
	return "dummy mapper"
}

func (dm *dummyMapper) PrgRead(addr uint16) uint8 {
	return dm.memory[addr]
}

func (dm *dummyMapper) PrgWrite(addr uint16, val uint8) error {
	dm.memory[addr] = val
	return nil
}

func (dm *dummyMapper) ChrRead(addr uint16) uint8 {
	return dm.memory[addr]
}

func (dm *dummyMapper) ChrWrite(addr uint16, val uint8) {
	dm.memory[addr] = val
}

func (dm *dummyMapper) MirroringMode() uint8 {
	return dm.MM
}

func (dm *dummyMapper) HasSaveRAM() bool {
	return dm.sram
}

// Dummy is a ready-to-use dummyMapper for tests.
var Dummy *dummyMapper = &dummyMapper{memory: make([]uint8, math.MaxUint16+1), sram: true}
