package mos6502

import (
	"fmt"
	"strings"
)

// Trace renders the instruction at pc and the current register state
// in the single-line format used by 6502 conformance tools (the
// nestest reference log): program counter, raw opcode bytes, mnemonic
// (prefixed with * for unofficial opcodes), the operand with its
// resolved address and memory contents, then the register dump. It
// never advances pc, but it does read through the bus to show operand
// values, so it's only meaningful against plain RAM/ROM addresses —
// tracing an instruction that targets a PPU register would consume
// that register's read side effects.
func (c *CPU) Trace() string {
	b := c.read(c.pc)
	op, ok := opcodes[b]
	if !ok {
		asm := fmt.Sprintf("%04X  %-8s  ???", c.pc, fmt.Sprintf("%02X", b))
		return fmt.Sprintf("%-47s %s", asm, c.registerTail())
	}

	raw := make([]uint8, op.bytes)
	for i := uint8(0); i < op.bytes; i++ {
		raw[i] = c.read(c.pc + uint16(i))
	}

	hex := make([]string, len(raw))
	for i, v := range raw {
		hex[i] = fmt.Sprintf("%02X", v)
	}

	mn := op.name
	if isUnofficial(b, op) {
		mn = "*" + mn
	}

	asm := fmt.Sprintf("%04X  %-8s %4s %s", c.pc, strings.Join(hex, " "), mn, c.operandText(op, raw))
	return fmt.Sprintf("%-47s %s", strings.TrimRight(asm, " "), c.registerTail())
}

func (c *CPU) registerTail() string {
	return fmt.Sprintf("A:%02X X:%02X Y:%02X P:%02X SP:%02X", c.acc, c.x, c.y, c.status, c.sp)
}

// isUnofficial reports whether opcode byte b is outside the documented
// instruction set, which the reference log marks with a leading *.
func isUnofficial(b uint8, op opcode) bool {
	return op.inst >= LAX || (op.inst == NOP && b != 0xEA) || b == 0xEB
}

// operandText formats the operand portion of a trace line the way the
// reference log does: addressing-mode syntax plus the resolved
// address and the byte found there.
func (c *CPU) operandText(op opcode, raw []uint8) string {
	switch op.mode {
	case IMPLICIT:
		return ""
	case ACCUMULATOR:
		return "A"
	case IMMEDIATE:
		return fmt.Sprintf("#$%02X", raw[1])
	case ZERO_PAGE:
		addr := uint16(raw[1])
		return fmt.Sprintf("$%02X = %02X", raw[1], c.read(addr))
	case ZERO_PAGE_X:
		fin := raw[1] + c.x
		return fmt.Sprintf("$%02X,X @ %02X = %02X", raw[1], fin, c.read(uint16(fin)))
	case ZERO_PAGE_Y:
		fin := raw[1] + c.y
		return fmt.Sprintf("$%02X,Y @ %02X = %02X", raw[1], fin, c.read(uint16(fin)))
	case RELATIVE:
		offset := int8(raw[1])
		return fmt.Sprintf("$%04X", uint16(int32(c.pc)+2+int32(offset)))
	case ABSOLUTE:
		addr := uint16(raw[2])<<8 | uint16(raw[1])
		if op.inst == JMP || op.inst == JSR {
			return fmt.Sprintf("$%04X", addr)
		}
		return fmt.Sprintf("$%04X = %02X", addr, c.read(addr))
	case ABSOLUTE_X:
		addr := uint16(raw[2])<<8 | uint16(raw[1])
		fin := addr + uint16(c.x)
		return fmt.Sprintf("$%04X,X @ %04X = %02X", addr, fin, c.read(fin))
	case ABSOLUTE_Y:
		addr := uint16(raw[2])<<8 | uint16(raw[1])
		fin := addr + uint16(c.y)
		return fmt.Sprintf("$%04X,Y @ %04X = %02X", addr, fin, c.read(fin))
	case INDIRECT:
		addr := uint16(raw[2])<<8 | uint16(raw[1])
		return fmt.Sprintf("($%04X) = %04X", addr, c.read16bug(addr))
	case INDIRECT_X:
		ptr := raw[1] + c.x
		fin := c.read16bug(uint16(ptr))
		return fmt.Sprintf("($%02X,X) @ %02X = %04X = %02X", raw[1], ptr, fin, c.read(fin))
	case INDIRECT_Y:
		base := c.read16bug(uint16(raw[1]))
		fin := base + uint16(c.y)
		return fmt.Sprintf("($%02X),Y = %04X @ %04X = %02X", raw[1], base, fin, c.read(fin))
	}

	return ""
}
