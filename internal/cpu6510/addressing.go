package cpu6510

// AddrMode identifies how an instruction's operand address is formed.
type AddrMode int

const (
	AddrImplied AddrMode = iota
	AddrAccumulator
	AddrImmediate
	AddrZeroPage
	AddrZeroPageX
	AddrZeroPageY
	AddrAbsolute
	AddrAbsoluteX
	AddrAbsoluteY
	AddrIndirect
	AddrIndirectX
	AddrIndirectY
	AddrRelative
)

// operandAddress consumes the operand bytes for mode (advancing PC) and
// returns the effective address plus whether resolving it crossed a page
// boundary (relevant to the +1 cycle penalty on indexed/indirect-Y reads).
// For AddrImmediate the "address" is the operand byte's own location, so
// a uniform bus.Peek(addr) retrieves the operand in every mode that has one.
func (c *CPU) operandAddress(mode AddrMode) (addr uint16, crossed bool) {
	switch mode {
	case AddrImmediate:
		addr = c.PC
		c.PC++
	case AddrZeroPage:
		addr = uint16(c.fetch())
	case AddrZeroPageX:
		addr = uint16(c.fetch()+c.X) & 0xFF
	case AddrZeroPageY:
		addr = uint16(c.fetch()+c.Y) & 0xFF
	case AddrAbsolute:
		addr = c.fetchAbsolute()
	case AddrAbsoluteX:
		base := c.fetchAbsolute()
		addr = base + uint16(c.X)
		crossed = (base & 0xFF00) != (addr & 0xFF00)
	case AddrAbsoluteY:
		base := c.fetchAbsolute()
		addr = base + uint16(c.Y)
		crossed = (base & 0xFF00) != (addr & 0xFF00)
	case AddrIndirect:
		ptr := c.fetchAbsolute()
		addr = c.readIndirectBug(ptr)
	case AddrIndirectX:
		zp := c.fetch() + c.X
		addr = c.readZPPointer(zp)
	case AddrIndirectY:
		zp := c.fetch()
		base := c.readZPPointer(zp)
		addr = base + uint16(c.Y)
		crossed = (base & 0xFF00) != (addr & 0xFF00)
	case AddrRelative:
		offset := int8(c.fetch())
		addr = uint16(int32(c.PC) + int32(offset))
	}
	return
}

func (c *CPU) fetchAbsolute() uint16 {
	lo := uint16(c.fetch())
	hi := uint16(c.fetch())
	return lo | hi<<8
}

// readIndirectBug reproduces the NMOS 6502's JMP ($xxFF) page-wrap bug:
// the high byte is fetched from $xx00, not $(xx+1)00.
func (c *CPU) readIndirectBug(ptr uint16) uint16 {
	lo := uint16(c.bus.Peek(ptr))
	hiAddr := (ptr & 0xFF00) | uint16(uint8(ptr)+1)
	hi := uint16(c.bus.Peek(hiAddr))
	return lo | hi<<8
}

func (c *CPU) readZPPointer(zp uint8) uint16 {
	lo := uint16(c.bus.Peek(uint16(zp)))
	hi := uint16(c.bus.Peek(uint16(zp + 1)))
	return lo | hi<<8
}

// load reads the operand value for a non-implied/accumulator mode.
func (c *CPU) load(mode AddrMode) (uint8, uint16, bool) {
	addr, crossed := c.operandAddress(mode)
	return c.bus.Peek(addr), addr, crossed
}
