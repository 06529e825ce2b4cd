// Package mmu implements the C64 PLA: the logic that maps the 6510's flat
// 64 KiB address space onto RAM, the three ROM images, and the I/O chips
// based on the CPU port latch at $0000/$0001.
//
// The page table itself is a tagged sum type rather than sixteen live
// Bank references, mirroring the enum-of-variants shape the data model
// calls for: each of the 16 4 KiB windows holds only a Kind discriminant,
// and Peek/Poke switch on it to reach the one concrete bank that Kind
// names. This sidesteps the aliasing that a table of interface values
// sharing the same RAM backing would otherwise invite.
package mmu

import "github.com/halfcycle/sidcore/internal/membank"

// Kind discriminates what a 4 KiB CPU page currently maps to.
type Kind uint8

const (
	KindRAM Kind = iota
	KindKernal
	KindBasic
	KindChar
	KindIO
	KindZeroPage // page $0: CPU port overlay at $0000/$0001, RAM elsewhere
)

// Chip is satisfied by the CIA, VIC and SID implementations; register
// reads can have side effects (ICR clear-on-read) so this is distinct
// from plain storage.
type Chip interface {
	Peek(addr uint16) uint8
	Poke(addr uint16, val uint8)
}

// decayFalloffCycles is how long bits 6/7 of $01 hold their last output
// value after being switched to input, per the data model (~350000
// cycles, i.e. the bus capacitance discharge time observed on real
// hardware).
const decayFalloffCycles = 350000

// MMU owns the 64 KiB RAM array, the optional ROM images, the I/O chip
// set, and the CPU port latch, and resolves every CPU access through the
// page table the latch currently selects.
type MMU struct {
	ram [65536]uint8

	kernal *membank.ROM
	basic  *membank.ROM
	char   *membank.ROM

	colorRAM Chip
	vic      Chip
	cia1     Chip
	cia2     Chip
	sid      Chip // primary, fixed at $D400
	sid2     Chip // optional, at sid2Base
	sid3     Chip // optional, at sid3Base
	sid2Base uint16
	sid3Base uint16

	pages [16]Kind

	// CPU port ($0000 direction, $0001 data).
	direction uint8
	data      uint8
	// falloff[i] counts cycles remaining before bit 6 (i=0) / bit 7 (i=1)
	// decays to 0; 0 means "not decaying".
	falloff [2]uint64
}

// New creates an MMU with all RAM and no ROMs or chips installed; install
// images and chips before first use.
func New() *MMU {
	m := &MMU{}
	m.recomputePages()
	return m
}

// SetKernal installs (or, if data is nil, removes) the Kernal ROM image.
// A missing Kernal must be supplied by the caller as the minimal fake
// Kernal built by the romset package; the MMU itself has no opinion.
func (m *MMU) SetKernal(data []uint8) {
	if data == nil {
		m.kernal = nil
		return
	}
	m.kernal = membank.NewROM(data, 0xE000)
}

func (m *MMU) SetBasic(data []uint8) {
	if data == nil {
		m.basic = nil
		return
	}
	m.basic = membank.NewROM(data, 0xA000)
}

func (m *MMU) SetChar(data []uint8) {
	if data == nil {
		m.char = nil
		return
	}
	m.char = membank.NewROM(data, 0xD000)
}

// SetChips installs the borrowed chip references the IO page routes to.
// Any of sid2/sid3 may be nil (not present in the configured setup).
func (m *MMU) SetChips(vic, cia1, cia2, colorRAM, sid, sid2 Chip, sid2Base uint16, sid3 Chip, sid3Base uint16) {
	m.vic, m.cia1, m.cia2, m.colorRAM = vic, cia1, cia2, colorRAM
	m.sid, m.sid2, m.sid3 = sid, sid2, sid3
	m.sid2Base, m.sid3Base = sid2Base, sid3Base
}

// RAM returns the backing 64 KiB array so the driver relocator and tune
// loader can place bytes directly, bypassing bank routing.
func (m *MMU) RAM() *[65536]uint8 { return &m.ram }

// recomputePages rebuilds the 16-entry page table from the current port
// latch. Called whenever the effective LORAM/HIRAM/CHAREN bits change.
func (m *MMU) recomputePages() {
	loram, hiram, charen := m.portBits()

	m.pages[0] = KindZeroPage
	for p := 1; p <= 9; p++ {
		m.pages[p] = KindRAM
	}
	m.pages[0xC] = KindRAM

	if loram && hiram {
		m.pages[0xA] = KindBasic
		m.pages[0xB] = KindBasic
	} else {
		m.pages[0xA] = KindRAM
		m.pages[0xB] = KindRAM
	}

	switch {
	case charen && (loram || hiram):
		m.pages[0xD] = KindIO
	case !charen && (loram || hiram):
		m.pages[0xD] = KindChar
	default:
		m.pages[0xD] = KindRAM
	}

	if hiram {
		m.pages[0xE] = KindKernal
		m.pages[0xF] = KindKernal
	} else {
		m.pages[0xE] = KindRAM
		m.pages[0xF] = KindRAM
	}
}

// portBits returns the effective LORAM/HIRAM/CHAREN signals: a pin reads
// as its output value when configured as output, else as its last
// latched value unless that value has decayed.
func (m *MMU) portBits() (loram, hiram, charen bool) {
	loram = m.portBit(0)
	hiram = m.portBit(1)
	charen = m.portBit(2)
	return
}

func (m *MMU) portBit(bit uint8) bool {
	mask := uint8(1) << bit
	if m.direction&mask != 0 {
		return m.data&mask != 0
	}
	// Input pin: reads as the last value written to $0001. portBits
	// only asks for bits 0-2; the bits 6/7 decay is handled by Tick.
	return m.data&mask != 0
}

// Peek reads one byte through the current page mapping.
func (m *MMU) Peek(addr uint16) uint8 {
	switch addr {
	case 0x0000:
		return m.direction
	case 0x0001:
		return m.portDataRead()
	}

	switch m.pages[addr>>12] {
	case KindZeroPage, KindRAM:
		return m.ram[addr]
	case KindKernal:
		if m.kernal != nil {
			return m.kernal.Peek(addr)
		}
		return m.ram[addr]
	case KindBasic:
		if m.basic != nil {
			return m.basic.Peek(addr)
		}
		return m.ram[addr]
	case KindChar:
		if m.char != nil {
			return m.char.Peek(addr)
		}
		return m.ram[addr]
	case KindIO:
		return m.peekIO(addr)
	}
	return 0xFF
}

// Poke writes one byte through the current page mapping; writes to ROM
// pages fall through to the RAM underneath it (the RAM is always there,
// just shadowed), matching real hardware's "ROM shadows RAM" behavior.
func (m *MMU) Poke(addr uint16, val uint8) {
	switch addr {
	case 0x0000:
		m.setDirection(val)
		return
	case 0x0001:
		m.setData(val)
		return
	}

	switch m.pages[addr>>12] {
	case KindIO:
		m.pokeIO(addr, val)
	default:
		m.ram[addr] = val
	}
}

func (m *MMU) peekIO(addr uint16) uint8 {
	switch {
	case addr < 0xD400:
		if m.vic != nil {
			return m.vic.Peek(addr & 0x3F)
		}
	case m.sid2 != nil && addr >= m.sid2Base && addr < m.sid2Base+0x20:
		return m.sid2.Peek(addr - m.sid2Base)
	case m.sid3 != nil && addr >= m.sid3Base && addr < m.sid3Base+0x20:
		return m.sid3.Peek(addr - m.sid3Base)
	case addr < 0xD800:
		if m.sid != nil {
			return m.sid.Peek(addr - 0xD400)
		}
	case addr < 0xDC00:
		if m.colorRAM != nil {
			return m.colorRAM.Peek(addr)
		}
	case addr < 0xDD00:
		if m.cia1 != nil {
			return m.cia1.Peek(addr & 0x0F)
		}
	case addr < 0xDE00:
		if m.cia2 != nil {
			return m.cia2.Peek(addr & 0x0F)
		}
	}
	return 0xFF
}

func (m *MMU) pokeIO(addr uint16, val uint8) {
	switch {
	case addr < 0xD400:
		if m.vic != nil {
			m.vic.Poke(addr&0x3F, val)
		}
	case m.sid2 != nil && addr >= m.sid2Base && addr < m.sid2Base+0x20:
		m.sid2.Poke(addr-m.sid2Base, val)
	case m.sid3 != nil && addr >= m.sid3Base && addr < m.sid3Base+0x20:
		m.sid3.Poke(addr-m.sid3Base, val)
	case addr < 0xD800:
		if m.sid != nil {
			m.sid.Poke(addr-0xD400, val)
		}
	case addr < 0xDC00:
		if m.colorRAM != nil {
			m.colorRAM.Poke(addr, val)
		}
	case addr < 0xDD00:
		if m.cia1 != nil {
			m.cia1.Poke(addr&0x0F, val)
		}
	case addr < 0xDE00:
		if m.cia2 != nil {
			m.cia2.Poke(addr&0x0F, val)
		}
	}
}

func (m *MMU) setDirection(val uint8) {
	prev := m.direction
	m.direction = val
	for i, bit := range [2]uint8{6, 7} {
		mask := uint8(1) << bit
		wasOutput := prev&mask != 0
		isInput := val&mask == 0
		if wasOutput && isInput && m.data&mask != 0 {
			m.falloff[i] = decayFalloffCycles
		} else if !isInput {
			m.falloff[i] = 0
		}
	}
	m.recomputePages()
}

func (m *MMU) setData(val uint8) {
	m.data = val
	for i, bit := range [2]uint8{6, 7} {
		mask := uint8(1) << bit
		if m.direction&mask != 0 {
			// Output pin: writing clears any in-flight decay.
			m.falloff[i] = 0
		}
	}
	m.recomputePages()
}

// portDataRead returns $0001's current value; Tick is what actually
// clears decayed input bits 6/7 to 0 once their fall-off counter expires.
func (m *MMU) portDataRead() uint8 {
	return m.data
}

// Tick advances the bits 6/7 decay counters by the given number of
// cycles, clearing a bit to 0 once its counter reaches zero.
func (m *MMU) Tick(cycles uint64) {
	for i, bit := range [2]uint8{6, 7} {
		if m.falloff[i] == 0 {
			continue
		}
		if cycles >= m.falloff[i] {
			m.falloff[i] = 0
			m.data &^= uint8(1) << bit
		} else {
			m.falloff[i] -= cycles
		}
	}
}

// PageKind reports the current mapping of the 4 KiB page containing addr,
// for tests and the -dump-state CLI flag.
func (m *MMU) PageKind(addr uint16) Kind {
	return m.pages[addr>>12]
}
