package mmu

import "testing"

func TestDefaultPortMapsKernalBasicIO(t *testing.T) {
	m := New()
	m.Poke(0x0000, 0x2F)
	m.Poke(0x0001, 0x37) // LORAM=HIRAM=CHAREN=1: default power-on banking

	if k := m.PageKind(0xE000); k != KindKernal {
		t.Errorf("page $E = %v, want KindKernal", k)
	}
	if k := m.PageKind(0xA000); k != KindBasic {
		t.Errorf("page $A = %v, want KindBasic", k)
	}
	if k := m.PageKind(0xD000); k != KindIO {
		t.Errorf("page $D = %v, want KindIO", k)
	}
}

func TestAllRAMConfiguration(t *testing.T) {
	m := New()
	m.Poke(0x0000, 0x2F)
	m.Poke(0x0001, 0x30) // LORAM=HIRAM=CHAREN=0

	for _, addr := range []uint16{0xA000, 0xD000, 0xE000} {
		if k := m.PageKind(addr); k != KindRAM {
			t.Errorf("page containing %#04x = %v, want KindRAM", addr, k)
		}
	}
}

func TestCharROMVisibleWhenCharenClear(t *testing.T) {
	m := New()
	m.Poke(0x0000, 0x2F)
	m.Poke(0x0001, 0x33) // LORAM=HIRAM=1, CHAREN=0

	if k := m.PageKind(0xD000); k != KindChar {
		t.Errorf("page $D = %v, want KindChar", k)
	}
}

func TestPeekPokeThroughRAMRoundTrips(t *testing.T) {
	m := New()
	m.Poke(0x0000, 0x2F)
	m.Poke(0x0001, 0x30)

	m.Poke(0xC123, 0x55)
	if got := m.Peek(0xC123); got != 0x55 {
		t.Errorf("Peek(0xC123) = %#02x, want 0x55", got)
	}
}

func TestROMPagePokeWritesUnderlyingRAM(t *testing.T) {
	m := New()
	m.SetKernal(make([]uint8, 8192))
	m.Poke(0x0000, 0x2F)
	m.Poke(0x0001, 0x37)

	m.Poke(0xE000, 0x42) // kernal page is mapped; write shadows through to RAM
	if got := m.Peek(0xE000); got != 0x00 {
		t.Errorf("reading mapped ROM after write = %#02x, want ROM's own byte 0x00", got)
	}

	m.Poke(0x0001, 0x30) // switch kernal out
	if got := m.Peek(0xE000); got != 0x42 {
		t.Errorf("RAM underneath ROM did not retain the earlier write: got %#02x, want 0x42", got)
	}
}

func TestPortBit7DecaysToZeroAfterFalloffWindow(t *testing.T) {
	m := New()
	m.Poke(0x0000, 0xFF) // bits 6/7 configured as output
	m.Poke(0x0001, 0xFF) // latch them high

	m.Poke(0x0000, 0x3F) // switch bits 6/7 to input, leaving them latched high

	if got := m.Peek(0x0001); got&0xC0 != 0xC0 {
		t.Fatalf("bits 6/7 changed immediately on direction switch: %#02x", got)
	}

	m.Tick(decayFalloffCycles - 1)
	if got := m.Peek(0x0001); got&0xC0 != 0xC0 {
		t.Errorf("bits decayed before the fall-off window elapsed: %#02x", got)
	}

	m.Tick(1)
	if got := m.Peek(0x0001); got&0xC0 != 0x00 {
		t.Errorf("bits 6/7 did not decay to 0 after the fall-off window: %#02x", got)
	}
}

func TestOutputPinNeverDecays(t *testing.T) {
	m := New()
	m.Poke(0x0000, 0xFF)
	m.Poke(0x0001, 0xFF)

	m.Tick(decayFalloffCycles * 2)

	if got := m.Peek(0x0001); got&0xC0 != 0xC0 {
		t.Errorf("output-configured bits 6/7 decayed: %#02x", got)
	}
}

type fakeIOChip struct {
	regs [64]uint8
}

func (f *fakeIOChip) Peek(addr uint16) uint8      { return f.regs[addr] }
func (f *fakeIOChip) Poke(addr uint16, val uint8) { f.regs[addr] = val }

func TestIODispatchRoutesToCorrectChip(t *testing.T) {
	m := New()
	m.Poke(0x0000, 0x2F)
	m.Poke(0x0001, 0x37)

	vic, cia1, cia2, color, sid := &fakeIOChip{}, &fakeIOChip{}, &fakeIOChip{}, &fakeIOChip{}, &fakeIOChip{}
	m.SetChips(vic, cia1, cia2, color, sid, nil, 0, nil, 0)

	m.Poke(0xD000, 0x11)
	m.Poke(0xD400, 0x22)
	m.Poke(0xDC00, 0x33)
	m.Poke(0xDD00, 0x44)

	if vic.regs[0] != 0x11 {
		t.Errorf("VIC register not written")
	}
	if sid.regs[0] != 0x22 {
		t.Errorf("SID register not written")
	}
	if cia1.regs[0] != 0x33 {
		t.Errorf("CIA1 register not written")
	}
	if cia2.regs[0] != 0x44 {
		t.Errorf("CIA2 register not written")
	}
}

func TestSecondSIDRoutesByConfiguredBase(t *testing.T) {
	m := New()
	m.Poke(0x0000, 0x2F)
	m.Poke(0x0001, 0x37)

	sid, sid2 := &fakeIOChip{}, &fakeIOChip{}
	m.SetChips(&fakeIOChip{}, &fakeIOChip{}, &fakeIOChip{}, &fakeIOChip{}, sid, sid2, 0xD420, nil, 0)

	m.Poke(0xD420, 0x7E)
	if sid2.regs[0] != 0x7E {
		t.Errorf("second SID did not receive write at its configured base")
	}
	if sid.regs[0] != 0 {
		t.Errorf("primary SID incorrectly received the second SID's write")
	}
}
