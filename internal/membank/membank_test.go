package membank

import "testing"

func TestRAMPeekPokeRoundTrip(t *testing.T) {
	data := make([]uint8, 4096)
	ram := NewRAM(data, 0xC000)

	ram.Poke(0xC000, 0x42)
	ram.Poke(0xCFFF, 0x7F)

	if got := ram.Peek(0xC000); got != 0x42 {
		t.Errorf("Peek(0xC000) = %#02x, want 0x42", got)
	}
	if got := ram.Peek(0xCFFF); got != 0x7F {
		t.Errorf("Peek(0xCFFF) = %#02x, want 0x7f", got)
	}
}

func TestRAMSharesBackingArray(t *testing.T) {
	data := make([]uint8, 256)
	a := NewRAM(data, 0x0000)
	b := NewRAM(data, 0x0000)

	a.Poke(0x10, 0x99)
	if got := b.Peek(0x10); got != 0x99 {
		t.Errorf("second view Peek(0x10) = %#02x, want 0x99 (shared backing array)", got)
	}
}

func TestROMWritesAreNoOps(t *testing.T) {
	data := []uint8{0xAA, 0xBB, 0xCC}
	rom := NewROM(data, 0xE000)

	rom.Poke(0xE000, 0x00)

	if got := rom.Peek(0xE000); got != 0xAA {
		t.Errorf("ROM byte changed after Poke: got %#02x, want 0xAA", got)
	}
}

func TestColorRAMMasksToFourBits(t *testing.T) {
	c := NewColorRAM()
	c.Poke(0xD800, 0xFF)

	if got := c.Peek(0xD800); got != 0xFF {
		t.Errorf("Peek(0xD800) = %#02x, want 0xFF (low nibble set, high nibble forced)", got)
	}

	c.Poke(0xD801, 0x00)
	if got := c.Peek(0xD801); got&0x0F != 0x00 {
		t.Errorf("low nibble = %#x, want 0x0", got&0x0F)
	}
}

func TestColorRAMMirrorsEveryKilobyte(t *testing.T) {
	c := NewColorRAM()
	c.Poke(0xD800, 0x05)

	if got := c.Peek(0xDC00); got&0x0F != 0x05 {
		t.Errorf("mirrored address did not read back written nibble: got %#x", got&0x0F)
	}
}

func TestDisconnectedIgnoresWrites(t *testing.T) {
	var d Disconnected
	d.Poke(0x1234, 0x00)
	if got := d.Peek(0x1234); got != 0xFF {
		t.Errorf("Peek on disconnected bus = %#02x, want 0xFF", got)
	}
}

type fakeChip struct {
	regs    [16]uint8
	readLog []uint16
}

func (f *fakeChip) Peek(addr uint16) uint8 {
	f.readLog = append(f.readLog, addr)
	return f.regs[addr]
}

func (f *fakeChip) Poke(addr uint16, val uint8) {
	f.regs[addr] = val
}

func TestChipBankMasksAddressToLocalRegisterSpace(t *testing.T) {
	chip := &fakeChip{}
	bank := NewChipBank(chip, 0x0F)

	bank.Poke(0xD400, 0x11)
	bank.Poke(0xD410, 0x22) // mirrors register 0 sixteen bytes later

	if got := bank.Peek(0xD420); got != 0x22 {
		t.Errorf("mirrored register read = %#02x, want 0x22 (last write wins)", got)
	}
}
