// Package driver relocates the small 6510 stub that bridges a loaded
// tune's init/play routines to the emulator's reset and interrupt
// vectors, the same page-hunting and parameter-block patching the
// reference player's PSID driver installer performs.
package driver

import "github.com/halfcycle/sidcore/internal/mmu"

// Compatibility mirrors the tune format's declared environment
// requirements, which changes where the stub is allowed to live and
// which vectors it hooks.
type Compatibility int

const (
	CompatibilityC64 Compatibility = iota
	CompatibilityR64
	CompatibilityBasic
)

// ClockSpeed is the tune's declared PAL/NTSC/either preference.
type ClockSpeed int

const (
	ClockUnknown ClockSpeed = iota
	ClockPAL
	ClockNTSC
	ClockAny
)

// SongSpeed selects whether play is driven from the vertical-blank
// interrupt or a CIA timer underflow.
type SongSpeed int

const (
	SpeedVBI SongSpeed = iota
	SpeedCIA
)

// MaxPowerOnDelay bounds the configured power-on delay; requests above
// this are replaced with a PRNG-drawn value to model hardware jitter.
const MaxPowerOnDelay = 0x1FFF

// TuneInfo is the subset of a loaded tune's metadata the relocator
// needs. It is satisfied by tune.Info; kept as an interface here so
// driver has no import-time dependency on the tune loader.
type TuneInfo interface {
	LoadAddr() uint16
	C64DataLen() int
	RelocStartPage() uint8
	RelocPages() uint8
	Compatibility() Compatibility
	ClockSpeed() ClockSpeed
	CurrentSong() int
	SongSpeed() SongSpeed
	InitAddr() uint16
	PlayAddr() uint16
}

// paramBlockSize is the number of bytes at the front of the relocated
// stub that the stub's own code reads as operands, in the exact order
// psiddrv.cpp patches them: subtune, speed, init addr, play addr,
// power-on delay, I/O map nibbles for init/play, PAL/NTSC flag, clock
// flag, and the initial status register.
const paramBlockSize = 13

// stubBody is a placeholder for the real ~250-byte relocatable 6510
// stub (psiddrv.bin in the reference build); the pack carries no
// binary driver image to port, so this is a synthetic body sized and
// laid out the same way (parameter block first, body after) but filled
// with RTS (0x60) rather than working reset/IRQ-dispatch code. Callers
// needing an executable stub must supply real object code via
// Relocator.SetStubBody.
var stubBody = func() []byte {
	b := make([]byte, 250)
	for i := range b {
		b[i] = 0x60 // RTS
	}
	return b
}()

// Info is the result of a successful relocation: where the stub landed
// and the power-on delay actually used.
type Info struct {
	DriverAddr   uint16
	DriverLength uint16
	PowerOnDelay uint16
}

// Relocator places the driver stub and patches its parameter block.
type Relocator struct {
	stub []byte
	rand uint32
}

// New creates a relocator using the built-in placeholder stub body.
// SetStubBody can replace it with a real object-code image before
// calling Relocate.
func New(seed uint32) *Relocator {
	return &Relocator{stub: append([]byte(nil), stubBody...), rand: seed}
}

// SetStubBody replaces the relocatable driver image. It must begin
// with paramBlockSize bytes reserved for the parameter block.
func (r *Relocator) SetStubBody(body []byte) { r.stub = body }

// iomap returns the default $01 bank-select nibble for an effective
// address, per the reference Player::iomap.
func iomap(compat Compatibility, addr uint16) uint8 {
	if compat == CompatibilityR64 || compat == CompatibilityBasic {
		return 0
	}
	switch {
	case addr == 0:
		return 0
	case addr < 0xA000:
		return 0x37 // Basic-ROM, Kernal-ROM, I/O
	case addr < 0xD000:
		return 0x36 // Kernal-ROM, I/O
	case addr >= 0xE000:
		return 0x35 // I/O only
	default:
		return 0x34 // RAM only
	}
}

// findFreePage scans pages $04-$CF for one outside the tune's data
// range and outside the $A0-$BF BASIC ROM window.
func findFreePage(startlp, endlp int) (page uint8, found bool) {
	for i := 4; i < 0xD0; i++ {
		if i >= startlp && i <= endlp {
			continue
		}
		if i >= 0xA0 && i <= 0xBF {
			continue
		}
		return uint8(i), true
	}
	return 0, false
}

// little16 splits a 16-bit value into its low/high bytes.
func little16(v uint16) (lo, hi uint8) { return uint8(v), uint8(v >> 8) }

// Relocate installs the stub into m's RAM, following spec.md's driver
// relocator steps: pick a page, copy the stub, patch its parameter
// block, hook the reset vector, and (for RSID tunes) the IRQ vector at
// $0314-$0319.
func (r *Relocator) Relocate(m *mmu.MMU, t TuneInfo, powerOnDelayCfg uint16) (Info, bool) {
	ram := m.RAM()

	startlp := int(t.LoadAddr()) >> 8
	endlp := (int(t.LoadAddr()) + t.C64DataLen() - 1) >> 8

	relocStartPage := t.RelocStartPage()
	relocPages := t.RelocPages()

	if t.Compatibility() == CompatibilityBasic {
		relocStartPage, relocPages = 0x04, 0x03
	}

	switch {
	case relocStartPage == 0xFF:
		relocPages = 0
	case relocStartPage == 0:
		if page, ok := findFreePage(startlp, endlp); ok {
			relocStartPage, relocPages = page, 1
		} else {
			relocPages = 0
		}
	}

	if relocPages < 1 {
		return Info{}, false
	}

	relocAddr := uint16(relocStartPage) << 8

	body := r.stub
	if len(body) < paramBlockSize {
		return Info{}, false
	}

	driverLength := uint16(len(body)-paramBlockSize+0xFF) &^ 0xFF

	copy(ram[relocAddr:], body[paramBlockSize:])

	ram[0xFFFC], ram[0xFFFD] = little16(relocAddr)

	if t.Compatibility() == CompatibilityBasic {
		ram[0xBF53] = uint8(t.CurrentSong() - 1)
	} else if t.Compatibility() == CompatibilityR64 {
		copy(ram[0x0314:0x031A], body[2:8])
	}

	pos := relocAddr
	ram[pos] = uint8(t.CurrentSong() - 1)
	pos++
	if t.SongSpeed() == SpeedVBI {
		ram[pos] = 0
	} else {
		ram[pos] = 1
	}
	pos++

	initAddr := t.InitAddr()
	if t.Compatibility() == CompatibilityBasic {
		initAddr = 0xBF55
	}
	ram[pos], ram[pos+1] = little16(initAddr)
	pos += 2

	ram[pos], ram[pos+1] = little16(t.PlayAddr())
	pos += 2

	delay := powerOnDelayCfg
	if delay > MaxPowerOnDelay {
		r.rand = r.rand*13 + 1
		delay = uint16(r.rand>>3) & MaxPowerOnDelay
	}
	ram[pos], ram[pos+1] = little16(delay)
	pos += 2
	r.rand = r.rand*13 + 1

	ram[pos] = iomap(t.Compatibility(), t.InitAddr())
	pos++
	ram[pos] = iomap(t.Compatibility(), t.PlayAddr())
	pos++

	palFlag := uint8(0)
	if t.ClockSpeed() != ClockNTSC {
		palFlag = 1
	}
	ram[pos] = palFlag
	pos++

	switch t.ClockSpeed() {
	case ClockPAL:
		ram[pos] = 1
	case ClockNTSC:
		ram[pos] = 0
	default:
		ram[pos] = palFlag
	}
	pos++

	statusReg := uint8(1 << 2) // SR_INTERRUPT
	if t.Compatibility() == CompatibilityR64 {
		statusReg = 0
	}
	ram[pos] = statusReg

	return Info{
		DriverAddr:   relocAddr,
		DriverLength: driverLength,
		PowerOnDelay: delay,
	}, true
}
