// Package tune reads PSID/RSID one-file format headers, the external
// tune container spec.md treats as a consumed collaborator, and
// exposes the load/init/play addresses and relocation metadata the
// driver relocator and player façade need to run a song.
package tune

import (
	"encoding/binary"
	"errors"

	"github.com/halfcycle/sidcore/internal/driver"
	"github.com/halfcycle/sidcore/internal/mmu"
)

// MaxSongs mirrors the reference loader's clamp on the declared song
// count; PSID headers are 16-bit but no real tune carries more.
const MaxSongs = 256

const (
	psidMagic = "PSID"
	rsidMagic = "RSID"
)

// Header flag bits, version >= 2 only.
const (
	flagMUS      = 1 << 0
	flagSpecific = 1 << 1
	flagBasic    = 1 << 1
	flagClockPAL = 1 << 2
	flagClockNTSC = 1 << 3
	flagClockAny = flagClockPAL | flagClockNTSC
	flagSIDModel1_6581 = 1 << 4
	flagSIDModel1_8580 = 1 << 5
	flagSIDModel1_Any  = flagSIDModel1_6581 | flagSIDModel1_8580
	flagSIDModel2_6581 = 1 << 6
	flagSIDModel2_8580 = 1 << 7
	flagSIDModel2_Any  = flagSIDModel2_6581 | flagSIDModel2_8580
)

// SIDModel is the chip variant a PSID header may declare per socket.
type SIDModel int

const (
	SIDModelUnknown SIDModel = iota
	SIDModel6581
	SIDModel8580
	SIDModelAny
)

// ErrNotATune is returned when the buffer carries neither a PSID nor
// an RSID magic number.
var ErrNotATune = errors.New("tune: not a PSID/RSID file")

// ErrTruncated is returned when the buffer is shorter than the
// declared header requires.
var ErrTruncated = errors.New("tune: file is truncated")

// ErrUnsupportedVersion is returned for a version byte this reader
// doesn't understand.
var ErrUnsupportedVersion = errors.New("tune: unsupported PSID/RSID version")

// ErrInvalidRSID is returned when an RSID header violates the format's
// "must be a real C64 program" reserved-field constraints.
var ErrInvalidRSID = errors.New("tune: RSID header has non-zero reserved fields")

const headerFixedLen = 4 + 2 + 2 + 2 + 2 + 2 + 2 + 2 + 4 + 32 + 32 + 32

// Info is a parsed tune's metadata. It satisfies driver.TuneInfo so a
// loaded tune can be handed straight to a driver.Relocator.
type Info struct {
	Format        string
	Version       uint16
	Compat        driver.Compatibility
	LoadAddrField uint16
	InitAddrField uint16
	PlayAddrField uint16
	Songs         int
	StartSong     int
	CurrentSong_  int
	Clock         driver.ClockSpeed
	SIDModel1     SIDModel
	SIDModel2     SIDModel
	SIDChipBase2  uint16
	RelocStart    uint8
	RelocCount    uint8
	Name          string
	Author        string
	Released      string
	MUSPlayer     bool

	speedMask uint32 // bit i: song i+1 uses CIA timer A instead of VBI

	Data []byte // tune body, starting at its declared load address
}

func fixedString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Parse reads a PSID/RSID file's header and body.
func Parse(raw []byte) (*Info, error) {
	if len(raw) < 6 {
		return nil, ErrNotATune
	}

	magic := string(raw[:4])
	var compat driver.Compatibility
	var format string

	switch magic {
	case psidMagic:
		format = "PlaySID one-file format (PSID)"
		compat = driver.CompatibilityC64
	case rsidMagic:
		format = "Real C64 one-file format (RSID)"
		compat = driver.CompatibilityR64
	default:
		return nil, ErrNotATune
	}

	version := binary.BigEndian.Uint16(raw[4:6])

	switch magic {
	case psidMagic:
		if version == 1 {
			compat = driver.CompatibilityC64 // COMPATIBILITY_PSID collapses to C64 here; no separate PSID tag kept
		} else if version != 2 && version != 3 {
			return nil, ErrUnsupportedVersion
		}
	case rsidMagic:
		if version != 2 && version != 3 {
			return nil, ErrUnsupportedVersion
		}
	}

	if len(raw) < headerFixedLen+2 {
		return nil, ErrTruncated
	}

	dataOffset := binary.BigEndian.Uint16(raw[6:8])
	loadAddr := binary.BigEndian.Uint16(raw[8:10])
	initAddr := binary.BigEndian.Uint16(raw[10:12])
	playAddr := binary.BigEndian.Uint16(raw[12:14])
	songs := int(binary.BigEndian.Uint16(raw[14:16]))
	startSong := int(binary.BigEndian.Uint16(raw[16:18]))
	speed := binary.BigEndian.Uint32(raw[18:22])

	name := fixedString(raw[22:54])
	author := fixedString(raw[54:86])
	released := fixedString(raw[86:118])

	if songs > MaxSongs {
		songs = MaxSongs
	}

	info := &Info{
		Format:        format,
		Version:       version,
		Compat:        compat,
		LoadAddrField: loadAddr,
		InitAddrField: initAddr,
		PlayAddrField: playAddr,
		Songs:         songs,
		StartSong:     startSong,
		CurrentSong_:  startSong,
		Name:          name,
		Author:        author,
		Released:      released,
	}

	clock := driver.ClockUnknown

	if version >= 2 {
		if len(raw) < headerFixedLen+4 {
			return nil, ErrTruncated
		}
		flags := binary.BigEndian.Uint16(raw[118:120])
		info.RelocStart = raw[120]
		info.RelocCount = raw[121]

		if flags&flagMUS != 0 {
			clock = driver.ClockAny
			info.MUSPlayer = true
		}

		// PSID_SPECIFIC (same bit as flagBasic, mutually exclusive by
		// format) has no distinct compatibility tag kept here beyond
		// C64/R64/Basic.
		if compat == driver.CompatibilityR64 && flags&flagBasic != 0 {
			info.Compat = driver.CompatibilityBasic
		}

		switch {
		case flags&flagClockAny == flagClockAny:
			clock = driver.ClockAny
		case flags&flagClockPAL != 0:
			clock = driver.ClockPAL
		case flags&flagClockNTSC != 0:
			clock = driver.ClockNTSC
		}

		info.SIDModel1 = decodeSIDModel(flags, flagSIDModel1_6581, flagSIDModel1_8580, flagSIDModel1_Any)
		info.SIDModel2 = decodeSIDModel(flags, flagSIDModel2_6581, flagSIDModel2_8580, flagSIDModel2_Any)

		if version >= 3 && len(raw) > 122 {
			info.SIDChipBase2 = 0xD000 | uint16(raw[122])<<4
		}
	}
	info.Clock = clock

	if info.Compat == driver.CompatibilityR64 {
		if loadAddr != 0 || playAddr != 0 || speed != 0 {
			return nil, ErrInvalidRSID
		}
		speed = ^uint32(0) // real C64 tunes are always CIA-timed
	}
	info.speedMask = speed

	if int(dataOffset) > len(raw) {
		return nil, ErrTruncated
	}
	body := raw[dataOffset:]
	if loadAddr == 0 {
		if len(body) < 2 {
			return nil, ErrTruncated
		}
		loadAddr = uint16(body[0]) | uint16(body[1])<<8
		body = body[2:]
	}
	info.LoadAddrField = loadAddr
	info.Data = body

	return info, nil
}

func decodeSIDModel(flags uint16, bit6581, bit8580, any uint16) SIDModel {
	switch {
	case flags&any == any:
		return SIDModelAny
	case flags&bit6581 != 0:
		return SIDModel6581
	case flags&bit8580 != 0:
		return SIDModel8580
	default:
		return SIDModelUnknown
	}
}

// LoadAddr implements driver.TuneInfo.
func (i *Info) LoadAddr() uint16 { return i.LoadAddrField }

// C64DataLen implements driver.TuneInfo.
func (i *Info) C64DataLen() int { return len(i.Data) }

// RelocStartPage implements driver.TuneInfo.
func (i *Info) RelocStartPage() uint8 { return i.RelocStart }

// RelocPages implements driver.TuneInfo.
func (i *Info) RelocPages() uint8 { return i.RelocCount }

// Compatibility implements driver.TuneInfo.
func (i *Info) Compatibility() driver.Compatibility { return i.Compat }

// ClockSpeed implements driver.TuneInfo.
func (i *Info) ClockSpeed() driver.ClockSpeed { return i.Clock }

// CurrentSong implements driver.TuneInfo.
func (i *Info) CurrentSong() int { return i.CurrentSong_ }

// SelectSong picks the active subtune, 1-based; out-of-range values
// fall back to the declared start song.
func (i *Info) SelectSong(n int) {
	if n < 1 || n > i.Songs {
		n = i.StartSong
	}
	i.CurrentSong_ = n
}

// SongSpeed implements driver.TuneInfo: bit (song-1) of the header's
// speed field selects CIA timer A pacing over the default VBI pacing.
func (i *Info) SongSpeed() driver.SongSpeed {
	song := i.CurrentSong_ - 1
	if song < 0 || song >= 32 {
		song = 31
	}
	if i.speedMask&(1<<uint(song)) != 0 {
		return driver.SpeedCIA
	}
	return driver.SpeedVBI
}

// InitAddr implements driver.TuneInfo.
func (i *Info) InitAddr() uint16 { return i.InitAddrField }

// PlayAddr implements driver.TuneInfo.
func (i *Info) PlayAddr() uint16 { return i.PlayAddrField }

// PlaceInMemory copies the tune body into m's RAM at its declared load
// address, the step spec.md's external tune loader performs before the
// driver stub is relocated and run.
func (i *Info) PlaceInMemory(m *mmu.MMU) {
	ram := m.RAM()
	copy(ram[i.LoadAddrField:], i.Data)
}
