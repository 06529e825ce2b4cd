package tune

import (
	"encoding/binary"
	"testing"

	"github.com/halfcycle/sidcore/internal/driver"
)

const headerV2Len = headerFixedLen + 4 // fixed fields + flags(2)/relocStart/relocCount

// buildPSID assembles a minimal, well-formed PSID v2 header followed by
// body, matching Parse's field layout exactly.
func buildPSID(t *testing.T, loadAddr, initAddr, playAddr uint16, songs, startSong int, flags uint16, body []byte) []byte {
	t.Helper()
	buf := make([]byte, headerV2Len)
	copy(buf[0:4], "PSID")
	binary.BigEndian.PutUint16(buf[4:6], 2)
	binary.BigEndian.PutUint16(buf[6:8], uint16(headerV2Len))
	binary.BigEndian.PutUint16(buf[8:10], loadAddr)
	binary.BigEndian.PutUint16(buf[10:12], initAddr)
	binary.BigEndian.PutUint16(buf[12:14], playAddr)
	binary.BigEndian.PutUint16(buf[14:16], uint16(songs))
	binary.BigEndian.PutUint16(buf[16:18], uint16(startSong))
	// speed field (raw[18:22]) left zero: every song is VBI-paced.
	copy(buf[22:54], "Test Tune")
	copy(buf[54:86], "Test Author")
	copy(buf[86:118], "2026")
	binary.BigEndian.PutUint16(buf[118:120], flags)
	buf[120] = 0 // relocStart
	buf[121] = 0 // relocCount
	return append(buf, body...)
}

func TestParseRejectsUnknownMagic(t *testing.T) {
	if _, err := Parse([]byte("NOPE12345678")); err != ErrNotATune {
		t.Errorf("got %v, want ErrNotATune", err)
	}
}

func TestParseRejectsTruncated(t *testing.T) {
	raw := buildPSID(t, 0x1000, 0x1000, 0x1003, 1, 1, 0, []byte{0x60})
	if _, err := Parse(raw[:headerFixedLen]); err != ErrTruncated {
		t.Errorf("got %v, want ErrTruncated", err)
	}
}

func TestParseFieldsRoundTrip(t *testing.T) {
	body := []byte{0xA9, 0x0F, 0x8D, 0x18, 0xD4, 0x60}
	raw := buildPSID(t, 0x1000, 0x1000, 0x1006, 2, 1, 0, body)

	info, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if info.LoadAddr() != 0x1000 || info.InitAddr() != 0x1000 || info.PlayAddr() != 0x1006 {
		t.Errorf("addrs = %#04x/%#04x/%#04x", info.LoadAddr(), info.InitAddr(), info.PlayAddr())
	}
	if info.Songs != 2 || info.CurrentSong() != 1 {
		t.Errorf("songs=%d current=%d, want 2/1", info.Songs, info.CurrentSong())
	}
	if info.Name != "Test Tune" || info.Author != "Test Author" {
		t.Errorf("name/author = %q/%q", info.Name, info.Author)
	}
	if info.C64DataLen() != len(body) {
		t.Errorf("data len = %d, want %d", info.C64DataLen(), len(body))
	}
	if info.Compatibility() != driver.CompatibilityC64 {
		t.Errorf("compat = %v, want CompatibilityC64", info.Compatibility())
	}
}

func TestParseLoadAddressZeroReadsFromBody(t *testing.T) {
	body := []byte{0x00, 0x10, 0xA9, 0x0F, 0x60} // leading word is the real load addr
	raw := buildPSID(t, 0, 0x1000, 0x1003, 1, 1, 0, body)

	info, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if info.LoadAddr() != 0x1000 {
		t.Errorf("load addr = %#04x, want 0x1000", info.LoadAddr())
	}
	if info.C64DataLen() != len(body)-2 {
		t.Errorf("data len = %d, want %d", info.C64DataLen(), len(body)-2)
	}
}

func TestParseRSIDRejectsNonZeroLoadAddr(t *testing.T) {
	buf := buildPSID(t, 0x1000, 0x1000, 0x1003, 1, 1, 0, []byte{0x60})
	copy(buf[0:4], "RSID")
	if _, err := Parse(buf); err != ErrInvalidRSID {
		t.Errorf("got %v, want ErrInvalidRSID", err)
	}
}

func TestSongSpeedDecodesPerSongBitmask(t *testing.T) {
	info := &Info{Songs: 3, StartSong: 1, speedMask: 1 << 1} // song 2 is CIA-paced
	info.SelectSong(1)
	if info.SongSpeed() != driver.SpeedVBI {
		t.Errorf("song 1 speed = %v, want SpeedVBI", info.SongSpeed())
	}
	info.SelectSong(2)
	if info.SongSpeed() != driver.SpeedCIA {
		t.Errorf("song 2 speed = %v, want SpeedCIA", info.SongSpeed())
	}
}

func TestSelectSongClampsOutOfRange(t *testing.T) {
	info := &Info{Songs: 3, StartSong: 2}
	info.SelectSong(99)
	if info.CurrentSong() != 2 {
		t.Errorf("out-of-range SelectSong = %d, want start song 2", info.CurrentSong())
	}
}
