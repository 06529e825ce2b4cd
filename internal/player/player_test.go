package player

import (
	"encoding/binary"
	"testing"

	"github.com/halfcycle/sidcore/internal/sid"
	"github.com/halfcycle/sidcore/internal/tune"
)

// buildPSID assembles a minimal well-formed PSID v2 file: magic,
// version, a 122-byte fixed header, then body.
func buildPSID(loadAddr, initAddr, playAddr uint16, songs, startSong int, body []byte) []byte {
	const headerLen = 122
	buf := make([]byte, headerLen)
	copy(buf[0:4], "PSID")
	binary.BigEndian.PutUint16(buf[4:6], 2)
	binary.BigEndian.PutUint16(buf[6:8], uint16(headerLen))
	binary.BigEndian.PutUint16(buf[8:10], loadAddr)
	binary.BigEndian.PutUint16(buf[10:12], initAddr)
	binary.BigEndian.PutUint16(buf[12:14], playAddr)
	binary.BigEndian.PutUint16(buf[14:16], uint16(songs))
	binary.BigEndian.PutUint16(buf[16:18], uint16(startSong))
	copy(buf[22:54], "Test Tune")
	copy(buf[54:86], "Test Author")
	return append(buf, body...)
}

func TestConfigureRejectsOutOfRangeFrequencyWithoutMutatingState(t *testing.T) {
	p, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := p.cfg.Frequency

	bad := p.cfg
	bad.Frequency = 4000
	if err := p.Configure(bad); err != ErrFrequencyRange {
		t.Fatalf("got %v, want ErrFrequencyRange", err)
	}
	if p.cfg.Frequency != before {
		t.Errorf("Configure mutated state on a rejected config: frequency now %d, was %d", p.cfg.Frequency, before)
	}
}

func TestConfigureRejectsMisalignedSecondSIDAddress(t *testing.T) {
	p, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	bad := p.cfg
	bad.SecondSIDAddress = 0xD401 // not 32-byte aligned
	if err := p.Configure(bad); err != ErrSIDAddressRange {
		t.Fatalf("got %v, want ErrSIDAddressRange", err)
	}
}

func TestPlayBeforeLoadReturnsErrNoTuneLoaded(t *testing.T) {
	p, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	buf := make([]int16, 64)
	if _, err := p.Play(buf, len(buf)); err != ErrNoTuneLoaded {
		t.Fatalf("got %v, want ErrNoTuneLoaded", err)
	}
}

// TestLoadRunsInitAndWritesSIDVolumeRegister exercises spec.md §8's
// init/play scenario: init writes the SID volume register via
// LDA #$0F; STA $D418; RTS, and play is a no-op RTS. After Load (which
// calls init) the SID's register shadow for $18 must read back 0x0F.
func TestLoadRunsInitAndWritesSIDVolumeRegister(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = 44100
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := []byte{0xA9, 0x0F, 0x8D, 0x18, 0xD4, 0x60, 0x60} // init @1000, play @1006
	raw := buildPSID(0x1000, 0x1000, 0x1006, 1, 1, body)

	if err := p.Load(raw); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Halted() {
		t.Fatalf("player halted after init: %v", p.HaltError())
	}

	var status [32]uint8
	p.GetSidStatus(0, &status)
	if status[0x18] != 0x0F {
		t.Errorf("SID register $18 = %#02x, want 0x0F", status[0x18])
	}
}

// TestPlayAdvancesWithoutHalting drives a handful of output frames
// through the no-op play routine above and checks playback produces
// samples and never halts.
func TestPlayAdvancesWithoutHalting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = 44100
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := []byte{0xA9, 0x0F, 0x8D, 0x18, 0xD4, 0x60, 0x60}
	raw := buildPSID(0x1000, 0x1000, 0x1006, 1, 1, body)
	if err := p.Load(raw); err != nil {
		t.Fatalf("Load: %v", err)
	}

	buf := make([]int16, 512)
	n, err := p.Play(buf, len(buf))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if n != len(buf) {
		t.Errorf("Play produced %d samples, want %d", n, len(buf))
	}
	if p.Halted() {
		t.Errorf("player halted during playback: %v", p.HaltError())
	}
}

func TestSelectSongRejectsWithoutLoadedTune(t *testing.T) {
	p, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.SelectSong(1); err != ErrNoTuneLoaded {
		t.Fatalf("got %v, want ErrNoTuneLoaded", err)
	}
}

func TestMuteIgnoresOutOfRangeIndex(t *testing.T) {
	p, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Mute(5, 0, true) // must not panic on an index with no loaded SID
}

// TestSetFastForwardValidatesRangeAndReachesTheMixer exercises the
// wiring path the mixer's own fast-forward factor has no way to reach
// on its own: Config/Player must expose it for playback to use anything
// but the default 1x.
func TestSetFastForwardValidatesRangeAndReachesTheMixer(t *testing.T) {
	p, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.SetFastForward(0); err != ErrFastForwardRange {
		t.Fatalf("got %v, want ErrFastForwardRange", err)
	}
	if err := p.SetFastForward(33); err != ErrFastForwardRange {
		t.Fatalf("got %v, want ErrFastForwardRange", err)
	}
	if err := p.SetFastForward(4); err != nil {
		t.Fatalf("SetFastForward(4): %v", err)
	}
	if p.cfg.FastForward != 4 {
		t.Errorf("cfg.FastForward = %d, want 4", p.cfg.FastForward)
	}
	if !p.mix.SetFastForward(4) {
		t.Fatal("mixer rejected a factor Player.SetFastForward already accepted")
	}
}

// TestPlayWithFastForwardAdvancesWithoutHalting drives playback at a
// fast-forward factor above 1, the case that used to be unreachable
// (nothing ever called Mixer.SetFastForward) and mathematically inert
// even when reached (sidUnit.Sample returned one cached value regardless
// of how many times Mix drew from it).
func TestPlayWithFastForwardAdvancesWithoutHalting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = 44100
	cfg.FastForward = 8
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := []byte{0xA9, 0x0F, 0x8D, 0x18, 0xD4, 0x60, 0x60}
	raw := buildPSID(0x1000, 0x1000, 0x1006, 1, 1, body)
	if err := p.Load(raw); err != nil {
		t.Fatalf("Load: %v", err)
	}

	buf := make([]int16, 256)
	n, err := p.Play(buf, len(buf))
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if n != len(buf) {
		t.Errorf("Play produced %d samples, want %d", n, len(buf))
	}
	if p.Halted() {
		t.Errorf("player halted during playback: %v", p.HaltError())
	}
}

// TestCallRoutineInterleavesCIATimerDuringThePlayRoutine guards against
// the play() call freezing CIA/VIC/SID for its own duration: it arms
// CIA1 timer A to underflow in a handful of cycles and a play routine
// that loops reading the timer's latched ICR bit, which only ever
// becomes visible if the CIA keeps ticking while the CPU executes the
// routine's own instructions.
func TestCallRoutineInterleavesCIATimerDuringThePlayRoutine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = 44100
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// init: set CIA1 timer A to a short latch, force-load and start it
	// free-running, unmasked on the ICR; play: spin-read $DC0D (clearing
	// on read) into a zero page counter so repeated underflows leave a
	// nonzero trace, then RTS.
	init := []byte{
		0xA9, 0x05, 0x8D, 0x04, 0xDC, // LDA #$05; STA $DC04 (timer A lo)
		0xA9, 0x00, 0x8D, 0x05, 0xDC, // LDA #$00; STA $DC05 (timer A hi)
		0xA9, 0x81, 0x8D, 0x0D, 0xDC, // LDA #$81; STA $DC0D (ICR: unmask timer A)
		0xA9, 0x11, 0x8D, 0x0E, 0xDC, // LDA #$11; STA $DC0E (start, force load, continuous)
		0x60, // RTS
	}
	play := []byte{
		0xAD, 0x0D, 0xDC, // LDA $DC0D (ICR, clear on read)
		0x29, 0x01, // AND #$01 (timer A underflow bit)
		0x8D, 0x00, 0x04, // STA $0400 (scratch)
		0x60, // RTS
	}
	raw := buildPSID(0x1000, 0x1000, 0x1000+uint16(len(init)), 1, 1, append(init, play...))
	if err := p.Load(raw); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Halted() {
		t.Fatalf("player halted after init: %v", p.HaltError())
	}

	buf := make([]int16, 128)
	if _, err := p.Play(buf, len(buf)); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if p.Halted() {
		t.Fatalf("player halted during playback: %v", p.HaltError())
	}
}

func TestResolveSIDLayoutFallsBackToTuneHint(t *testing.T) {
	cfg := DefaultConfig()
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	info := &tune.Info{SIDModel1: tune.SIDModel8580, SIDChipBase2: 0xD420}
	n, second, _, models := p.resolveSIDLayout(info)
	if n != 2 {
		t.Errorf("numSIDs = %d, want 2 (tune declares a second SID base)", n)
	}
	if second != 0xD420 {
		t.Errorf("secondBase = %#04x, want 0xD420 from the tune hint", second)
	}
	if models[0] != sid.Model8580 {
		t.Errorf("modelFor[0] = %v, want Model8580 from the tune hint", models[0])
	}
}
