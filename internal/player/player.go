// Package player is the top-level façade spec.md §4.K describes: it owns
// the scheduler, the 6510 core, the PLA/MMU, both CIAs, the VIC timing
// model, one to three SIDs with their resamplers, and the mixer, and
// exposes configure/load/play/mute to an embedder. It consumes tune
// metadata from internal/tune and drives the driver relocator to place a
// tune in C64 RAM before running it.
package player

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/halfcycle/sidcore/internal/cia"
	"github.com/halfcycle/sidcore/internal/cpu6510"
	"github.com/halfcycle/sidcore/internal/debug"
	"github.com/halfcycle/sidcore/internal/driver"
	"github.com/halfcycle/sidcore/internal/kernal"
	"github.com/halfcycle/sidcore/internal/membank"
	"github.com/halfcycle/sidcore/internal/mixer"
	"github.com/halfcycle/sidcore/internal/mmu"
	"github.com/halfcycle/sidcore/internal/resample"
	"github.com/halfcycle/sidcore/internal/romset"
	"github.com/halfcycle/sidcore/internal/scheduler"
	"github.com/halfcycle/sidcore/internal/sid"
	"github.com/halfcycle/sidcore/internal/tune"
	"github.com/halfcycle/sidcore/internal/vic"
)

// C64Model selects the host machine's clock domain, which fixes the
// system clock frequency and the VIC/TOD timing derived from it.
type C64Model int

const (
	ModelPAL C64Model = iota
	ModelNTSC
	ModelOldNTSC
	ModelDrean
	ModelPALM
)

// clockHz is the system clock frequency for each supported machine,
// matching libsidplayfp's C64::CLOCK_* constants.
var clockHz = [...]float64{
	ModelPAL:     985248.6,
	ModelNTSC:    1022727.14,
	ModelOldNTSC: 1022727.14,
	ModelDrean:   1023440.8,
	ModelPALM:    1022727.14,
}

var vicModelFor = [...]vic.Model{
	ModelPAL:     vic.Model6569,
	ModelNTSC:    vic.Model6567R8,
	ModelOldNTSC: vic.Model6567R56A,
	ModelDrean:   vic.Model6572,
	ModelPALM:    vic.Model6573,
}

// Playback selects mono or stereo mixdown.
type Playback int

const (
	PlaybackMono Playback = iota
	PlaybackStereo
)

// SamplingMethod selects the resampler back end.
type SamplingMethod int

const (
	SamplingInterpolate        SamplingMethod = iota // zero-order, cheap
	SamplingResampleInterpolate                       // windowed-sinc FIR
)

// SidEmulation selects the SID chip back end, mirroring libsidplayfp's
// builder abstraction: the full analog-filtered model, or FastChip's
// cheap digital sum for when cycle budget matters more than fidelity.
type SidEmulation int

const (
	SidEmulationAccurate SidEmulation = iota // sid.SID, full EKV filter
	SidEmulationFast                         // sid.FastChip, no filter solve
)

// MaxPowerOnDelay mirrors driver.MaxPowerOnDelay; requests above this are
// replaced by a PRNG-drawn value.
const MaxPowerOnDelay = driver.MaxPowerOnDelay

// Config is SidConfig from spec.md §6. Field names double as TOML keys
// so a config file loaded via LoadConfigTOML can set any of them.
type Config struct {
	DefaultC64Model C64Model `toml:"default_c64_model"`
	ForceC64Model   bool     `toml:"force_c64_model"`

	DefaultSIDModel sid.Model `toml:"default_sid_model"`
	ForceSIDModel   bool      `toml:"force_sid_model"`
	DigiBoost       bool      `toml:"digiboost"`

	CIAModel cia.Model `toml:"cia_model"`

	Playback  Playback `toml:"playback"`
	Frequency int      `toml:"frequency"` // Hz, must be in [8000, 192000]

	SecondSIDAddress uint16 `toml:"second_sid_address"` // 0 = none
	ThirdSIDAddress  uint16 `toml:"third_sid_address"`  // 0 = none

	SamplingMethod SamplingMethod `toml:"sampling_method"`
	FastSampling   bool           `toml:"fast_sampling"`

	SidEmulation SidEmulation `toml:"sid_emulation"`

	PowerOnDelay int `toml:"power_on_delay"` // 0..8191; >8191 => random

	FastForward int `toml:"fast_forward"` // 1..32, boxcar-averaged samples per output sample
}

// LoadConfigTOML decodes a Config from a TOML file, starting from
// DefaultConfig so a file only needs to name the keys it overrides.
func LoadConfigTOML(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("player: reading config: %w", err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("player: decoding config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns a PAL/MOS6581/mono/44100Hz baseline configuration.
func DefaultConfig() Config {
	return Config{
		DefaultC64Model: ModelPAL,
		DefaultSIDModel: sid.Model6581,
		CIAModel:        cia.Model6526,
		Playback:        PlaybackMono,
		Frequency:       44100,
		SamplingMethod:  SamplingResampleInterpolate,
		PowerOnDelay:    MaxPowerOnDelay + 1, // random, matching libsidplayfp's default
		FastForward:     1,
	}
}

// Errors surfaced by Config/Load/Play, matching spec.md §7's kinds.
var (
	ErrFrequencyRange   = errors.New("sidcore: sampling frequency must be in [8000, 192000] Hz")
	ErrSIDAddressRange  = errors.New("sidcore: secondary/tertiary SID address must fall in the $D000-$DFFF I/O stripe")
	ErrTuneTooLarge     = errors.New("sidcore: tune body does not fit in C64 RAM from its load address")
	ErrNoFreePage       = errors.New("sidcore: no free page for the driver stub")
	ErrNoTuneLoaded     = errors.New("sidcore: no tune loaded")
	ErrFastForwardRange = errors.New("sidcore: fast-forward factor must be in [1, 32]")
)

const maxCallSteps = 2_000_000 // guards against a tune's init/play never returning, in system cycles

// ErrCallTimeout is returned when a called routine never reaches its
// synthetic return address within maxCallSteps cycles.
var ErrCallTimeout = errors.New("sidcore: init/play routine did not return")

// sidUnit bundles one SID chip with its resampler and a small FIFO of
// ready resampled outputs, so the mixer's fast-forward boxcar (mixer.Mix
// calling Sample fastForward times) averages distinct consecutive
// samples instead of replaying one cached value.
type sidUnit struct {
	chip sid.Chip
	res  resample.Resampler

	pending [32]float64 // ready outputs awaiting Mix, oldest-first; 32 = mixer.SetFastForward's cap
	head    int
	count   int
	last    float64 // most recently dequeued sample, replayed on underrun
}

// push enqueues a freshly ready resampled output, dropping the oldest
// entry if the queue is already full.
func (u *sidUnit) push(v float64) {
	if u.count == len(u.pending) {
		u.head = (u.head + 1) % len(u.pending)
		u.count--
	}
	u.pending[(u.head+u.count)%len(u.pending)] = v
	u.count++
}

// Sample implements mixer.Source: it dequeues the oldest ready output.
// If the queue has run dry it replays the last dequeued value rather
// than panicking, since chips can become "ready" on slightly different
// cycles and the mixer draws a fixed fastForward samples from each.
func (u *sidUnit) Sample() float64 {
	if u.count == 0 {
		return u.last
	}
	v := u.pending[u.head]
	u.head = (u.head + 1) % len(u.pending)
	u.count--
	u.last = v
	return v
}

// Player owns every emulated component for one playback session.
type Player struct {
	cfg Config

	sched *scheduler.Scheduler
	mmu   *mmu.MMU
	cpu   *cpu6510.CPU
	cia1  *cia.CIA
	cia2  *cia.CIA
	vicc  *vic.VIC
	mix   *mixer.Mixer
	units []*sidUnit

	reloc *driver.Relocator

	clockHz float64

	kernalData []uint8
	basicData  []uint8
	charData   []uint8

	cur *tune.Info

	halted    bool
	haltError error
	stopped   bool

	cadenceCycles uint64 // cycles between play() invocations
	cycleInFrame  uint64

	ffPending int // ready SID cycles accumulated toward cfg.FastForward

	playAddr uint16

	cyclesAccum uint64 // fractional-cycle residue carried between Play calls
	sampleTime  float64 // host-time accumulator in ms, for TimeMs

	randSeed uint32

	logger *debug.Logger
}

// New creates a Player with the given configuration applied.
func New(cfg Config) (*Player, error) {
	p := &Player{reloc: driver.New(0xC0FFEE), randSeed: 0x5EED, logger: debug.NewLogger(2000)}
	if err := p.Configure(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// Configure validates and applies cfg. On a validation error the player
// keeps its previous configuration, matching spec.md §7's "Config
// invalid" recovery rule.
func (p *Player) Configure(cfg Config) error {
	if cfg.Frequency < 8000 || cfg.Frequency > 192000 {
		return ErrFrequencyRange
	}
	if cfg.SecondSIDAddress != 0 && !validSIDAddress(cfg.SecondSIDAddress) {
		return ErrSIDAddressRange
	}
	if cfg.ThirdSIDAddress != 0 && !validSIDAddress(cfg.ThirdSIDAddress) {
		return ErrSIDAddressRange
	}
	if cfg.FastForward != 0 && (cfg.FastForward < 1 || cfg.FastForward > 32) {
		return ErrFastForwardRange
	}
	if cfg.FastForward == 0 {
		cfg.FastForward = 1
	}

	p.cfg = cfg
	p.clockHz = clockHz[cfg.DefaultC64Model]
	p.logger.LogSystem(debug.LogLevelInfo, "configured", map[string]interface{}{
		"frequency": cfg.Frequency, "model": int(cfg.DefaultC64Model),
	})
	return nil
}

// validSIDAddress reports whether addr falls in the $D000-$DFFF I/O
// window on a 32-byte (SID register block) boundary, excluding the
// primary SID's own $D400 block.
func validSIDAddress(addr uint16) bool {
	if addr < 0xD000 || addr > 0xDFE0 {
		return false
	}
	if addr&0x1F != 0 {
		return false
	}
	return addr != 0xD400
}

// SetKernal installs (or, if data is nil, removes to fall back on the
// built-in minimal image) the Kernal ROM.
func (p *Player) SetKernal(data []uint8) error { return p.setRom(&p.kernalData, data, romset.KindKernal) }

// SetBasic installs (or removes) the BASIC ROM.
func (p *Player) SetBasic(data []uint8) error { return p.setRom(&p.basicData, data, romset.KindBasic) }

// SetChargen installs (or removes) the Character ROM.
func (p *Player) SetChargen(data []uint8) error { return p.setRom(&p.charData, data, romset.KindChargen) }

func (p *Player) setRom(slot *[]uint8, data []uint8, kind romset.Kind) error {
	*slot = data
	if data == nil {
		return nil
	}
	if entry, ok := romset.Identify(data); ok {
		p.logger.LogSystem(debug.LogLevelInfo, "rom recognized", map[string]interface{}{"kind": kind.String(), "name": entry.Name})
	} else {
		p.logger.LogSystem(debug.LogLevelWarning, "rom checksum unrecognized, installing anyway", map[string]interface{}{"kind": kind.String()})
	}
	return nil
}

// buildChips (re)creates the MMU, CPU, CIAs, VIC, SIDs, resamplers and
// mixer for a fresh Load. Called once per Load so a tune never sees
// another tune's leftover register state. secondBase/thirdBase are the
// resolved (config-or-tune-hinted) extra SID addresses; modelFor picks
// each socket's chip model.
func (p *Player) buildChips(numSIDs int, secondBase, thirdBase uint16, modelFor [3]sid.Model) {
	p.sched = scheduler.New()
	p.mmu = mmu.New()

	// Standard C64 cold-start port latch (direction $2F, data $37): LORAM/
	// HIRAM/CHAREN all driven high, mapping BASIC+KERNAL+IO in before any
	// tune code runs. callRoutine never executes a real reset sequence, so
	// this has to be set explicitly instead of falling out of one.
	p.mmu.Poke(0x0000, 0x2F)
	p.mmu.Poke(0x0001, 0x37)

	kdata := p.kernalData
	if kdata == nil {
		kdata = kernal.Fake()
	}
	p.mmu.SetKernal(kdata)
	p.mmu.SetBasic(p.basicData)
	p.mmu.SetChar(p.charData)

	p.cpu = cpu6510.New(p.mmu)

	p.cia1 = cia.New(p.cfg.CIAModel, false, func(assert bool) {
		if assert {
			p.cpu.TriggerIRQ()
		} else {
			p.cpu.ClearIRQ()
		}
	})
	p.cia2 = cia.New(p.cfg.CIAModel, true, func(assert bool) {
		if assert {
			p.cpu.TriggerNMI()
		}
	})
	p.vicc = vic.New(vicModelFor[p.cfg.DefaultC64Model], func(assert bool) {
		if assert {
			p.cpu.TriggerIRQ()
		} else {
			p.cpu.ClearIRQ()
		}
	}, func(high bool) {
		p.cpu.SetRDY(high)
	})

	colorRAM := membank.NewColorRAM()

	p.units = p.units[:0]
	var chips [3]sid.Chip
	for i := 0; i < numSIDs; i++ {
		if p.cfg.SidEmulation == SidEmulationFast {
			chips[i] = sid.NewFast(modelFor[i])
		} else {
			chips[i] = sid.New(modelFor[i])
		}
	}

	var sid2Chip, sid3Chip mmu.Chip
	if numSIDs >= 2 {
		sid2Chip = chips[1]
	}
	if numSIDs >= 3 {
		sid3Chip = chips[2]
	}
	p.mmu.SetChips(p.vicc, p.cia1, p.cia2, colorRAM, chips[0], sid2Chip, secondBase, sid3Chip, thirdBase)

	p.mix = mixer.New()
	p.mix.SetStereo(p.cfg.Playback == PlaybackStereo)
	p.mix.SetFastForward(p.cfg.FastForward)
	p.ffPending = 0

	for i := 0; i < numSIDs; i++ {
		var res resample.Resampler
		if p.cfg.SamplingMethod == SamplingResampleInterpolate && !p.cfg.FastSampling {
			res = resample.NewSincResampler(p.clockHz, float64(p.cfg.Frequency), 20000)
		} else {
			res = resample.NewZeroOrderResampler(p.clockHz, float64(p.cfg.Frequency))
		}
		unit := &sidUnit{chip: chips[i], res: res}
		p.units = append(p.units, unit)
		p.mix.AddSid(unit)
	}

	p.cia1.AttachScheduler(p.sched)
	p.cia2.AttachScheduler(p.sched)
	p.vicc.AttachScheduler(p.sched)
}

// resolveSIDLayout picks the effective second/third SID addresses
// (config wins, falling back to the tune's own declared hint) and the
// per-socket chip model (config's ForceSIDModel wins; otherwise the
// tune's hint when it names a concrete model).
func (p *Player) resolveSIDLayout(info *tune.Info) (numSIDs int, secondBase, thirdBase uint16, modelFor [3]sid.Model) {
	secondBase = p.cfg.SecondSIDAddress
	if secondBase == 0 && info.SIDChipBase2 != 0 {
		secondBase = info.SIDChipBase2
	}
	thirdBase = p.cfg.ThirdSIDAddress

	numSIDs = 1
	if secondBase != 0 {
		numSIDs = 2
	}
	if thirdBase != 0 {
		numSIDs = 3
	}

	for i := range modelFor {
		modelFor[i] = p.cfg.DefaultSIDModel
	}
	if !p.cfg.ForceSIDModel {
		if m, ok := tuneModel(info.SIDModel1); ok {
			modelFor[0] = m
		}
		if m, ok := tuneModel(info.SIDModel2); ok {
			modelFor[1] = m
			modelFor[2] = m
		}
	}
	return
}

// tuneModel translates a tune's declared SID-model hint into a concrete
// sid.Model, reporting ok=false for hints that don't name one chip.
func tuneModel(hint tune.SIDModel) (sid.Model, bool) {
	switch hint {
	case tune.SIDModel6581:
		return sid.Model6581, true
	case tune.SIDModel8580:
		return sid.Model8580, true
	default:
		return sid.Model6581, false
	}
}

// Load parses raw as a PSID/RSID file, places it in C64 RAM, relocates
// the driver, runs the configured power-on delay, and calls the tune's
// init routine for its start subtune.
func (p *Player) Load(raw []byte) error {
	info, err := tune.Parse(raw)
	if err != nil {
		return err
	}
	return p.loadParsed(info)
}

func (p *Player) loadParsed(info *tune.Info) error {
	if int(info.LoadAddr())+info.C64DataLen() > 0x10000 {
		return ErrTuneTooLarge
	}

	numSIDs, secondBase, thirdBase, modelFor := p.resolveSIDLayout(info)
	p.buildChips(numSIDs, secondBase, thirdBase, modelFor)
	p.cur = info
	p.halted = false
	p.haltError = nil
	p.stopped = false

	info.PlaceInMemory(p.mmu)

	delayCfg := p.cfg.PowerOnDelay
	if delayCfg > 0xFFFF {
		delayCfg = 0xFFFF
	}
	relocInfo, ok := p.reloc.Relocate(p.mmu, info, uint16(delayCfg))
	if !ok {
		return ErrNoFreePage
	}
	p.logger.LogDriver(debug.LogLevelInfo, "relocated", map[string]interface{}{
		"addr": relocInfo.DriverAddr, "delay": relocInfo.PowerOnDelay,
	})

	p.warmUp(uint64(relocInfo.PowerOnDelay) + 8000)

	// The CPU joins the scheduler only now, after the settle period: there
	// is no real driver code at the RESET vector for it to run into before
	// relocation, so warmUp deliberately leaves it out (see warmUp's own
	// comment). From here on callRoutine pauses/resumes it around each
	// synthetic call so it interleaves with CIA/VIC/SID like real hardware
	// for the duration of the call, and sits idle between them.
	p.cpu.AttachScheduler(p.sched)

	p.setCadence(info)

	return p.selectSong(info.CurrentSong())
}

// warmUp advances the CIAs and VIC (but not the CPU) for cycles system
// cycles before init is called, modeling the reference player's
// pre-install settle period without needing a real Kernal cold-start
// routine to execute safely. See DESIGN.md's Open Question on the
// driver stub for why the CPU does not participate here.
func (p *Player) warmUp(cycles uint64) {
	target := p.sched.CurrentTime() + cycles*2
	for p.sched.CurrentTime() < target && !p.sched.Empty() {
		p.sched.Clock()
	}
}

// setCadence derives how often Play must invoke the play routine: once
// per video frame for VBI-paced tunes, once per CIA1 timer-A underflow
// period for CIA-paced tunes.
func (p *Player) setCadence(info *tune.Info) {
	if info.SongSpeed() == driver.SpeedCIA {
		p.cadenceCycles = uint64(p.cia1.TimerALatch()) + 1
	} else {
		p.cadenceCycles = uint64(p.vicc.CyclesPerLine()) * uint64(p.vicc.RasterLines())
	}
	p.cycleInFrame = 0
}

// SelectSong switches to subtune n (1-based) and re-runs init.
func (p *Player) SelectSong(n int) error {
	if p.cur == nil {
		return ErrNoTuneLoaded
	}
	p.cur.SelectSong(n)
	p.setCadence(p.cur)
	return p.selectSong(p.cur.CurrentSong())
}

func (p *Player) selectSong(song int) error {
	a := uint8(song - 1)
	p.playAddr = p.cur.PlayAddr()
	return p.callRoutine(p.cur.InitAddr(), a, nil)
}

// callRoutine invokes a tune routine: it sets up a synthetic return
// address, resumes the CPU's scheduler event and drains the scheduler a
// cycle at a time (interleaving the CPU with CIA, VIC and every SID,
// exactly as playChunk's own loop does) until the routine RTS's back to
// the sentinel, reporting a halt or timeout as an error. sink, when
// non-nil, receives the audio frames produced by chip activity during
// the call, so a periodic play() call contributes sound like any other
// cycle instead of running with output discarded; the one-off init call
// passes a nil sink since it has no destination buffer yet.
//
// There is no real relocated driver code for the CPU to fall into
// between calls (see DESIGN.md), so the CPU is paused again on return,
// leaving CIA/VIC/SID to keep running on their own the rest of the
// time, matching the pre-call behavior exactly.
func (p *Player) callRoutine(addr uint16, aReg uint8, sink *sampleSink) error {
	if addr == 0 {
		return nil
	}
	const sentinel = 0x0003
	retAddr := uint16(sentinel - 1)

	c := p.cpu
	c.A = aReg
	p.mmu.Poke(0x0100|uint16(c.SP), uint8(retAddr>>8))
	c.SP--
	p.mmu.Poke(0x0100|uint16(c.SP), uint8(retAddr))
	c.SP--
	c.PC = addr

	// A level CIA/VIC already latched before this call must not be
	// serviced against the forced PC: that would push addr itself as a
	// bogus return address before the routine's first real instruction
	// runs.
	c.SuppressPendingInterrupt()
	c.Resume()

	for i := 0; i < maxCallSteps; i++ {
		if c.PC == sentinel {
			c.Pause()
			return nil
		}
		if err := p.tickCycle(sink); err != nil {
			c.Pause()
			return err
		}
	}
	c.Pause()
	return ErrCallTimeout
}

// Stop marks the player so the next Play call returns immediately.
func (p *Player) Stop() { p.stopped = true }

// Resume clears a prior Stop.
func (p *Player) Resume() { p.stopped = false }

// Mute silences (or unsilences) one voice of one SID, 0-based indices.
func (p *Player) Mute(sidIndex, voice int, enable bool) {
	if sidIndex < 0 || sidIndex >= len(p.units) {
		return
	}
	p.units[sidIndex].chip.SetVoiceMute(voice, enable)
}

// Filter toggles the analog filter stage of one SID.
func (p *Player) Filter(sidIndex int, enabled bool) {
	if sidIndex < 0 || sidIndex >= len(p.units) {
		return
	}
	p.units[sidIndex].chip.SetFilterEnabled(enabled)
}

// SetFastForward adjusts the mixer's boxcar-average ratio (1 = no
// effect, up to 32 source samples averaged into one output sample).
func (p *Player) SetFastForward(n int) error {
	if !p.mix.SetFastForward(n) {
		return ErrFastForwardRange
	}
	p.cfg.FastForward = n
	p.ffPending = 0
	return nil
}

// TimeMs reports elapsed emulated playback time.
func (p *Player) TimeMs() float64 { return p.sampleTime }

// GetSidStatus copies sidIndex's 32-byte register shadow into out.
func (p *Player) GetSidStatus(sidIndex int, out *[32]uint8) {
	if sidIndex < 0 || sidIndex >= len(p.units) {
		return
	}
	*out = p.units[sidIndex].chip.Registers()
}

// Logger returns the façade's component-tagged diagnostic logger, for
// callers that want to dump chip state (debug.Logger.DumpState) or
// read back recent trace entries.
func (p *Player) Logger() *debug.Logger { return p.logger }

// frameWidth is how many int16 slots one mixed sample occupies: 1 in
// mono, 2 (L/R) in stereo.
func (p *Player) frameWidth() int {
	if p.cfg.Playback == PlaybackStereo {
		return 2
	}
	return 1
}

// Play advances the emulation and writes up to length mixed samples
// into buf (interleaved L/R if stereo), stopping early on a CPU halt.
// It returns the number of samples actually produced.
func (p *Player) Play(buf []int16, length int) (int, error) {
	if p.cur == nil {
		return 0, ErrNoTuneLoaded
	}
	produced := 0
	width := p.frameWidth()

	for produced < length {
		if p.stopped || p.halted {
			break
		}
		n, err := p.playChunk(buf[produced*width:], length-produced, 20000)
		produced += n
		if err != nil {
			return produced, err
		}
		if n == 0 {
			break // no progress possible (e.g. empty mixer); avoid spinning
		}
	}
	return produced, nil
}

// sampleSink is the bounded output window callRoutine and playChunk's own
// per-cycle tick share, so a tune's init/play execution counts toward
// the same sample budget as every other system cycle instead of running
// with its output discarded.
type sampleSink struct {
	out      []int16
	width    int
	limit    int
	produced int
}

func (s *sampleSink) emit(frame mixer.Frame) {
	if s.produced >= s.limit {
		return
	}
	base := s.produced * s.width
	s.out[base] = frame.Left
	if s.width == 2 {
		s.out[base+1] = frame.Right
	}
	s.produced++
}

// advanceOneCycle drains exactly one whole system cycle's worth of
// scheduler events: CIA1, CIA2 and VIC's Phi1 events, always due every
// cycle, plus the CPU's Phi2 event when its current instruction's cycle
// budget lands inside this cycle (it won't on every call, since one
// 6510 instruction spans several cycles; it won't at all while the CPU
// is Paused between synthetic routine calls).
func (p *Player) advanceOneCycle() {
	target := p.sched.CurrentTime() + 2
	for i := 0; i < 3; i++ {
		p.sched.Clock()
	}
	if t, ok := p.cpu.NextEventTime(); ok && t < target {
		p.sched.Clock()
	}
}

// tickCycle advances every chip by one system cycle and, once
// cfg.FastForward ready cycles have accumulated, mixes and emits one
// frame into sink (silently dropping the mix when sink is nil, e.g.
// during the one-off init call that has no destination buffer).
func (p *Player) tickCycle(sink *sampleSink) error {
	p.advanceOneCycle()
	if p.cpu.Halted() {
		err := cpu6510.HaltError{Opcode: p.cpu.HaltOpcode(), PC: p.cpu.PC}
		p.halted = true
		p.haltError = err
		return err
	}

	ready := false
	for _, u := range p.units {
		sample := u.chip.Clock()
		if u.res.Input(sample) {
			if sink != nil {
				u.push(u.res.Output())
			}
			ready = true
		}
	}
	p.mmu.Tick(1)

	if ready && sink != nil {
		p.ffPending++
		if p.ffPending >= p.cfg.FastForward {
			sink.emit(p.mix.Mix())
			p.ffPending = 0
		}
	}
	return nil
}

// playChunk runs at most maxCycles system cycles (spec.md §5's ~20000
// per-call cap) or until outSamples is full, whichever comes first. The
// scheduler drives the CPU, both CIAs, the VIC and every SID in
// lock-step each cycle, the play() routine included, matching how the
// real hardware interleaves them.
func (p *Player) playChunk(out []int16, outSamples int, maxCycles uint64) (int, error) {
	sink := &sampleSink{out: out, width: p.frameWidth(), limit: outSamples}
	var cyclesRun uint64

	for cyclesRun < maxCycles && sink.produced < outSamples {
		if p.cycleInFrame == 0 {
			if err := p.callRoutine(p.playAddr, 0, sink); err != nil {
				return sink.produced, err
			}
		}

		if err := p.tickCycle(sink); err != nil {
			return sink.produced, err
		}
		cyclesRun++
		p.cycleInFrame++
		if p.cycleInFrame >= p.cadenceCycles {
			p.cycleInFrame = 0
		}
	}

	p.sampleTime += float64(sink.produced) * 1000.0 / float64(p.cfg.Frequency)
	return sink.produced, nil
}

// Halted reports whether the CPU is frozen on an illegal opcode; the
// player must be reloaded to recover.
func (p *Player) Halted() bool { return p.halted }

// HaltError returns the error that froze the CPU, if any.
func (p *Player) HaltError() error { return p.haltError }

// CurrentTune exposes the loaded tune's metadata, or nil if none.
func (p *Player) CurrentTune() *tune.Info { return p.cur }

// String renders a short human-readable summary, for CLI status lines.
func (p *Player) String() string {
	if p.cur == nil {
		return "sidcore player: no tune loaded"
	}
	return fmt.Sprintf("sidcore player: %q by %s (song %d/%d)", p.cur.Name, p.cur.Author, p.cur.CurrentSong(), p.cur.Songs)
}

// FormatStatus renders a locale-aware status block for the CLI's
// -status flag: tune title, current song, and elapsed playback time
// with the host locale's grouping/decimal conventions.
func (p *Player) FormatStatus(tag language.Tag) string {
	printer := message.NewPrinter(tag)
	if p.cur == nil {
		return printer.Sprintf("no tune loaded")
	}
	return printer.Sprintf("%q by %s — song %d of %d, %.1f ms elapsed",
		p.cur.Name, p.cur.Author, p.cur.CurrentSong(), p.cur.Songs, p.sampleTime)
}
