// Package sid implements the MOS 6581/8580 SID signal core: three
// accumulator-driven voices with hardware ADSR envelopes, and the
// analog state-variable filter solved against the EKV transistor model.
package sid

// Model selects the chip variant, which fixes the filter's model (the
// 6581's non-linear integrators or the 8580's linear ones). The waveform
// generator and the voice DAC are the same for both models, so combined
// waveforms and DAC non-linearity do not differ by model.
type Model int

const (
	Model6581 Model = iota
	Model8580
)

// Voice register offsets within one voice's 7-byte block.
const (
	regFreqLo = iota
	regFreqHi
	regPWLo
	regPWHi
	regControl
	regAD
	regSR
)

const (
	regFCLo     = 0x15
	regFCHi     = 0x16
	regResRoute = 0x17
	regModeVol  = 0x18
	regPotX     = 0x19
	regPotY     = 0x1A
	regOsc3     = 0x1B
	regEnv3     = 0x1C
)

// Chip is satisfied by both the full analog-filtered SID and the
// cheaper digital-sum FastChip, so a caller holding either back end can
// be driven, muted, and filtered through one interface.
type Chip interface {
	Peek(addr uint16) uint8
	Poke(addr uint16, val uint8)
	Clock() float64
	SetVoiceMute(voice int, mute bool)
	SetFilterEnabled(enabled bool)
	Registers() [32]uint8
}

// SID is one chip instance.
type SID struct {
	model  Model
	voices [3]voice
	filt   *filter

	lastWritten uint8    // floating-bus value for write-only register reads
	regs        [32]uint8 // shadow of every byte last written, for status display

	prevMSB [3]bool // each voice's accumulator MSB as of the previous cycle
}

// New creates a SID of the given model with all three voices silent.
func New(model Model) *SID {
	s := &SID{model: model, filt: newFilter(model)}
	for i := range s.voices {
		s.voices[i] = *newVoice()
	}
	return s
}

// Peek reads one SID register (addr already reduced to 0-0x1F). Only
// the OSC3/ENV3 live-readback registers and potentiometer inputs are
// genuinely readable; everything else floats to the last value written
// to the bus, matching the real chip's write-only register behavior.
func (s *SID) Peek(addr uint16) uint8 {
	switch addr {
	case regOsc3:
		return uint8(s.voices[2].wave.accum >> 16)
	case regEnv3:
		return s.voices[2].env.Output()
	case regPotX, regPotY:
		return 0xFF // no paddle connected
	default:
		return s.lastWritten
	}
}

// Poke writes one SID register (addr already reduced to 0-0x1F).
func (s *SID) Poke(addr uint16, val uint8) {
	s.lastWritten = val
	if addr < uint16(len(s.regs)) {
		s.regs[addr] = val
	}

	if addr < 0x15 {
		voiceIdx := addr / 7
		reg := addr % 7
		v := &s.voices[voiceIdx]
		switch reg {
		case regFreqLo:
			v.writeFreqLo(val)
		case regFreqHi:
			v.writeFreqHi(val)
		case regPWLo:
			v.writePWLo(val)
		case regPWHi:
			v.writePWHi(val)
		case regControl:
			v.writeControl(val)
		case regAD:
			v.writeAD(val)
		case regSR:
			v.writeSR(val)
		}
		return
	}

	switch addr {
	case regFCLo:
		s.filt.writeFCLo(val)
	case regFCHi:
		s.filt.writeFCHi(val)
	case regResRoute:
		s.filt.writeResRoute(val)
	case regModeVol:
		s.filt.writeModeVol(val)
	}
}

// Clock advances every voice and the filter by one system cycle and
// returns the chip's signed sample for that cycle, scaled to roughly
// [-1,1] before the mixer's DAC/dither stage quantizes it to 16 bits.
// Sync/ring-mod source edges are evaluated one cycle delayed (against
// the source's MSB as of the previous cycle), which keeps all three
// voices' accumulators advancing independently within a single pass.
func (s *SID) Clock() float64 {
	source := [3]int{2, 0, 1} // voice i's sync/ring source is i-1, wrapping
	var sourceEdge [3]bool
	for i := 0; i < 3; i++ {
		src := source[i]
		sourceEdge[i] = !s.prevMSB[src] && s.voices[src].wave.msb()
	}

	for i := range s.voices {
		s.voices[i].Clock(sourceEdge[i])
	}

	var out [3]float64
	for i := range s.voices {
		out[i] = s.voices[i].Output(s.prevMSB[source[i]])
	}
	if s.filt.voice3Muted {
		out[2] = 0
	}

	for i := range s.voices {
		s.prevMSB[i] = s.voices[i].wave.msb()
	}

	filtered, bypass := s.filt.Clock(out)
	volumeScale := float64(s.filt.volume) / 15.0
	return (filtered + bypass) * volumeScale
}

// SetVoiceMute silences one voice (0-2) at the DAC output, leaving its
// oscillator and envelope running so OSC3/ENV3 readback is unaffected.
func (s *SID) SetVoiceMute(voice int, mute bool) {
	if voice < 0 || voice >= len(s.voices) {
		return
	}
	s.voices[voice].muted = mute
}

// SetFilterEnabled toggles the analog filter stage.
func (s *SID) SetFilterEnabled(enabled bool) { s.filt.SetEnabled(enabled) }

// Registers returns a snapshot of every register byte last written,
// for status displays; write-only registers read back here even
// though Peek cannot return them.
func (s *SID) Registers() [32]uint8 { return s.regs }
