package sid

// FastChip is the cheap SID back end: the same accumulator waveform
// generators and ADSR envelopes as SID, but it skips the two-integrator
// filter solve entirely and sums voices straight to the output, the
// same "digital sum, no analog stage" shortcut the reference player's
// fast-sampling path takes when cycle budget matters more than filter
// fidelity (see _examples/IntuitionAmiga-IntuitionEngine/sid_engine.go,
// which always mixes through a gain table rather than solving a filter
// network). Register decode and voice/envelope behavior stay identical
// to SID so replacing one with the other never changes what a tune
// sounds like harmonically, only whether cutoff/resonance are audible.
type FastChip struct {
	voices [3]voice

	volume uint8

	lastWritten uint8
	regs        [32]uint8

	prevMSB [3]bool
}

// NewFast creates a FastChip; model has no effect, since there is no
// filter stage and the shared waveform generator does not vary by model.
func NewFast(model Model) *FastChip {
	c := &FastChip{}
	for i := range c.voices {
		c.voices[i] = *newVoice()
	}
	return c
}

// Peek mirrors SID.Peek's write-only-register floating-bus behavior.
func (c *FastChip) Peek(addr uint16) uint8 {
	switch addr {
	case regOsc3:
		return uint8(c.voices[2].wave.accum >> 16)
	case regEnv3:
		return c.voices[2].env.Output()
	case regPotX, regPotY:
		return 0xFF
	default:
		return c.lastWritten
	}
}

// Poke writes one SID register (addr already reduced to 0-0x1F). The
// filter/resonance registers decode only as far as volume; cutoff,
// resonance and routing are accepted (so tunes that write them don't
// misbehave) but have no effect on the output.
func (c *FastChip) Poke(addr uint16, val uint8) {
	c.lastWritten = val
	if addr < uint16(len(c.regs)) {
		c.regs[addr] = val
	}

	if addr < 0x15 {
		voiceIdx := addr / 7
		reg := addr % 7
		v := &c.voices[voiceIdx]
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

	if addr == regModeVol {
		c.volume = val & 0x0F
	}
}

// Clock advances all three voices and returns their unfiltered sum.
func (c *FastChip) Clock() float64 {
	source := [3]int{2, 0, 1}
	var sourceEdge [3]bool
	for i := 0; i < 3; i++ {
		src := source[i]
		sourceEdge[i] = !c.prevMSB[src] && c.voices[src].wave.msb()
	}

	for i := range c.voices {
		c.voices[i].Clock(sourceEdge[i])
	}

	var sum float64
	for i := range c.voices {
		sum += c.voices[i].Output(c.prevMSB[source[i]])
	}

	for i := range c.voices {
		c.prevMSB[i] = c.voices[i].wave.msb()
	}

	return sum * float64(c.volume) / 15.0
}

// SetVoiceMute silences one voice (0-2); see SID.SetVoiceMute.
func (c *FastChip) SetVoiceMute(voice int, mute bool) {
	if voice < 0 || voice >= len(c.voices) {
		return
	}
	c.voices[voice].muted = mute
}

// SetFilterEnabled is a no-op: FastChip never filters. Kept so it
// satisfies Chip alongside SID.
func (c *FastChip) SetFilterEnabled(enabled bool) {}

// Registers returns a snapshot of every register byte last written.
func (c *FastChip) Registers() [32]uint8 { return c.regs }
