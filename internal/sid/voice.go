package sid

// voice couples one oscillator to its envelope generator. DAC output
// combines the 12-bit waveform with the 8-bit envelope level, matching
// the real chip's multiplying DAC behavior.
type voice struct {
	wave waveform
	env  envelope

	muted bool
}

func newVoice() *voice {
	return &voice{wave: *newWaveform()}
}

func (v *voice) writeFreqLo(val uint8) { v.wave.freq = (v.wave.freq & 0xFF00) | uint16(val) }
func (v *voice) writeFreqHi(val uint8) { v.wave.freq = (v.wave.freq & 0x00FF) | uint16(val)<<8 }
func (v *voice) writePWLo(val uint8)   { v.wave.pw = (v.wave.pw & 0x0F00) | uint16(val) }
func (v *voice) writePWHi(val uint8)   { v.wave.pw = (v.wave.pw & 0x00FF) | uint16(val&0x0F)<<8 }

func (v *voice) writeControl(val uint8) {
	v.wave.ctrl = val
	v.env.writeGate(val&0x01 != 0)
}

func (v *voice) writeAD(val uint8) { v.env.writeAD(val) }
func (v *voice) writeSR(val uint8) { v.env.writeSR(val) }

// Clock advances the oscillator and envelope by one system cycle.
func (v *voice) Clock(syncSourceMSBRisingEdge bool) {
	v.wave.Clock(syncSourceMSBRisingEdge)
	v.env.Clock()
}

// Output returns the voice's signed DAC sample in roughly [-1,1],
// ring-modulation applied against the given source voice MSB. A muted
// voice still clocks its oscillator and envelope (OSC3/ENV3 readback
// stays live) but contributes silence to the mix.
func (v *voice) Output(ringSourceMSB bool) float64 {
	if v.muted {
		return 0
	}
	wave := v.wave.Output(ringSourceMSB)
	env := v.env.Output()
	sample := (int32(wave) - 0x800) * int32(env)
	return float64(sample) / (0x800 * 255)
}
