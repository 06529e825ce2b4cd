package sid

import "testing"

func TestSawtoothRampsWithAccumulator(t *testing.T) {
	s := New(Model8580)
	s.Poke(0, 0xFF) // freq lo, voice 0
	s.Poke(1, 0x0F) // freq hi
	s.Poke(4, waveSawtooth|0x01) // gate on, sawtooth selected

	first := s.voices[0].wave.accum
	s.Clock()
	second := s.voices[0].wave.accum
	if second <= first {
		t.Errorf("accumulator must increase each cycle, got %d -> %d", first, second)
	}
}

func TestTestBitHoldsAccumulatorAtZero(t *testing.T) {
	s := New(Model8580)
	s.Poke(0, 0xFF)
	s.Poke(1, 0x0F)
	s.Poke(4, waveSawtooth|0x08) // test bit set

	for i := 0; i < 5; i++ {
		s.Clock()
	}
	if s.voices[0].wave.accum != 0 {
		t.Errorf("test bit must hold accumulator at zero, got %d", s.voices[0].wave.accum)
	}
}

func TestGateRisingEdgeStartsAttack(t *testing.T) {
	s := New(Model8580)
	s.Poke(5, 0xF0) // voice 0 AD: attack=15, decay=0
	s.Poke(4, waveTriangle|0x01)

	if s.voices[0].env.state != stateAttack {
		t.Fatal("gate-on must move envelope into ATTACK")
	}
}

func TestGateFallingEdgeStartsRelease(t *testing.T) {
	s := New(Model8580)
	s.Poke(4, waveTriangle|0x01)
	s.Poke(4, waveTriangle)
	if s.voices[0].env.state != stateRelease {
		t.Error("gate-off must move envelope into RELEASE")
	}
}

func TestEnvelopeCounterStepsOncePerRatePeriod(t *testing.T) {
	e := &envelope{attack: 0, decay: 0, sustain: 0}
	e.writeGate(true)
	period := rateCounterPeriod[0]
	for i := 0; i < int(period)+1; i++ {
		e.Clock()
	}
	if e.Output() != 1 {
		t.Errorf("after one rate period at the fastest attack rate, counter = %d, want 1", e.Output())
	}
}

func TestOsc3ReadsLiveAccumulatorHighByte(t *testing.T) {
	s := New(Model8580)
	s.Poke(0x0E, 0xFF) // voice 2 freq lo
	s.Poke(0x0F, 0xFF) // voice 2 freq hi
	s.Poke(0x12, waveSawtooth|0x01) // voice 2 control

	for i := 0; i < 1000; i++ {
		s.Clock()
	}
	if s.Peek(regOsc3) == 0 {
		t.Error("OSC3 should report a non-zero live accumulator sample once voice 3 is running")
	}
}

func TestFilterRoutingExcludesUnroutedVoices(t *testing.T) {
	s := New(Model8580)
	s.Poke(regResRoute, 0x00) // no voice routed into the filter
	s.Poke(regModeVol, 0x7F) // LP+BP+HP all on, full volume

	if s.filt.voiceRoute != 0 {
		t.Errorf("voiceRoute = %#02x, want 0", s.filt.voiceRoute)
	}
	filtered, unfiltered := s.filt.Clock([3]float64{0.5, 0.5, 0.5})
	if filtered != 0 || unfiltered != 1.5 {
		t.Errorf("filtered/unfiltered = %f/%f, want 0/1.5 with no voice routed", filtered, unfiltered)
	}
}
