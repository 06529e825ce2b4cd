package mixer

import "testing"

type constSource struct{ v float64 }

func (c constSource) Sample() float64 { return c.v }

func TestMonoSumsAllChips(t *testing.T) {
	m := New()
	m.AddSid(constSource{0.5})
	m.AddSid(constSource{0.5})
	f := m.Mix()
	if f.Left <= 0 {
		t.Errorf("mono mix of two positive chips should be positive, got %d", f.Left)
	}
}

func TestStereoPlacesFirstChipLeftThirdChipRight(t *testing.T) {
	m := New()
	m.SetStereo(true)
	m.AddSid(constSource{1.0})
	m.AddSid(constSource{0.0})
	m.AddSid(constSource{-1.0})
	f := m.Mix()
	if f.Left <= 0 {
		t.Errorf("chip1 should bias left channel positive, got %d", f.Left)
	}
	if f.Right >= 0 {
		t.Errorf("chip3 should bias right channel negative, got %d", f.Right)
	}
}

func TestSingleChipStereoIsIdenticalOnBothChannels(t *testing.T) {
	m := New()
	m.SetStereo(true)
	m.AddSid(constSource{0.25})
	f := m.Mix()
	diff := int(f.Left) - int(f.Right)
	if diff < -2 || diff > 2 {
		t.Errorf("one chip in stereo should sound the same on both channels modulo dither, got L=%d R=%d", f.Left, f.Right)
	}
}

func TestZeroVolumeSilencesOutput(t *testing.T) {
	m := New()
	m.AddSid(constSource{1.0})
	m.SetVolume(0, 0)
	f := m.Mix()
	if f.Left < -1 || f.Left > 1 {
		t.Errorf("zero volume should silence output modulo 1-LSB dither, got %d", f.Left)
	}
}

func TestFastForwardAveragesConsecutiveSamples(t *testing.T) {
	m := New()
	seq := []float64{1.0, -1.0, 1.0, -1.0}
	i := 0
	src := sourceFunc(func() float64 {
		v := seq[i%len(seq)]
		i++
		return v
	})
	m.AddSid(src)
	if !m.SetFastForward(4) {
		t.Fatal("fast-forward factor of 4 should be accepted")
	}
	f := m.Mix()
	if f.Left < -1 || f.Left > 1 {
		t.Errorf("averaging a zero-mean sequence should collapse near zero, got %d", f.Left)
	}
}

func TestFastForwardRejectsOutOfRange(t *testing.T) {
	m := New()
	if m.SetFastForward(0) || m.SetFastForward(33) {
		t.Error("fast-forward factor must be clamped to [1,32]")
	}
}

type sourceFunc func() float64

func (f sourceFunc) Sample() float64 { return f() }
