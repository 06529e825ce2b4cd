package resample

import "testing"

func TestZeroOrderResamplerProducesFewerSamplesThanInput(t *testing.T) {
	r := NewZeroOrderResampler(985248, 44100)
	produced := 0
	for i := 0; i < 1000; i++ {
		if r.Input(1.0) {
			produced++
		}
	}
	if produced == 0 || produced >= 1000 {
		t.Fatalf("expected decimation, got %d outputs from 1000 inputs", produced)
	}
}

func TestZeroOrderResamplerInterpolatesBetweenSamples(t *testing.T) {
	r := NewZeroOrderResampler(2000, 1000) // 2 cycles per output sample
	r.Input(0.0)
	r.Input(1.0)
	got := r.Output()
	if got < 0 || got > 1 {
		t.Errorf("interpolated output %f should lie between the two input samples", got)
	}
}

func TestZeroOrderResamplerResetClearsHistory(t *testing.T) {
	r := NewZeroOrderResampler(985248, 44100)
	r.Input(1.0)
	r.Reset()
	if r.cachedSample != 0 || r.sampleOffset != 0 {
		t.Error("Reset must clear cached sample and offset")
	}
}

func TestSincResamplerProducesFewerSamplesThanInput(t *testing.T) {
	r := NewSincResampler(985248, 44100, 20000)
	produced := 0
	for i := 0; i < 2000; i++ {
		if r.Input(1.0) {
			produced++
		}
	}
	if produced == 0 || produced >= 2000 {
		t.Fatalf("expected decimation, got %d outputs from 2000 inputs", produced)
	}
}

func TestSincResamplerSettlesOnConstantInput(t *testing.T) {
	r := NewSincResampler(985248, 44100, 20000)
	var last float64
	for i := 0; i < 5000; i++ {
		if r.Input(0.5) {
			last = r.Output()
		}
	}
	if last < 0.3 || last > 0.7 {
		t.Errorf("a steady-state DC input should converge near its value, got %f", last)
	}
}

func TestSincResamplerFIRTableIsOddLength(t *testing.T) {
	r := NewSincResampler(985248, 44100, 20000)
	if r.firN%2 != 1 {
		t.Errorf("FIR length must be odd, got %d", r.firN)
	}
}
