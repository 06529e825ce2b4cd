package resample

// ZeroOrderResampler linearly interpolates between the two input
// samples nearest each output tick. Cheap and adequate when the
// output rate is close to the input rate, but it aliases badly at
// typical 1MHz-to-44.1kHz ratios; SincResampler should be preferred
// for anything destined for a speaker.
type ZeroOrderResampler struct {
	cachedSample float64
	cyclesPerSample int
	sampleOffset    int
	outputValue     float64
}

// NewZeroOrderResampler builds a resampler going from clockFrequency
// (Hz, the SID's system clock) down to samplingFrequency (Hz).
func NewZeroOrderResampler(clockFrequency, samplingFrequency float64) *ZeroOrderResampler {
	return &ZeroOrderResampler{
		cyclesPerSample: int(clockFrequency / samplingFrequency * 1024.0),
	}
}

func (r *ZeroOrderResampler) Input(sample float64) bool {
	ready := false
	if r.sampleOffset < 1024 {
		r.outputValue = r.cachedSample + float64(r.sampleOffset)*(sample-r.cachedSample)/1024.0
		ready = true
		r.sampleOffset += r.cyclesPerSample
	}
	r.sampleOffset -= 1024
	r.cachedSample = sample
	return ready
}

func (r *ZeroOrderResampler) Output() float64 { return r.outputValue }

func (r *ZeroOrderResampler) Reset() {
	r.sampleOffset = 0
	r.cachedSample = 0
}
