package resample

import "math"

// ringSize must be a power of two comfortably larger than the longest
// FIR filter this package will ever build (order stays under ~150 for
// any sane clock/sample-rate ratio).
const ringSize = 4096

// firResolutionBits is how many fractional bits of the cycles-per-
// sample ratio are tracked between output ticks.
const firResolutionBits = 10

// SincResampler band-limits the input with a Kaiser-windowed sinc FIR
// before decimating, the same two-stage design (dual FIR tables
// linearly cross-faded between phases) used to avoid both aliasing
// and rebuilding a fresh filter per output sample.
type SincResampler struct {
	cyclesPerSample int

	firN   int // filter length, always odd
	firRES int // number of phase-interpolated FIR tables
	firTable [][]float64

	sample      [2 * ringSize]float64
	sampleIndex int

	sampleOffset int
	outputValue  float64
}

// besselI0 computes the 0th order modified Bessel function of the
// first kind, used to build the Kaiser window.
func besselI0(x float64) float64 {
	const eps = 1e-6
	sum := 1.0
	u := 1.0
	n := 1.0
	halfx := x / 2.0
	for {
		term := halfx / n
		u *= term * term
		sum += u
		n += 1.0
		if u < eps*sum {
			break
		}
	}
	return sum
}

// NewSincResampler builds a resampler from clockFrequency (Hz) down to
// samplingFrequency (Hz), passing frequencies up to highestAccurateFrequency
// through with under -96dB stopband attenuation (16-bit quality).
func NewSincResampler(clockFrequency, samplingFrequency, highestAccurateFrequency float64) *SincResampler {
	r := &SincResampler{
		cyclesPerSample: int(clockFrequency / samplingFrequency * 1024.0),
	}

	const bits = 16
	A := -20.0 * math.Log10(1.0/float64(int(1)<<bits))
	dw := (1.0 - 2.0*highestAccurateFrequency/samplingFrequency) * math.Pi * 2.0

	beta := 0.1102 * (A - 8.7)
	i0beta := besselI0(beta)
	cyclesPerSampleD := clockFrequency / samplingFrequency
	invCyclesPerSampleD := samplingFrequency / clockFrequency

	n := int((A-7.95)/(2.285*dw) + 0.5)
	n += n & 1

	firN := int(float64(n)*cyclesPerSampleD) + 1
	firN |= 1
	if firN >= ringSize {
		firN = ringSize - 1 | 1
	}
	r.firN = firN

	r.firRES = int(math.Ceil(math.Sqrt(1.234*float64(int(1)<<bits)) * invCyclesPerSampleD))
	if r.firRES < 1 {
		r.firRES = 1
	}

	r.firTable = make([][]float64, r.firRES)

	const wc = math.Pi
	scale := wc * invCyclesPerSampleD / math.Pi

	firN2 := float64(firN / 2)

	for i := 0; i < r.firRES; i++ {
		row := make([]float64, firN)
		jPhase := float64(i)/float64(r.firRES) + firN2

		for j := 0; j < firN; j++ {
			x := float64(j) - jPhase

			xt := x / firN2
			kaiser := 0.0
			if math.Abs(xt) < 1.0 {
				kaiser = besselI0(beta*math.Sqrt(1.0-xt*xt)) / i0beta
			}

			wt := wc * x * invCyclesPerSampleD
			sinc := 1.0
			if math.Abs(wt) >= 1e-8 {
				sinc = math.Sin(wt) / wt
			}

			row[j] = scale * sinc * kaiser
		}
		r.firTable[i] = row
	}

	return r
}

func convolve(a []float64, b []float64) float64 {
	var out float64
	for i, bv := range b {
		out += a[i] * bv
	}
	return out
}

func (r *SincResampler) fir(subcycle int) float64 {
	firTableFirst := (subcycle * r.firRES) >> firResolutionBits
	firTableOffset := (subcycle * r.firRES) & ((1 << firResolutionBits) - 1)

	sampleStart := r.sampleIndex - r.firN + ringSize - 1

	v1 := convolve(r.sample[sampleStart:], r.firTable[firTableFirst])

	firTableFirst++
	if firTableFirst == r.firRES {
		firTableFirst = 0
		sampleStart++
	}

	v2 := convolve(r.sample[sampleStart:], r.firTable[firTableFirst])

	return v1 + float64(firTableOffset)*(v2-v1)/float64(int(1)<<firResolutionBits)
}

func (r *SincResampler) Input(sample float64) bool {
	ready := false

	r.sample[r.sampleIndex] = sample
	r.sample[r.sampleIndex+ringSize] = sample
	r.sampleIndex = (r.sampleIndex + 1) & (ringSize - 1)

	if r.sampleOffset < 1024 {
		r.outputValue = r.fir(r.sampleOffset)
		ready = true
		r.sampleOffset += r.cyclesPerSample
	}
	r.sampleOffset -= 1024

	return ready
}

func (r *SincResampler) Output() float64 { return r.outputValue }

func (r *SincResampler) Reset() {
	for i := range r.sample {
		r.sample[i] = 0
	}
	r.sampleOffset = 0
}
