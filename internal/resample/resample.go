// Package resample converts the SID core's per-system-cycle sample
// stream down to a fixed output sampling rate, the same two-stage
// choice (cheap linear interpolation vs. a windowed-sinc FIR) offered
// by the chip emulator it downsamples.
package resample

// Resampler accepts one input sample per system cycle and reports
// when a resampled output sample became available.
type Resampler interface {
	// Input feeds one cycle's sample in. It returns true when Output
	// now holds a freshly produced sample for the target rate.
	Input(sample float64) bool

	// Output returns the most recently produced resampled sample.
	Output() float64

	// Reset clears all buffered history.
	Reset()
}
