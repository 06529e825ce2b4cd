// Package filtertab holds the parts the SID filter's analog model is
// solved against: the R-2R ladder DAC, whose weight table is precomputed,
// that turns an 11-bit cutoff/volume code into a normalized voltage, and
// the op-amp transfer curve, evaluated on each call from the EKV
// transistor equation and solved via Newton-Raphson.
package filtertab

// MOSFET subthreshold leakage per chip model, applied to bits that are
// nominally "off" in the R-2R ladder.
const (
	leakage6581 = 0.0075
	leakage8580 = 0.0035
)

// Dac models one R-2R resistor ladder DAC of the given bit width.
type Dac struct {
	weights []float64
	leakage float64
}

// NewDac builds the ladder weight table for bits-wide DAC. nonlinear
// selects the 6581's non-terminated, non-2R ladder; the 8580 ladder is
// perfectly linear and terminated.
func NewDac(bits int, nonlinear bool) *Dac {
	d := &Dac{weights: make([]float64, bits)}

	const rInfinity = 1e6
	ratio := 2.00
	terminated := true
	d.leakage = leakage8580
	if nonlinear {
		ratio = 2.20
		terminated = false
		d.leakage = leakage6581
	}

	sum := 0.0
	for setBit := 0; setBit < bits; setBit++ {
		vn := 1.0
		r := 1.0
		twoR := ratio * r
		rn := rInfinity
		if terminated {
			rn = twoR
		}

		bit := 0
		for ; bit < setBit; bit++ {
			if rn == rInfinity {
				rn = r + twoR
			} else {
				rn = r + (twoR*rn)/(twoR+rn)
			}
		}

		if rn == rInfinity {
			rn = twoR
		} else {
			rn = (twoR * rn) / (twoR + rn)
			vn = vn * rn / twoR
		}

		for bit++; bit < bits; bit++ {
			rn += r
			i := vn / rn
			rn = (twoR * rn) / (twoR + rn)
			vn = rn * i
		}

		d.weights[setBit] = vn
		sum += vn
	}

	for i := range d.weights {
		d.weights[i] /= sum
	}

	return d
}

// Output returns the normalized (0..1) ladder voltage for the given
// input code. When saturate is set, a cubic term approximates the
// 6581 waveform DAC's measured output-stage saturation.
func (d *Dac) Output(input uint32, saturate bool) float64 {
	value := 0.0
	for i, w := range d.weights {
		if input&(1<<uint(i)) != 0 {
			value += w
		} else {
			value += w * d.leakage
		}
	}
	if saturate {
		const gain = 1.1
		const sat = 1.1
		value = gain*value + (1-gain)*sat*value*value*value
	}
	return value
}
