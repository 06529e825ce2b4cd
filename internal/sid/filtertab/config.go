package filtertab

import "math"

// Config holds one chip model's derived filter constants: the cutoff
// DAC ladder, the snake/VCR transistor models, and the op-amp solver
// each integrator shares.
type Config struct {
	CutoffDAC *Dac
	Snake     Transistor
	VCR       Transistor
	Vddt      float64
	opamp     *OpAmp
	linear    *LinearOpAmp
}

// New6581Config builds the 6581's non-linear filter model: an 11-bit
// non-terminated cutoff DAC feeding an EKV-solved VCR integrator.
func New6581Config() *Config {
	const vdd = 12.18
	const vth = 1.31
	const ut = 0.026
	const k = 0.7

	c := &Config{
		CutoffDAC: NewDac(11, true),
		Snake:     Transistor{Vdd: vdd, Vth: vth, Ut: ut, K: k, Is: 1e-8},
		VCR:       Transistor{Vdd: vdd, Vth: vth, Ut: ut, K: k, Is: 1e-8},
		Vddt:      k * (vdd - vth),
	}
	c.opamp = NewOpAmp(0, vdd, func(x float64) (float64, float64) {
		vo, dvo := c.transferCurve(x)
		return vo, dvo
	})
	return c
}

// New8580Config builds the 8580's linear filter model: a terminated,
// perfectly linear cutoff DAC and a fixed-gain op-amp needing no
// iterative solve.
func New8580Config() *Config {
	return &Config{
		CutoffDAC: NewDac(11, false),
		linear:    &LinearOpAmp{Gain: 1.0},
	}
}

// transferCurve approximates the measured op-amp output/slope used by
// Solve, built from the snake transistor's EKV current rather than a
// table of measured voltages (no such measurements are available here;
// the functional form is identical to the hardware equation).
func (c *Config) transferCurve(vx float64) (vo, dvo float64) {
	i := c.Snake.current(vx, 0, c.Vddt)
	vo = c.Vddt - math.Sqrt(math.Abs(i)/c.Snake.Is)
	const h = 1e-4
	iHi := c.Snake.current(vx+h, 0, c.Vddt)
	voHi := c.Vddt - math.Sqrt(math.Abs(iHi)/c.Snake.Is)
	dvo = (voHi - vo) / h
	return
}

// Integrate solves one cycle of a single SVF integrator stage for input
// voltage vi, returning the new capacitor voltage. x0 seeds Newton's
// method with the previous solution.
func (c *Config) Integrate(n, vi, x0 float64) float64 {
	if c.opamp == nil {
		return c.linear.Evaluate(vi)
	}
	return c.opamp.Solve(n, c.Vddt, vi, x0)
}

// CutoffVoltage maps an 11-bit FC register value to a normalized (0..1)
// ladder voltage via the model's cutoff DAC.
func (c *Config) CutoffVoltage(fc uint32) float64 {
	return c.CutoffDAC.Output(fc, false)
}
