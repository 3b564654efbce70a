package audio

import "math"

// ----- Filter ----- //

// filter is a resonant biquad lowpass whose cutoff input is a modulation
// chain (live cutoff + envelope + LFO). Coefficients are recomputed every
// 32nd sample from the modulated cutoff and the live resonance; in between
// the last coefficients hold.
type filter struct {
	cutoffMod node
	resonance *sharedValue

	a  [3]float64 // feedforward
	b  [2]float64 // feedback
	z1 float64
	z2 float64

	counter    int
	sampleRate float64
	cutoffBuf  []float64
}

func newFilter(cutoffMod node, resonance *sharedValue, sampleRate float64) *filter {
	f := &filter{
		cutoffMod:  cutoffMod,
		resonance:  resonance,
		sampleRate: sampleRate,
		cutoffBuf:  make([]float64, samplesPerCycle),
	}
	f.updateCoefficients(20000, 0)
	return f
}

func (f *filter) process(buf []float64) {
	cutoff := f.cutoffBuf[:len(buf)]
	f.cutoffMod.process(cutoff)
	res := f.resonance.get()

	for i := range buf {
		if f.counter%glideInterval == 0 {
			f.updateCoefficients(cutoff[i], res)
		}
		f.counter++

		// transposed direct form II
		in := buf[i]
		out := f.a[0]*in + f.z1
		f.z1 = f.a[1]*in - f.b[0]*out + f.z2
		f.z2 = f.a[2]*in - f.b[1]*out
		buf[i] = out
	}
}

// from RBJ's cookbook
func (f *filter) updateCoefficients(cutoff, resonance float64) {
	fc := cutoff / f.sampleRate
	if fc < 0.0005 {
		fc = 0.0005
	}
	if fc > 0.45 {
		fc = 0.45
	}
	q := 0.707 + resonance*9
	w0 := 2 * math.Pi * fc
	alpha := math.Sin(w0) / (2 * q)
	cosw0 := math.Cos(w0)
	b0 := (1 - cosw0) / 2
	b1 := 1 - cosw0
	b2 := (1 - cosw0) / 2
	a0 := 1 + alpha
	a1 := -2 * cosw0
	a2 := 1 - alpha
	f.a[0] = b0 / a0
	f.a[1] = b1 / a0
	f.a[2] = b2 / a0
	f.b[0] = a1 / a0
	f.b[1] = a2 / a0
}

func (f *filter) reset() {
	f.z1 = 0
	f.z2 = 0
	f.counter = 0
	f.cutoffMod.reset()
}

func (f *filter) setSampleRate(sr float64) {
	f.sampleRate = sr
	f.cutoffMod.setSampleRate(sr)
}
