package audio

import "math"

// ----- ADSR ----- //

const (
	phaseIdle = iota
	phaseAttack
	phaseDecay
	phaseSustain
	phaseRelease
)

// adsr is a gate-driven envelope. The gate cell is sampled once per block;
// commands only arrive at block boundaries so transitions cannot happen
// mid-block. Times are read from live cells in seconds. Attack is linear,
// decay and release are exponential approaches that snap near the target.
type adsr struct {
	gate    *sharedValue
	attack  *sharedValue
	decay   *sharedValue
	sustain *sharedValue
	release *sharedValue

	phase      int
	value      float64
	gateWas    bool
	sampleRate float64
}

func newAdsr(gate, attack, decay, sustain, release *sharedValue, sampleRate float64) *adsr {
	return &adsr{
		gate:       gate,
		attack:     attack,
		decay:      decay,
		sustain:    sustain,
		release:    release,
		sampleRate: sampleRate,
	}
}

func (a *adsr) process(buf []float64) {
	gateOn := a.gate.get() > 0.5
	if gateOn && !a.gateWas {
		a.phase = phaseAttack
	} else if !gateOn && a.gateWas {
		a.phase = phaseRelease
	}
	a.gateWas = gateOn

	attack := a.attack.get()
	decay := a.decay.get()
	sustain := a.sustain.get()
	release := a.release.get()
	dt := 1 / a.sampleRate

	for i := range buf {
		switch a.phase {
		case phaseAttack:
			if attack <= 0 {
				a.value = 1
			} else {
				a.value += dt / attack
			}
			if a.value >= 1 {
				a.value = 1
				a.phase = phaseDecay
			}
		case phaseDecay:
			if decay <= 0 {
				a.value = sustain
			} else {
				a.value = stepTowards(a.value, sustain, dt/decay)
			}
			if math.Abs(a.value-sustain) < 0.001 {
				a.value = sustain
				a.phase = phaseSustain
			}
		case phaseSustain:
			a.value = sustain
		case phaseRelease:
			if release <= 0 {
				a.value = 0
			} else {
				a.value = stepTowards(a.value, 0, dt/release)
			}
			if a.value < 0.001 {
				a.value = 0
				a.phase = phaseIdle
			}
		default:
			a.value = 0
		}
		buf[i] = a.value
	}
}

// 63% closer to target when pos accumulates to 1.0
func stepTowards(value, target, pos float64) float64 {
	return target + (value-target)*math.Exp(-pos)
}

func (a *adsr) reset() {
	a.phase = phaseIdle
	a.value = 0
	a.gateWas = false
}

func (a *adsr) setSampleRate(sr float64) {
	a.sampleRate = sr
}
