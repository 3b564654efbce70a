package audio

import "github.com/picodsp/picoedit/src/protocol"

// ----- Fast LFO ----- //

// fastLfo is a phase-accumulator oscillator for control signals. The sine
// shape is a parabolic approximation, not a trig call. Output is remapped
// from -1..1 into the configured [min, max] window.
type fastLfo struct {
	freq       float64
	wave       protocol.LfoWaveform
	min, max   float64
	phase      float64
	sampleRate float64
}

func newFastLfo(freq float64, wave protocol.LfoWaveform, sampleRate float64) *fastLfo {
	return &fastLfo{
		freq:       freq,
		wave:       wave,
		min:        -1,
		max:        1,
		sampleRate: sampleRate,
	}
}

func (l *fastLfo) setRange(min, max float64) {
	l.min = min
	l.max = max
}

func (l *fastLfo) process(buf []float64) {
	inc := l.freq / l.sampleRate
	scale := (l.max - l.min) * 0.5

	for i := range buf {
		l.phase += inc
		if l.phase >= 1 {
			l.phase -= 1
		}

		var raw float64
		switch l.wave {
		case protocol.LfoSine:
			t := l.phase*2 - 1
			if t < 0 {
				t = -t
			}
			t = 2*t - 1
			raw = t * (1.5 - 0.5*t*t)
		case protocol.LfoSaw:
			raw = 2*l.phase - 1
		case protocol.LfoSquare:
			if l.phase < 0.5 {
				raw = 1
			} else {
				raw = -1
			}
		default: // triangle
			t := l.phase*2 - 1
			if t < 0 {
				t = -t
			}
			raw = 2*t - 1
		}

		buf[i] = l.min + (raw+1)*scale
	}
}

func (l *fastLfo) reset() {
	l.phase = 0
}

// setSampleRate takes effect on the next process call; the phase is left
// uncorrected.
func (l *fastLfo) setSampleRate(sr float64) {
	l.sampleRate = sr
}
