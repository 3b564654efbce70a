package audio

import (
	"math"
	"math/rand"

	"github.com/picodsp/picoedit/src/protocol"
)

// ----- OSC ----- //

// osc is a per-sample-pitched oscillator. Its frequency input is a node
// (the portamento tap plus octave/detune/vibrato stages) evaluated once per
// block into freqBuf.
type osc struct {
	wave       protocol.Waveform
	pitch      node
	phase      float64
	sampleRate float64
	freqBuf    []float64
}

func newOsc(wave protocol.Waveform, pitch node, sampleRate float64) *osc {
	return &osc{
		wave:       wave,
		pitch:      pitch,
		phase:      rand.Float64(),
		sampleRate: sampleRate,
		freqBuf:    make([]float64, samplesPerCycle),
	}
}

func (o *osc) process(buf []float64) {
	freq := o.freqBuf[:len(buf)]
	o.pitch.process(freq)

	for i := range buf {
		p := o.phase
		switch o.wave {
		case protocol.WaveSine:
			buf[i] = math.Sin(2 * math.Pi * p)
		case protocol.WaveTriangle:
			if p < 0.5 {
				buf[i] = p*4 - 1
			} else {
				buf[i] = p*(-4) + 3
			}
		case protocol.WaveSaw:
			buf[i] = p*2 - 1
		case protocol.WaveSquare:
			if p < 0.5 {
				buf[i] = 1
			} else {
				buf[i] = -1
			}
		default: // noise
			buf[i] = rand.Float64()*2 - 1
		}
		o.phase += freq[i] / o.sampleRate
		_, o.phase = math.Modf(o.phase)
		if o.phase < 0 {
			o.phase += 1
		}
	}
}

func (o *osc) reset() {
	o.phase = 0
	o.pitch.reset()
}

func (o *osc) setSampleRate(sr float64) {
	o.sampleRate = sr
	o.pitch.setSampleRate(sr)
}

// ----- Noise ----- //

// noise is the fixed generator mixed alongside the oscillators.
type noise struct{}

func (noise) process(buf []float64) {
	for i := range buf {
		buf[i] = rand.Float64()*2 - 1
	}
}

func (noise) reset()                {}
func (noise) setSampleRate(float64) {}
