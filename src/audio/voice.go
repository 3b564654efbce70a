package audio

import (
	"math"

	"github.com/picodsp/picoedit/src/protocol"
)

// ----- Voice ----- //

// voice is the assembled signal graph for one preset. It is owned
// exclusively by the render context and replaced, never mutated, on a
// structural change. Dynamic values flow in through sharedValue cells only.
type voice struct {
	pitch    *portamento
	pitchBuf []float64

	mono    *chain    // mixer -> filter -> vca
	monoBuf []float64

	delayL *delayLine
	delayR *delayLine

	reverbL *reverb
	reverbR *reverb
}

// process renders one block into the stereo pair. It never allocates and
// never blocks beyond the short critical sections of the shared cells.
func (v *voice) process(left, right []float64) {
	n := len(left)

	// The portamento output is computed once and tapped by all three
	// oscillator pitch chains.
	v.pitch.process(v.pitchBuf[:n])

	mono := v.monoBuf[:n]
	v.mono.process(mono)

	copy(left, mono)
	copy(right, mono)

	if v.delayL != nil {
		v.delayL.process(left)
		v.delayR.process(right)
	}
	if v.reverbL != nil {
		v.reverbL.process(left)
		v.reverbR.process(right)
	}

	widenAndTrim(left, right)
}

// widenAndTrim applies the fixed mid/side widening stage and the -6 dB trim.
func widenAndTrim(left, right []float64) {
	for i := range left {
		mid := (left[i] + right[i]) * 0.5
		side := (left[i] - right[i]) * 0.5 * stereoWidth
		left[i] = (mid + side) * outputTrim
		right[i] = (mid - side) * outputTrim
	}
}

func (v *voice) reset() {
	v.pitch.reset()
	v.mono.reset()
	if v.delayL != nil {
		v.delayL.reset()
		v.delayR.reset()
	}
	if v.reverbL != nil {
		v.reverbL.reset()
		v.reverbR.reset()
	}
}

const (
	stereoWidth = 1.5
	outputTrim  = 0.5
)

// ----- Voice Builder ----- //

// buildVoice assembles the signal graph for a preset: oscillators with
// pitch/detune/vibrato chains into a summing mixer, filter with envelope and
// LFO cutoff modulation, amp envelope VCA, then stereo effects. It is a pure
// function of its arguments; the returned graph references the preset only
// through values copied at build time and the shared cells in live.
func buildVoice(p *protocol.Preset, live *liveParams, sampleRate float64, pitch *portamento, gate *sharedValue) *voice {
	v := &voice{
		pitch:    pitch,
		pitchBuf: make([]float64, samplesPerCycle),
		monoBuf:  make([]float64, samplesPerCycle),
	}

	// Every vibrato consumer gets its own independently-phased LFO instance
	// sharing the preset's settings, to avoid phase-coupling artifacts.
	newVibratoLfo := func() node {
		if !p.LfoEnabled {
			return nil
		}
		l := newFastLfo(float64(p.Lfo.Freq), p.Lfo.Waveform, sampleRate)
		amt := float64(p.Lfo.VibAmt)
		l.setRange(-amt, amt)
		return l
	}

	oscNode := func(settings *protocol.OscSettings, level, detune *sharedValue) node {
		stages := []node{&tap{src: v.pitchBuf}}
		if settings.Octave != 0 {
			stages = append(stages, &gain{factor: math.Pow(2, float64(settings.Octave))})
		}
		stages = append(stages, &cellOffset{cell: detune})
		if settings.Vibrato {
			if vib := newVibratoLfo(); vib != nil {
				stages = append(stages, newSum(vib))
			}
		}
		return newChain(
			newOsc(settings.Waveform, newChain(stages...), sampleRate),
			&cellGain{cell: level},
		)
	}

	mix := newMixer(
		oscNode(&p.Osc1, live.osc1Level, live.osc1Detune),
		oscNode(&p.Osc2, live.osc2Level, live.osc2Detune),
		oscNode(&p.Osc3, live.osc3Level, live.osc3Detune),
		newChain(noise{}, &cellGain{cell: live.noiseLevel}),
	)

	filterEnv := newAdsr(gate, live.filterAttack, live.filterDecay, live.filterSustain, live.filterRelease, sampleRate)
	cutoffMod := []node{
		&cellSource{cell: live.cutoff},
		newSum(newChain(filterEnv, &cellGain{cell: live.filterEnvAmt})),
	}
	if p.LfoEnabled {
		filterLfo := newFastLfo(float64(p.Lfo.Freq), p.Lfo.Waveform, sampleRate)
		amt := float64(p.Lfo.FiltAmt)
		filterLfo.setRange(-amt, amt)
		cutoffMod = append(cutoffMod, newSum(newChain(filterLfo, &cellGain{cell: live.lfoFiltAmt})))
	}

	ampEnv := newAdsr(gate, live.ampAttack, live.ampDecay, live.ampSustain, live.ampRelease, sampleRate)

	v.mono = newChain(
		mix,
		newFilter(newChain(cutoffMod...), live.resonance, sampleRate),
		newMult(ampEnv),
	)

	if p.Delay.Enabled {
		time := float64(p.Delay.Time)
		v.delayL = newDelayLine(time, live.delayFeedback, live.delayMix, sampleRate)
		// the right line runs 15% longer for stereo width
		v.delayR = newDelayLine(time*1.15, live.delayFeedback, live.delayMix, sampleRate)
	}
	if p.Reverb.Enabled {
		v.reverbL = newReverb(live.reverbSize, live.reverbDamping, live.reverbMix, 0, sampleRate)
		v.reverbR = newReverb(live.reverbSize, live.reverbDamping, live.reverbMix, 23, sampleRate)
	}

	return v
}
