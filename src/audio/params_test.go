package audio

import (
	"testing"

	"github.com/picodsp/picoedit/src/protocol"
)

func TestUpdateWritesAllCells(t *testing.T) {
	l := newLiveParams()
	p := protocol.DefaultPreset()
	p.Osc1.Level = 0.7
	p.Osc2.Detune = -12
	p.Noise = 0.2
	p.Filter.Cutoff = 350
	p.Filter.Resonance = 0.6
	p.Amp.Release = 2
	p.Delay.Feedback = 0.4
	p.Reverb.Mix = 0.9
	p.Lfo.FiltAmt = 0.5
	l.update(&p)

	expectNearlyEqual(t, l.osc1Level.get(), 0.7)
	expectNearlyEqual(t, l.osc2Detune.get(), -12)
	expectNearlyEqual(t, l.noiseLevel.get(), 0.2)
	expectNearlyEqual(t, l.cutoff.get(), 350)
	expectNearlyEqual(t, l.resonance.get(), 0.6)
	expectNearlyEqual(t, l.ampRelease.get(), 2)
	expectNearlyEqual(t, l.delayFeedback.get(), 0.4)
	expectNearlyEqual(t, l.reverbMix.get(), 0.9)
	expectNearlyEqual(t, l.lfoFiltAmt.get(), 0.5)
}

func TestUpdateClassifiesScalarEdits(t *testing.T) {
	l := newLiveParams()
	p := protocol.DefaultPreset()
	l.update(&p) // establish the baseline fingerprint

	p.Filter.Cutoff = 500
	expectEqual(t, l.update(&p), false)
	p.Osc1.Level = 0.3
	p.Portamento = 0.8
	p.Lfo.Freq = 9
	p.Delay.Time = 0.25
	expectEqual(t, l.update(&p), false)
}

func TestUpdateClassifiesStructuralEdits(t *testing.T) {
	structural := []func(p *protocol.Preset){
		func(p *protocol.Preset) { p.Osc1.Waveform = protocol.WaveSquare },
		func(p *protocol.Preset) { p.Osc2.Waveform = protocol.WaveSine },
		func(p *protocol.Preset) { p.Osc3.Waveform = protocol.WaveNoise },
		func(p *protocol.Preset) { p.Osc1.Vibrato = true },
		func(p *protocol.Preset) { p.Osc2.Vibrato = true },
		func(p *protocol.Preset) { p.Osc3.Vibrato = true },
		func(p *protocol.Preset) { p.LfoEnabled = true },
		func(p *protocol.Preset) { p.Lfo.Waveform = protocol.LfoSaw },
		func(p *protocol.Preset) { p.Delay.Enabled = true },
		func(p *protocol.Preset) { p.Reverb.Enabled = true },
	}
	for i, edit := range structural {
		l := newLiveParams()
		p := protocol.DefaultPreset()
		l.update(&p)
		edit(&p)
		if !l.update(&p) {
			t.Errorf("edit %d should be structural", i)
		}
		// applying the same preset again is no longer a change
		expectEqual(t, l.update(&p), false)
	}
}
