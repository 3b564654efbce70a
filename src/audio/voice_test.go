package audio

import (
	"testing"

	"github.com/picodsp/picoedit/src/protocol"
)

func testVoice(p *protocol.Preset) (*voice, *sharedValue) {
	live := newLiveParams()
	live.update(p)
	gate := newSharedValue(0)
	return buildVoice(p, live, sampleRate, newPortamento(baseFreq), gate), gate
}

func TestBuildVoiceEffectsFollowPreset(t *testing.T) {
	p := protocol.DefaultPreset()
	v, _ := testVoice(&p)
	if v.delayL != nil || v.delayR != nil {
		t.Errorf("delay lines should not exist when the delay is off")
	}
	if v.reverbL != nil || v.reverbR != nil {
		t.Errorf("reverbs should not exist when the reverb is off")
	}

	p.Delay.Enabled = true
	p.Reverb.Enabled = true
	v, _ = testVoice(&p)
	if v.delayL == nil || v.delayR == nil {
		t.Errorf("expected delay lines")
	}
	if v.reverbL == nil || v.reverbR == nil {
		t.Errorf("expected reverbs")
	}
}

func TestVoiceRendersGatedSignal(t *testing.T) {
	p := protocol.DefaultPreset()
	v, gate := testVoice(&p)

	left := make([]float64, 512)
	right := make([]float64, 512)
	v.process(left, right)
	for i := range left {
		if left[i] != 0 || right[i] != 0 {
			t.Fatalf("sample %d: expected silence with the gate down", i)
		}
	}

	gate.set(1)
	v.process(left, right)
	silent := true
	for i := range left {
		if left[i] != 0 {
			silent = false
		}
		// a mono voice without effects stays centered
		expectEqual(t, right[i], left[i])
	}
	if silent {
		t.Errorf("expected a signal with the gate up")
	}
}

func TestVoiceOutputStaysBounded(t *testing.T) {
	p := protocol.DefaultPreset()
	p.Osc1.Level = 1
	p.Osc2.Level = 1
	p.Osc3.Level = 1
	p.Noise = 1
	p.Filter.Resonance = 1
	v, gate := testVoice(&p)
	gate.set(1)

	left := make([]float64, samplesPerCycle)
	right := make([]float64, samplesPerCycle)
	for block := 0; block < 8; block++ {
		v.process(left, right)
		for i := range left {
			if left[i] != left[i] || right[i] != right[i] {
				t.Fatalf("block %d sample %d: NaN in output", block, i)
			}
			if left[i] > 16 || left[i] < -16 {
				t.Fatalf("block %d sample %d: runaway output %v", block, i, left[i])
			}
		}
	}
}
