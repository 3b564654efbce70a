package audio

import (
	"sync"

	"github.com/picodsp/picoedit/src/protocol"
)

// ----- Shared Value ----- //

// sharedValue is a scalar cell shared between the control context (writer)
// and the render context (reader). The guarded value never leaves the
// critical section by reference.
type sharedValue struct {
	mu sync.Mutex
	v  float64
}

func newSharedValue(v float64) *sharedValue {
	return &sharedValue{v: v}
}

func (s *sharedValue) get() float64 {
	s.mu.Lock()
	v := s.v
	s.mu.Unlock()
	return v
}

func (s *sharedValue) set(v float64) {
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
}

// ----- Live Params ----- //

// liveParams mirrors every continuously-updatable scalar of the current
// preset. The voice graph reads these cells; it never holds a reference back
// into the preset itself. lastFingerprint belongs to the structural change
// detector and is only touched by the control context.
type liveParams struct {
	osc1Level  *sharedValue
	osc1Detune *sharedValue
	osc2Level  *sharedValue
	osc2Detune *sharedValue
	osc3Level  *sharedValue
	osc3Detune *sharedValue
	noiseLevel *sharedValue

	cutoff        *sharedValue
	resonance     *sharedValue
	filterEnvAmt  *sharedValue
	filterAttack  *sharedValue
	filterDecay   *sharedValue
	filterSustain *sharedValue
	filterRelease *sharedValue

	ampAttack  *sharedValue
	ampDecay   *sharedValue
	ampSustain *sharedValue
	ampRelease *sharedValue

	delayTime     *sharedValue
	delayFeedback *sharedValue
	delayMix      *sharedValue
	reverbSize    *sharedValue
	reverbDamping *sharedValue
	reverbMix     *sharedValue

	lfoVibAmt  *sharedValue
	lfoFiltAmt *sharedValue

	lastFingerprint uint64
}

func newLiveParams() *liveParams {
	return &liveParams{
		osc1Level:     newSharedValue(1),
		osc1Detune:    newSharedValue(0),
		osc2Level:     newSharedValue(0),
		osc2Detune:    newSharedValue(0),
		osc3Level:     newSharedValue(0),
		osc3Detune:    newSharedValue(0),
		noiseLevel:    newSharedValue(0),
		cutoff:        newSharedValue(20000),
		resonance:     newSharedValue(0),
		filterEnvAmt:  newSharedValue(0),
		filterAttack:  newSharedValue(0),
		filterDecay:   newSharedValue(0),
		filterSustain: newSharedValue(1),
		filterRelease: newSharedValue(0),
		ampAttack:     newSharedValue(0.01),
		ampDecay:      newSharedValue(0.1),
		ampSustain:    newSharedValue(1),
		ampRelease:    newSharedValue(0.1),
		delayTime:     newSharedValue(0.5),
		delayFeedback: newSharedValue(0),
		delayMix:      newSharedValue(0),
		reverbSize:    newSharedValue(0.5),
		reverbDamping: newSharedValue(0.5),
		reverbMix:     newSharedValue(0),
		lfoVibAmt:     newSharedValue(0),
		lfoFiltAmt:    newSharedValue(0),
	}
}

// update writes all continuous fields into the live cells unconditionally,
// then reports whether the preset's structural fingerprint changed since the
// previous update. A structural change means the installed voice graph
// topology no longer matches the preset and must be rebuilt.
func (l *liveParams) update(p *protocol.Preset) bool {
	l.osc1Level.set(float64(p.Osc1.Level))
	l.osc1Detune.set(float64(p.Osc1.Detune))
	l.osc2Level.set(float64(p.Osc2.Level))
	l.osc2Detune.set(float64(p.Osc2.Detune))
	l.osc3Level.set(float64(p.Osc3.Level))
	l.osc3Detune.set(float64(p.Osc3.Detune))
	l.noiseLevel.set(float64(p.Noise))

	l.cutoff.set(float64(p.Filter.Cutoff))
	l.resonance.set(float64(p.Filter.Resonance))
	l.filterEnvAmt.set(float64(p.Filter.EnvAmt))
	l.filterAttack.set(float64(p.Filter.Attack))
	l.filterDecay.set(float64(p.Filter.Decay))
	l.filterSustain.set(float64(p.Filter.Sustain))
	l.filterRelease.set(float64(p.Filter.Release))

	l.ampAttack.set(float64(p.Amp.Attack))
	l.ampDecay.set(float64(p.Amp.Decay))
	l.ampSustain.set(float64(p.Amp.Sustain))
	l.ampRelease.set(float64(p.Amp.Release))

	l.delayTime.set(float64(p.Delay.Time))
	l.delayFeedback.set(float64(p.Delay.Feedback))
	l.delayMix.set(float64(p.Delay.Mix))
	l.reverbSize.set(float64(p.Reverb.Size))
	l.reverbDamping.set(float64(p.Reverb.Damping))
	l.reverbMix.set(float64(p.Reverb.Mix))

	l.lfoVibAmt.set(float64(p.Lfo.VibAmt))
	l.lfoFiltAmt.set(float64(p.Lfo.FiltAmt))

	fp := structuralFingerprint(p)
	changed := fp != l.lastFingerprint
	l.lastFingerprint = fp
	return changed
}

// structuralFingerprint packs exactly the non-continuous fields: the three
// oscillator waveforms and vibrato flags, LFO enable and waveform, and the
// two effect enables. Presets with equal fingerprints differ only in scalars
// that the live cells already carry.
func structuralFingerprint(p *protocol.Preset) uint64 {
	fp := uint64(p.Osc1.Waveform)
	fp |= uint64(p.Osc2.Waveform) << 4
	fp |= uint64(p.Osc3.Waveform) << 8
	fp |= bit(p.Osc1.Vibrato) << 12
	fp |= bit(p.Osc2.Vibrato) << 13
	fp |= bit(p.Osc3.Vibrato) << 14
	fp |= bit(p.LfoEnabled) << 15
	fp |= uint64(p.Lfo.Waveform) << 16
	fp |= bit(p.Delay.Enabled) << 20
	fp |= bit(p.Reverb.Enabled) << 21
	return fp
}

func bit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
