package protocol

import (
	"fmt"
	"strconv"
)

// Set edits one named field of the preset from its textual form, e.g.
// ("osc1", "waveform", "saw") or ("filter", "cutoff", "2000"). It is the
// surface the control protocol drives; unknown sections or keys are errors,
// malformed numbers are errors, and nothing is modified on error.
func (p *Preset) Set(section, key, value string) error {
	switch section {
	case "name":
		p.Name = value
		return nil
	case "osc1":
		return p.Osc1.set(key, value)
	case "osc2":
		return p.Osc2.set(key, value)
	case "osc3":
		return p.Osc3.set(key, value)
	case "noise":
		v, err := parseFloat(value)
		if err != nil {
			return err
		}
		p.Noise = v
		return nil
	case "portamento":
		v, err := parseFloat(value)
		if err != nil {
			return err
		}
		p.Portamento = v
		return nil
	case "filter":
		return p.Filter.set(key, value)
	case "amp":
		return p.Amp.set(key, value)
	case "lfo":
		if key == "enabled" {
			p.LfoEnabled = value == "true"
			return nil
		}
		return p.Lfo.set(key, value)
	case "delay":
		return p.Delay.set(key, value)
	case "reverb":
		return p.Reverb.set(key, value)
	}
	return fmt.Errorf("unknown section %q", section)
}

func (o *OscSettings) set(key, value string) error {
	switch key {
	case "waveform":
		o.Waveform = WaveformFromString(value)
	case "level":
		return setFloat(&o.Level, value)
	case "octave":
		return setFloat(&o.Octave, value)
	case "detune":
		return setFloat(&o.Detune, value)
	case "vibrato":
		o.Vibrato = value == "true"
	default:
		return fmt.Errorf("unknown osc key %q", key)
	}
	return nil
}

func (f *FilterSettings) set(key, value string) error {
	switch key {
	case "cutoff":
		return setFloat(&f.Cutoff, value)
	case "resonance":
		return setFloat(&f.Resonance, value)
	case "env_amt":
		return setFloat(&f.EnvAmt, value)
	case "attack":
		return setFloat(&f.Attack, value)
	case "decay":
		return setFloat(&f.Decay, value)
	case "sustain":
		return setFloat(&f.Sustain, value)
	case "release":
		return setFloat(&f.Release, value)
	}
	return fmt.Errorf("unknown filter key %q", key)
}

func (e *EnvSettings) set(key, value string) error {
	switch key {
	case "attack":
		return setFloat(&e.Attack, value)
	case "decay":
		return setFloat(&e.Decay, value)
	case "sustain":
		return setFloat(&e.Sustain, value)
	case "release":
		return setFloat(&e.Release, value)
	}
	return fmt.Errorf("unknown envelope key %q", key)
}

func (l *LfoSettings) set(key, value string) error {
	switch key {
	case "freq":
		return setFloat(&l.Freq, value)
	case "waveform":
		l.Waveform = LfoWaveformFromString(value)
	case "vib_amt":
		return setFloat(&l.VibAmt, value)
	case "filt_amt":
		return setFloat(&l.FiltAmt, value)
	default:
		return fmt.Errorf("unknown lfo key %q", key)
	}
	return nil
}

func (d *DelaySettings) set(key, value string) error {
	switch key {
	case "time":
		return setFloat(&d.Time, value)
	case "feedback":
		return setFloat(&d.Feedback, value)
	case "mix":
		return setFloat(&d.Mix, value)
	case "enabled":
		d.Enabled = value == "true"
		return nil
	}
	return fmt.Errorf("unknown delay key %q", key)
}

func (r *ReverbSettings) set(key, value string) error {
	switch key {
	case "size":
		return setFloat(&r.Size, value)
	case "damping":
		return setFloat(&r.Damping, value)
	case "mix":
		return setFloat(&r.Mix, value)
	case "enabled":
		r.Enabled = value == "true"
		return nil
	}
	return fmt.Errorf("unknown reverb key %q", key)
}

func parseFloat(value string) (float32, error) {
	v, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, err
	}
	return float32(v), nil
}

func setFloat(dst *float32, value string) error {
	v, err := parseFloat(value)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
