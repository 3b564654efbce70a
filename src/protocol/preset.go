package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// PresetSize is the length of one serialized preset record in bytes.
// 32 name + 3*20 osc + 4 noise + 4 portamento + 28 filter + 16 amp +
// 4 lfo-enable + 16 lfo + 16 delay + 16 reverb + 4 padding = 200.
const PresetSize = 200

const nameSize = 32

// ----- Waveform ----- //

// Waveform selects the oscillator shape.
type Waveform uint32

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSaw
	WaveSquare
	WaveNoise
)

func waveformFromUint32(v uint32) Waveform {
	if v > uint32(WaveNoise) {
		return WaveNoise
	}
	return Waveform(v)
}

func (w Waveform) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveTriangle:
		return "triangle"
	case WaveSaw:
		return "saw"
	case WaveSquare:
		return "square"
	default:
		return "noise"
	}
}

// WaveformFromString is the inverse of String. Unknown names map to noise,
// mirroring the decode behavior for unknown stored values.
func WaveformFromString(s string) Waveform {
	switch s {
	case "sine":
		return WaveSine
	case "triangle":
		return WaveTriangle
	case "saw":
		return WaveSaw
	case "square":
		return WaveSquare
	default:
		return WaveNoise
	}
}

// LfoWaveform selects the LFO shape.
type LfoWaveform uint32

const (
	LfoSine LfoWaveform = iota
	LfoTriangle
	LfoSaw
	LfoSquare
)

func lfoWaveformFromUint32(v uint32) LfoWaveform {
	if v > uint32(LfoSquare) {
		return LfoSquare
	}
	return LfoWaveform(v)
}

func (w LfoWaveform) String() string {
	switch w {
	case LfoSine:
		return "sine"
	case LfoTriangle:
		return "triangle"
	case LfoSaw:
		return "saw"
	default:
		return "square"
	}
}

// LfoWaveformFromString is the inverse of String. Unknown names map to square.
func LfoWaveformFromString(s string) LfoWaveform {
	switch s {
	case "sine":
		return LfoSine
	case "triangle":
		return LfoTriangle
	case "saw":
		return LfoSaw
	default:
		return LfoSquare
	}
}

// ----- Settings ----- //

// OscSettings describes one of the three oscillators.
type OscSettings struct {
	Waveform Waveform
	Level    float32
	Octave   float32 // -2 ~ 2
	Detune   float32 // cents
	Vibrato  bool
}

func defaultOscSettings() OscSettings {
	return OscSettings{Waveform: WaveSaw, Level: 1.0}
}

// FilterSettings describes the filter and its envelope.
type FilterSettings struct {
	Cutoff    float32 // Hz
	Resonance float32
	EnvAmt    float32
	Attack    float32
	Decay     float32
	Sustain   float32
	Release   float32
}

// EnvSettings describes an ADSR envelope.
type EnvSettings struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32
}

// LfoSettings describes the modulation LFO.
type LfoSettings struct {
	Freq     float32
	Waveform LfoWaveform
	VibAmt   float32
	FiltAmt  float32
}

// DelaySettings describes the stereo delay effect.
type DelaySettings struct {
	Time     float32
	Feedback float32
	Mix      float32
	Enabled  bool
}

// ReverbSettings describes the reverb effect.
type ReverbSettings struct {
	Size    float32
	Damping float32
	Mix     float32
	Enabled bool
}

// ----- Preset ----- //

// Preset is a complete description of one synthesizer voice.
type Preset struct {
	Name       string
	Osc1       OscSettings
	Osc2       OscSettings
	Osc3       OscSettings
	Noise      float32
	Portamento float32
	Filter     FilterSettings
	Amp        EnvSettings
	LfoEnabled bool
	Lfo        LfoSettings
	Delay      DelaySettings
	Reverb     ReverbSettings
}

// DefaultPreset returns the init patch: a single saw oscillator, open filter,
// short amp envelope, all modulation and effects off. Delay and reverb fields
// stay zero so the serialized image matches the device's factory bank.
func DefaultPreset() Preset {
	osc2 := defaultOscSettings()
	osc2.Level = 0
	osc3 := defaultOscSettings()
	osc3.Level = 0
	return Preset{
		Name: "Init Patch",
		Osc1: defaultOscSettings(),
		Osc2: osc2,
		Osc3: osc3,
		Filter: FilterSettings{
			Cutoff:  20000,
			Sustain: 1,
		},
		Amp: EnvSettings{
			Attack:  0.01,
			Decay:   0.1,
			Sustain: 1,
			Release: 0.1,
		},
		Lfo: LfoSettings{Freq: 1, Waveform: LfoSine},
	}
}

// ----- Codec ----- //

type recordWriter struct {
	buf []byte
	off int
}

func (w *recordWriter) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

func (w *recordWriter) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *recordWriter) flag(v bool) {
	if v {
		w.u32(1)
	} else {
		w.u32(0)
	}
}

type recordReader struct {
	buf []byte
	off int
}

func (r *recordReader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *recordReader) f32() float32 {
	return math.Float32frombits(r.u32())
}

func (r *recordReader) flag() bool {
	return r.u32() != 0
}

// Bytes serializes the preset into a fixed 200-byte little-endian record.
// Names longer than 32 bytes are truncated; shorter names are zero-padded.
func (p *Preset) Bytes() []byte {
	w := &recordWriter{buf: make([]byte, PresetSize)}

	name := []byte(p.Name)
	if len(name) > nameSize {
		name = name[:nameSize]
	}
	copy(w.buf[:nameSize], name)
	w.off = nameSize

	for _, osc := range []*OscSettings{&p.Osc1, &p.Osc2, &p.Osc3} {
		w.u32(uint32(osc.Waveform))
		w.f32(osc.Level)
		w.f32(osc.Octave)
		w.f32(osc.Detune)
		w.flag(osc.Vibrato)
	}

	w.f32(p.Noise)
	w.f32(p.Portamento)

	w.f32(p.Filter.Cutoff)
	w.f32(p.Filter.Resonance)
	w.f32(p.Filter.EnvAmt)
	w.f32(p.Filter.Attack)
	w.f32(p.Filter.Decay)
	w.f32(p.Filter.Sustain)
	w.f32(p.Filter.Release)

	w.f32(p.Amp.Attack)
	w.f32(p.Amp.Decay)
	w.f32(p.Amp.Sustain)
	w.f32(p.Amp.Release)

	w.flag(p.LfoEnabled)
	w.f32(p.Lfo.Freq)
	w.u32(uint32(p.Lfo.Waveform))
	w.f32(p.Lfo.VibAmt)
	w.f32(p.Lfo.FiltAmt)

	w.f32(p.Delay.Time)
	w.f32(p.Delay.Feedback)
	w.f32(p.Delay.Mix)
	w.flag(p.Delay.Enabled)

	w.f32(p.Reverb.Size)
	w.f32(p.Reverb.Damping)
	w.f32(p.Reverb.Mix)
	w.flag(p.Reverb.Enabled)

	w.u32(0) // padding

	return w.buf
}

// PresetFromBytes decodes one 200-byte record. Decoding is total over field
// values: out-of-range enums coerce to their default variant and floats are
// taken as stored. Only a truncated buffer is an error.
func PresetFromBytes(data []byte) (Preset, error) {
	if len(data) < PresetSize {
		return Preset{}, fmt.Errorf("preset record too short: %d < %d", len(data), PresetSize)
	}
	r := &recordReader{buf: data}

	name := string(bytes.TrimRight(data[:nameSize], "\x00"))
	r.off = nameSize

	var p Preset
	p.Name = name
	for _, osc := range []*OscSettings{&p.Osc1, &p.Osc2, &p.Osc3} {
		osc.Waveform = waveformFromUint32(r.u32())
		osc.Level = r.f32()
		osc.Octave = r.f32()
		osc.Detune = r.f32()
		osc.Vibrato = r.flag()
	}

	p.Noise = r.f32()
	p.Portamento = r.f32()

	p.Filter.Cutoff = r.f32()
	p.Filter.Resonance = r.f32()
	p.Filter.EnvAmt = r.f32()
	p.Filter.Attack = r.f32()
	p.Filter.Decay = r.f32()
	p.Filter.Sustain = r.f32()
	p.Filter.Release = r.f32()

	p.Amp.Attack = r.f32()
	p.Amp.Decay = r.f32()
	p.Amp.Sustain = r.f32()
	p.Amp.Release = r.f32()

	p.LfoEnabled = r.flag()
	p.Lfo.Freq = r.f32()
	p.Lfo.Waveform = lfoWaveformFromUint32(r.u32())
	p.Lfo.VibAmt = r.f32()
	p.Lfo.FiltAmt = r.f32()

	p.Delay.Time = r.f32()
	p.Delay.Feedback = r.f32()
	p.Delay.Mix = r.f32()
	p.Delay.Enabled = r.flag()

	p.Reverb.Size = r.f32()
	p.Reverb.Damping = r.f32()
	p.Reverb.Mix = r.f32()
	p.Reverb.Enabled = r.flag()

	r.u32() // padding

	return p, nil
}
