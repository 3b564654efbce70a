package audio

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/hajimehoshi/oto"
	"github.com/picodsp/picoedit/src/protocol"
)

const (
	sampleRate      = 48000
	channelNum      = 2
	bitDepthInBytes = 2
	samplesPerCycle = 1024
	scopeSize       = 1024
)
const bytesPerSample = bitDepthInBytes * channelNum
const bufferSizeInBytes = samplesPerCycle * bytesPerSample
const baseFreq = 440.0

func noteToFreq(note int) float64 {
	return baseFreq * math.Pow(2, float64(note-69)/12)
}

// ----- Engine ----- //

// Engine bridges the control context (UI/MIDI) and the render context. The
// command queue is the only coordination primitive between the two; shared
// scalars live in sharedValue cells. Exactly one render context per engine.
type Engine struct {
	ctx        context.Context
	otoContext *oto.Context

	queue *commandQueue
	live  *liveParams
	pitch *portamento
	gate  *sharedValue

	// render-context-exclusive state
	voice *voice
	bufL  []float64
	bufR  []float64

	scope *scopeBuffer
}

var _ io.Reader = (*Engine)(nil)

// NewEngine acquires the audio output device and prepares a voice for the
// init patch. Construction fails explicitly when no device is available;
// callers may continue without local audio.
func NewEngine() (*Engine, error) {
	otoContext, err := oto.NewContext(sampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return nil, fmt.Errorf("cannot open audio output: %w", err)
	}
	e := newEngine()
	e.otoContext = otoContext
	return e, nil
}

// newEngine builds everything except the output device.
func newEngine() *Engine {
	e := &Engine{
		ctx:   context.Background(),
		queue: newCommandQueue(),
		live:  newLiveParams(),
		pitch: newPortamento(baseFreq),
		gate:  newSharedValue(0),
		bufL:  make([]float64, samplesPerCycle),
		bufR:  make([]float64, samplesPerCycle),
		scope: newScopeBuffer(scopeSize),
	}
	preset := protocol.DefaultPreset()
	e.live.update(&preset)
	e.voice = buildVoice(&preset, e.live, sampleRate, e.pitch, e.gate)
	return e
}

// Start pumps the render callback into the player until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	p := e.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error while closing player: %v", err)
		}
	}()
	e.ctx = ctx

	// blocks until ctx is cancelled
	if _, err := io.CopyBuffer(p, e, make([]byte, bufferSizeInBytes)); err != nil {
		return err
	}
	return nil
}

// Close releases the output device.
func (e *Engine) Close() error {
	if e.otoContext == nil {
		return nil
	}
	return e.otoContext.Close()
}

// ----- Control Context ----- //

// NoteOn retargets the pitch controller and raises the gate. Notes are
// clamped to the MIDI range; the IPC surface accepts arbitrary integers.
func (e *Engine) NoteOn(note int) {
	if note < 0 {
		note = 0
	}
	if note > 127 {
		note = 127
	}
	e.queue.push(noteOnCmd{freq: noteToFreq(note)})
}

// NoteOff lowers the gate; the release tail plays out.
func (e *Engine) NoteOff() {
	e.queue.push(noteOffCmd{})
}

// UpdatePreset applies all continuous fields to the live cells, classifies
// the edit, and enqueues exactly one command: a cheap refresh when only
// scalars moved, a full graph rebuild when the topology changed.
func (e *Engine) UpdatePreset(p protocol.Preset) {
	if e.live.update(&p) {
		e.queue.push(rebuildVoiceCmd{preset: p})
	} else {
		e.queue.push(continuousUpdateCmd{portamento: float64(p.Portamento)})
	}
}

// ----- Render Context ----- //

// Read is the render callback: drain all queued commands, then pull one
// block through the installed voice graph. It must not block, allocate on
// the steady-state path, or fail; missing state renders silence.
func (e *Engine) Read(buf []byte) (int, error) {
	select {
	case <-e.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
	}

	e.drainCommands()

	samples := len(buf) / bytesPerSample
	if samples > samplesPerCycle {
		samples = samplesPerCycle
	}
	left := e.bufL[:samples]
	right := e.bufR[:samples]

	if e.voice != nil {
		e.voice.process(left, right)
	} else {
		for i := 0; i < samples; i++ {
			left[i] = 0
			right[i] = 0
		}
	}

	writeBuffer(left, buf, 0)
	writeBuffer(right, buf, 1)

	// Visualization may drop frames; audio never waits for it.
	e.scope.tryWrite(left)

	return samples * bytesPerSample, nil
}

func (e *Engine) drainCommands() {
	for {
		cmd, ok := e.queue.pop()
		if !ok {
			return
		}
		switch c := cmd.(type) {
		case noteOnCmd:
			e.pitch.setTarget(c.freq)
			e.gate.set(1)
		case noteOffCmd:
			e.gate.set(0)
		case continuousUpdateCmd:
			e.pitch.setAmount(c.portamento)
		case rebuildVoiceCmd:
			e.pitch.setAmount(float64(c.preset.Portamento))
			// the old graph is dropped only after the swap
			e.voice = buildVoice(&c.preset, e.live, sampleRate, e.pitch, e.gate)
		}
	}
}

func writeBuffer(out []float64, buf []byte, ch int) {
	for i, value := range out {
		if value > 1 {
			value = 1
		} else if value < -1 {
			value = -1
		}
		const max = 32767
		b := int16(value * max)
		buf[bytesPerSample*i+2*ch] = byte(b)
		buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
	}
}

// ----- Visualization ----- //

// Scope copies the rolling scope buffer for the visualizer.
func (e *Engine) Scope() []float64 {
	out := make([]float64, scopeSize)
	e.scope.snapshot(out)
	return out
}

// Spectrum returns the magnitude spectrum of the current scope contents.
func (e *Engine) Spectrum() []float64 {
	data := make([]float64, scopeSize)
	e.scope.snapshot(data)
	hannWindow(data)
	spectrumFFT.calcAbs(data)
	for i, v := range data {
		data[i] = v * 2 / scopeSize
	}
	return data[:scopeSize/2]
}

var spectrumFFT = newFFT(scopeSize)
