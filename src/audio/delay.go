package audio

// ----- Delay ----- //

// maxDelayTime bounds the buffer; times beyond it are clamped, never
// allocated. Decoded presets can carry any float here.
const maxDelayTime = 2.0

// delayLine is a mono circular buffer delay with feedback and parallel mix.
// Feedback and mix are live cells; the delay time is structural and fixed at
// build time.
type delayLine struct {
	feedback *sharedValue
	mix      *sharedValue
	past     []float64
	cursor   int
	time     float64
}

func newDelayLine(time float64, feedback, mix *sharedValue, sampleRate float64) *delayLine {
	if time < 0 {
		time = 0
	}
	if time > maxDelayTime {
		time = maxDelayTime
	}
	d := &delayLine{
		feedback: feedback,
		mix:      mix,
		time:     time,
	}
	d.resize(sampleRate)
	return d
}

func (d *delayLine) resize(sampleRate float64) {
	length := int(sampleRate * d.time)
	if length < 1 {
		length = 1
	}
	d.past = make([]float64, length)
	d.cursor = 0
}

func (d *delayLine) process(buf []float64) {
	feedback := d.feedback.get()
	if feedback > 0.99 {
		feedback = 0.99
	}
	mix := d.mix.get()

	for i := range buf {
		in := buf[i]
		delayed := d.past[d.cursor]
		d.past[d.cursor] = in + delayed*feedback
		d.cursor++
		if d.cursor >= len(d.past) {
			d.cursor = 0
		}
		buf[i] = in + delayed*mix
	}
}

func (d *delayLine) reset() {
	for i := range d.past {
		d.past[i] = 0
	}
	d.cursor = 0
}

func (d *delayLine) setSampleRate(sr float64) {
	d.resize(sr)
}
