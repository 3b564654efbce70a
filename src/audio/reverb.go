package audio

// ----- Reverb ----- //

// Parallel comb bank into serial allpass diffusers, one instance per
// channel. Tunings assume 44.1k and are scaled to the actual rate; the
// right channel is built with a small spread offset for width.
var combTunings = [4]int{1687, 1601, 2053, 2251}
var allpassTunings = [2]int{389, 307}

const allpassCoef = 0.5

type comb struct {
	buffer    []float64
	cursor    int
	feedback  float64
	damp      float64
	filtStore float64
}

func (c *comb) step(in float64) float64 {
	out := c.buffer[c.cursor]
	c.filtStore = out*(1-c.damp) + c.filtStore*c.damp
	c.buffer[c.cursor] = in + c.filtStore*c.feedback
	c.cursor++
	if c.cursor >= len(c.buffer) {
		c.cursor = 0
	}
	return out
}

type allpass struct {
	buffer []float64
	cursor int
}

func (a *allpass) step(in float64) float64 {
	delayed := a.buffer[a.cursor]
	out := delayed - in
	a.buffer[a.cursor] = in + delayed*allpassCoef
	a.cursor++
	if a.cursor >= len(a.buffer) {
		a.cursor = 0
	}
	return out
}

// reverb mixes a diffused tail into the signal. Size and damping come from
// live cells, read once per block; mix is the wet ratio.
type reverb struct {
	size    *sharedValue
	damping *sharedValue
	mix     *sharedValue

	combs     [4]comb
	allpasses [2]allpass
	spread    int
}

func newReverb(size, damping, mix *sharedValue, spread int, sampleRate float64) *reverb {
	r := &reverb{
		size:    size,
		damping: damping,
		mix:     mix,
		spread:  spread,
	}
	r.allocate(sampleRate)
	return r
}

func (r *reverb) allocate(sampleRate float64) {
	scale := sampleRate / 44100
	for i := range r.combs {
		length := int(float64(combTunings[i]+r.spread) * scale)
		r.combs[i] = comb{buffer: make([]float64, length)}
	}
	for i := range r.allpasses {
		length := int(float64(allpassTunings[i]+r.spread) * scale)
		r.allpasses[i] = allpass{buffer: make([]float64, length)}
	}
}

func (r *reverb) process(buf []float64) {
	size := r.size.get()
	if size < 0 {
		size = 0
	}
	if size > 1 {
		size = 1
	}
	damp := r.damping.get()
	if damp < 0 {
		damp = 0
	}
	if damp > 0.99 {
		damp = 0.99
	}
	mix := r.mix.get()
	feedback := 0.7 + size*0.28

	for i := range r.combs {
		r.combs[i].feedback = feedback
		r.combs[i].damp = damp
	}

	for i := range buf {
		in := buf[i]
		wet := 0.0
		for j := range r.combs {
			wet += r.combs[j].step(in)
		}
		wet *= 0.25
		for j := range r.allpasses {
			wet = r.allpasses[j].step(wet)
		}
		buf[i] = in*(1-mix) + wet*mix
	}
}

func (r *reverb) reset() {
	for i := range r.combs {
		for j := range r.combs[i].buffer {
			r.combs[i].buffer[j] = 0
		}
		r.combs[i].cursor = 0
		r.combs[i].filtStore = 0
	}
	for i := range r.allpasses {
		for j := range r.allpasses[i].buffer {
			r.allpasses[i].buffer[j] = 0
		}
		r.allpasses[i].cursor = 0
	}
}

func (r *reverb) setSampleRate(sr float64) {
	r.allocate(sr)
}
