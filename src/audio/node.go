package audio

// ----- Node ----- //

// node is one processing stage of the voice graph. Generators overwrite the
// buffer; transforms modify it in place. A node is owned by exactly one
// graph and is only ever called from the render context; any value it shares
// with the control context goes through a sharedValue cell.
type node interface {
	process(buf []float64)
	reset()
	setSampleRate(sr float64)
}

// chain runs nodes in sequence over the same buffer.
type chain struct {
	nodes []node
}

func newChain(nodes ...node) *chain {
	return &chain{nodes: nodes}
}

func (c *chain) process(buf []float64) {
	for _, n := range c.nodes {
		n.process(buf)
	}
}

func (c *chain) reset() {
	for _, n := range c.nodes {
		n.reset()
	}
}

func (c *chain) setSampleRate(sr float64) {
	for _, n := range c.nodes {
		n.setSampleRate(sr)
	}
}

// tap copies from a buffer owned by the voice, letting several chains read
// one upstream signal without re-running it.
type tap struct {
	src []float64
}

func (t *tap) process(buf []float64) {
	copy(buf, t.src[:len(buf)])
}

func (t *tap) reset()                {}
func (t *tap) setSampleRate(float64) {}

// cellSource fills the buffer with the current value of a shared cell, read
// once per block.
type cellSource struct {
	cell *sharedValue
}

func (c *cellSource) process(buf []float64) {
	v := c.cell.get()
	for i := range buf {
		buf[i] = v
	}
}

func (c *cellSource) reset()                {}
func (c *cellSource) setSampleRate(float64) {}

// gain scales by a fixed factor.
type gain struct {
	factor float64
}

func (g *gain) process(buf []float64) {
	for i := range buf {
		buf[i] *= g.factor
	}
}

func (g *gain) reset()                {}
func (g *gain) setSampleRate(float64) {}

// cellGain scales by a live cell, read once per block.
type cellGain struct {
	cell *sharedValue
}

func (g *cellGain) process(buf []float64) {
	v := g.cell.get()
	for i := range buf {
		buf[i] *= v
	}
}

func (g *cellGain) reset()                {}
func (g *cellGain) setSampleRate(float64) {}

// cellOffset adds a live cell, read once per block.
type cellOffset struct {
	cell *sharedValue
}

func (o *cellOffset) process(buf []float64) {
	v := o.cell.get()
	for i := range buf {
		buf[i] += v
	}
}

func (o *cellOffset) reset()                {}
func (o *cellOffset) setSampleRate(float64) {}

// sum adds the output of a side chain into the buffer.
type sum struct {
	src     node
	scratch []float64
}

func newSum(src node) *sum {
	return &sum{src: src, scratch: make([]float64, samplesPerCycle)}
}

func (s *sum) process(buf []float64) {
	side := s.scratch[:len(buf)]
	s.src.process(side)
	for i := range buf {
		buf[i] += side[i]
	}
}

func (s *sum) reset() {
	s.src.reset()
}

func (s *sum) setSampleRate(sr float64) {
	s.src.setSampleRate(sr)
}

// mult multiplies the buffer by the output of a side chain. Used as the VCA
// with an envelope as the side chain.
type mult struct {
	src     node
	scratch []float64
}

func newMult(src node) *mult {
	return &mult{src: src, scratch: make([]float64, samplesPerCycle)}
}

func (m *mult) process(buf []float64) {
	side := m.scratch[:len(buf)]
	m.src.process(side)
	for i := range buf {
		buf[i] *= side[i]
	}
}

func (m *mult) reset() {
	m.src.reset()
}

func (m *mult) setSampleRate(sr float64) {
	m.src.setSampleRate(sr)
}

// mixer sums the outputs of several sources.
type mixer struct {
	sources []node
	scratch []float64
}

func newMixer(sources ...node) *mixer {
	return &mixer{sources: sources, scratch: make([]float64, samplesPerCycle)}
}

func (m *mixer) process(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
	side := m.scratch[:len(buf)]
	for _, src := range m.sources {
		src.process(side)
		for i := range buf {
			buf[i] += side[i]
		}
	}
}

func (m *mixer) reset() {
	for _, src := range m.sources {
		src.reset()
	}
}

func (m *mixer) setSampleRate(sr float64) {
	for _, src := range m.sources {
		src.setSampleRate(sr)
	}
}
