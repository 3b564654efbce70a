package audio

// ----- Portamento ----- //

const (
	glideInterval = 32  // samples between control-rate updates
	glideSnap     = 0.1 // Hz
)

// portamento glides the voice frequency toward a shared target. The glide is
// recomputed every 32nd sample and held in between, so the output is
// piecewise-constant at control-rate granularity.
type portamento struct {
	target *sharedValue
	amount *sharedValue

	current float64
	counter int
}

func newPortamento(startFreq float64) *portamento {
	return &portamento{
		target:  newSharedValue(startFreq),
		amount:  newSharedValue(0),
		current: startFreq,
	}
}

// setTarget may be called from any context.
func (p *portamento) setTarget(freq float64) {
	p.target.set(freq)
}

// setAmount sets the glide amount, 0 (instant) to ~1 (infinite glide).
func (p *portamento) setAmount(amount float64) {
	p.amount.set(amount)
}

func (p *portamento) process(buf []float64) {
	target := p.target.get()
	amount := p.amount.get()
	if amount < 0 {
		amount = 0
	}
	if amount > 0.999 {
		amount = 0.999
	}
	factor := 1 - amount

	for i := range buf {
		if p.counter%glideInterval == 0 {
			if amount > 0 {
				diff := target - p.current
				if diff < glideSnap && diff > -glideSnap {
					p.current = target
				} else {
					p.current += diff * factor
				}
			} else {
				p.current = target
			}
		}
		buf[i] = p.current
		p.counter++
	}
}

func (p *portamento) reset() {
	p.counter = 0
}

func (p *portamento) setSampleRate(sr float64) {}
