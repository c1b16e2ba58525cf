package synth

// Param is a sample-rate parameter with an optional linear ramp. The
// render loop steps it once per sample; control code may set it
// instantaneously or start a ramp. Whichever writer acts last owns the
// value: a Set cancels a running ramp and a RampTo replaces a Set.
type Param struct {
	value     float64
	target    float64
	inc       float64
	remaining int
}

// NewParam creates a parameter at an initial value.
func NewParam(v float64) *Param {
	return &Param{value: v, target: v}
}

// Set jumps to v immediately, cancelling any ramp.
func (p *Param) Set(v float64) {
	p.value = v
	p.target = v
	p.remaining = 0
}

// RampTo ramps linearly from the current value to target over the
// given number of samples.
func (p *Param) RampTo(target float64, samples int) {
	if samples <= 0 {
		p.Set(target)
		return
	}
	p.target = target
	p.remaining = samples
	p.inc = (target - p.value) / float64(samples)
}

// Step advances one sample and returns the current value.
func (p *Param) Step() float64 {
	if p.remaining > 0 {
		p.value += p.inc
		p.remaining--
		if p.remaining == 0 {
			p.value = p.target
		}
	}
	return p.value
}

// Value returns the current value without advancing the ramp. The UI
// polls this to display sweep progress.
func (p *Param) Value() float64 {
	return p.value
}

// Ramping reports whether a ramp is still in progress.
func (p *Param) Ramping() bool {
	return p.remaining > 0
}
