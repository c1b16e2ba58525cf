package synth

// Reverb is a Schroeder reverberator: four parallel combs into two
// series allpasses, mixed wet/dry in place.
type Reverb struct {
	combs   [4]combFilter
	allpass [2]allpassFilter
	mix     float64
	decay   float64
}

type combFilter struct {
	buf []float64
	pos int
	fb  float64
}

type allpassFilter struct {
	buf []float64
	pos int
	fb  float64
}

// NewReverb creates a reverb. roomSize 0..1 scales the comb lengths,
// decay 0..1 sets comb feedback, mix 0..1 is the wet level.
func NewReverb(sampleRate int, roomSize, decay, mix float64) *Reverb {
	base := int(float64(sampleRate) * roomSize * 0.05)
	if base < 10 {
		base = 10
	}
	r := &Reverb{mix: clamp(mix, 0, 1), decay: clamp(decay, 0, 0.95)}
	// Prime-ish length ratios avoid stacked resonances.
	combLens := [4]int{base, base * 1117 / 1000, base * 1271 / 1000, base * 1437 / 1000}
	for i := range r.combs {
		r.combs[i] = combFilter{buf: make([]float64, combLens[i]), fb: r.decay}
	}
	apLens := [2]int{base * 347 / 1000, base * 213 / 1000}
	for i := range r.allpass {
		n := apLens[i]
		if n < 1 {
			n = 1
		}
		r.allpass[i] = allpassFilter{buf: make([]float64, n), fb: 0.5}
	}
	return r
}

// SetDecay patches comb feedback in place.
func (r *Reverb) SetDecay(decay float64) {
	r.decay = clamp(decay, 0, 0.95)
	for i := range r.combs {
		r.combs[i].fb = r.decay
	}
}

// SetMix patches the wet level in place.
func (r *Reverb) SetMix(mix float64) {
	r.mix = clamp(mix, 0, 1)
}

// Decay returns the comb feedback.
func (r *Reverb) Decay() float64 { return r.decay }

// Mix returns the wet level.
func (r *Reverb) Mix() float64 { return r.mix }

// Process reverberates one sample.
func (r *Reverb) Process(in float64) float64 {
	var wet float64
	for i := range r.combs {
		wet += r.combs[i].process(in)
	}
	wet *= 0.25
	for i := range r.allpass {
		wet = r.allpass[i].process(wet)
	}
	return in*(1-r.mix) + wet*r.mix
}

// Reset silences all internal buffers.
func (r *Reverb) Reset() {
	for i := range r.combs {
		for j := range r.combs[i].buf {
			r.combs[i].buf[j] = 0
		}
		r.combs[i].pos = 0
	}
	for i := range r.allpass {
		for j := range r.allpass[i].buf {
			r.allpass[i].buf[j] = 0
		}
		r.allpass[i].pos = 0
	}
}

func (c *combFilter) process(in float64) float64 {
	out := c.buf[c.pos]
	c.buf[c.pos] = in + out*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (a *allpassFilter) process(in float64) float64 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}
