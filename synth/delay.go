package synth

// Delay is a feedback delay line used on a parallel wet branch. It
// returns only the wet signal; the Graph sums it with the untouched dry
// path, so enabling or disabling the delay never changes the dry gain
// contributed by the rest of the chain.
type Delay struct {
	buf      []float64
	pos      int
	feedback float64
	mix      float64
}

// NewDelay creates a delay line.
func NewDelay(sampleRate int, seconds, feedback, mix float64) *Delay {
	samples := int(seconds * float64(sampleRate))
	if samples < 1 {
		samples = 1
	}
	return &Delay{
		buf:      make([]float64, samples),
		feedback: clamp(feedback, 0, 0.95),
		mix:      clamp(mix, 0, 1),
	}
}

// SetFeedback patches the feedback amount in place.
func (d *Delay) SetFeedback(fb float64) {
	d.feedback = clamp(fb, 0, 0.95)
}

// SetMix patches the wet level in place.
func (d *Delay) SetMix(mix float64) {
	d.mix = clamp(mix, 0, 1)
}

// Feedback returns the current feedback amount.
func (d *Delay) Feedback() float64 { return d.feedback }

// Mix returns the current wet level.
func (d *Delay) Mix() float64 { return d.mix }

// Process consumes one input sample and returns the wet contribution.
func (d *Delay) Process(in float64) float64 {
	out := d.buf[d.pos]
	d.buf[d.pos] = in + out*d.feedback
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
	return out * d.mix
}

// Reset silences the delay line.
func (d *Delay) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
