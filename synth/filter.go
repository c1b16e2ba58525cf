package synth

import "math"

// FilterType selects which state-variable output the filter produces.
type FilterType int

const (
	FilterLowpass FilterType = iota
	FilterBandpass
	FilterHighpass
)

// Filter is a Chamberlin state-variable filter with a ramped cutoff.
// The cutoff Param is the automation sweep's write target; manual edits
// and the sweep both write to it, last writer wins.
type Filter struct {
	Type       FilterType
	Cutoff     *Param
	resonance  float64
	sampleRate float64
	low, band  float64
}

// NewFilter creates a filter at the given cutoff in Hz.
func NewFilter(sampleRate, cutoff, resonance float64) *Filter {
	f := &Filter{
		Cutoff:     NewParam(cutoff),
		sampleRate: sampleRate,
	}
	f.SetResonance(resonance)
	return f
}

// SetResonance clamps resonance to a stable range.
func (f *Filter) SetResonance(q float64) {
	if q < 0.1 {
		q = 0.1
	}
	if q > 4.0 {
		q = 4.0
	}
	f.resonance = q
}

// Resonance returns the current resonance.
func (f *Filter) Resonance() float64 { return f.resonance }

// Process filters one sample, stepping the cutoff ramp.
func (f *Filter) Process(in float64) float64 {
	cutoff := f.Cutoff.Step()
	if cutoff < 20 {
		cutoff = 20
	}
	nyquist := f.sampleRate / 2
	if cutoff > nyquist*0.9 {
		cutoff = nyquist * 0.9
	}
	fc := 2 * math.Sin(math.Pi*cutoff/f.sampleRate)
	damp := 1.0 / f.resonance

	f.low += fc * f.band
	high := in - f.low - damp*f.band
	f.band += fc * high

	switch f.Type {
	case FilterBandpass:
		return f.band
	case FilterHighpass:
		return high
	default:
		return f.low
	}
}

// Reset clears the filter state.
func (f *Filter) Reset() {
	f.low = 0
	f.band = 0
}
