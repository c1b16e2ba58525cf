// Package synth implements the voice graph: oscillator voices, the
// effect nodes (filter, reverb, delay), and the Graph that owns their
// instantiation and routing. DSP is hand-rolled and deliberately
// minimal; the interesting contracts are topology rebuilds, in-place
// parameter patches, and sample-accurate event scheduling.
package synth

import "math"

// Waveform selects an oscillator shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSawtooth
	WaveSquare
)

// Oscillator is a phase-accumulator waveform generator.
type Oscillator struct {
	Type       Waveform
	Phase      float64
	Frequency  float64
	SampleRate float64
	Duty       float64
}

// NewOscillator creates an oscillator with 50% duty.
func NewOscillator(w Waveform, sampleRate float64) *Oscillator {
	return &Oscillator{Type: w, SampleRate: sampleRate, Duty: 0.5}
}

// SetFrequency sets the oscillator frequency in Hz.
func (o *Oscillator) SetFrequency(freq float64) {
	o.Frequency = freq
}

// Sample generates the next sample in [-1, 1].
func (o *Oscillator) Sample() float64 {
	if o.Frequency <= 0 {
		return 0
	}
	o.Phase += o.Frequency / o.SampleRate
	if o.Phase >= 1.0 {
		o.Phase -= 1.0
	}
	switch o.Type {
	case WaveSine:
		return math.Sin(2 * math.Pi * o.Phase)
	case WaveTriangle:
		if o.Phase < 0.5 {
			return 4.0*o.Phase - 1.0
		}
		return 3.0 - 4.0*o.Phase
	case WaveSawtooth:
		return 2.0*o.Phase - 1.0
	case WaveSquare:
		if o.Phase < o.Duty {
			return 1.0
		}
		return -1.0
	default:
		return 0
	}
}

// Reset zeroes the phase.
func (o *Oscillator) Reset() {
	o.Phase = 0
}
