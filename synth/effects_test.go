package synth

import (
	"math"
	"testing"
)

func TestDelayEchoAppearsAtDelayTime(t *testing.T) {
	d := NewDelay(1000, 0.1, 0.0, 1.0) // 100 samples
	out := make([]float64, 300)
	for i := range out {
		in := 0.0
		if i == 0 {
			in = 1.0
		}
		out[i] = d.Process(in)
	}
	for i := 0; i < 100; i++ {
		if out[i] != 0 {
			t.Fatalf("wet output at sample %d before the delay time", i)
		}
	}
	if out[100] == 0 {
		t.Error("no echo at the delay time")
	}
}

func TestDelayFeedbackDecays(t *testing.T) {
	d := NewDelay(1000, 0.05, 0.5, 1.0) // 50 samples, half feedback
	var first, second float64
	for i := 0; i < 150; i++ {
		in := 0.0
		if i == 0 {
			in = 1.0
		}
		out := d.Process(in)
		switch i {
		case 50:
			first = math.Abs(out)
		case 100:
			second = math.Abs(out)
		}
	}
	if second >= first {
		t.Errorf("repeat %f did not decay from %f", second, first)
	}
}

func TestLowpassAttenuatesHighMoreThanLow(t *testing.T) {
	amp := func(freq float64) float64 {
		f := NewFilter(testRate, 1000, 0.7)
		var p float64
		for i := 0; i < testRate/10; i++ {
			in := math.Sin(2 * math.Pi * freq * float64(i) / testRate)
			out := f.Process(in)
			if i > testRate/20 { // skip the settle
				if a := math.Abs(out); a > p {
					p = a
				}
			}
		}
		return p
	}
	low := amp(200)
	high := amp(8000)
	if high >= low {
		t.Errorf("lowpass passed 8kHz (%f) at or above 200Hz (%f)", high, low)
	}
}

func TestHighpassAttenuatesLowMoreThanHigh(t *testing.T) {
	amp := func(freq float64) float64 {
		f := NewFilter(testRate, 1000, 0.7)
		f.Type = FilterHighpass
		var p float64
		for i := 0; i < testRate/10; i++ {
			in := math.Sin(2 * math.Pi * freq * float64(i) / testRate)
			out := f.Process(in)
			if i > testRate/20 {
				if a := math.Abs(out); a > p {
					p = a
				}
			}
		}
		return p
	}
	low := amp(100)
	high := amp(8000)
	if low >= high {
		t.Errorf("highpass passed 100Hz (%f) at or above 8kHz (%f)", low, high)
	}
}

func TestReverbProducesTail(t *testing.T) {
	r := NewReverb(testRate, 0.5, 0.7, 0.5)
	var tail float64
	for i := 0; i < testRate/2; i++ {
		in := 0.0
		if i == 0 {
			in = 1.0
		}
		out := r.Process(in)
		if i > 1000 {
			tail += math.Abs(out)
		}
	}
	if tail == 0 {
		t.Error("impulse produced no reverb tail")
	}
}

func TestEnvelopeReachesSustainAndDies(t *testing.T) {
	e := NewEnvelope(ADSR{Attack: 0.01, Decay: 0.01, Sustain: 0.5, Release: 0.01}, testRate)
	e.Gate()
	for i := 0; i < testRate/10; i++ {
		e.Step()
	}
	if got := e.Step(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("sustain level %f, want 0.5", got)
	}
	e.Release()
	for i := 0; i < testRate/10; i++ {
		e.Step()
	}
	if e.Active() {
		t.Error("envelope still active long after release")
	}
}

func TestParamRampEndsExactlyOnTarget(t *testing.T) {
	p := NewParam(100)
	p.RampTo(200, 10)
	for i := 0; i < 10; i++ {
		p.Step()
	}
	if p.Value() != 200 {
		t.Errorf("ramp ended at %f, want 200", p.Value())
	}
	if p.Ramping() {
		t.Error("ramp still pending after its sample count")
	}
}
