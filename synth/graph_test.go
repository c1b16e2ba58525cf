package synth

import (
	"math"
	"testing"
)

const testRate = 44100

func render(g *Graph, samples int) []float64 {
	buf := make([]float64, samples)
	g.Render(buf)
	return buf
}

func peak(buf []float64) float64 {
	var p float64
	for _, s := range buf {
		if a := math.Abs(s); a > p {
			p = a
		}
	}
	return p
}

func TestScheduledNoteFiresAtSamplePosition(t *testing.T) {
	g := NewGraph(testRate)
	g.NoteOnAt(1000, 440, 1.0, testRate/10)

	buf := render(g, 4000)
	if peak(buf[:900]) != 0 {
		t.Error("signal before the scheduled onset")
	}
	if peak(buf[1000:]) == 0 {
		t.Error("no signal after the scheduled onset")
	}
}

func TestPastDueEventFiresImmediately(t *testing.T) {
	g := NewGraph(testRate)
	render(g, 2000)
	g.NoteOnAt(0, 440, 1.0, testRate/10)
	buf := render(g, 500)
	if peak(buf) == 0 {
		t.Error("past-due event never fired")
	}
}

func TestCancelPendingDropsOnsets(t *testing.T) {
	g := NewGraph(testRate)
	g.NoteOnAt(5000, 440, 1.0, testRate)
	g.CancelPending()
	buf := render(g, 10000)
	if peak(buf) != 0 {
		t.Error("cancelled onset still sounded")
	}
}

func TestCancelReleasesSoundingVoices(t *testing.T) {
	g := NewGraph(testRate)
	g.NoteOnAt(0, 440, 1.0, testRate*10)
	render(g, 2000)
	g.CancelPending()
	// Release tail may decay, but after the pluck release time the
	// voice must be silent.
	render(g, testRate/2)
	if g.ActiveVoices() != 0 {
		t.Error("voices still active after cancel and release tail")
	}
}

func TestDelayToggleRestoresDryGain(t *testing.T) {
	g := NewGraph(testRate)
	g.SetEffectEnabled(EffectDelay, false)
	before := g.DryGain()
	g.SetEffectEnabled(EffectDelay, true)
	g.SetEffectEnabled(EffectDelay, false)
	if got := g.DryGain(); got != before {
		t.Errorf("dry gain %f after delay toggle, want %f", got, before)
	}
}

func TestDelayIsParallelToDryPath(t *testing.T) {
	// With all other effects off, the first samples of a note must be
	// bit-identical whether or not delay is enabled: the wet branch
	// contributes nothing until the delay time elapses and the dry
	// branch is untouched.
	run := func(delayOn bool) []float64 {
		g := NewGraph(testRate)
		g.SetEffectEnabled(EffectFilter, false)
		g.SetEffectEnabled(EffectReverb, false)
		g.SetEffectEnabled(EffectDelay, delayOn)
		g.SetEffectParam(EffectDelay, ParamTime, 0.5)
		g.NoteOnAt(0, 220, 1.0, testRate/10)
		return render(g, 1000)
	}
	dry := run(false)
	wet := run(true)
	for i := range dry {
		if dry[i] != wet[i] {
			t.Fatalf("sample %d differs with delay enabled: %f vs %f", i, dry[i], wet[i])
		}
	}
}

func TestParamOnlyChangeKeepsVoicesSounding(t *testing.T) {
	g := NewGraph(testRate)
	g.NoteOnAt(0, 440, 1.0, testRate)
	render(g, 1000)
	g.SetEffectParam(EffectFilter, ParamCutoff, 500)
	if g.ActiveVoices() == 0 {
		t.Error("parameter patch rebuilt the graph and killed voices")
	}
}

func TestTopologyChangeRebuildsVoices(t *testing.T) {
	g := NewGraph(testRate)
	g.NoteOnAt(0, 440, 1.0, testRate)
	render(g, 1000)
	g.SetVoiceType(VoiceBass)
	if g.ActiveVoices() != 0 {
		t.Error("voice type change must dispose sounding voices")
	}
	if g.VoiceType() != VoiceBass {
		t.Error("voice type not switched")
	}
}

func TestApplyPresetOverwritesEffects(t *testing.T) {
	g := NewGraph(testRate)
	g.SetEffectParam(EffectFilter, ParamCutoff, 123)
	g.ApplyPreset(VoicePad)
	want := PresetFor(VoicePad).Effects
	if g.EffectEnabled(EffectReverb) != want.ReverbOn {
		t.Error("preset did not apply reverb enable")
	}
	if got := g.CutoffValue(); got != want.Cutoff {
		t.Errorf("preset cutoff %f, want %f", got, want.Cutoff)
	}
}

func TestRampCutoffReachesTarget(t *testing.T) {
	g := NewGraph(testRate)
	g.ForceLowpass()
	g.SetEffectParam(EffectFilter, ParamCutoff, 100)
	g.RampCutoff(5000, 1000)
	render(g, 500)
	mid := g.CutoffValue()
	if mid <= 100 || mid >= 5000 {
		t.Errorf("mid-ramp cutoff %f not between bounds", mid)
	}
	render(g, 600)
	if got := g.CutoffValue(); math.Abs(got-5000) > 1e-6 {
		t.Errorf("cutoff %f after ramp, want 5000", got)
	}
}

func TestManualEditOverridesRamp(t *testing.T) {
	g := NewGraph(testRate)
	g.ForceLowpass()
	g.RampCutoff(8000, testRate)
	render(g, 100)
	g.SetEffectParam(EffectFilter, ParamCutoff, 300)
	if got := g.CutoffValue(); got != 300 {
		t.Errorf("manual edit did not win over ramp: %f", got)
	}
}

func TestVoiceStealingBounded(t *testing.T) {
	g := NewGraph(testRate)
	for i := 0; i < maxVoices*2; i++ {
		g.NoteOnAt(int64(i), 200+float64(i), 1.0, testRate)
	}
	render(g, maxVoices*2+10)
	if n := g.ActiveVoices(); n > maxVoices {
		t.Errorf("%d active voices, cap is %d", n, maxVoices)
	}
}

func TestOutputBounded(t *testing.T) {
	g := NewGraph(testRate)
	for i := 0; i < 8; i++ {
		g.NoteOnAt(0, 100*float64(i+1), 1.0, testRate)
	}
	buf := render(g, 5000)
	if peak(buf) > 1.0 {
		t.Errorf("output peak %f exceeds full scale", peak(buf))
	}
}
