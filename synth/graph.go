package synth

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// Effect identifies one node of the chain for enable/param calls.
type Effect string

const (
	EffectFilter Effect = "filter"
	EffectReverb Effect = "reverb"
	EffectDelay  Effect = "delay"
)

// Param names accepted by SetEffectParam.
const (
	ParamCutoff    = "cutoff"
	ParamResonance = "resonance"
	ParamRoomSize  = "roomSize"
	ParamDecay     = "decay"
	ParamMix       = "mix"
	ParamTime      = "time"
	ParamFeedback  = "feedback"
)

// maxVoices bounds polyphony; the oldest voice is stolen when
// exhausted.
const maxVoices = 16

// noteEvent is a scheduled onset in the sample domain.
type noteEvent struct {
	at   int64 // sample position
	freq float64
	vel  float64 // 0..1
	dur  int     // gate samples
}

// Graph owns the synthesizer voices and the effect chain. Routing is
// rebuilt whenever the voice type or any effect's enabled flag changes;
// parameter-only changes patch nodes in place. The render path fires
// queued note events at exact sample positions, which is what decouples
// coarse transport callbacks from precise onsets.
type Graph struct {
	mu         sync.Mutex
	sampleRate int
	clock      atomic.Int64 // samples rendered since creation

	voiceType VoiceType
	preset    VoicePreset
	voices    []*voice

	filterOn bool
	reverbOn bool
	delayOn  bool

	filter *Filter
	reverb *Reverb
	delay  *Delay

	// Delay runs on a parallel wet branch; the dry branch is a plain
	// unity gain so toggling delay cannot attenuate the rest of the
	// chain.
	dryGain float64

	// Retained across rebuilds so a topology change doesn't lose
	// user-set parameters.
	cutoff, resonance             float64
	filterType                    FilterType
	roomSize, revDecay, revMix    float64
	delayTime, feedback, delayMix float64

	pending []noteEvent
}

// NewGraph builds a graph for the default voice with its preset effect
// settings applied.
func NewGraph(sampleRate int) *Graph {
	g := &Graph{sampleRate: sampleRate, dryGain: 1.0}
	g.applyPresetLocked(VoicePluck)
	return g
}

// SampleRate returns the render rate in Hz.
func (g *Graph) SampleRate() int { return g.sampleRate }

// Now returns the current sample-clock position. It only advances when
// the render loop runs, so scheduling code must treat it as the audio
// timeline, not wall time.
func (g *Graph) Now() int64 {
	return g.clock.Load()
}

// rebuild disposes every node instance and reconnects the chain for
// the current topology tuple. Caller holds the lock.
func (g *Graph) rebuild() {
	// Dispose: drop voices and effect instances outright; buffers are
	// reallocated rather than reused so no stale tail leaks across a
	// topology change.
	g.voices = nil
	g.filter = nil
	g.reverb = nil
	g.delay = nil

	g.preset = PresetFor(g.voiceType)
	if g.filterOn {
		g.filter = NewFilter(float64(g.sampleRate), g.cutoff, g.resonance)
		g.filter.Type = g.filterType
	}
	if g.reverbOn {
		g.reverb = NewReverb(g.sampleRate, g.roomSize, g.revDecay, g.revMix)
	}
	if g.delayOn {
		g.delay = NewDelay(g.sampleRate, g.delayTime, g.feedback, g.delayMix)
	}
	g.dryGain = 1.0
}

// applyPresetLocked switches the voice type and overwrites all effect
// parameters with the preset bundle. Caller holds the lock.
func (g *Graph) applyPresetLocked(vt VoiceType) {
	p := PresetFor(vt)
	g.voiceType = vt
	g.filterOn = p.Effects.FilterOn
	g.reverbOn = p.Effects.ReverbOn
	g.delayOn = p.Effects.DelayOn
	g.cutoff = p.Effects.Cutoff
	g.resonance = p.Effects.Resonance
	g.filterType = FilterLowpass
	g.roomSize = p.Effects.RoomSize
	g.revDecay = 0.7
	g.revMix = p.Effects.RevMix
	g.delayTime = p.Effects.DelayTime
	g.feedback = p.Effects.Feedback
	g.delayMix = p.Effects.DelayMix
	if g.cutoff == 0 {
		g.cutoff = 8000
	}
	if g.resonance == 0 {
		g.resonance = 0.7
	}
	if g.delayTime == 0 {
		g.delayTime = 0.25
	}
	if g.roomSize == 0 {
		g.roomSize = 0.5
	}
	g.rebuild()
}

// ApplyPreset atomically sets the voice type and its recommended
// effect settings. Presets are voice+effects bundles by design.
func (g *Graph) ApplyPreset(vt VoiceType) {
	g.mu.Lock()
	g.applyPresetLocked(vt)
	g.mu.Unlock()
}

// SetVoiceType changes only the synthesizer voice, keeping the current
// effect parameters. The routing still rebuilds because the voice pool
// is part of the topology.
func (g *Graph) SetVoiceType(vt VoiceType) {
	g.mu.Lock()
	if vt != g.voiceType {
		g.voiceType = vt
		g.rebuild()
	}
	g.mu.Unlock()
}

// VoiceType returns the active voice type.
func (g *Graph) VoiceType() VoiceType {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.voiceType
}

// SetEffectEnabled toggles one effect. Enabled-set changes rebuild the
// routing; a no-op change does nothing.
func (g *Graph) SetEffectEnabled(e Effect, on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch e {
	case EffectFilter:
		if g.filterOn == on {
			return
		}
		g.filterOn = on
	case EffectReverb:
		if g.reverbOn == on {
			return
		}
		g.reverbOn = on
	case EffectDelay:
		if g.delayOn == on {
			return
		}
		g.delayOn = on
	default:
		return
	}
	g.rebuild()
}

// EffectEnabled reports one effect's enabled flag.
func (g *Graph) EffectEnabled(e Effect) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch e {
	case EffectFilter:
		return g.filterOn
	case EffectReverb:
		return g.reverbOn
	case EffectDelay:
		return g.delayOn
	}
	return false
}

// SetEffectParam patches a parameter in place without rebuilding.
// Unknown effect/param pairs are ignored.
func (g *Graph) SetEffectParam(e Effect, param string, value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch e {
	case EffectFilter:
		switch param {
		case ParamCutoff:
			g.cutoff = value
			if g.filter != nil {
				g.filter.Cutoff.Set(value)
			}
		case ParamResonance:
			g.resonance = value
			if g.filter != nil {
				g.filter.SetResonance(value)
			}
		}
	case EffectReverb:
		switch param {
		case ParamDecay:
			g.revDecay = value
			if g.reverb != nil {
				g.reverb.SetDecay(value)
			}
		case ParamMix:
			g.revMix = value
			if g.reverb != nil {
				g.reverb.SetMix(value)
			}
		case ParamRoomSize:
			// Room size changes the buffer lengths, which is a
			// topology-level change for the node.
			g.roomSize = value
			if g.reverb != nil {
				g.reverb = NewReverb(g.sampleRate, g.roomSize, g.revDecay, g.revMix)
			}
		}
	case EffectDelay:
		switch param {
		case ParamFeedback:
			g.feedback = value
			if g.delay != nil {
				g.delay.SetFeedback(value)
			}
		case ParamMix:
			g.delayMix = value
			if g.delay != nil {
				g.delay.SetMix(value)
			}
		case ParamTime:
			g.delayTime = value
			if g.delay != nil {
				g.delay = NewDelay(g.sampleRate, g.delayTime, g.feedback, g.delayMix)
			}
		}
	}
}

// ForceLowpass enables the filter as a lowpass, rebuilding only when
// the enabled-set actually changes. The automation sweep calls this
// before ramping.
func (g *Graph) ForceLowpass() {
	g.mu.Lock()
	defer g.mu.Unlock()
	changed := !g.filterOn || g.filterType != FilterLowpass
	g.filterType = FilterLowpass
	if !g.filterOn {
		g.filterOn = true
		g.rebuild()
		return
	}
	if changed && g.filter != nil {
		g.filter.Type = FilterLowpass
	}
}

// RampCutoff ramps the filter cutoff over a sample count. No-op when
// the filter is disabled.
func (g *Graph) RampCutoff(target float64, samples int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cutoff = target
	if g.filter != nil {
		g.filter.Cutoff.RampTo(target, samples)
	}
}

// CutoffValue returns the filter cutoff as currently heard, ramp
// included. Best-effort for UI display.
func (g *Graph) CutoffValue() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.filter != nil {
		return g.filter.Cutoff.Value()
	}
	return g.cutoff
}

// DryGain returns the dry-path gain of the delay split.
func (g *Graph) DryGain() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dryGain
}

// NoteOnAt schedules a note onset at an absolute sample position.
// Positions at or before the current clock fire on the next rendered
// sample.
func (g *Graph) NoteOnAt(at int64, freq, velocity float64, durSamples int) {
	g.mu.Lock()
	g.pending = append(g.pending, noteEvent{at: at, freq: freq, vel: velocity, dur: durSamples})
	sort.Slice(g.pending, func(i, j int) bool { return g.pending[i].at < g.pending[j].at })
	g.mu.Unlock()
}

// CancelPending drops all unfired onsets and releases sounding voices.
// Release tails still decay; no new onsets occur after this returns.
func (g *Graph) CancelPending() {
	g.mu.Lock()
	g.pending = g.pending[:0]
	for _, v := range g.voices {
		v.release()
	}
	g.mu.Unlock()
}

// ActiveVoices returns the number of sounding voices.
func (g *Graph) ActiveVoices() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, v := range g.voices {
		if v.active() {
			n++
		}
	}
	return n
}

// fireDue starts voices for events due at the given clock position.
// Caller holds the lock.
func (g *Graph) fireDue(now int64) {
	for len(g.pending) > 0 && g.pending[0].at <= now {
		ev := g.pending[0]
		g.pending = g.pending[1:]
		v := g.takeVoice()
		v.noteOn(ev.freq, ev.vel, ev.dur)
	}
}

// takeVoice returns a free voice, growing the pool up to maxVoices and
// stealing the first allocated (oldest) voice beyond that.
func (g *Graph) takeVoice() *voice {
	for _, v := range g.voices {
		if !v.active() {
			return v
		}
	}
	if len(g.voices) < maxVoices {
		v := newVoice(g.preset, float64(g.sampleRate))
		g.voices = append(g.voices, v)
		return v
	}
	return g.voices[0]
}

// Render fills buf with mono samples, firing due note events at their
// exact sample positions.
func (g *Graph) Render(buf []float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock.Load()
	for i := range buf {
		g.fireDue(now)

		var sum float64
		for _, v := range g.voices {
			if v.active() {
				sum += v.sample()
			}
		}
		sum *= g.preset.Gain

		if g.filter != nil {
			sum = g.filter.Process(sum)
		}
		if g.reverb != nil {
			sum = g.reverb.Process(sum)
		}
		// Parallel dry/wet split: the dry branch passes at unity
		// whether or not the delay exists.
		out := sum * g.dryGain
		if g.delay != nil {
			out += g.delay.Process(sum)
		}

		// Soft limit to stay inside [-1, 1] without hard clipping.
		if out > 0.9 {
			out = 0.9 + 0.1*math.Tanh((out-0.9)*10)
		} else if out < -0.9 {
			out = -0.9 + 0.1*math.Tanh((out+0.9)*10)
		}

		buf[i] = out
		now++
	}
	g.clock.Store(now)
}
