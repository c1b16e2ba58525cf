// Package engine drives playback: the transport scheduler that walks
// the pattern one sixteenth-note step at a time, and the automation
// runner for the filter sweep. Control calls are serialized on a
// mutex; the transport tick and the sweep run as independent
// goroutines layered over the synth graph's sample-domain event queue.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"scaleloop/debug"
	"scaleloop/pattern"
	"scaleloop/synth"
)

// Output is the realtime audio stream that pulls samples from the
// graph. Start must be safe to call more than once.
type Output interface {
	Start() error
	Stop()
}

// ErrAudioUnavailable wraps audio device failures surfaced by Play.
// The transport stays stopped; the caller may retry.
var ErrAudioUnavailable = errors.New("audio output unavailable")

// Engine is the playback facade the UI talks to. It owns the transport
// state and the sweep flag; pattern data stays in the store and is read
// live at every tick.
type Engine struct {
	mu    sync.Mutex
	store *pattern.Store
	graph *synth.Graph
	out   Output

	playing     atomic.Bool
	currentStep atomic.Int64

	looping   bool
	loopStart int
	loopEnd   int
	metronome bool

	sweepActive atomic.Bool

	stop chan struct{}
	done chan struct{}
}

// New creates a stopped engine over a store, graph, and audio output.
// The initial loop range covers the full pattern.
func New(store *pattern.Store, graph *synth.Graph, out Output) *Engine {
	e := &Engine{
		store:     store,
		graph:     graph,
		out:       out,
		looping:   true,
		loopStart: 0,
		loopEnd:   pattern.NumSteps,
	}
	e.currentStep.Store(-1)
	return e
}

// Play starts the transport from the loop start. A failure to bring up
// the audio output leaves the transport stopped with a recoverable
// error; a Play while already playing is a no-op.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playing.Load() {
		return nil
	}
	if err := e.out.Start(); err != nil {
		debug.Log("engine", "audio start failed: %v", err)
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.currentStep.Store(int64(e.loopStart))
	e.playing.Store(true)
	debug.Log("engine", "play from step %d", e.loopStart)
	go e.run(e.stop, e.done)
	return nil
}

// Stop halts the transport synchronously: when it returns, all pending
// onsets are cancelled and no new note will sound. Release tails are
// allowed to decay; the audio stream keeps running so a later Play
// does not renegotiate the device.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.playing.Load() {
		e.mu.Unlock()
		return
	}
	close(e.stop)
	done := e.done
	e.mu.Unlock()

	<-done
	e.graph.CancelPending()
	e.currentStep.Store(-1)
	debug.Log("engine", "stopped")
}

// Playing reports whether the transport is running.
func (e *Engine) Playing() bool {
	return e.playing.Load()
}

// CurrentStep returns the playhead step, or -1 when stopped.
func (e *Engine) CurrentStep() int {
	return int(e.currentStep.Load())
}

// SetTempo forwards to the store; the transport picks the new tempo up
// at the next tick boundary.
func (e *Engine) SetTempo(bpm int) {
	e.store.SetTempo(bpm)
}

// SetLooping changes the wrap behavior for subsequent ticks.
func (e *Engine) SetLooping(on bool) {
	e.mu.Lock()
	e.looping = on
	e.mu.Unlock()
}

// SetLoopRange sets the playback window [startStep, endStep). Invalid
// ranges are rejected silently. While playing, the change affects
// subsequent ticks only.
func (e *Engine) SetLoopRange(startStep, endStep int) {
	if startStep < 0 || endStep > pattern.NumSteps || startStep >= endStep {
		return
	}
	e.mu.Lock()
	e.loopStart = startStep
	e.loopEnd = endStep
	e.mu.Unlock()
}

// LoopRange returns the playback window.
func (e *Engine) LoopRange() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loopStart, e.loopEnd
}

// SetMetronome toggles the click track.
func (e *Engine) SetMetronome(on bool) {
	e.mu.Lock()
	e.metronome = on
	e.mu.Unlock()
}

// Metronome reports whether the click track is on.
func (e *Engine) Metronome() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metronome
}

// SetVoiceType forwards to the graph.
func (e *Engine) SetVoiceType(vt synth.VoiceType) {
	e.graph.SetVoiceType(vt)
}

// ApplyPreset forwards to the graph.
func (e *Engine) ApplyPreset(vt synth.VoiceType) {
	e.graph.ApplyPreset(vt)
}

// SetEffectEnabled forwards to the graph.
func (e *Engine) SetEffectEnabled(fx synth.Effect, on bool) {
	e.graph.SetEffectEnabled(fx, on)
}

// EffectEnabled forwards to the graph.
func (e *Engine) EffectEnabled(fx synth.Effect) bool {
	return e.graph.EffectEnabled(fx)
}

// SetEffectParam forwards to the graph.
func (e *Engine) SetEffectParam(fx synth.Effect, param string, value float64) {
	e.graph.SetEffectParam(fx, param, value)
}

// CutoffValue returns the filter cutoff as currently heard, for UI
// polling during the sweep.
func (e *Engine) CutoffValue() float64 {
	return e.graph.CutoffValue()
}

func stepDuration(tempo int) time.Duration {
	// One sixteenth note: a quarter of a beat.
	return time.Duration(float64(time.Minute) / float64(tempo) / 4)
}
