package engine

import (
	"time"

	"scaleloop/debug"
	"scaleloop/scale"
)

// lookAhead is how far before a step's deadline its tick runs. Onsets
// are scheduled against the graph's sample clock for the exact
// deadline, so tick wakeup jitter inside this window is inaudible.
const lookAhead = 25 * time.Millisecond

// Metronome click pitches. The bar downbeat gets the higher pitch and
// full velocity.
const (
	clickPitch       = 76
	clickAccentPitch = 77
	accentVelocity   = 1.0
	clickVelocity    = 0.6
	chordOctave      = 5
	chordVelocity    = 0.7
)

// run is the transport goroutine. Each iteration handles one
// sixteenth-note step: it reads the live pattern, schedules that
// step's onsets at the step deadline's sample position, then advances
// or stops. The tempo is re-read every iteration so changes land on
// tick boundaries.
func (e *Engine) run(stop <-chan struct{}, done chan<- struct{}) {
	defer func() {
		e.playing.Store(false)
		close(done)
	}()

	deadline := time.Now().Add(lookAhead)
	for {
		step := int(e.currentStep.Load())
		e.tick(step, deadline)

		e.mu.Lock()
		next, ok := advance(step, e.loopStart, e.loopEnd, e.looping)
		e.mu.Unlock()
		if !ok {
			e.currentStep.Store(-1)
			debug.Log("engine", "reached loop end, stopping")
			return
		}

		dur := stepDuration(e.store.Tempo())
		deadline = deadline.Add(dur)
		timer := time.NewTimer(time.Until(deadline.Add(-lookAhead)))
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}
		e.currentStep.Store(int64(next))
	}
}

// advance returns the step after cur within [loopStart, loopEnd),
// wrapping when looping. ok is false when non-looping playback has
// finished the range.
func advance(cur, loopStart, loopEnd int, looping bool) (int, bool) {
	next := cur + 1
	if next >= loopEnd {
		if !looping {
			return -1, false
		}
		return loopStart, true
	}
	return next, true
}

// tick schedules everything sounding at one step. It reads through the
// store so edits made during playback are audible on the very next
// tick.
func (e *Engine) tick(step int, deadline time.Time) {
	onset := e.sampleAt(deadline)
	dur := stepDuration(e.store.Tempo())
	stepSamples := e.durSamples(dur)

	pat := e.store.Snapshot()
	for _, n := range pat.NotesAt(step) {
		midi := scale.DegreeToMIDI(n.Pitch, pat.Scale, pat.Root)
		vel := float64(n.Velocity) / 127.0
		if n.Accent {
			vel *= 1.25
			if vel > 1 {
				vel = 1
			}
		}
		e.graph.NoteOnAt(onset, scale.MIDIToFreq(midi), vel, n.Length*stepSamples)
	}

	if m, ok := pat.ChordAt(step); ok && m.Step == step {
		for _, midi := range scale.ChordToMIDI(m.Root, m.Quality, chordOctave) {
			e.graph.NoteOnAt(onset, scale.MIDIToFreq(midi), chordVelocity, m.Duration*stepSamples)
		}
	}

	e.mu.Lock()
	click := e.metronome
	loopStart := e.loopStart
	e.mu.Unlock()
	if click && (step-loopStart)%4 == 0 {
		pitch, vel := clickPitch, clickVelocity
		if (step-loopStart)%16 == 0 {
			pitch, vel = clickAccentPitch, accentVelocity
		}
		e.graph.NoteOnAt(onset, scale.MIDIToFreq(pitch), vel, stepSamples/8)
	}
}

// sampleAt converts a wall-clock deadline into a graph sample
// position: the current sample clock plus the samples the render side
// will produce before that instant.
func (e *Engine) sampleAt(t time.Time) int64 {
	delta := time.Until(t)
	if delta < 0 {
		delta = 0
	}
	return e.graph.Now() + int64(delta.Seconds()*float64(e.graph.SampleRate()))
}

func (e *Engine) durSamples(d time.Duration) int {
	return int(d.Seconds() * float64(e.graph.SampleRate()))
}
