// Package midifile turns a pattern into a standard MIDI file. The
// transform is pure: it reads the same pattern shape the sequencer
// plays but never touches the live engine, so an export during
// playback is safe.
package midifile

import (
	"fmt"
	"io"
	"math/rand"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"scaleloop/pattern"
	"scaleloop/scale"
)

// VelocityCurve reshapes programmed velocities on export.
type VelocityCurve string

const (
	CurveAsIs     VelocityCurve = "as-is"
	CurveCompress VelocityCurve = "compress"
	CurveExpand   VelocityCurve = "expand"
	CurveHumanize VelocityCurve = "humanize"
)

// LengthPolicy controls exported note durations.
type LengthPolicy string

const (
	LengthAsProgrammed LengthPolicy = "as-programmed"
	LengthLegato       LengthPolicy = "legato"
	LengthStaccato     LengthPolicy = "staccato"
)

// Options selects the export transform. HumanizeSeed makes the
// humanize curve deterministic; the same pattern, options, and seed
// always produce byte-identical output.
type Options struct {
	Curve        VelocityCurve
	Length       LengthPolicy
	HumanizeSeed int64
}

const (
	ticksPerQuarter = 960
	ticksPerStep    = ticksPerQuarter / 4
	melodyChannel   = 0
	chordChannel    = 1
	chordOctave     = 5
	chordVelocity   = 90
	accentBoost     = 15
)

// event is one absolute-tick MIDI message before delta encoding.
type event struct {
	tick uint32
	off  bool // note-offs sort before note-ons at the same tick
	msg  midi.Message
}

// Export renders a pattern as a one-track-per-channel SMF.
func Export(p pattern.Pattern, opts Options) (*smf.SMF, error) {
	if opts.Curve == "" {
		opts.Curve = CurveAsIs
	}
	if opts.Length == "" {
		opts.Length = LengthAsProgrammed
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var meta smf.Track
	meta.Add(0, smf.MetaMeter(4, 4))
	meta.Add(0, smf.MetaTempo(float64(p.Tempo)))
	meta.Close(0)
	if err := sm.Add(meta); err != nil {
		return nil, fmt.Errorf("tempo track: %w", err)
	}

	if err := sm.Add(melodyTrack(p, opts)); err != nil {
		return nil, fmt.Errorf("melody track: %w", err)
	}
	if len(p.Chords) > 0 {
		if err := sm.Add(chordTrack(p, opts)); err != nil {
			return nil, fmt.Errorf("chord track: %w", err)
		}
	}
	return sm, nil
}

// Write exports a pattern to w as a binary MIDI file.
func Write(w io.Writer, p pattern.Pattern, opts Options) error {
	sm, err := Export(p, opts)
	if err != nil {
		return err
	}
	_, err = sm.WriteTo(w)
	return err
}

func melodyTrack(p pattern.Pattern, opts Options) smf.Track {
	notes := sortedNotes(p)
	rng := rand.New(rand.NewSource(opts.HumanizeSeed))

	var evs []event
	for _, n := range notes {
		key := scale.DegreeToMIDI(n.Pitch, p.Scale, p.Root)
		if key < 0 || key > 127 {
			continue
		}
		vel := n.Velocity
		if n.Accent {
			vel += accentBoost
		}
		vel = applyCurve(vel, opts.Curve, rng)

		on := uint32(n.Step) * ticksPerStep
		evs = append(evs,
			event{tick: on, msg: midi.NoteOn(melodyChannel, uint8(key), uint8(vel))},
			event{tick: on + noteTicks(p, n, opts.Length), off: true, msg: midi.NoteOff(melodyChannel, uint8(key))},
		)
	}
	return deltaEncode(evs)
}

func chordTrack(p pattern.Pattern, opts Options) smf.Track {
	markers := append([]pattern.ChordMarker(nil), p.Chords...)
	sort.Slice(markers, func(i, j int) bool { return markers[i].Step < markers[j].Step })

	var evs []event
	for _, m := range markers {
		on := uint32(m.Step) * ticksPerStep
		dur := uint32(m.Duration) * ticksPerStep
		if opts.Length == LengthStaccato {
			dur = ticksPerStep / 2
		}
		for _, key := range scale.ChordToMIDI(m.Root, m.Quality, chordOctave) {
			if key < 0 || key > 127 {
				continue
			}
			evs = append(evs,
				event{tick: on, msg: midi.NoteOn(chordChannel, uint8(key), chordVelocity)},
				event{tick: on + dur, off: true, msg: midi.NoteOff(chordChannel, uint8(key))},
			)
		}
	}
	return deltaEncode(evs)
}

// sortedNotes returns the note set in (step, pitch) order so the
// humanize stream is deterministic.
func sortedNotes(p pattern.Pattern) []pattern.Note {
	notes := make([]pattern.Note, 0, len(p.Notes))
	for _, n := range p.Notes {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].Step != notes[j].Step {
			return notes[i].Step < notes[j].Step
		}
		return notes[i].Pitch < notes[j].Pitch
	})
	return notes
}

// noteTicks resolves a note's exported duration.
func noteTicks(p pattern.Pattern, n pattern.Note, policy LengthPolicy) uint32 {
	switch policy {
	case LengthStaccato:
		return ticksPerStep / 2
	case LengthLegato:
		// Extend to the next onset at the same pitch, or the pattern
		// end when it is the last one.
		next := pattern.NumSteps
		for _, other := range p.Notes {
			if other.Pitch == n.Pitch && other.Step > n.Step && other.Step < next {
				next = other.Step
			}
		}
		return uint32(next-n.Step) * ticksPerStep
	default:
		return uint32(n.Length) * ticksPerStep
	}
}

// applyCurve reshapes one velocity, clamped to the MIDI range.
func applyCurve(vel int, curve VelocityCurve, rng *rand.Rand) int {
	switch curve {
	case CurveCompress:
		vel = 64 + (vel-64)/2
	case CurveExpand:
		vel = 64 + (vel-64)*3/2
	case CurveHumanize:
		vel += rng.Intn(21) - 10
	}
	if vel < 1 {
		vel = 1
	}
	if vel > 127 {
		vel = 127
	}
	return vel
}

// deltaEncode sorts absolute events and emits them as a closed track.
func deltaEncode(evs []event) smf.Track {
	sort.SliceStable(evs, func(i, j int) bool {
		if evs[i].tick != evs[j].tick {
			return evs[i].tick < evs[j].tick
		}
		return evs[i].off && !evs[j].off
	})

	var tr smf.Track
	var last uint32
	for _, ev := range evs {
		tr.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	tr.Close(0)
	return tr
}
