// Package pattern holds the mutable composition state: the note grid,
// chord markers, bar selection, and undo history. The transport reads
// through the Store so edits during playback are audible on the next
// tick.
package pattern

import "scaleloop/scale"

const (
	// StepsPerBar is the grid resolution: sixteen sixteenth-notes.
	StepsPerBar = 16
	// NumBars is the fixed pattern length in bars.
	NumBars = 16
	// NumSteps is the total step count of a pattern.
	NumSteps = NumBars * StepsPerBar
	// PitchOctaves bounds the playable degree range.
	PitchOctaves = 4

	// MinTempo and MaxTempo bound the transport tempo in BPM.
	MinTempo = 120
	MaxTempo = 160

	// DefaultVelocity is assigned to notes created by toggling.
	DefaultVelocity = 100
	// DefaultLength is the step length of a toggled note.
	DefaultLength = 1
)

// Note is one cell of the grid. Pitch is a scale-degree index, not a
// MIDI pitch; the transport converts at trigger time via the active
// scale.
type Note struct {
	Step     int  `json:"step"`
	Pitch    int  `json:"pitch"`
	Velocity int  `json:"velocity"`
	Length   int  `json:"length"`
	Accent   bool `json:"accent,omitempty"`
}

// Key identifies a note's grid cell. No two notes share a Key.
type Key struct {
	Step  int
	Pitch int
}

// NoteSet is the grid contents keyed by cell.
type NoteSet map[Key]Note

// Clone returns a deep copy of the set.
func (ns NoteSet) Clone() NoteSet {
	out := make(NoteSet, len(ns))
	for k, n := range ns {
		out[k] = n
	}
	return out
}

// Equal reports structural equality of two sets.
func (ns NoteSet) Equal(other NoteSet) bool {
	if len(ns) != len(other) {
		return false
	}
	for k, n := range ns {
		if o, ok := other[k]; !ok || o != n {
			return false
		}
	}
	return true
}

// ChordMarker tags a step range with a chord. Markers never overlap;
// Insert clips or rejects against neighbors.
type ChordMarker struct {
	Step     int                `json:"step"`
	Root     int                `json:"root"` // pitch class 0..11
	Quality  scale.ChordQuality `json:"quality"`
	Duration int                `json:"duration"` // steps
}

// Selection is a bar range. It is both the clipboard region and the
// playback loop region.
type Selection struct {
	StartBar int `json:"startBar"`
	EndBar   int `json:"endBar"`
}

// StartStep returns the first step of the selection.
func (s Selection) StartStep() int { return s.StartBar * StepsPerBar }

// EndStep returns the step one past the selection.
func (s Selection) EndStep() int { return s.EndBar * StepsPerBar }

// Steps returns the selection length in steps.
func (s Selection) Steps() int { return s.EndStep() - s.StartStep() }

// Contains reports whether step falls inside the selection.
func (s Selection) Contains(step int) bool {
	return step >= s.StartStep() && step < s.EndStep()
}

// Pattern is the composition: notes plus the musical context they are
// interpreted in.
type Pattern struct {
	Notes  NoteSet       `json:"-"`
	Scale  scale.Name    `json:"scale"`
	Root   int           `json:"rootNote"`
	Tempo  int           `json:"tempo"`
	Chords []ChordMarker `json:"chords,omitempty"`
}

// NewPattern returns an empty pattern with session defaults: A minor
// at 120 BPM.
func NewPattern() Pattern {
	return Pattern{
		Notes: make(NoteSet),
		Scale: scale.Minor,
		Root:  57,
		Tempo: MinTempo,
	}
}

// NotesAt returns the notes starting at the given step, in no
// particular order.
func (p *Pattern) NotesAt(step int) []Note {
	var out []Note
	for k, n := range p.Notes {
		if k.Step == step {
			out = append(out, n)
		}
	}
	return out
}

// ChordAt returns the marker covering step, if any.
func (p *Pattern) ChordAt(step int) (ChordMarker, bool) {
	for _, m := range p.Chords {
		if step >= m.Step && step < m.Step+m.Duration {
			return m, true
		}
	}
	return ChordMarker{}, false
}

// maxDegree is the highest playable degree under the pattern's scale.
func (p *Pattern) maxDegree() int {
	return scale.DegreeCount(p.Scale)*PitchOctaves - 1
}

func clampTempo(bpm int) int {
	if bpm < MinTempo {
		return MinTempo
	}
	if bpm > MaxTempo {
		return MaxTempo
	}
	return bpm
}
