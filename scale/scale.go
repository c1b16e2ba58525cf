// Package scale maps between scale-degree pitches and absolute MIDI
// pitches. All functions are pure; the active scale lives in the
// pattern store, not here.
package scale

import "math"

// Name identifies one of the built-in scales.
type Name string

const (
	Major           Name = "major"
	Minor           Name = "minor"
	Dorian          Name = "dorian"
	Phrygian        Name = "phrygian"
	Lydian          Name = "lydian"
	Mixolydian      Name = "mixolydian"
	Locrian         Name = "locrian"
	HarmonicMinor   Name = "harmonicMinor"
	MelodicMinor    Name = "melodicMinor"
	MajorPentatonic Name = "majorPentatonic"
	MinorPentatonic Name = "minorPentatonic"
	Blues           Name = "blues"
	WholeTone       Name = "wholeTone"
	Chromatic       Name = "chromatic"
)

// intervals holds the semitone offsets from the root for one octave of
// each scale.
var intervals = map[Name][]int{
	Major:           {0, 2, 4, 5, 7, 9, 11},
	Minor:           {0, 2, 3, 5, 7, 8, 10},
	Dorian:          {0, 2, 3, 5, 7, 9, 10},
	Phrygian:        {0, 1, 3, 5, 7, 8, 10},
	Lydian:          {0, 2, 4, 6, 7, 9, 11},
	Mixolydian:      {0, 2, 4, 5, 7, 9, 10},
	Locrian:         {0, 1, 3, 5, 6, 8, 10},
	HarmonicMinor:   {0, 2, 3, 5, 7, 8, 11},
	MelodicMinor:    {0, 2, 3, 5, 7, 9, 11},
	MajorPentatonic: {0, 2, 4, 7, 9},
	MinorPentatonic: {0, 3, 5, 7, 10},
	Blues:           {0, 3, 5, 6, 7, 10},
	WholeTone:       {0, 2, 4, 6, 8, 10},
	Chromatic:       {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

// Names lists all scales in a stable order for UI cycling and
// catalog validation.
var Names = []Name{
	Major, Minor, Dorian, Phrygian, Lydian, Mixolydian, Locrian,
	HarmonicMinor, MelodicMinor, MajorPentatonic, MinorPentatonic,
	Blues, WholeTone, Chromatic,
}

// Valid reports whether name is a known scale.
func Valid(name Name) bool {
	_, ok := intervals[name]
	return ok
}

// Intervals returns the semitone offsets of a scale. Unknown names fall
// back to minor so a corrupt pattern still plays something sensible.
func Intervals(name Name) []int {
	iv, ok := intervals[name]
	if !ok {
		return intervals[Minor]
	}
	return iv
}

// DegreeCount returns the number of degrees per octave in a scale.
func DegreeCount(name Name) int {
	return len(Intervals(name))
}

// DegreeToMIDI converts a scale-degree index to an absolute MIDI pitch.
// Degrees wrap across octaves: degree 7 of a 7-note scale is the root
// one octave up.
func DegreeToMIDI(degree int, name Name, root int) int {
	iv := Intervals(name)
	octave := degree / len(iv)
	idx := degree % len(iv)
	if idx < 0 {
		idx += len(iv)
		octave--
	}
	return root + 12*octave + iv[idx]
}

// NearestDegree maps an absolute MIDI pitch to the closest degree of a
// scale. Ties pick the lower-index interval (first match in a forward
// scan), which biases quantization toward the root.
func NearestDegree(midi int, name Name, root int) int {
	iv := Intervals(name)
	offset := midi - root
	octave := offset / 12
	rem := offset % 12
	if rem < 0 {
		rem += 12
		octave--
	}
	best := 0
	bestDist := 128
	for i, semis := range iv {
		d := semis - rem
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return octave*len(iv) + best
}

// MIDIToFreq converts a MIDI pitch to frequency in Hz using equal
// temperament with A4 = 440 Hz.
func MIDIToFreq(midi int) float64 {
	return 440.0 * math.Pow(2.0, float64(midi-69)/12.0)
}
