package scale

// ChordQuality identifies one of the built-in chord spellings.
type ChordQuality string

const (
	ChordMajor      ChordQuality = "maj"
	ChordMinor      ChordQuality = "min"
	ChordDim        ChordQuality = "dim"
	ChordAug        ChordQuality = "aug"
	ChordSus2       ChordQuality = "sus2"
	ChordSus4       ChordQuality = "sus4"
	ChordMajor6     ChordQuality = "maj6"
	ChordMinor6     ChordQuality = "min6"
	ChordMajor7     ChordQuality = "maj7"
	ChordMinor7     ChordQuality = "min7"
	ChordDom7       ChordQuality = "dom7"
	ChordDim7       ChordQuality = "dim7"
	ChordHalfDim7   ChordQuality = "m7b5"
	ChordMajorAdd9  ChordQuality = "add9"
)

var chordIntervals = map[ChordQuality][]int{
	ChordMajor:     {0, 4, 7},
	ChordMinor:     {0, 3, 7},
	ChordDim:       {0, 3, 6},
	ChordAug:       {0, 4, 8},
	ChordSus2:      {0, 2, 7},
	ChordSus4:      {0, 5, 7},
	ChordMajor6:    {0, 4, 7, 9},
	ChordMinor6:    {0, 3, 7, 9},
	ChordMajor7:    {0, 4, 7, 11},
	ChordMinor7:    {0, 3, 7, 10},
	ChordDom7:      {0, 4, 7, 10},
	ChordDim7:      {0, 3, 6, 9},
	ChordHalfDim7:  {0, 3, 6, 10},
	ChordMajorAdd9: {0, 4, 7, 14},
}

// ChordQualities lists all qualities in a stable order.
var ChordQualities = []ChordQuality{
	ChordMajor, ChordMinor, ChordDim, ChordAug, ChordSus2, ChordSus4,
	ChordMajor6, ChordMinor6, ChordMajor7, ChordMinor7, ChordDom7,
	ChordDim7, ChordHalfDim7, ChordMajorAdd9,
}

// ValidChord reports whether q is a known chord quality.
func ValidChord(q ChordQuality) bool {
	_, ok := chordIntervals[q]
	return ok
}

// ChordToMIDI spells a chord as absolute MIDI pitches. root is a pitch
// class 0..11; octave picks the register of the chord root.
func ChordToMIDI(root int, q ChordQuality, octave int) []int {
	iv, ok := chordIntervals[q]
	if !ok {
		iv = chordIntervals[ChordMajor]
	}
	base := octave*12 + root
	out := make([]int, len(iv))
	for i, semis := range iv {
		out[i] = base + semis
	}
	return out
}
