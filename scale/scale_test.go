package scale

import (
	"math"
	"testing"
)

func TestDegreeZeroIsRoot(t *testing.T) {
	// A3 root under minor: degree 0 must be the root itself.
	if got := DegreeToMIDI(0, Minor, 57); got != 57 {
		t.Errorf("DegreeToMIDI(0, minor, 57) = %d, want 57", got)
	}
}

func TestDegreeOctaveWrap(t *testing.T) {
	// Degree 7 of a 7-note scale is the root one octave up.
	if got := DegreeToMIDI(7, Minor, 57); got != 69 {
		t.Errorf("degree 7 = %d, want 69", got)
	}
	// Pentatonic wraps at 5 degrees.
	if got := DegreeToMIDI(5, MinorPentatonic, 60); got != 72 {
		t.Errorf("pentatonic degree 5 = %d, want 72", got)
	}
}

func TestNearestDegreeRoundTrip(t *testing.T) {
	for _, name := range Names {
		for d := 0; d < DegreeCount(name)*4; d++ {
			midi := DegreeToMIDI(d, name, 57)
			if got := NearestDegree(midi, name, 57); got != d {
				t.Errorf("%s: NearestDegree(DegreeToMIDI(%d)) = %d", name, d, got)
			}
		}
	}
}

func TestNearestDegreeTieBreaksLow(t *testing.T) {
	// In whole tone {0,2,4,...} a semitone offset of 1 is equidistant
	// from 0 and 2; the forward scan must pick degree 0.
	if got := NearestDegree(61, WholeTone, 60); got != 0 {
		t.Errorf("tie break = %d, want 0", got)
	}
}

func TestNearestDegreeBelowRoot(t *testing.T) {
	// One semitone below an A root in minor is closest to the seventh
	// (10 semitones) of the octave below.
	if got := NearestDegree(56, Minor, 57); got != -1 {
		t.Errorf("NearestDegree(56) = %d, want -1", got)
	}
}

func TestMIDIToFreq(t *testing.T) {
	if f := MIDIToFreq(69); math.Abs(f-440.0) > 1e-9 {
		t.Errorf("A4 = %f, want 440", f)
	}
	if f := MIDIToFreq(57); math.Abs(f-220.0) > 1e-9 {
		t.Errorf("A3 = %f, want 220", f)
	}
	// One octave doubles.
	if r := MIDIToFreq(81) / MIDIToFreq(69); math.Abs(r-2.0) > 1e-9 {
		t.Errorf("octave ratio = %f", r)
	}
}

func TestFourteenScales(t *testing.T) {
	if len(Names) != 14 {
		t.Fatalf("expected 14 scales, have %d", len(Names))
	}
	for _, name := range Names {
		if !Valid(name) {
			t.Errorf("%s not valid", name)
		}
		iv := Intervals(name)
		if iv[0] != 0 {
			t.Errorf("%s does not start at the root", name)
		}
		for i := 1; i < len(iv); i++ {
			if iv[i] <= iv[i-1] {
				t.Errorf("%s intervals not strictly ascending", name)
			}
			if iv[i] > 11 {
				t.Errorf("%s interval %d out of octave", name, iv[i])
			}
		}
	}
}

func TestChordSpelling(t *testing.T) {
	if len(ChordQualities) != 14 {
		t.Fatalf("expected 14 chord qualities, have %d", len(ChordQualities))
	}
	got := ChordToMIDI(0, ChordMinor7, 5) // C5-rooted Cm7
	want := []int{60, 63, 67, 70}
	if len(got) != len(want) {
		t.Fatalf("Cm7 = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Cm7[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
