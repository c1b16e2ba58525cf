package pattern

import (
	"testing"

	"scaleloop/scale"
)

func TestToggleTwiceRestoresSet(t *testing.T) {
	s := NewStore()
	s.ToggleNote(4, 2)
	before := s.Snapshot().Notes
	s.ToggleNote(9, 5)
	s.ToggleNote(9, 5)
	after := s.Snapshot().Notes
	if !before.Equal(after) {
		t.Errorf("double toggle changed the note set: %v vs %v", before, after)
	}
}

func TestToggleInsertsDefaults(t *testing.T) {
	s := NewStore()
	s.ToggleNote(0, 0)
	notes := s.NotesAt(0)
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
	n := notes[0]
	if n.Velocity != DefaultVelocity || n.Length != DefaultLength {
		t.Errorf("unexpected defaults: %+v", n)
	}
}

func TestToggleRejectsOutOfRange(t *testing.T) {
	s := NewStore()
	v := s.Version()
	s.ToggleNote(-1, 0)
	s.ToggleNote(NumSteps, 0)
	s.ToggleNote(0, scale.DegreeCount(scale.Minor)*PitchOctaves)
	if s.Version() != v {
		t.Error("out-of-range toggles must be rejected silently")
	}
}

func TestUndoRedoExactness(t *testing.T) {
	s := NewStore()
	s.ToggleNote(0, 0)
	afterFirst := s.Snapshot().Notes
	s.ToggleNote(16, 3)
	afterSecond := s.Snapshot().Notes

	s.Undo()
	if !s.Snapshot().Notes.Equal(afterFirst) {
		t.Error("undo did not restore the prior set")
	}
	s.Redo()
	if !s.Snapshot().Notes.Equal(afterSecond) {
		t.Error("redo did not restore the undone set")
	}
}

func TestUndoTruncatesRedoTail(t *testing.T) {
	s := NewStore()
	s.ToggleNote(0, 0)
	s.ToggleNote(1, 1)
	s.Undo()
	s.ToggleNote(2, 2) // new branch
	s.Redo()           // no redo tail left
	want := s.Snapshot().Notes
	if _, ok := want[Key{Step: 1, Pitch: 1}]; ok {
		t.Error("redo resurrected a truncated branch")
	}
	if _, ok := want[Key{Step: 2, Pitch: 2}]; !ok {
		t.Error("new branch lost")
	}
}

func TestUndoAtFloorIsNoop(t *testing.T) {
	s := NewStore()
	s.Undo()
	if len(s.Snapshot().Notes) != 0 {
		t.Error("undo on empty history changed state")
	}
}

func TestScaleChangeRoundTrip(t *testing.T) {
	s := NewStore()
	s.ToggleNote(0, 0)
	s.ToggleNote(4, 3)
	s.ToggleNote(8, 9)

	// Absolute pitches under the original scale.
	orig := s.Snapshot()
	absBefore := map[Key]int{}
	for k, n := range orig.Notes {
		absBefore[k] = scale.DegreeToMIDI(n.Pitch, orig.Scale, orig.Root)
	}

	s.SetScale(scale.Dorian)
	s.SetScale(scale.Minor)

	after := s.Snapshot()
	for _, n := range after.Notes {
		midi := scale.DegreeToMIDI(n.Pitch, after.Scale, after.Root)
		// Returning to the original scale may land at most one scale
		// step away from where the note began.
		closest := 128
		for _, want := range absBefore {
			d := midi - want
			if d < 0 {
				d = -d
			}
			if d < closest {
				closest = d
			}
		}
		if closest > 2 {
			t.Errorf("note drifted %d semitones after scale round trip", closest)
		}
	}
}

func TestSetScaleRequantizesByAbsolutePitch(t *testing.T) {
	s := NewStore()
	// Degree 2 of minor from A3 is C4 (60).
	s.ToggleNote(0, 2)
	s.SetScale(scale.Major)
	p := s.Snapshot()
	notes := p.NotesAt(0)
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
	midi := scale.DegreeToMIDI(notes[0].Pitch, p.Scale, p.Root)
	// C4 quantized into A major: nearest of {A,B,C#,...} to C is C#
	// or B, one semitone either way.
	if midi < 59 || midi > 61 {
		t.Errorf("requantized pitch %d not near original 60", midi)
	}
}

func TestLoopFillNeverDuplicatesCells(t *testing.T) {
	s := NewStore()
	s.SetSelection(0, 1)
	s.ToggleNote(0, 0)
	s.ToggleNote(4, 2)
	// Occupy a cell the fill would otherwise write.
	s.SetSelection(1, 2)
	s.ToggleNote(20, 2) // step 4 of bar 1
	s.SetSelection(0, 1)

	s.LoopFill()

	p := s.Snapshot()
	seen := map[Key]bool{}
	for k := range p.Notes {
		if seen[k] {
			t.Fatalf("duplicate cell %v", k)
		}
		seen[k] = true
	}
	// Fill must repeat into every following bar.
	if len(p.NotesAt(16*4)) == 0 {
		t.Error("loop fill did not reach bar 4")
	}
	// The occupied cell keeps its original note.
	if len(p.NotesAt(20)) != 1 {
		t.Error("occupied cell was disturbed")
	}
}

func TestNudgeWrapsInsideSelection(t *testing.T) {
	s := NewStore()
	s.SetSelection(0, 1)
	s.ToggleNote(15, 0) // last step of the selection
	s.ToggleNote(3, 1)
	s.Nudge(1)
	p := s.Snapshot()
	if len(p.NotesAt(0)) != 1 {
		t.Error("note at selection end did not wrap to selection start")
	}
	if len(p.NotesAt(4)) != 1 {
		t.Error("interior note did not advance one step")
	}
	if len(p.NotesAt(16)) != 0 {
		t.Error("nudge leaked past the selection boundary")
	}
}

func TestTransposeLeavesOutOfRangeNotes(t *testing.T) {
	s := NewStore()
	max := scale.DegreeCount(scale.Minor)*PitchOctaves - 1
	s.ToggleNote(0, max)
	s.ToggleNote(0, 3)
	s.Transpose(1)
	p := s.Snapshot()
	if len(p.NotesAt(0)) != 2 {
		t.Fatal("transpose dropped a note")
	}
	var pitches []int
	for _, n := range p.NotesAt(0) {
		pitches = append(pitches, n.Pitch)
	}
	hasMax, hasFour := false, false
	for _, p := range pitches {
		if p == max {
			hasMax = true
		}
		if p == 4 {
			hasFour = true
		}
	}
	if !hasMax {
		t.Error("note at the ceiling must stay unchanged, not clamp or drop")
	}
	if !hasFour {
		t.Error("in-range note did not transpose")
	}
}

func TestCutPasteRoundTrip(t *testing.T) {
	s := NewStore()
	s.SetSelection(0, 2)
	s.ToggleNote(0, 0)
	s.ToggleNote(17, 5)
	before := s.Snapshot().Notes
	s.Cut()
	if len(s.Snapshot().Notes) != 0 {
		t.Fatal("cut left notes behind")
	}
	s.Paste()
	if !s.Snapshot().Notes.Equal(before) {
		t.Error("paste at the same selection did not restore the cut notes")
	}
}

func TestPasteIntoLaterBars(t *testing.T) {
	s := NewStore()
	s.SetSelection(0, 1)
	s.ToggleNote(2, 1)
	s.Copy()
	s.SetSelection(4, 5)
	s.Paste()
	p := s.Snapshot()
	if len(p.NotesAt(4*16+2)) != 1 {
		t.Error("pasted note missing at relocated step")
	}
}

func TestDuplicateReplacesFollowingBars(t *testing.T) {
	s := NewStore()
	s.SetSelection(0, 1)
	s.ToggleNote(0, 0)
	s.SetSelection(1, 2)
	s.ToggleNote(16, 7) // will be overwritten by the duplicate
	s.SetSelection(0, 1)
	s.Duplicate()
	p := s.Snapshot()
	notes := p.NotesAt(16)
	if len(notes) != 1 || notes[0].Pitch != 0 {
		t.Errorf("duplicate did not replace target bar: %v", notes)
	}
}

func TestChordMarkersNeverOverlap(t *testing.T) {
	s := NewStore()
	if !s.InsertChord(ChordMarker{Step: 0, Root: 9, Quality: scale.ChordMinor, Duration: 16}) {
		t.Fatal("first marker rejected")
	}
	// Starting inside an existing marker is rejected.
	if s.InsertChord(ChordMarker{Step: 8, Root: 0, Quality: scale.ChordMajor, Duration: 8}) {
		t.Error("overlapping start accepted")
	}
	// A marker reaching into a later one gets clipped.
	if !s.InsertChord(ChordMarker{Step: 32, Root: 2, Quality: scale.ChordDom7, Duration: 16}) {
		t.Fatal("later marker rejected")
	}
	if !s.InsertChord(ChordMarker{Step: 24, Root: 5, Quality: scale.ChordMajor, Duration: 16}) {
		t.Fatal("clippable marker rejected")
	}
	m, ok := s.ChordAt(24)
	if !ok || m.Duration != 8 {
		t.Errorf("marker not clipped against neighbor: %+v", m)
	}
}

func TestSelectionValidation(t *testing.T) {
	s := NewStore()
	s.SetSelection(3, 3)  // empty
	s.SetSelection(5, 2)  // inverted
	s.SetSelection(0, 99) // out of range
	sel := s.Selection()
	if sel.StartBar != 0 || sel.EndBar != NumBars {
		t.Errorf("invalid selections must be rejected, got %+v", sel)
	}
}

func TestReplaceResetsHistory(t *testing.T) {
	s := NewStore()
	s.ToggleNote(0, 0)
	p := NewPattern()
	p.Notes[Key{Step: 5, Pitch: 5}] = Note{Step: 5, Pitch: 5, Velocity: 90, Length: 2}
	s.Replace(p)
	s.Undo()
	snap := s.Snapshot()
	if len(snap.NotesAt(5)) != 1 {
		t.Error("undo crossed a pattern replacement")
	}
}
