package pattern

import (
	"sync"

	"scaleloop/scale"
)

// Store owns the live pattern. All mutation goes through its methods;
// the transport calls Snapshot/NotesAt on every tick so it always sees
// the latest edits rather than a copy captured at play start.
type Store struct {
	mu       sync.RWMutex
	pat      Pattern
	sel      Selection
	clip     []Note // clipboard, steps relative to the copied selection
	clipBars int
	hist     *history
	version  uint64

	// OnChange, if set, is called after every committed mutation with
	// the lock released. The UI uses it to refresh.
	OnChange func()
}

// NewStore creates a store holding an empty pattern with the full
// 16-bar range selected.
func NewStore() *Store {
	p := NewPattern()
	return &Store{
		pat:  p,
		sel:  Selection{StartBar: 0, EndBar: NumBars},
		hist: newHistory(p.Notes),
	}
}

// Snapshot returns a copy of the current pattern. The note set is
// cloned so the caller can iterate without holding the lock.
func (s *Store) Snapshot() Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.pat
	p.Notes = s.pat.Notes.Clone()
	p.Chords = append([]ChordMarker(nil), s.pat.Chords...)
	return p
}

// NotesAt returns the notes starting at step. Called per tick; the
// returned notes are values, safe after the lock drops.
func (s *Store) NotesAt(step int) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pat.NotesAt(step)
}

// ChordAt returns the chord marker covering step, if any.
func (s *Store) ChordAt(step int) (ChordMarker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pat.ChordAt(step)
}

// Tempo returns the current tempo. Read by the transport at every tick
// boundary.
func (s *Store) Tempo() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pat.Tempo
}

// Selection returns the current bar selection.
func (s *Store) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel
}

// Version increments on every committed mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// commit records the new note set as one atomic history entry.
func (s *Store) commit(next NoteSet) {
	s.pat.Notes = next
	s.hist.push(next)
	s.version++
}

func (s *Store) notify() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

// ToggleNote removes the note at (step, pitch) if present, otherwise
// inserts one with default velocity and length. Out-of-range cells are
// ignored.
func (s *Store) ToggleNote(step, pitch int) {
	s.mu.Lock()
	if step < 0 || step >= NumSteps || pitch < 0 || pitch > s.pat.maxDegree() {
		s.mu.Unlock()
		return
	}
	next := s.pat.Notes.Clone()
	k := Key{Step: step, Pitch: pitch}
	if _, ok := next[k]; ok {
		delete(next, k)
	} else {
		next[k] = Note{
			Step:     step,
			Pitch:    pitch,
			Velocity: DefaultVelocity,
			Length:   DefaultLength,
		}
	}
	s.commit(next)
	s.mu.Unlock()
	s.notify()
}

// SetScale re-quantizes every note through its absolute pitch under the
// old scale to the nearest degree of the new scale, then swaps scales.
// Colliding notes after re-quantization keep the first writer per cell.
func (s *Store) SetScale(name scale.Name) {
	s.mu.Lock()
	if !scale.Valid(name) || name == s.pat.Scale {
		s.mu.Unlock()
		return
	}
	old := s.pat.Scale
	next := make(NoteSet, len(s.pat.Notes))
	for _, n := range s.pat.Notes {
		midi := scale.DegreeToMIDI(n.Pitch, old, s.pat.Root)
		n.Pitch = scale.NearestDegree(midi, name, s.pat.Root)
		if n.Pitch < 0 {
			n.Pitch = 0
		}
		max := scale.DegreeCount(name)*PitchOctaves - 1
		if n.Pitch > max {
			n.Pitch = max
		}
		k := Key{Step: n.Step, Pitch: n.Pitch}
		if _, taken := next[k]; !taken {
			next[k] = n
		}
	}
	s.pat.Scale = name
	s.commit(next)
	s.mu.Unlock()
	s.notify()
}

// SetRoot moves the root note, clamped to the MIDI range.
func (s *Store) SetRoot(root int) {
	s.mu.Lock()
	if root < 0 {
		root = 0
	}
	if root > 127 {
		root = 127
	}
	s.pat.Root = root
	s.version++
	s.mu.Unlock()
	s.notify()
}

// SetTempo clamps to the supported BPM range. The transport picks the
// new value up at its next tick boundary.
func (s *Store) SetTempo(bpm int) {
	s.mu.Lock()
	s.pat.Tempo = clampTempo(bpm)
	s.version++
	s.mu.Unlock()
	s.notify()
}

// SetSelection sets the bar range; invalid ranges are rejected in
// place.
func (s *Store) SetSelection(startBar, endBar int) {
	s.mu.Lock()
	if startBar < 0 || endBar > NumBars || startBar >= endBar {
		s.mu.Unlock()
		return
	}
	s.sel = Selection{StartBar: startBar, EndBar: endBar}
	s.version++
	s.mu.Unlock()
	s.notify()
}

// Replace swaps in a whole new pattern (catalog load) and resets
// history.
func (s *Store) Replace(p Pattern) {
	s.mu.Lock()
	if p.Notes == nil {
		p.Notes = make(NoteSet)
	}
	p.Tempo = clampTempo(p.Tempo)
	if !scale.Valid(p.Scale) {
		p.Scale = scale.Minor
	}
	s.pat = p
	s.hist.reset(p.Notes)
	s.version++
	s.mu.Unlock()
	s.notify()
}

// Undo restores the note set from immediately before the last
// operation.
func (s *Store) Undo() {
	s.mu.Lock()
	prev, ok := s.hist.undo()
	if ok {
		s.pat.Notes = prev
		s.version++
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// Redo re-applies the set that Undo stepped away from.
func (s *Store) Redo() {
	s.mu.Lock()
	next, ok := s.hist.redo()
	if ok {
		s.pat.Notes = next
		s.version++
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// InsertChord adds a marker, clipping its duration against the next
// marker and rejecting it outright if the start step is already
// covered.
func (s *Store) InsertChord(m ChordMarker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.Step < 0 || m.Step >= NumSteps || m.Duration < 1 ||
		m.Root < 0 || m.Root > 11 || !scale.ValidChord(m.Quality) {
		return false
	}
	if m.Step+m.Duration > NumSteps {
		m.Duration = NumSteps - m.Step
	}
	for _, ex := range s.pat.Chords {
		if m.Step >= ex.Step && m.Step < ex.Step+ex.Duration {
			return false
		}
		// Clip against a neighbor starting inside our range.
		if ex.Step > m.Step && ex.Step < m.Step+m.Duration {
			m.Duration = ex.Step - m.Step
		}
	}
	s.pat.Chords = append(s.pat.Chords, m)
	s.version++
	return true
}

// RemoveChordAt deletes the marker covering step, if any.
func (s *Store) RemoveChordAt(step int) {
	s.mu.Lock()
	for i, m := range s.pat.Chords {
		if step >= m.Step && step < m.Step+m.Duration {
			s.pat.Chords = append(s.pat.Chords[:i], s.pat.Chords[i+1:]...)
			s.version++
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}
