package pattern

import "scaleloop/scale"

// Selection-scoped edit operations. Each builds a complete replacement
// note set and commits it as a single history entry.

// Copy captures the selection's notes into the clipboard with
// selection-relative steps. The pattern is unchanged.
func (s *Store) Copy() {
	s.mu.Lock()
	s.captureClipboard()
	s.mu.Unlock()
}

// Cut copies the selection then removes its notes.
func (s *Store) Cut() {
	s.mu.Lock()
	s.captureClipboard()
	next := make(NoteSet, len(s.pat.Notes))
	for k, n := range s.pat.Notes {
		if !s.sel.Contains(k.Step) {
			next[k] = n
		}
	}
	s.commit(next)
	s.mu.Unlock()
	s.notify()
}

// Paste lays the clipboard down at the selection start, replacing any
// notes already in the pasted span.
func (s *Store) Paste() {
	s.mu.Lock()
	if len(s.clip) == 0 {
		s.mu.Unlock()
		return
	}
	start := s.sel.StartStep()
	span := s.clipBars * StepsPerBar
	next := make(NoteSet, len(s.pat.Notes))
	for k, n := range s.pat.Notes {
		if k.Step >= start && k.Step < start+span {
			continue
		}
		next[k] = n
	}
	for _, n := range s.clip {
		n.Step += start
		if n.Step >= NumSteps {
			continue
		}
		next[Key{Step: n.Step, Pitch: n.Pitch}] = n
	}
	s.commit(next)
	s.mu.Unlock()
	s.notify()
}

// Duplicate copies the selection into the bars immediately after it,
// replacing whatever was there. A selection ending at the pattern
// boundary has nowhere to go and is a no-op.
func (s *Store) Duplicate() {
	s.mu.Lock()
	src := s.sel
	dstStart := src.EndStep()
	if dstStart >= NumSteps {
		s.mu.Unlock()
		return
	}
	span := src.Steps()
	next := make(NoteSet, len(s.pat.Notes))
	for k, n := range s.pat.Notes {
		if k.Step >= dstStart && k.Step < dstStart+span {
			continue
		}
		next[k] = n
	}
	for k, n := range s.pat.Notes {
		if !src.Contains(k.Step) {
			continue
		}
		n.Step = k.Step - src.StartStep() + dstStart
		if n.Step >= NumSteps {
			continue
		}
		next[Key{Step: n.Step, Pitch: n.Pitch}] = n
	}
	s.commit(next)
	s.mu.Unlock()
	s.notify()
}

// LoopFill repeats the selection's relative note pattern at successive
// offsets of the selection length, starting immediately after the
// selection and stopping at the pattern boundary. Cells already
// occupied are skipped, never overwritten.
func (s *Store) LoopFill() {
	s.mu.Lock()
	src := s.sel
	span := src.Steps()
	if span <= 0 {
		s.mu.Unlock()
		return
	}
	next := s.pat.Notes.Clone()
	var srcNotes []Note
	for k, n := range s.pat.Notes {
		if src.Contains(k.Step) {
			srcNotes = append(srcNotes, n)
		}
	}
	for offset := src.EndStep(); offset < NumSteps; offset += span {
		for _, n := range srcNotes {
			step := n.Step - src.StartStep() + offset
			if step >= NumSteps {
				continue
			}
			k := Key{Step: step, Pitch: n.Pitch}
			if _, taken := next[k]; taken {
				continue
			}
			n.Step = step
			next[k] = n
		}
	}
	s.commit(next)
	s.mu.Unlock()
	s.notify()
}

// Nudge rotates note steps by dir (+1 or -1) within the selection,
// wrapping at the selection boundary rather than the full pattern.
func (s *Store) Nudge(dir int) {
	s.mu.Lock()
	if dir != 1 && dir != -1 {
		s.mu.Unlock()
		return
	}
	sel := s.sel
	span := sel.Steps()
	next := make(NoteSet, len(s.pat.Notes))
	for k, n := range s.pat.Notes {
		if sel.Contains(k.Step) {
			rel := k.Step - sel.StartStep()
			rel = (rel + dir + span) % span
			n.Step = sel.StartStep() + rel
		}
		next[Key{Step: n.Step, Pitch: n.Pitch}] = n
	}
	s.commit(next)
	s.mu.Unlock()
	s.notify()
}

// Transpose shifts pitch by dir (+1 or -1 degree) for notes within the
// selection. Notes that would leave the playable range stay where they
// are.
func (s *Store) Transpose(dir int) {
	s.mu.Lock()
	if dir != 1 && dir != -1 {
		s.mu.Unlock()
		return
	}
	sel := s.sel
	max := scale.DegreeCount(s.pat.Scale)*PitchOctaves - 1
	next := make(NoteSet, len(s.pat.Notes))
	for k, n := range s.pat.Notes {
		if sel.Contains(k.Step) {
			p := n.Pitch + dir
			if p >= 0 && p <= max {
				n.Pitch = p
			}
		}
		next[Key{Step: n.Step, Pitch: n.Pitch}] = n
	}
	s.commit(next)
	s.mu.Unlock()
	s.notify()
}

// captureClipboard snapshots the selection. Caller holds the lock.
func (s *Store) captureClipboard() {
	s.clip = s.clip[:0]
	s.clipBars = s.sel.EndBar - s.sel.StartBar
	for k, n := range s.pat.Notes {
		if s.sel.Contains(k.Step) {
			n.Step = k.Step - s.sel.StartStep()
			s.clip = append(s.clip, n)
		}
	}
}
