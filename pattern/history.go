package pattern

// historySize bounds the undo ring.
const historySize = 50

// history is a bounded ring of note-set snapshots with a cursor.
// Pushing after an undo truncates the redo tail.
type history struct {
	snaps  []NoteSet
	cursor int // index of the snapshot matching the current state
}

func newHistory(initial NoteSet) *history {
	return &history{snaps: []NoteSet{initial.Clone()}}
}

// push records the post-mutation state. The caller pushes after every
// committed operation; the pre-mutation state is already at the cursor.
func (h *history) push(state NoteSet) {
	h.snaps = h.snaps[:h.cursor+1]
	h.snaps = append(h.snaps, state.Clone())
	// Current state plus up to historySize prior snapshots.
	if len(h.snaps) > historySize+1 {
		h.snaps = h.snaps[len(h.snaps)-historySize-1:]
	}
	h.cursor = len(h.snaps) - 1
}

// undo steps the cursor back and returns the prior snapshot.
func (h *history) undo() (NoteSet, bool) {
	if h.cursor == 0 {
		return nil, false
	}
	h.cursor--
	return h.snaps[h.cursor].Clone(), true
}

// redo re-applies the snapshot that undo stepped away from.
func (h *history) redo() (NoteSet, bool) {
	if h.cursor >= len(h.snaps)-1 {
		return nil, false
	}
	h.cursor++
	return h.snaps[h.cursor].Clone(), true
}

// reset drops all history, seeding with the given state. Used on
// wholesale pattern replacement (catalog load).
func (h *history) reset(state NoteSet) {
	h.snaps = []NoteSet{state.Clone()}
	h.cursor = 0
}
