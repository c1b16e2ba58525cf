// Package catalog is the pattern-sharing service: an in-memory store
// with search, sorting, tags, and a per-origin create limit, plus the
// HTTP layer in server.go. The sequencer core never imports this
// package; the TUI talks to it over HTTP and treats every failure as
// non-fatal.
package catalog

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"scaleloop/pattern"
	"scaleloop/scale"
)

// Sort orders for List.
const (
	SortNewest     = "newest"
	SortMostLoaded = "mostLoaded"
	SortRandom     = "random"
)

// Create limits.
const (
	MaxNotes      = 1000
	createsPerDay = 20
)

var (
	ErrNotFound    = errors.New("pattern not found")
	ErrRateLimited = errors.New("create limit reached for today")
)

// Tags is the closed set of accepted pattern tags.
var Tags = []string{
	"ambient", "bass", "chill", "dance", "drone",
	"energetic", "experimental", "melodic",
}

// PatternDoc is the wire shape of a stored pattern. Notes travel as an
// array; the sequencer's keyed set is rebuilt on load.
type PatternDoc struct {
	Notes  []pattern.Note        `json:"notes"`
	Scale  scale.Name            `json:"scale"`
	Root   int                   `json:"root"`
	Tempo  int                   `json:"tempo"`
	Chords []pattern.ChordMarker `json:"chords,omitempty"`
}

// DocFromPattern flattens a pattern for storage, notes in (step,
// pitch) order.
func DocFromPattern(p pattern.Pattern) PatternDoc {
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
	return PatternDoc{
		Notes:  notes,
		Scale:  p.Scale,
		Root:   p.Root,
		Tempo:  p.Tempo,
		Chords: append([]pattern.ChordMarker(nil), p.Chords...),
	}
}

// ToPattern rebuilds the keyed note set.
func (d PatternDoc) ToPattern() pattern.Pattern {
	p := pattern.Pattern{
		Notes:  make(pattern.NoteSet, len(d.Notes)),
		Scale:  d.Scale,
		Root:   d.Root,
		Tempo:  d.Tempo,
		Chords: append([]pattern.ChordMarker(nil), d.Chords...),
	}
	for _, n := range d.Notes {
		p.Notes[pattern.Key{Step: n.Step, Pitch: n.Pitch}] = n
	}
	return p
}

// Entry is one stored pattern with its catalog metadata.
type Entry struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Tags      []string   `json:"tags,omitempty"`
	Pattern   PatternDoc `json:"pattern"`
	Loads     int        `json:"loads"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Query selects and orders a List page.
type Query struct {
	Search string
	Sort   string
	Tags   []string
	Limit  int
	Offset int
}

// Store is the in-memory catalog. All methods are safe for concurrent
// use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	creates map[string][]time.Time // per-origin create timestamps
	nextID  int

	now func() time.Time
	rng *rand.Rand
}

// NewStore creates an empty catalog.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*Entry),
		creates: make(map[string][]time.Time),
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create validates and stores a pattern on behalf of an origin,
// subject to the daily per-origin limit. Validation failures never
// reach the stored set.
func (s *Store) Create(origin, name string, tags []string, doc PatternDoc) (Entry, error) {
	if err := Validate(name, tags, doc); err != nil {
		return Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-24 * time.Hour)
	recent := s.creates[origin][:0]
	for _, t := range s.creates[origin] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	s.creates[origin] = recent
	if len(recent) >= createsPerDay {
		return Entry{}, ErrRateLimited
	}
	s.creates[origin] = append(recent, s.now())

	s.nextID++
	e := &Entry{
		ID:        fmt.Sprintf("p%06d", s.nextID),
		Name:      name,
		Tags:      append([]string(nil), tags...),
		Pattern:   doc,
		CreatedAt: s.now(),
	}
	s.entries[e.ID] = e
	return *e, nil
}

// Get returns one entry by ID.
func (s *Store) Get(id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return *e, nil
}

// IncrementLoads bumps an entry's load counter.
func (s *Store) IncrementLoads(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.Loads++
	return nil
}

// List returns one page of entries matching the query. Default page
// size is 20, capped at 100.
func (s *Store) List(q Query) []Entry {
	s.mu.RLock()
	matched := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if matches(e, q) {
			matched = append(matched, *e)
		}
	}
	s.mu.RUnlock()

	switch q.Sort {
	case SortMostLoaded:
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].Loads != matched[j].Loads {
				return matched[i].Loads > matched[j].Loads
			}
			return matched[i].ID < matched[j].ID
		})
	case SortRandom:
		s.mu.Lock()
		s.rng.Shuffle(len(matched), func(i, j int) {
			matched[i], matched[j] = matched[j], matched[i]
		})
		s.mu.Unlock()
	default: // SortNewest
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return matched[i].ID > matched[j].ID
		})
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if q.Offset >= len(matched) {
		return nil
	}
	matched = matched[q.Offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

func matches(e *Entry, q Query) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(q.Search)) {
		return false
	}
	for _, want := range q.Tags {
		found := false
		for _, have := range e.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Validate checks a create payload at the service boundary: note count
// 1..1000, tempo inside the sequencer's range, known scale, known
// tags, and in-range note fields. The core only ever sees patterns
// that passed here.
func Validate(name string, tags []string, doc PatternDoc) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}
	if len(doc.Notes) < 1 || len(doc.Notes) > MaxNotes {
		return fmt.Errorf("note count %d outside 1..%d", len(doc.Notes), MaxNotes)
	}
	if doc.Tempo < pattern.MinTempo || doc.Tempo > pattern.MaxTempo {
		return fmt.Errorf("tempo %d outside %d..%d", doc.Tempo, pattern.MinTempo, pattern.MaxTempo)
	}
	if !scale.Valid(doc.Scale) {
		return fmt.Errorf("unknown scale %q", doc.Scale)
	}
	if doc.Root < 0 || doc.Root > 127 {
		return fmt.Errorf("root %d outside MIDI range", doc.Root)
	}
	for _, tag := range tags {
		if !validTag(tag) {
			return fmt.Errorf("unknown tag %q", tag)
		}
	}
	seen := make(map[pattern.Key]bool, len(doc.Notes))
	for _, n := range doc.Notes {
		if n.Step < 0 || n.Step >= pattern.NumSteps {
			return fmt.Errorf("note step %d outside the grid", n.Step)
		}
		if n.Pitch < 0 {
			return fmt.Errorf("negative pitch degree %d", n.Pitch)
		}
		if n.Velocity < 0 || n.Velocity > 127 {
			return fmt.Errorf("velocity %d outside MIDI range", n.Velocity)
		}
		if n.Length < 1 {
			return fmt.Errorf("note length %d below one step", n.Length)
		}
		k := pattern.Key{Step: n.Step, Pitch: n.Pitch}
		if seen[k] {
			return fmt.Errorf("duplicate note at step %d pitch %d", n.Step, n.Pitch)
		}
		seen[k] = true
	}
	for _, q := range doc.Chords {
		if !scale.ValidChord(q.Quality) {
			return fmt.Errorf("unknown chord quality %q", q.Quality)
		}
		if q.Root < 0 || q.Root > 11 {
			return fmt.Errorf("chord root %d outside 0..11", q.Root)
		}
	}
	return nil
}

func validTag(tag string) bool {
	for _, t := range Tags {
		if t == tag {
			return true
		}
	}
	return false
}
