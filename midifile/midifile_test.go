package midifile

import (
	"bytes"
	"math/rand"
	"testing"

	"scaleloop/pattern"
	"scaleloop/scale"
)

func newTestRNG() *rand.Rand {
	return rand.New(rand.NewSource(0))
}

func testPattern() pattern.Pattern {
	p := pattern.NewPattern()
	p.Notes[pattern.Key{Step: 0, Pitch: 0}] = pattern.Note{Step: 0, Pitch: 0, Velocity: 100, Length: 2}
	p.Notes[pattern.Key{Step: 4, Pitch: 2}] = pattern.Note{Step: 4, Pitch: 2, Velocity: 80, Length: 1, Accent: true}
	p.Notes[pattern.Key{Step: 8, Pitch: 0}] = pattern.Note{Step: 8, Pitch: 0, Velocity: 60, Length: 1}
	return p
}

func export(t *testing.T, p pattern.Pattern, opts Options) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, p, opts); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExportIsDeterministic(t *testing.T) {
	p := testPattern()
	opts := Options{Curve: CurveHumanize, Length: LengthLegato, HumanizeSeed: 42}
	a := export(t, p, opts)
	b := export(t, p, opts)
	if !bytes.Equal(a, b) {
		t.Error("same pattern, options, and seed produced different files")
	}
}

func TestHumanizeSeedChangesOutput(t *testing.T) {
	p := testPattern()
	a := export(t, p, Options{Curve: CurveHumanize, HumanizeSeed: 1})
	b := export(t, p, Options{Curve: CurveHumanize, HumanizeSeed: 2})
	if bytes.Equal(a, b) {
		t.Error("different humanize seeds produced identical files")
	}
}

func TestExportHasMIDIHeader(t *testing.T) {
	b := export(t, testPattern(), Options{})
	if len(b) < 14 || string(b[0:4]) != "MThd" {
		t.Fatal("output is not a standard MIDI file")
	}
}

func TestCurveIndependentOfOrderingArtifacts(t *testing.T) {
	// As-is and compress never consult the RNG, so the seed must not
	// matter.
	p := testPattern()
	a := export(t, p, Options{Curve: CurveCompress, HumanizeSeed: 1})
	b := export(t, p, Options{Curve: CurveCompress, HumanizeSeed: 99})
	if !bytes.Equal(a, b) {
		t.Error("seed leaked into a non-humanize curve")
	}
}

func TestVelocityCurves(t *testing.T) {
	rng := newTestRNG()
	if got := applyCurve(100, CurveAsIs, rng); got != 100 {
		t.Errorf("as-is changed velocity: %d", got)
	}
	if got := applyCurve(100, CurveCompress, rng); got != 82 {
		t.Errorf("compress(100) = %d, want 82", got)
	}
	if got := applyCurve(100, CurveExpand, rng); got != 118 {
		t.Errorf("expand(100) = %d, want 118", got)
	}
	if got := applyCurve(127, CurveExpand, rng); got != 127 {
		t.Errorf("expand must clamp at 127, got %d", got)
	}
	if got := applyCurve(1, CurveCompress, rng); got < 1 {
		t.Errorf("curve produced velocity %d below MIDI range", got)
	}
}

func TestNoteTicksPolicies(t *testing.T) {
	p := testPattern()
	n := p.Notes[pattern.Key{Step: 0, Pitch: 0}]

	if got := noteTicks(p, n, LengthAsProgrammed); got != 2*ticksPerStep {
		t.Errorf("as-programmed = %d ticks, want %d", got, 2*ticksPerStep)
	}
	if got := noteTicks(p, n, LengthStaccato); got != ticksPerStep/2 {
		t.Errorf("staccato = %d ticks, want %d", got, ticksPerStep/2)
	}
	// Legato extends to the next onset at the same pitch (step 8).
	if got := noteTicks(p, n, LengthLegato); got != 8*ticksPerStep {
		t.Errorf("legato = %d ticks, want %d", got, 8*ticksPerStep)
	}
	// The last note of a pitch sustains to the pattern end.
	last := p.Notes[pattern.Key{Step: 8, Pitch: 0}]
	want := uint32(pattern.NumSteps-8) * ticksPerStep
	if got := noteTicks(p, last, LengthLegato); got != want {
		t.Errorf("legato tail = %d ticks, want %d", got, want)
	}
}

func TestChordMarkersGetTheirOwnTrack(t *testing.T) {
	p := testPattern()
	p.Chords = append(p.Chords, pattern.ChordMarker{Step: 0, Root: 9, Quality: scale.ChordMinor, Duration: 16})

	if n := bytes.Count(export(t, p, Options{}), []byte("MTrk")); n != 3 {
		t.Errorf("%d tracks with chords present, want 3", n)
	}
	if n := bytes.Count(export(t, testPattern(), Options{}), []byte("MTrk")); n != 2 {
		t.Errorf("%d tracks without chords, want 2", n)
	}
}
