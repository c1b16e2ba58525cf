package synth

// envStage tracks ADSR progress.
type envStage int

const (
	stageIdle envStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// ADSR holds envelope times in seconds and the sustain level 0..1.
type ADSR struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// Envelope is a per-voice ADSR instance stepped once per sample.
type Envelope struct {
	cfg        ADSR
	sampleRate float64
	stage      envStage
	level      float64
}

// NewEnvelope creates an idle envelope.
func NewEnvelope(cfg ADSR, sampleRate float64) *Envelope {
	return &Envelope{cfg: cfg, sampleRate: sampleRate}
}

// Gate opens the envelope from its current level.
func (e *Envelope) Gate() {
	e.stage = stageAttack
}

// Release starts the release stage regardless of current stage.
func (e *Envelope) Release() {
	if e.stage != stageIdle {
		e.stage = stageRelease
	}
}

// Active reports whether the envelope still contributes signal.
func (e *Envelope) Active() bool {
	return e.stage != stageIdle
}

// Step advances one sample and returns the current gain.
func (e *Envelope) Step() float64 {
	switch e.stage {
	case stageAttack:
		e.level += step(e.cfg.Attack, e.sampleRate)
		if e.level >= 1.0 {
			e.level = 1.0
			e.stage = stageDecay
		}
	case stageDecay:
		e.level -= step(e.cfg.Decay, e.sampleRate)
		if e.level <= e.cfg.Sustain {
			e.level = e.cfg.Sustain
			e.stage = stageSustain
		}
	case stageSustain:
		e.level = e.cfg.Sustain
	case stageRelease:
		e.level -= step(e.cfg.Release, e.sampleRate)
		if e.level <= 0 {
			e.level = 0
			e.stage = stageIdle
		}
	}
	return e.level
}

// step returns the per-sample increment for a stage lasting dur
// seconds. Zero-length stages complete in one sample.
func step(dur, sampleRate float64) float64 {
	if dur <= 0 {
		return 1.0
	}
	return 1.0 / (dur * sampleRate)
}
