package synth

// VoiceType names a synthesizer timbre preset. Each type bundles an
// oscillator shape, an envelope, and recommended effect parameters;
// the preset path overwrites effect settings as a unit.
type VoiceType string

const (
	VoicePluck VoiceType = "pluck"
	VoicePad   VoiceType = "pad"
	VoiceBass  VoiceType = "bass"
	VoiceLead  VoiceType = "lead"
	VoiceBell  VoiceType = "bell"
)

// EffectDefaults is the per-voice recommended effect setup applied by
// ApplyPreset.
type EffectDefaults struct {
	FilterOn  bool
	Cutoff    float64
	Resonance float64
	ReverbOn  bool
	RoomSize  float64
	RevMix    float64
	DelayOn   bool
	DelayTime float64 // seconds
	Feedback  float64
	DelayMix  float64
}

// VoicePreset is one closed variant of the voice table.
type VoicePreset struct {
	Wave    Waveform
	Env     ADSR
	Gain    float64
	Effects EffectDefaults
}

// voicePresets is the exhaustive preset table. Unknown types fall back
// to pluck.
var voicePresets = map[VoiceType]VoicePreset{
	VoicePluck: {
		Wave: WaveTriangle,
		Env:  ADSR{Attack: 0.005, Decay: 0.12, Sustain: 0.3, Release: 0.15},
		Gain: 0.8,
		Effects: EffectDefaults{
			FilterOn: true, Cutoff: 4000, Resonance: 0.7,
			DelayOn: true, DelayTime: 0.25, Feedback: 0.3, DelayMix: 0.25,
		},
	},
	VoicePad: {
		Wave: WaveSine,
		Env:  ADSR{Attack: 0.4, Decay: 0.3, Sustain: 0.8, Release: 0.8},
		Gain: 0.6,
		Effects: EffectDefaults{
			FilterOn: true, Cutoff: 1800, Resonance: 0.5,
			ReverbOn: true, RoomSize: 0.7, RevMix: 0.4,
		},
	},
	VoiceBass: {
		Wave: WaveSawtooth,
		Env:  ADSR{Attack: 0.01, Decay: 0.2, Sustain: 0.5, Release: 0.1},
		Gain: 0.9,
		Effects: EffectDefaults{
			FilterOn: true, Cutoff: 900, Resonance: 1.2,
		},
	},
	VoiceLead: {
		Wave: WaveSquare,
		Env:  ADSR{Attack: 0.02, Decay: 0.15, Sustain: 0.6, Release: 0.2},
		Gain: 0.7,
		Effects: EffectDefaults{
			FilterOn: true, Cutoff: 3200, Resonance: 0.9,
			DelayOn: true, DelayTime: 0.375, Feedback: 0.4, DelayMix: 0.3,
			ReverbOn: true, RoomSize: 0.4, RevMix: 0.2,
		},
	},
	VoiceBell: {
		Wave: WaveSine,
		Env:  ADSR{Attack: 0.002, Decay: 0.6, Sustain: 0.0, Release: 0.4},
		Gain: 0.7,
		Effects: EffectDefaults{
			ReverbOn: true, RoomSize: 0.8, RevMix: 0.5,
		},
	},
}

// VoiceTypes lists all presets in a stable order.
var VoiceTypes = []VoiceType{VoicePluck, VoicePad, VoiceBass, VoiceLead, VoiceBell}

// PresetFor returns the preset for a voice type, defaulting to pluck.
func PresetFor(vt VoiceType) VoicePreset {
	if p, ok := voicePresets[vt]; ok {
		return p
	}
	return voicePresets[VoicePluck]
}

// voice is one playable note: oscillator + envelope + velocity gain,
// gated for a fixed number of samples then released.
type voice struct {
	osc      *Oscillator
	env      *Envelope
	gain     float64
	gateLeft int // samples until release
}

func newVoice(p VoicePreset, sampleRate float64) *voice {
	return &voice{
		osc: NewOscillator(p.Wave, sampleRate),
		env: NewEnvelope(p.Env, sampleRate),
	}
}

// noteOn starts the voice at freq for durSamples of gate time.
func (v *voice) noteOn(freq, velocity float64, durSamples int) {
	v.osc.Reset()
	v.osc.SetFrequency(freq)
	v.gain = velocity
	v.gateLeft = durSamples
	v.env.Gate()
}

// release forces the envelope into its release stage.
func (v *voice) release() {
	v.gateLeft = 0
	v.env.Release()
}

func (v *voice) active() bool {
	return v.env.Active()
}

// sample renders one sample and counts down the gate.
func (v *voice) sample() float64 {
	if v.gateLeft > 0 {
		v.gateLeft--
		if v.gateLeft == 0 {
			v.env.Release()
		}
	}
	return v.osc.Sample() * v.env.Step() * v.gain
}
