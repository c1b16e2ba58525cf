// Package audio connects the synth graph to the sound device and to
// offline WAV export. The realtime path hands oto an io.Reader that
// renders the graph on demand; the device pulling samples is what
// advances the graph's sample clock.
package audio

import (
	"encoding/binary"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Source produces mono float64 samples in [-1, 1].
type Source interface {
	Render(buf []float64)
}

// Realtime streams a Source to the default audio device as signed
// 16-bit mono PCM.
type Realtime struct {
	mu         sync.Mutex
	src        Source
	sampleRate int
	ctx        *oto.Context
	player     *oto.Player
	started    bool
}

// NewRealtime creates an output for a source. No device is touched
// until Start.
func NewRealtime(src Source, sampleRate int) *Realtime {
	return &Realtime{src: src, sampleRate: sampleRate}
}

// Start brings up the audio device and begins pulling samples. It
// blocks until the device context is ready, so a nil return means
// playback has actually started. Calling Start on a running output is
// a no-op.
func (r *Realtime) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}
	if r.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   r.sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			return err
		}
		<-ready
		r.ctx = ctx
	}
	r.player = r.ctx.NewPlayer(&pcmStream{src: r.src})
	r.player.SetBufferSize(r.sampleRate / 10 * 2) // 100ms of int16 mono
	r.player.Play()
	r.started = true
	return nil
}

// Stop closes the device player. The context is kept so a later Start
// does not renegotiate the device.
func (r *Realtime) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	r.player.Close()
	r.player = nil
	r.started = false
}

// pcmStream adapts a Source to the io.Reader oto consumes, converting
// float64 samples to little-endian int16.
type pcmStream struct {
	src Source
	buf []float64
}

func (s *pcmStream) Read(p []byte) (int, error) {
	samples := len(p) / 2
	if samples == 0 {
		return 0, nil
	}
	if cap(s.buf) < samples {
		s.buf = make([]float64, samples)
	}
	s.buf = s.buf[:samples]
	s.src.Render(s.buf)

	for i, v := range s.buf {
		if v > 1.0 {
			v = 1.0
		} else if v < -1.0 {
			v = -1.0
		}
		binary.LittleEndian.PutUint16(p[i*2:], uint16(int16(v*32767)))
	}
	return samples * 2, nil
}
