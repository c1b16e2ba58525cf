package engine

import (
	"time"

	"scaleloop/debug"
	"scaleloop/synth"
)

// Filter sweep bounds in Hz.
const (
	sweepLow  = 200.0
	sweepHigh = 8000.0
)

// sweepHalfDuration is one ramp phase: 8 bars, which is 32 beats at
// the given tempo.
func sweepHalfDuration(tempo int) time.Duration {
	return time.Duration(32.0 * 60.0 / float64(tempo) * float64(time.Second))
}

// TriggerFilterSweep starts the auto-filter sweep: force the filter on
// as a lowpass, ramp the cutoff up over 8 bars, back down over the
// next 8, then clear the active flag. A trigger while a sweep is
// running is a no-op. The sweep is not cancellable; manual cutoff
// edits during it race last-write-wins on the same parameter.
func (e *Engine) TriggerFilterSweep() {
	if !e.sweepActive.CompareAndSwap(false, true) {
		return
	}
	half := sweepHalfDuration(e.store.Tempo())
	halfSamples := int(half.Seconds() * float64(e.graph.SampleRate()))

	e.graph.ForceLowpass()
	e.graph.SetEffectParam(synth.EffectFilter, synth.ParamCutoff, sweepLow)
	e.graph.RampCutoff(sweepHigh, halfSamples)
	debug.Log("sweep", "started, half=%s", half)

	go func() {
		time.Sleep(half)
		e.graph.RampCutoff(sweepLow, halfSamples)
		time.Sleep(half)
		e.sweepActive.Store(false)
		debug.Log("sweep", "complete")
	}()
}

// SweepActive reports whether a filter sweep is in progress.
func (e *Engine) SweepActive() bool {
	return e.sweepActive.Load()
}
