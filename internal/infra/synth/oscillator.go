// Package synth provides the signal graph used to render UI sounds:
// band-limited oscillators, a biquad low-pass filter, an exponential
// decay envelope, a shared gain control and a mixing bus.
//
// Every node is a beep.Streamer so nodes compose the same way audio
// nodes are wired together: source → filter → envelope → gain → bus.
package synth

import (
	"math"

	"github.com/gopxl/beep/v2"

	"github.com/osa030/termfolio/internal/domain/profile"
)

// Oscillator is an endless periodic source.
// Square and sawtooth edges are smoothed with PolyBLEP to limit aliasing.
type Oscillator struct {
	wave  profile.Waveform
	phase float64 // 0..1
	inc   float64 // phase increment per sample
}

// NewOscillator creates an oscillator for the waveform at freq Hz.
func NewOscillator(sr beep.SampleRate, wave profile.Waveform, freq float64) *Oscillator {
	return &Oscillator{
		wave: wave,
		inc:  freq / float64(sr),
	}
}

// Stream fills samples with the waveform on both channels.
func (o *Oscillator) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := o.sample()
		samples[i][0] = v
		samples[i][1] = v
		o.phase += o.inc
		if o.phase >= 1 {
			o.phase -= math.Floor(o.phase)
		}
	}
	return len(samples), true
}

// Err always returns nil.
func (o *Oscillator) Err() error {
	return nil
}

func (o *Oscillator) sample() float64 {
	t := o.phase
	switch o.wave {
	case profile.WaveSine:
		return math.Sin(2 * math.Pi * t)
	case profile.WaveSawtooth:
		return 2*t - 1 - polyBLEP(t, o.inc)
	case profile.WaveTriangle:
		return 4*math.Abs(t-0.5) - 1
	default:
		v := -1.0
		if t < 0.5 {
			v = 1.0
		}
		v += polyBLEP(t, o.inc)
		v -= polyBLEP(math.Mod(t+0.5, 1), o.inc)
		return v
	}
}

// polyBLEP returns the band-limited step correction around a discontinuity.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	default:
		return 0
	}
}
