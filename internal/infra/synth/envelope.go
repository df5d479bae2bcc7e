package synth

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/osa030/termfolio/internal/domain/profile"
)

// DecayFloor is the gain an envelope reaches at the end of its duration.
const DecayFloor = 0.001

// Envelope applies an exponential decay from start to DecayFloor over a
// fixed number of samples, then stops the stream.
type Envelope struct {
	src   beep.Streamer
	ratio float64 // per-sample multiplier
	gain  float64
	left  int
}

// NewEnvelope wraps src with a decay envelope lasting d.
func NewEnvelope(sr beep.SampleRate, src beep.Streamer, start float64, d time.Duration) *Envelope {
	n := sr.N(d)
	if n < 1 {
		n = 1
	}
	ratio := 0.0
	if start > 0 {
		ratio = math.Pow(DecayFloor/start, 1/float64(n))
	}
	return &Envelope{
		src:   src,
		ratio: ratio,
		gain:  start,
		left:  n,
	}
}

// Stream applies the envelope and ends once the duration has elapsed.
func (e *Envelope) Stream(samples [][2]float64) (int, bool) {
	if e.left <= 0 {
		return 0, false
	}
	if len(samples) > e.left {
		samples = samples[:e.left]
	}
	n, ok := e.src.Stream(samples)
	for i := 0; i < n; i++ {
		samples[i][0] *= e.gain
		samples[i][1] *= e.gain
		e.gain *= e.ratio
	}
	e.left -= n
	return n, ok || n > 0
}

// Err returns the source error.
func (e *Envelope) Err() error {
	return e.src.Err()
}

// Remaining returns the number of samples left before the envelope ends.
func (e *Envelope) Remaining() int {
	return e.left
}

// Voice builds the full chain for one transient tone: an oscillator at freq,
// a low-pass at twice freq, and a decay envelope starting at volume.
func Voice(sr beep.SampleRate, wave profile.Waveform, freq, volume float64, d time.Duration) *Envelope {
	osc := NewOscillator(sr, wave, freq)
	lp := NewLowPass(sr, osc, freq*2)
	return NewEnvelope(sr, lp, volume, d)
}
