package synth

import (
	"math"

	"github.com/gopxl/beep/v2"
)

// butterworthQ is the quality factor for a maximally flat low-pass response.
const butterworthQ = 1 / math.Sqrt2

// LowPass is a second-order biquad low-pass filter.
type LowPass struct {
	src beep.Streamer

	b0, b1, b2, a1, a2 float64

	// Direct form I history, per channel
	x1, x2, y1, y2 [2]float64
}

// NewLowPass wraps src with a low-pass filter at cutoff Hz.
// The cutoff is clamped below the Nyquist frequency.
func NewLowPass(sr beep.SampleRate, src beep.Streamer, cutoff float64) *LowPass {
	nyquist := float64(sr) / 2
	if cutoff >= nyquist {
		cutoff = nyquist * 0.99
	}
	if cutoff <= 0 {
		cutoff = 1
	}

	w0 := 2 * math.Pi * cutoff / float64(sr)
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * butterworthQ)
	a0 := 1 + alpha

	return &LowPass{
		src: src,
		b0:  (1 - cosW0) / 2 / a0,
		b1:  (1 - cosW0) / a0,
		b2:  (1 - cosW0) / 2 / a0,
		a1:  -2 * cosW0 / a0,
		a2:  (1 - alpha) / a0,
	}
}

// Stream filters the source samples in place.
func (f *LowPass) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.src.Stream(samples)
	for i := 0; i < n; i++ {
		for c := 0; c < 2; c++ {
			x := samples[i][c]
			y := f.b0*x + f.b1*f.x1[c] + f.b2*f.x2[c] - f.a1*f.y1[c] - f.a2*f.y2[c]
			f.x2[c], f.x1[c] = f.x1[c], x
			f.y2[c], f.y1[c] = f.y1[c], y
			samples[i][c] = y
		}
	}
	return n, ok
}

// Err returns the source error.
func (f *LowPass) Err() error {
	return f.src.Err()
}
