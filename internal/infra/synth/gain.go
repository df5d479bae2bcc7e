package synth

import (
	"math"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// Gain is a volume control shared by every stream it is applied to.
// Changing it takes effect on the next buffer, with no ramp.
type Gain struct {
	bits atomic.Uint64
}

// NewGain creates a gain control at the given linear value.
func NewGain(v float64) *Gain {
	g := &Gain{}
	g.Set(v)
	return g
}

// Set changes the gain value.
func (g *Gain) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

// Value returns the current gain value.
func (g *Gain) Value() float64 {
	return math.Float64frombits(g.bits.Load())
}

// Apply routes src through the gain control.
func (g *Gain) Apply(src beep.Streamer) beep.Streamer {
	return &gained{src: src, gain: g}
}

type gained struct {
	src  beep.Streamer
	gain *Gain
}

func (s *gained) Stream(samples [][2]float64) (int, bool) {
	n, ok := s.src.Stream(samples)
	v := s.gain.Value()
	for i := 0; i < n; i++ {
		samples[i][0] *= v
		samples[i][1] *= v
	}
	return n, ok
}

func (s *gained) Err() error {
	return s.src.Err()
}
