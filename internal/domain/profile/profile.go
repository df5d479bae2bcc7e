// Package profile provides the SoundProfile domain entity.
package profile

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Names of the built-in profiles. Other components play sounds by these names.
const (
	Click        = "click"
	Hover        = "hover"
	Typing       = "typing"
	Scan         = "scan"
	Glitch       = "glitch"
	Notification = "notification"
)

// Waveform represents an oscillator shape.
type Waveform int

const (
	WaveSquare   Waveform = iota // Square wave
	WaveSine                     // Sine wave
	WaveSawtooth                 // Rising sawtooth
	WaveTriangle                 // Triangle wave
)

// String returns the string representation of the waveform.
func (w Waveform) String() string {
	switch w {
	case WaveSquare:
		return "square"
	case WaveSine:
		return "sine"
	case WaveSawtooth:
		return "sawtooth"
	case WaveTriangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// ParseWaveform parses a waveform name.
func ParseWaveform(s string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "square":
		return WaveSquare, nil
	case "sine":
		return WaveSine, nil
	case "sawtooth", "saw":
		return WaveSawtooth, nil
	case "triangle":
		return WaveTriangle, nil
	default:
		return 0, errors.Newf("unknown waveform %q", s)
	}
}

// Rand is the random source used to resolve randomized frequencies.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// Frequency is a pitch in Hz, either fixed or drawn uniformly from
// [Base, Base+Spread) each time it is resolved.
type Frequency struct {
	Base   float64
	Spread float64
}

// Fixed returns a constant frequency.
func Fixed(hz float64) Frequency {
	return Frequency{Base: hz}
}

// Between returns a frequency drawn from [lo, hi).
func Between(lo, hi float64) Frequency {
	return Frequency{Base: lo, Spread: hi - lo}
}

// Dynamic reports whether the frequency is randomized.
func (f Frequency) Dynamic() bool {
	return f.Spread > 0
}

// Resolve returns a concrete frequency. r may be nil for fixed frequencies.
func (f Frequency) Resolve(r Rand) float64 {
	if !f.Dynamic() || r == nil {
		return f.Base
	}
	return f.Base + r.Float64()*f.Spread
}

// Profile represents a named template for one synthesized UI sound.
type Profile struct {
	Name      string
	Waveform  Waveform
	Frequency Frequency
	Duration  time.Duration
	Volume    float64 // Linear gain 0..1
}

// Patch is a partial profile. Nil fields leave the profile value untouched.
type Patch struct {
	Waveform  *Waveform
	Frequency *Frequency
	Duration  *time.Duration
	Volume    *float64
}

// Apply returns a copy of p with the patch merged in. Patch values win.
func (p Profile) Apply(patch Patch) Profile {
	if patch.Waveform != nil {
		p.Waveform = *patch.Waveform
	}
	if patch.Frequency != nil {
		p.Frequency = *patch.Frequency
	}
	if patch.Duration != nil {
		p.Duration = *patch.Duration
	}
	if patch.Volume != nil {
		p.Volume = *patch.Volume
	}
	return p
}

// Validate checks that the profile can be synthesized.
func (p Profile) Validate() error {
	if p.Name == "" {
		return errors.New("profile name is required")
	}
	if p.Waveform < WaveSquare || p.Waveform > WaveTriangle {
		return errors.Newf("profile %s: unknown waveform %d", p.Name, p.Waveform)
	}
	if p.Frequency.Base <= 0 || p.Frequency.Spread < 0 {
		return errors.Newf("profile %s: frequency must be positive", p.Name)
	}
	if p.Duration <= 0 {
		return errors.Newf("profile %s: duration must be positive", p.Name)
	}
	if p.Volume < 0 || p.Volume > 1 {
		return errors.Newf("profile %s: volume %.3f out of range [0,1]", p.Name, p.Volume)
	}
	return nil
}

// Defaults returns the fixed set of built-in profiles.
func Defaults() []Profile {
	return []Profile{
		{Name: Click, Waveform: WaveSquare, Frequency: Fixed(800), Duration: 100 * time.Millisecond, Volume: 0.1},
		{Name: Hover, Waveform: WaveSine, Frequency: Fixed(1200), Duration: 50 * time.Millisecond, Volume: 0.05},
		{Name: Typing, Waveform: WaveSquare, Frequency: Between(2000, 2500), Duration: 20 * time.Millisecond, Volume: 0.03},
		{Name: Scan, Waveform: WaveSawtooth, Frequency: Fixed(440), Duration: 300 * time.Millisecond, Volume: 0.02},
		{Name: Glitch, Waveform: WaveSquare, Frequency: Between(100, 1100), Duration: 100 * time.Millisecond, Volume: 0.04},
		{Name: Notification, Waveform: WaveSine, Frequency: Fixed(880), Duration: 200 * time.Millisecond, Volume: 0.06},
	}
}

// IsBuiltin reports whether name belongs to the built-in table.
func IsBuiltin(name string) bool {
	for _, p := range Defaults() {
		if p.Name == name {
			return true
		}
	}
	return false
}
