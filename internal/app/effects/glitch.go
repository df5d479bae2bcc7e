package effects

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/termfolio/internal/domain/profile"
)

type glitchSettings struct {
	IntervalMs  int     `mapstructure:"interval_ms"`
	Probability float64 `mapstructure:"probability"`
	DurationMs  int     `mapstructure:"duration_ms"`
}

func defaultGlitchSettings() glitchSettings {
	return glitchSettings{IntervalMs: 3000, Probability: 0.02, DurationMs: 300}
}

// GlitchBurstEffect occasionally glitches a random target with sound.
type GlitchBurstEffect struct {
	interval    time.Duration
	probability float64
	duration    time.Duration
}

func (e *GlitchBurstEffect) Name() string {
	return "glitch_burst"
}

func (e *GlitchBurstEffect) Description() string {
	return "Glitches a random element and plays the glitch sound, rarely"
}

func (e *GlitchBurstEffect) ValidateConfig(settings map[string]any) error {
	_, err := parseGlitchSettings(settings)
	return err
}

func (e *GlitchBurstEffect) Configure(settings map[string]any) error {
	s, err := parseGlitchSettings(settings)
	if err != nil {
		return err
	}
	e.interval = time.Duration(s.IntervalMs) * time.Millisecond
	e.probability = s.Probability
	e.duration = time.Duration(s.DurationMs) * time.Millisecond
	return nil
}

func parseGlitchSettings(settings map[string]any) (glitchSettings, error) {
	s := defaultGlitchSettings()
	if err := decodeSettings(settings, &s); err != nil {
		return s, err
	}
	if s.IntervalMs <= 0 || s.DurationMs <= 0 {
		return s, errors.New("interval_ms and duration_ms must be positive")
	}
	return s, validateProbability(s.Probability)
}

func (e *GlitchBurstEffect) Next(env Env) time.Duration {
	return e.interval
}

func (e *GlitchBurstEffect) Fire(env Env) {
	if !env.Chance(e.probability) {
		return
	}
	env.glitch(e.duration)
	env.play(profile.Glitch)
}

type flickerSettings struct {
	MinMs      int `mapstructure:"min_ms"`
	MaxMs      int `mapstructure:"max_ms"`
	DurationMs int `mapstructure:"duration_ms"`
}

// RandomFlickerEffect flickers a random target at irregular intervals.
type RandomFlickerEffect struct {
	min, max time.Duration
	duration time.Duration
}

func (e *RandomFlickerEffect) Name() string {
	return "random_flicker"
}

func (e *RandomFlickerEffect) Description() string {
	return "Flickers a random glitch target every few seconds"
}

func (e *RandomFlickerEffect) ValidateConfig(settings map[string]any) error {
	_, err := parseFlickerSettings(settings)
	return err
}

func (e *RandomFlickerEffect) Configure(settings map[string]any) error {
	s, err := parseFlickerSettings(settings)
	if err != nil {
		return err
	}
	e.min = time.Duration(s.MinMs) * time.Millisecond
	e.max = time.Duration(s.MaxMs) * time.Millisecond
	e.duration = time.Duration(s.DurationMs) * time.Millisecond
	return nil
}

func parseFlickerSettings(settings map[string]any) (flickerSettings, error) {
	s := flickerSettings{MinMs: 2000, MaxMs: 7000, DurationMs: 200}
	if err := decodeSettings(settings, &s); err != nil {
		return s, err
	}
	if s.MinMs <= 0 || s.MaxMs < s.MinMs {
		return s, errors.Newf("invalid flicker range [%d, %d] ms", s.MinMs, s.MaxMs)
	}
	if s.DurationMs <= 0 {
		return s, errors.New("duration_ms must be positive")
	}
	return s, nil
}

func (e *RandomFlickerEffect) Next(env Env) time.Duration {
	return env.Between(e.min, e.max)
}

func (e *RandomFlickerEffect) Fire(env Env) {
	env.glitch(e.duration)
}

func init() {
	Register("glitch_burst", func() Effect {
		s := defaultGlitchSettings()
		return &GlitchBurstEffect{
			interval:    time.Duration(s.IntervalMs) * time.Millisecond,
			probability: s.Probability,
			duration:    time.Duration(s.DurationMs) * time.Millisecond,
		}
	})
	Register("random_flicker", func() Effect {
		return &RandomFlickerEffect{min: 2 * time.Second, max: 7 * time.Second, duration: 200 * time.Millisecond}
	})
}
