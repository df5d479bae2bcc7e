package effects

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/termfolio/internal/domain/profile"
)

type scanSettings struct {
	IntervalMs  int     `mapstructure:"interval_ms"`
	Probability float64 `mapstructure:"probability"`
}

// ScanSoundEffect occasionally plays the scan sound.
type ScanSoundEffect struct {
	interval    time.Duration
	probability float64
}

func (e *ScanSoundEffect) Name() string {
	return "scan_sound"
}

func (e *ScanSoundEffect) Description() string {
	return "Plays the scan sound at random on a fixed interval"
}

func (e *ScanSoundEffect) ValidateConfig(settings map[string]any) error {
	_, err := parseScanSettings(settings)
	return err
}

func (e *ScanSoundEffect) Configure(settings map[string]any) error {
	s, err := parseScanSettings(settings)
	if err != nil {
		return err
	}
	e.interval = time.Duration(s.IntervalMs) * time.Millisecond
	e.probability = s.Probability
	return nil
}

func parseScanSettings(settings map[string]any) (scanSettings, error) {
	s := scanSettings{IntervalMs: 2000, Probability: 0.05}
	if err := decodeSettings(settings, &s); err != nil {
		return s, err
	}
	if s.IntervalMs <= 0 {
		return s, errors.New("interval_ms must be positive")
	}
	return s, validateProbability(s.Probability)
}

func (e *ScanSoundEffect) Next(env Env) time.Duration {
	return e.interval
}

func (e *ScanSoundEffect) Fire(env Env) {
	if env.Chance(e.probability) {
		env.play(profile.Scan)
	}
}

func init() {
	Register("scan_sound", func() Effect {
		return &ScanSoundEffect{interval: 2 * time.Second, probability: 0.05}
	})
}
