// Package effects provides the ambient decorative effects that run
// alongside the terminal animation: random scan sounds, glitch bursts,
// flicker, and the chime played when a section scrolls into view.
package effects

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
)

// SoundPlayer plays named sound effects.
type SoundPlayer interface {
	Play(name string)
}

// Glitcher applies a glitch animation to a random target for d.
type Glitcher interface {
	Glitch(d time.Duration)
}

// Env is what an effect may act on. Nil fields are skipped.
type Env struct {
	Sound  SoundPlayer
	Glitch Glitcher
	rngMu  *sync.Mutex
	rng    *rand.Rand
}

// NewEnv creates an environment with its own random source.
func NewEnv(sound SoundPlayer, glitch Glitcher, rng *rand.Rand) Env {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return Env{Sound: sound, Glitch: glitch, rngMu: &sync.Mutex{}, rng: rng}
}

// Float64 draws from [0, 1).
func (e Env) Float64() float64 {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.Float64()
}

// Chance reports true with probability p.
func (e Env) Chance(p float64) bool {
	return e.Float64() < p
}

// Between draws a duration from [lo, hi).
func (e Env) Between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(e.Float64()*float64(hi-lo))
}

func (e Env) play(name string) {
	if e.Sound != nil {
		e.Sound.Play(name)
	}
}

func (e Env) glitch(d time.Duration) {
	if e.Glitch != nil {
		e.Glitch.Glitch(d)
	}
}

// Effect is the interface for decorative effects.
type Effect interface {
	// Name returns the effect name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ValidateConfig validates the effect settings.
	ValidateConfig(settings map[string]any) error
	// Configure applies settings. It is called before the effect runs.
	Configure(settings map[string]any) error
	// Next returns the delay before the next firing.
	// Zero means the effect only fires when triggered.
	Next(env Env) time.Duration
	// Fire performs the effect once.
	Fire(env Env)
}

// registry holds registered effect factories.
var registry = make(map[string]func() Effect)

// Register registers an effect factory.
func Register(name string, factory func() Effect) {
	registry[name] = factory
}

// GetRegistered returns all registered effect factories.
func GetRegistered() map[string]func() Effect {
	return registry
}

// Names returns the registered effect names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates and configures every enabled effect. enabled maps an effect
// name to its settings; names missing from the map are not built.
func Build(enabled map[string]map[string]any) ([]Effect, error) {
	var out []Effect
	for _, name := range Names() {
		settings, ok := enabled[name]
		if !ok {
			continue
		}
		e := registry[name]()
		if err := e.Configure(settings); err != nil {
			return nil, errors.Wrapf(err, "effect %s", name)
		}
		out = append(out, e)
	}
	for name := range enabled {
		if _, ok := registry[name]; !ok {
			return nil, errors.Newf("unknown effect %q", name)
		}
	}
	return out, nil
}

// decodeSettings decodes settings into out, rejecting unknown keys.
func decodeSettings(settings map[string]any, out any) error {
	if len(settings) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create settings decoder")
	}
	if err := dec.Decode(settings); err != nil {
		return errors.Wrap(err, "invalid settings")
	}
	return nil
}

func validateProbability(p float64) error {
	if p < 0 || p > 1 {
		return errors.Newf("probability %.3f out of range [0,1]", p)
	}
	return nil
}
