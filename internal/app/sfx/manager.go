package sfx

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/termfolio/internal/domain/profile"
	"github.com/osa030/termfolio/internal/infra/synth"
)

// MasterVolume is the master gain applied to every sound while unmuted.
const MasterVolume = 0.3

// Context is an audio output context.
type Context interface {
	// SampleRate returns the rate voices must be rendered at.
	SampleRate() beep.SampleRate
	// Suspended reports whether output is suspended.
	Suspended() bool
	// Resume resumes a suspended context.
	Resume(ctx context.Context) error
	// Start begins playing a voice routed to the output.
	Start(voice beep.Streamer) error
	// Close releases the context.
	Close() error
}

// ContextFactory acquires an audio context. It may fail, for instance when the
// platform has no output device.
type ContextFactory func(ctx context.Context) (Context, error)

// Option configures a Manager.
type Option func(*Manager)

// WithRand sets the random source used for randomized frequencies.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) {
		m.rng = r
	}
}

// WithProfiles registers extra profiles next to the built-in table.
func WithProfiles(profiles ...profile.Profile) Option {
	return func(m *Manager) {
		m.extra = append(m.extra, profiles...)
	}
}

// WithMuted starts the manager muted.
func WithMuted(muted bool) Option {
	return func(m *Manager) {
		m.muted = muted
	}
}

// Manager owns the audio context, the profile registry and mute state.
type Manager struct {
	mu sync.Mutex

	factory  ContextFactory
	audio    Context
	master   *synth.Gain
	profiles map[string]profile.Profile
	extra    []profile.Profile

	state    State
	inflight chan struct{} // Closed when the current attempt finishes
	muted    bool

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewManager creates a manager in the uninitialized state.
func NewManager(factory ContextFactory, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		state:   StateUninitialized,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		seed := uint64(time.Now().UnixNano())
		m.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return m
}

// EnsureInitialized acquires the audio context on first use and registers
// the profiles. It is safe to call from many goroutines at once: only one
// attempt runs, and concurrent callers share its result.
func (m *Manager) EnsureInitialized(ctx context.Context) bool {
	m.mu.Lock()
	switch m.state {
	case StateReady:
		m.mu.Unlock()
		return true
	case StateInitializing:
		ch := m.inflight
		m.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return false
		}
		return m.State() == StateReady
	}

	ch := make(chan struct{})
	m.inflight = ch
	m.state = StateInitializing
	m.mu.Unlock()

	err := m.initialize(ctx)

	m.mu.Lock()
	if err != nil {
		m.state = StateFailed
		zlog.Warn().Msgf("sfx: audio initialization failed: %v", err)
	} else {
		m.state = StateReady
		zlog.Info().Msgf("sfx: audio initialized: profiles=%d muted=%v", len(m.profiles), m.muted)
	}
	m.inflight = nil
	close(ch)
	m.mu.Unlock()

	return err == nil
}

// initialize runs one attempt outside the lock. Platform panics are
// converted into errors.
func (m *Manager) initialize(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("audio initialization panicked: %v", r)
		}
	}()

	m.mu.Lock()
	audio := m.audio
	m.mu.Unlock()

	if audio == nil {
		if m.factory == nil {
			return errors.New("no audio context factory")
		}
		audio, err = m.factory(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to acquire audio context")
		}
		// Keep the context even if the rest fails so a retry can reuse it
		m.mu.Lock()
		m.audio = audio
		m.mu.Unlock()
	}

	if audio.Suspended() {
		if err := audio.Resume(ctx); err != nil {
			return errors.Wrap(err, "failed to resume audio context")
		}
	}

	profiles, err := buildRegistry(m.extra)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	gain := MasterVolume
	if m.muted {
		gain = 0
	}
	m.master = synth.NewGain(gain)
	m.profiles = profiles
	return nil
}

// buildRegistry combines the built-in table with extra profiles.
func buildRegistry(extra []profile.Profile) (map[string]profile.Profile, error) {
	registry := make(map[string]profile.Profile)
	for _, p := range profile.Defaults() {
		registry[p.Name] = p
	}
	for _, p := range extra {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, exists := registry[p.Name]; exists {
			return nil, errors.Newf("profile %s is already registered", p.Name)
		}
		registry[p.Name] = p
	}
	return registry, nil
}

// Play plays the named sound. It does nothing before initialization, while
// muted, or for unknown names.
func (m *Manager) Play(name string) {
	m.PlayWith(name, profile.Patch{})
}

// PlayWith plays the named sound with patch merged over its profile.
func (m *Manager) PlayWith(name string, patch profile.Patch) {
	m.mu.Lock()
	if m.state != StateReady || m.muted {
		m.mu.Unlock()
		return
	}
	p, ok := m.profiles[name]
	audio, master := m.audio, m.master
	m.mu.Unlock()

	if !ok {
		zlog.Debug().Msgf("sfx: unknown sound ignored: name=%s", name)
		return
	}

	if err := m.synthesize(audio, master, p.Apply(patch)); err != nil {
		zlog.Debug().Msgf("sfx: %s sound failed: %v", name, err)
	}
}

// synthesize renders one voice and starts it.
func (m *Manager) synthesize(audio Context, master *synth.Gain, p profile.Profile) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("synthesis panicked: %v", r)
		}
	}()

	if p.Duration <= 0 {
		return errors.Newf("invalid duration %v", p.Duration)
	}

	m.rngMu.Lock()
	freq := p.Frequency.Resolve(m.rng)
	m.rngMu.Unlock()

	voice := synth.Voice(audio.SampleRate(), p.Waveform, freq, p.Volume, p.Duration)
	return audio.Start(master.Apply(voice))
}

// ToggleMute flips the mute flag and returns the new state. When initialized,
// the master gain is switched immediately.
func (m *Manager) ToggleMute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.muted = !m.muted
	if m.master != nil {
		if m.muted {
			m.master.Set(0)
		} else {
			m.master.Set(MasterVolume)
		}
	}

	if m.muted {
		zlog.Info().Msg("sfx: audio muted")
	} else {
		zlog.Info().Msg("sfx: audio unmuted")
	}
	return m.muted
}

// Muted reports whether the manager is muted.
func (m *Manager) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// MasterGain returns the current master gain, or 0 before initialization.
func (m *Manager) MasterGain() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.master == nil {
		return 0
	}
	return m.master.Value()
}

// Profiles returns the registered profile names in sorted order.
func (m *Manager) Profiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.profiles))
	for name := range m.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile returns the registered profile with the given name.
func (m *Manager) Profile(name string) (profile.Profile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[name]
	return p, ok
}

// Close releases the audio context.
func (m *Manager) Close() error {
	m.mu.Lock()
	audio := m.audio
	m.mu.Unlock()
	if audio == nil {
		return nil
	}
	return audio.Close()
}
