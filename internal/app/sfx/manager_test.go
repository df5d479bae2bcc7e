package sfx

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/termfolio/internal/domain/profile"
)

// mockContext records voice starts instead of producing sound.
type mockContext struct {
	mu        sync.Mutex
	suspended bool
	resumes   int
	started   []beep.Streamer
	startErr  error
	closed    bool
}

func (c *mockContext) SampleRate() beep.SampleRate { return 44100 }

func (c *mockContext) Suspended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suspended
}

func (c *mockContext) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumes++
	c.suspended = false
	return nil
}

func (c *mockContext) Start(voice beep.Streamer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.startErr != nil {
		return c.startErr
	}
	c.started = append(c.started, voice)
	return nil
}

func (c *mockContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *mockContext) starts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.started)
}

// factoryFor returns a factory handing out audio and counting calls.
func factoryFor(audio *mockContext, calls *atomic.Int32) ContextFactory {
	return func(ctx context.Context) (Context, error) {
		calls.Add(1)
		return audio, nil
	}
}

func newReadyManager(t *testing.T, opts ...Option) (*Manager, *mockContext) {
	t.Helper()
	audio := &mockContext{}
	var calls atomic.Int32
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 1)))}, opts...)
	m := NewManager(factoryFor(audio, &calls), opts...)
	require.True(t, m.EnsureInitialized(context.Background()))
	return m, audio
}

func TestManager_NewIsUninitialized(t *testing.T) {
	m := NewManager(nil)
	assert.Equal(t, StateUninitialized, m.State())
	assert.False(t, m.Muted())
	assert.Equal(t, 0.0, m.MasterGain())
	assert.Empty(t, m.Profiles())
}

func TestManager_EnsureInitialized(t *testing.T) {
	audio := &mockContext{suspended: true}
	var calls atomic.Int32
	m := NewManager(factoryFor(audio, &calls))

	require.True(t, m.EnsureInitialized(context.Background()))
	assert.Equal(t, StateReady, m.State())
	assert.Equal(t, 1, audio.resumes, "suspended context should be resumed")
	assert.Equal(t, MasterVolume, m.MasterGain())
	assert.Equal(t, []string{"click", "glitch", "hover", "notification", "scan", "typing"}, m.Profiles())

	// Second call is a no-op
	require.True(t, m.EnsureInitialized(context.Background()))
	assert.Equal(t, int32(1), calls.Load(), "must not create a second context")
	assert.Len(t, m.Profiles(), 6, "must not double-register profiles")
	assert.Equal(t, 1, audio.resumes)
}

func TestManager_EnsureInitialized_Concurrent(t *testing.T) {
	audio := &mockContext{}
	var calls atomic.Int32
	release := make(chan struct{})
	factory := func(ctx context.Context) (Context, error) {
		calls.Add(1)
		<-release
		return audio, nil
	}
	m := NewManager(factory)

	const callers = 16
	var wg sync.WaitGroup
	results := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- m.EnsureInitialized(context.Background())
		}()
	}

	// Let the first attempt start before releasing it
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for ok := range results {
		assert.True(t, ok)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, StateReady, m.State())
}

func TestManager_EnsureInitialized_Failure(t *testing.T) {
	var calls atomic.Int32
	audio := &mockContext{}
	factory := func(ctx context.Context) (Context, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("no user gesture yet")
		}
		return audio, nil
	}
	m := NewManager(factory)

	assert.False(t, m.EnsureInitialized(context.Background()))
	assert.Equal(t, StateFailed, m.State())

	// Failed state never plays
	m.Play(profile.Click)
	assert.Equal(t, 0, audio.starts())

	// A later attempt may succeed
	assert.True(t, m.EnsureInitialized(context.Background()))
	assert.Equal(t, StateReady, m.State())
	assert.Equal(t, int32(2), calls.Load())
}

func TestManager_EnsureInitialized_FactoryPanics(t *testing.T) {
	m := NewManager(func(ctx context.Context) (Context, error) {
		panic("audio backend exploded")
	})

	assert.NotPanics(t, func() {
		assert.False(t, m.EnsureInitialized(context.Background()))
	})
	assert.Equal(t, StateFailed, m.State())
}

func TestManager_EnsureInitialized_RejectsDuplicateProfile(t *testing.T) {
	audio := &mockContext{}
	var calls atomic.Int32
	dup := profile.Defaults()[0]
	m := NewManager(factoryFor(audio, &calls), WithProfiles(dup))

	assert.False(t, m.EnsureInitialized(context.Background()))
	assert.Equal(t, StateFailed, m.State())
}

func TestManager_Play_AllProfiles(t *testing.T) {
	m, audio := newReadyManager(t)

	for _, name := range m.Profiles() {
		t.Run(name, func(t *testing.T) {
			before := audio.starts()
			assert.NotPanics(t, func() { m.Play(name) })
			assert.Equal(t, before+1, audio.starts())
		})
	}
}

func TestManager_Play_NoSoundWhenInactive(t *testing.T) {
	t.Run("before initialization", func(t *testing.T) {
		audio := &mockContext{}
		var calls atomic.Int32
		m := NewManager(factoryFor(audio, &calls))
		for _, p := range profile.Defaults() {
			m.Play(p.Name)
		}
		assert.Equal(t, 0, audio.starts())
		assert.Equal(t, int32(0), calls.Load(), "play must not initialize")
	})

	t.Run("while muted", func(t *testing.T) {
		m, audio := newReadyManager(t)
		require.True(t, m.ToggleMute())
		for _, p := range profile.Defaults() {
			m.Play(p.Name)
		}
		assert.Equal(t, 0, audio.starts())
	})

	t.Run("unknown name", func(t *testing.T) {
		m, audio := newReadyManager(t)
		m.Play("laser")
		assert.Equal(t, 0, audio.starts())
	})
}

func TestManager_Play_StartErrorIsSwallowed(t *testing.T) {
	m, audio := newReadyManager(t)
	audio.startErr = errors.New("device lost")

	assert.NotPanics(t, func() { m.Play(profile.Click) })
}

func TestManager_PlayWith_Patch(t *testing.T) {
	m, audio := newReadyManager(t)

	dur := 10 * time.Millisecond
	m.PlayWith(profile.Click, profile.Patch{Duration: &dur})
	require.Equal(t, 1, audio.starts())

	// Count the rendered samples to confirm the patched duration was used
	voice := audio.started[0]
	buf := make([][2]float64, 4096)
	total := 0
	for {
		n, ok := voice.Stream(buf)
		total += n
		if !ok || n == 0 {
			break
		}
	}
	assert.Equal(t, audio.SampleRate().N(dur), total)

	// A bad patch is dropped without panicking
	zero := time.Duration(0)
	assert.NotPanics(t, func() { m.PlayWith(profile.Click, profile.Patch{Duration: &zero}) })
	assert.Equal(t, 1, audio.starts())
}

func TestManager_ToggleMute(t *testing.T) {
	m, _ := newReadyManager(t)
	original := m.MasterGain()

	assert.True(t, m.ToggleMute())
	assert.Equal(t, 0.0, m.MasterGain())

	assert.False(t, m.ToggleMute())
	assert.Equal(t, original, m.MasterGain())
	assert.False(t, m.Muted())
}

func TestManager_ToggleMute_BeforeInit(t *testing.T) {
	audio := &mockContext{}
	var calls atomic.Int32
	m := NewManager(factoryFor(audio, &calls))

	assert.True(t, m.ToggleMute())
	require.True(t, m.EnsureInitialized(context.Background()))
	assert.Equal(t, 0.0, m.MasterGain(), "muted manager starts with silent master")

	assert.False(t, m.ToggleMute())
	assert.Equal(t, MasterVolume, m.MasterGain())
}

func TestManager_ExtraProfiles(t *testing.T) {
	laser := profile.Profile{Name: "laser", Waveform: profile.WaveSawtooth, Frequency: profile.Between(300, 900), Duration: 50 * time.Millisecond, Volume: 0.05}
	m, audio := newReadyManager(t, WithProfiles(laser))

	p, ok := m.Profile("laser")
	require.True(t, ok)
	assert.Equal(t, laser, p)

	m.Play("laser")
	assert.Equal(t, 1, audio.starts())
}

func TestManager_Close(t *testing.T) {
	m, audio := newReadyManager(t)
	require.NoError(t, m.Close())
	assert.True(t, audio.closed)

	assert.NoError(t, NewManager(nil).Close())
}
