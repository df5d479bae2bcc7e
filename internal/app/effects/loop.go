package effects

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
	zlog "github.com/rs/zerolog/log"
)

// Loop runs interval effects on a clock and fires triggered effects on demand.
type Loop struct {
	mu sync.Mutex

	clock   clockwork.Clock
	env     Env
	effects map[string]Effect

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLoop creates a loop for the given effects.
func NewLoop(clock clockwork.Clock, env Env, effects []Effect) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	byName := make(map[string]Effect, len(effects))
	for _, e := range effects {
		byName[e.Name()] = e
	}
	return &Loop{
		clock:   clock,
		env:     env,
		effects: byName,
	}
}

// Start launches one goroutine per interval effect. Calling Start on a
// running loop has no effect.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	for name, e := range l.effects {
		if e.Next(l.env) <= 0 {
			continue
		}
		zlog.Debug().Msgf("effects: starting %s", name)
		l.wg.Add(1)
		go l.run(ctx, e)
	}
}

// Stop cancels every running effect and waits for them to exit.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.wg.Wait()
}

// Trigger fires the named effect once. It reports false if the effect
// is not enabled.
func (l *Loop) Trigger(name string) bool {
	e, ok := l.effects[name]
	if !ok {
		return false
	}
	e.Fire(l.env)
	return true
}

// Enabled reports whether the named effect is part of this loop.
func (l *Loop) Enabled(name string) bool {
	_, ok := l.effects[name]
	return ok
}

func (l *Loop) run(ctx context.Context, e Effect) {
	defer l.wg.Done()
	for {
		timer := l.clock.NewTimer(e.Next(l.env))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}
		e.Fire(l.env)
	}
}

// SetGlitcher replaces the glitch target. It must be called before Start.
func (l *Loop) SetGlitcher(g Glitcher) {
	l.env.Glitch = g
}
