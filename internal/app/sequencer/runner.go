package sequencer

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	zlog "github.com/rs/zerolog/log"
)

// Runner drives a Machine on a clock until it finishes or is stopped.
type Runner struct {
	mu sync.Mutex

	machine    *Machine
	clock      clockwork.Clock
	startDelay time.Duration

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRunner creates a runner for m. The first step runs startDelay after Start.
func NewRunner(m *Machine, clock clockwork.Clock, startDelay time.Duration) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{
		machine:    m,
		clock:      clock,
		startDelay: startDelay,
		done:       make(chan struct{}),
	}
}

// Start begins driving the machine in a new goroutine. Only the first call
// has an effect; it returns false for every later call.
func (r *Runner) Start(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		zlog.Debug().Msg("sequencer: start ignored, already started")
		return false
	}
	r.started = true

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	go r.run(ctx)
	return true
}

// Stop cancels any pending step. The machine keeps its current state.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
}

// Done is closed when the runner exits, either finished or stopped.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.done)

	snap := r.machine.Snapshot()
	zlog.Debug().Msgf("sequencer: starting run: run=%s delay=%v", snap.RunID, r.startDelay)

	if !r.wait(ctx, r.startDelay) {
		return
	}
	for {
		delay, more := r.machine.Step()
		if !more {
			return
		}
		if !r.wait(ctx, delay) {
			snap := r.machine.Snapshot()
			zlog.Debug().Msgf("sequencer: stopped: run=%s phase=%s command=%d", snap.RunID, snap.Phase, snap.CommandIndex)
			return
		}
	}
}

// wait blocks for d on the runner clock. It returns false if ctx ends first.
func (r *Runner) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := r.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
