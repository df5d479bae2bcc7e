package sequencer

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/rivo/uniseg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/osa030/termfolio/internal/domain/profile"
	"github.com/osa030/termfolio/internal/domain/script"
)

// recorder collects events and sounds.
type recorder struct {
	mu     sync.Mutex
	events []Event
	sounds []string
}

func (r *recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Play(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sounds = append(r.sounds, name)
}

func (r *recorder) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func testScript(t *testing.T) script.Script {
	t.Helper()
	s, err := script.New([]string{"a", "bb"}, []string{"R1", "R2"}, script.Closing{Command: `echo "bye"`, Response: "bye"})
	require.NoError(t, err)
	return s
}

func newTestMachine(s script.Script, rec *recorder, seed uint64) *Machine {
	return NewMachine(s, DefaultTiming(),
		WithRand(rand.New(rand.NewPCG(seed, seed))),
		WithEmitter(rec),
		WithSound(rec),
	)
}

// runToEnd steps m until it reports no more steps and returns the delays.
func runToEnd(t *testing.T, m *Machine) []time.Duration {
	t.Helper()
	var delays []time.Duration
	for i := 0; i < 10000; i++ {
		d, more := m.Step()
		if !more {
			return delays
		}
		delays = append(delays, d)
	}
	t.Fatal("machine did not finish")
	return nil
}

func TestMachine_FullRun(t *testing.T) {
	rec := &recorder{}
	m := newTestMachine(testScript(t), rec, 7)

	runToEnd(t, m)

	var responses []string
	for _, e := range rec.ofType(EventResponse) {
		responses = append(responses, e.Text)
	}
	assert.Equal(t, []string{"R1", "R2"}, responses)

	snap := m.Snapshot()
	assert.Equal(t, 2, snap.CommandIndex)
	assert.Equal(t, PhaseDone, snap.Phase)
	assert.True(t, snap.Closed)

	closing := rec.ofType(EventClosing)
	require.Len(t, closing, 1)
	assert.Equal(t, `echo "bye"`, closing[0].Command)
	assert.Equal(t, "bye", closing[0].Text)

	assert.Len(t, rec.ofType(EventClear), 2)
}

func TestMachine_ClosingOnlyOnce(t *testing.T) {
	rec := &recorder{}
	m := newTestMachine(testScript(t), rec, 7)
	runToEnd(t, m)

	for i := 0; i < 5; i++ {
		d, more := m.Step()
		assert.False(t, more)
		assert.Zero(t, d)
	}
	assert.Len(t, rec.ofType(EventClosing), 1)
	assert.Equal(t, 2, m.Snapshot().CommandIndex)
}

func TestMachine_EventOrder(t *testing.T) {
	rec := &recorder{}
	m := newTestMachine(testScript(t), rec, 3)
	runToEnd(t, m)

	var got []string
	for _, e := range rec.events {
		got = append(got, e.Type.String()+":"+e.Text)
	}
	assert.Equal(t, []string{
		"reveal:a",
		"response:R1",
		"clear:",
		"reveal:b",
		"reveal:bb",
		"response:R2",
		"clear:",
		"closing:bye",
	}, got)

	runID := rec.events[0].RunID
	assert.NotEmpty(t, runID)
	for _, e := range rec.events {
		assert.Equal(t, runID, e.RunID)
	}
}

func TestMachine_Timing(t *testing.T) {
	rec := &recorder{}
	m := newTestMachine(testScript(t), rec, 11)
	timing := DefaultTiming()

	delays := runToEnd(t, m)

	// a: reveal, pause, response hold, next
	// bb: reveal, reveal, pause, response hold, closing delay
	require.Len(t, delays, 9)
	jitter := []int{0, 4, 5}
	for _, i := range jitter {
		assert.GreaterOrEqual(t, delays[i], timing.MinCharDelay)
		assert.Less(t, delays[i], timing.MaxCharDelay)
	}
	assert.Equal(t, timing.RevealPause, delays[1])
	assert.Equal(t, timing.ResponseHold, delays[2])
	assert.Equal(t, timing.NextCommandDelay, delays[3])
	assert.Equal(t, timing.RevealPause, delays[6])
	assert.Equal(t, timing.ResponseHold, delays[7])
	assert.Equal(t, timing.ClosingDelay, delays[8])
}

func TestMachine_TypingSoundPerReveal(t *testing.T) {
	rec := &recorder{}
	m := newTestMachine(testScript(t), rec, 1)
	runToEnd(t, m)

	assert.Len(t, rec.sounds, 3)
	for _, s := range rec.sounds {
		assert.Equal(t, profile.Typing, s)
	}
}

func TestMachine_PhaseProgression(t *testing.T) {
	rec := &recorder{}
	m := newTestMachine(testScript(t), rec, 1)

	assert.Equal(t, PhaseTyping, m.Snapshot().Phase)
	m.Step() // reveal "a"
	assert.Equal(t, PhaseTyping, m.Snapshot().Phase)
	assert.Equal(t, 1, m.Snapshot().CharIndex)
	m.Step() // prompt complete
	assert.Equal(t, PhaseAwaitingResponse, m.Snapshot().Phase)
	m.Step() // response shown
	assert.Equal(t, PhaseResetting, m.Snapshot().Phase)
	m.Step() // cleared
	snap := m.Snapshot()
	assert.Equal(t, PhaseTyping, snap.Phase)
	assert.Equal(t, 1, snap.CommandIndex)
	assert.Equal(t, 0, snap.CharIndex)
}

func TestMachine_SeededJitterIsDeterministic(t *testing.T) {
	a := runToEnd(t, newTestMachine(script.Default(), &recorder{}, 99))
	b := runToEnd(t, newTestMachine(script.Default(), &recorder{}, 99))
	assert.Equal(t, a, b)
}

func TestMachine_GraphemeReveal(t *testing.T) {
	s, err := script.New([]string{"héllo 👩‍💻"}, []string{"ok"}, script.Closing{Command: "echo"})
	require.NoError(t, err)
	rec := &recorder{}
	m := newTestMachine(s, rec, 1)
	runToEnd(t, m)

	reveals := rec.ofType(EventReveal)
	require.Len(t, reveals, 7)
	assert.Equal(t, "h", reveals[0].Text)
	assert.Equal(t, "héllo 👩‍💻", reveals[6].Text)
}

func TestMachine_EmptyScript(t *testing.T) {
	rec := &recorder{}
	m := NewMachine(script.Script{Closing: script.Closing{Command: "echo", Response: "x"}}, DefaultTiming(), WithEmitter(rec))

	assert.Equal(t, PhaseDone, m.Snapshot().Phase)
	_, more := m.Step()
	assert.False(t, more)
	assert.Len(t, rec.ofType(EventClosing), 1)
}

func TestMachine_RevealCountProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prompts := rapid.SliceOfN(rapid.StringN(1, 20, -1), 1, 5).Draw(t, "prompts")
		seed := rapid.Uint64().Draw(t, "seed")

		responses := make([]string, len(prompts))
		for i := range responses {
			responses[i] = "R"
		}
		s := script.Script{Closing: script.Closing{Command: "echo"}}
		for i, p := range prompts {
			s.Entries = append(s.Entries, script.Entry{Prompt: p, Response: responses[i]})
		}

		rec := &recorder{}
		m := NewMachine(s, DefaultTiming(), WithRand(rand.New(rand.NewPCG(seed, seed))), WithEmitter(rec))
		for i := 0; i < 100000; i++ {
			if _, more := m.Step(); !more {
				break
			}
		}

		perCommand := make(map[int]int)
		for _, e := range rec.ofType(EventReveal) {
			perCommand[e.CommandIndex]++
		}
		for i, p := range prompts {
			want := uniseg.GraphemeClusterCount(p)
			if perCommand[i] != want {
				t.Fatalf("command %d: got %d reveals, want %d", i, perCommand[i], want)
			}
		}
		if got := len(rec.ofType(EventClosing)); got != 1 {
			t.Fatalf("got %d closing events, want 1", got)
		}
		if m.Snapshot().CommandIndex != len(prompts) {
			t.Fatalf("command index %d, want %d", m.Snapshot().CommandIndex, len(prompts))
		}
	})
}
