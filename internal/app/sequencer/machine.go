package sequencer

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/termfolio/internal/domain/profile"
	"github.com/osa030/termfolio/internal/domain/script"
)

// Timing holds the delays between sequencer steps.
type Timing struct {
	StartDelay       time.Duration // Before the first character
	MinCharDelay     time.Duration // Lower bound of per-character jitter
	MaxCharDelay     time.Duration // Upper bound (exclusive) of per-character jitter
	RevealPause      time.Duration // After the prompt is fully typed
	ResponseHold     time.Duration // How long the response stays visible
	NextCommandDelay time.Duration // After clearing, before the next prompt
	ClosingDelay     time.Duration // After the last entry, before the closing line
}

// DefaultTiming returns the stock delays.
func DefaultTiming() Timing {
	return Timing{
		StartDelay:       2000 * time.Millisecond,
		MinCharDelay:     50 * time.Millisecond,
		MaxCharDelay:     150 * time.Millisecond,
		RevealPause:      500 * time.Millisecond,
		ResponseHold:     1500 * time.Millisecond,
		NextCommandDelay: 500 * time.Millisecond,
		ClosingDelay:     500 * time.Millisecond,
	}
}

// Snapshot is a read-only view of the machine state.
type Snapshot struct {
	RunID        string
	Phase        Phase
	CommandIndex int
	CharIndex    int
	Closed       bool
}

// Machine is the sequencer state machine. Each call to Step performs the
// action of the current state and returns the delay before the next call.
// A Machine is not safe for concurrent use; a Runner owns it.
type Machine struct {
	script    script.Script
	graphemes [][]string // Prompts split into user-perceived characters
	timing    Timing
	rng       *rand.Rand
	emitter   Emitter
	sound     SoundPlayer
	runID     string

	commandIndex int
	charIndex    int
	phase        Phase
	closed       bool
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithRand sets the jitter source.
func WithRand(r *rand.Rand) MachineOption {
	return func(m *Machine) {
		m.rng = r
	}
}

// WithEmitter sets the event receiver.
func WithEmitter(e Emitter) MachineOption {
	return func(m *Machine) {
		m.emitter = e
	}
}

// WithSound sets the sound player used for keystroke sounds.
func WithSound(s SoundPlayer) MachineOption {
	return func(m *Machine) {
		m.sound = s
	}
}

// NewMachine creates a machine positioned at the first prompt.
func NewMachine(s script.Script, timing Timing, opts ...MachineOption) *Machine {
	m := &Machine{
		script: s,
		timing: timing,
		runID:  uuid.New().String(),
		phase:  PhaseTyping,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		seed := uint64(time.Now().UnixNano())
		m.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	m.graphemes = make([][]string, len(s.Entries))
	for i, e := range s.Entries {
		m.graphemes[i] = splitGraphemes(e.Prompt)
	}
	if len(s.Entries) == 0 {
		m.phase = PhaseDone
	}
	return m
}

// Step advances the machine by one action. It returns the delay before the
// next step and false once the closing line has been emitted.
func (m *Machine) Step() (time.Duration, bool) {
	switch m.phase {
	case PhaseTyping:
		chars := m.graphemes[m.commandIndex]
		if m.charIndex < len(chars) {
			m.charIndex++
			m.emit(Event{
				Type:         EventReveal,
				CommandIndex: m.commandIndex,
				Text:         strings.Join(chars[:m.charIndex], ""),
			})
			if m.sound != nil {
				m.sound.Play(profile.Typing)
			}
			return m.charDelay(), true
		}
		m.phase = PhaseAwaitingResponse
		return m.timing.RevealPause, true

	case PhaseAwaitingResponse:
		m.emit(Event{
			Type:         EventResponse,
			CommandIndex: m.commandIndex,
			Text:         m.script.Entries[m.commandIndex].Response,
		})
		m.phase = PhaseResetting
		return m.timing.ResponseHold, true

	case PhaseResetting:
		m.emit(Event{Type: EventClear, CommandIndex: m.commandIndex})
		m.commandIndex++
		m.charIndex = 0
		if m.commandIndex < len(m.script.Entries) {
			m.phase = PhaseTyping
			return m.timing.NextCommandDelay, true
		}
		m.phase = PhaseDone
		return m.timing.ClosingDelay, true

	default:
		if !m.closed {
			m.closed = true
			m.emit(Event{
				Type:         EventClosing,
				CommandIndex: m.commandIndex,
				Command:      m.script.Closing.Command,
				Text:         m.script.Closing.Response,
			})
			zlog.Debug().Msgf("sequencer: run complete: run=%s entries=%d", m.runID, len(m.script.Entries))
		}
		return 0, false
	}
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		RunID:        m.runID,
		Phase:        m.phase,
		CommandIndex: m.commandIndex,
		CharIndex:    m.charIndex,
		Closed:       m.closed,
	}
}

// charDelay draws the per-character jitter from [MinCharDelay, MaxCharDelay).
func (m *Machine) charDelay() time.Duration {
	span := m.timing.MaxCharDelay - m.timing.MinCharDelay
	if span <= 0 {
		return m.timing.MinCharDelay
	}
	return m.timing.MinCharDelay + time.Duration(m.rng.Float64()*float64(span))
}

func (m *Machine) emit(e Event) {
	if m.emitter == nil {
		return
	}
	e.RunID = m.runID
	m.emitter.Emit(e)
}

// splitGraphemes splits s into grapheme clusters.
func splitGraphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}
