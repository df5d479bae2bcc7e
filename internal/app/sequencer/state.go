// Package sequencer provides the scripted typing-terminal state machine.
package sequencer

// Phase represents the sequencer phase.
type Phase int

const (
	PhaseTyping           Phase = iota // Revealing the current prompt
	PhaseAwaitingResponse              // Prompt fully typed, response pending
	PhaseResetting                     // Response shown, waiting to clear
	PhaseDone                          // All entries played
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseTyping:
		return "typing"
	case PhaseAwaitingResponse:
		return "awaiting_response"
	case PhaseResetting:
		return "resetting"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}
