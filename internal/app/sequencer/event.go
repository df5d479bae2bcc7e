package sequencer

// EventType represents a sequencer event type.
type EventType int

const (
	EventReveal   EventType = iota // One more character of the prompt is visible
	EventResponse                  // The response is shown in full
	EventClear                     // Prompt and response regions are cleared
	EventClosing                   // The closing line is appended to the log
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventReveal:
		return "reveal"
	case EventResponse:
		return "response"
	case EventClear:
		return "clear"
	case EventClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Event represents a sequencer display update.
type Event struct {
	Type         EventType
	RunID        string
	CommandIndex int
	Text         string // Revealed prefix, response text, or closing response
	Command      string // Closing command (EventClosing only)
}

// Emitter receives sequencer events.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event)

// Emit calls f(e).
func (f EmitterFunc) Emit(e Event) {
	f(e)
}

// SoundPlayer plays named sound effects.
type SoundPlayer interface {
	Play(name string)
}
