// Package sfx provides the sound-effect manager.
package sfx

// State represents the manager lifecycle state.
type State int

const (
	StateUninitialized State = iota // No audio context acquired yet
	StateInitializing               // An initialization attempt is in flight
	StateReady                      // Context acquired and profiles registered
	StateFailed                     // Last attempt failed; a later call may retry
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
