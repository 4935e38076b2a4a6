package domain

// State represents where a focus session is in its lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// IsLive returns true if the state holds a session that can still tick.
func (s State) IsLive() bool {
	return s == StateRunning || s == StatePaused
}

// AcceptsFreshStart returns true if a start from this state begins a new
// session instead of continuing the current one.
func (s State) AcceptsFreshStart() bool {
	return s == StateIdle || s == StateStopped || s == ""
}

// GetStateLabel returns a human-readable label for the session state.
func GetStateLabel(s State) string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
