package vsync

// SchedulerState represents whether a pass is pending.
//
//	StateIdle  → StateArmed  [Run, with an empty queue]
//	StateArmed → StateIdle   [pass completes, nothing submitted during it]
//	StateArmed → StateArmed  [pass completes, tasks submitted during it]
//
// Visibility changes never move between states: while armed they only add
// a request, from the backend matching the new visibility.
type SchedulerState int

const (
	// StateIdle indicates the queue is empty and no pass is requested.
	StateIdle SchedulerState = iota
	// StateArmed indicates a pass has been requested and not yet run.
	StateArmed
)

// String returns a human-readable representation of the state.
func (s SchedulerState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateArmed:
		return "Armed"
	default:
		return "Unknown"
	}
}
