package alerts

// allowedNext is the alert lifecycle. resuelta is terminal.
var allowedNext = map[State][]State{
	StatePending:  {StateReviewed, StateResolved},
	StateReviewed: {StateResolved},
	StateResolved: {},
}

// AllowedNext returns the states reachable from state in one step. Unknown
// states have no successors.
func AllowedNext(state State) []State {
	next := allowedNext[state]
	out := make([]State, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to State) bool {
	for _, candidate := range allowedNext[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Transition validates a requested change and returns the alert in its new
// state. The input alert is never modified.
func Transition(alert Alert, to State) (Alert, error) {
	if _, ok := NormalizeState(string(to)); !ok {
		return alert, ErrInvalidState
	}
	if !CanTransition(alert.State, to) {
		return alert, ErrInvalidTransition
	}
	next := alert
	next.State = to
	return next, nil
}
