package workflows

import "fmt"

// StateMachine enforces transitions between states of a single run
type StateMachine[S comparable] struct {
	allowedTransitions map[S][]S
}

// NewStateMachine creates a new state machine with allowed transitions
func NewStateMachine[S comparable](allowed map[S][]S) *StateMachine[S] {
	return &StateMachine[S]{allowedTransitions: allowed}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine[S]) CanTransition(from, to S) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next states for a given state
func (sm *StateMachine[S]) GetAllowedTransitions(from S) []S {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []S{}
	}
	return allowed
}

// IsTerminal reports whether no transition leaves the state
func (sm *StateMachine[S]) IsTerminal(state S) bool {
	return len(sm.allowedTransitions[state]) == 0
}

// Check returns an error describing a disallowed transition
func (sm *StateMachine[S]) Check(from, to S) error {
	if !sm.CanTransition(from, to) {
		return fmt.Errorf("transition %v -> %v is not allowed", from, to)
	}
	return nil
}
