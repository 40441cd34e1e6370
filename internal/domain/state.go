package domain

import "fmt"

// State is a task lifecycle state.
type State string

const (
	StateCreated    State = "Created"
	StateInProgress State = "InProgress"
	StateBlocked    State = "Blocked"
	StateReview     State = "Review"
	StateDone       State = "Done"
	StateArchived   State = "Archived"
)

// States lists all lifecycle states in their natural progression order.
var States = []State{StateCreated, StateInProgress, StateBlocked, StateReview, StateDone, StateArchived}

// transitions maps each state to the states reachable via set_task_state.
// InProgress→Created is deliberately absent: that move happens only through
// task release.
var transitions = map[State][]State{
	StateCreated:    {StateInProgress},
	StateInProgress: {StateBlocked, StateReview, StateDone},
	StateBlocked:    {StateInProgress},
	StateReview:     {StateInProgress, StateDone},
	StateDone:       {StateArchived},
	StateArchived:   {},
}

// ParseState converts a wire string into a State.
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", Validationf("unknown task state %q", s)
	}
	return st, nil
}

// Valid reports whether the state is one of the six lifecycle states.
func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// String returns the wire representation.
func (s State) String() string { return string(s) }

// CanTransition reports whether a direct move from one state to another is
// legal.
func CanTransition(from, to State) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a typed error when the move is illegal, including
// the release-only InProgress→Created edge.
func CheckTransition(from, to State) error {
	if !to.Valid() {
		return Validationf("unknown task state %q", to)
	}
	if CanTransition(from, to) {
		return nil
	}
	if from == StateInProgress && to == StateCreated {
		return InvalidTransitionf("cannot move task from %s to %s directly; release the task instead", from, to)
	}
	return InvalidTransitionf("cannot move task from %s to %s", from, to)
}

// MustState panics on an unknown state name. Test helper.
func MustState(s string) State {
	st, err := ParseState(s)
	if err != nil {
		panic(fmt.Sprintf("domain: %v", err))
	}
	return st
}
