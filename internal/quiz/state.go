package quiz

import (
	"errors"
	"fmt"
)

// State is the lifecycle phase of a Session.
type State int

const (
	StateNotStarted State = iota // created, no tasks sampled yet
	StateInProgress              // answering tasks
	StateFinished                // result computed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateInProgress:
		return "in-progress"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidState is returned when an operation is called in a state that
// does not allow it. It indicates a caller bug, not a user error.
var ErrInvalidState = errors.New("invalid session state")

// StateError describes which operation was rejected and in which state.
type StateError struct {
	Op    string
	State State

	// Complete reports whether all tasks had been answered.
	Complete bool
}

func (e *StateError) Error() string {
	detail := e.State.String()
	if e.State == StateInProgress {
		if e.Complete {
			detail += ", all tasks answered"
		} else {
			detail += ", tasks remaining"
		}
	}
	return fmt.Sprintf("%s: %v (%s)", e.Op, ErrInvalidState, detail)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }
