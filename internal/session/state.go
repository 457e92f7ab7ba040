package session

import (
	"github.com/abhisek/lingo/internal/exercise"
	"github.com/abhisek/lingo/internal/progress"
)

// Phase is the combined mode and exercise lifecycle position.
//
//	conversation --SetMode(exercise)--> exercise-idle
//	exercise-idle --GetExercise--> exercise-active
//	exercise-active --SendMessage--> exercise-awaiting-result
//	exercise-awaiting-result --response--> exercise-idle
//	exercise-idle --SetMode(conversation)--> conversation
type Phase int

const (
	PhaseConversation   Phase = iota // Free conversation
	PhaseExerciseIdle                // Exercise mode, no exercise issued
	PhaseExerciseActive              // Exercise issued, waiting for the learner
	PhaseAwaitingResult              // Answer submitted, waiting for grading
)

func (p Phase) String() string {
	switch p {
	case PhaseConversation:
		return "conversation"
	case PhaseExerciseIdle:
		return "exercise-idle"
	case PhaseExerciseActive:
		return "exercise-active"
	case PhaseAwaitingResult:
		return "exercise-awaiting-result"
	default:
		return "unknown"
	}
}

// Request names the kind of request currently in flight.
type Request int

const (
	RequestNone Request = iota
	RequestStart
	RequestSend
	RequestExercise
)

func (r Request) String() string {
	switch r {
	case RequestStart:
		return "start-conversation"
	case RequestSend:
		return "send-message"
	case RequestExercise:
		return "get-exercise"
	default:
		return "none"
	}
}

// State is an immutable snapshot of a session, handed to observers and hosts.
type State struct {
	SessionID string
	Config    Config

	// Pending is the request in flight, RequestNone when idle.
	Pending Request

	// Exercise is the active exercise, nil when none.
	Exercise *exercise.Exercise

	Stats    progress.Stats
	Messages int

	// Input is the host's unsent input buffer.
	Input string

	// Notice is a transient message about the last failure, empty when none.
	Notice string
}

// Loading reports whether a request is in flight.
func (s State) Loading() bool {
	return s.Pending != RequestNone
}

// Phase derives the state machine position from mode, exercise and request.
func (s State) Phase() Phase {
	if s.Config.Mode != ModeExercise {
		return PhaseConversation
	}
	switch {
	case s.Exercise == nil:
		return PhaseExerciseIdle
	case s.Pending == RequestSend:
		return PhaseAwaitingResult
	default:
		return PhaseExerciseActive
	}
}

// CanSend reports whether the send affordance is enabled.
func (s State) CanSend() bool {
	return !s.Loading()
}

// CanStartConversation reports whether the start-conversation affordance is enabled.
func (s State) CanStartConversation() bool {
	return s.Config.Mode == ModeConversation && !s.Loading()
}

// CanGetExercise reports whether the get-exercise affordance is enabled.
func (s State) CanGetExercise() bool {
	return s.Config.Mode == ModeExercise && !s.Loading() && s.Exercise == nil
}
