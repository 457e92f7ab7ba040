package transcript

import (
	"slices"
	"time"
)

// Sender identifies who produced a transcript entry.
type Sender string

const (
	SenderUser     Sender = "user"
	SenderTutor    Sender = "tutor"
	SenderExercise Sender = "exercise"
)

// Feedback is the correctness signal attached to a graded turn.
type Feedback struct {
	IsCorrect bool

	// CorrectAnswers is the accepted answer set echoed by the tutor (may be empty).
	CorrectAnswers []string
}

// Message is one entry in the transcript. Messages are values; once
// appended to a Log they are never modified.
type Message struct {
	Text   string
	Sender Sender

	// Exercise fields, set only when Sender is SenderExercise.
	ExerciseType  string
	Instructions  string
	TargetAnswers []string

	// Feedback is non-nil when the turn was graded.
	Feedback *Feedback

	// Seq is the 1-based append position, assigned by the Log.
	Seq int

	// Time is when the message was appended, assigned by the Log.
	Time time.Time
}

// UserMessage builds a message sent by the learner.
func UserMessage(text string) Message {
	return Message{Text: text, Sender: SenderUser}
}

// TutorMessage builds a tutor reply. fb may be nil for ungraded turns.
func TutorMessage(text string, fb *Feedback) Message {
	return Message{Text: text, Sender: SenderTutor, Feedback: fb}
}

// ExerciseMessage builds the prompt entry for a newly issued exercise.
func ExerciseMessage(content, exerciseType, instructions string, targets []string) Message {
	return Message{
		Text:          content,
		Sender:        SenderExercise,
		ExerciseType:  exerciseType,
		Instructions:  instructions,
		TargetAnswers: append([]string(nil), targets...),
	}
}

// IsExercise reports whether the message is an exercise prompt.
func (m Message) IsExercise() bool {
	return m.Sender == SenderExercise
}

// Graded reports whether a correctness signal is attached.
func (m Message) Graded() bool {
	return m.Feedback != nil
}

// clone returns a deep copy of m so callers cannot reach stored entries.
func (m Message) clone() Message {
	m.TargetAnswers = slices.Clone(m.TargetAnswers)
	if m.Feedback != nil {
		fb := *m.Feedback
		fb.CorrectAnswers = slices.Clone(fb.CorrectAnswers)
		m.Feedback = &fb
	}
	return m
}
