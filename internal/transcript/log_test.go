package transcript

import (
	"fmt"
	"testing"
	"time"
)

func TestLog_AppendAssignsSequence(t *testing.T) {
	l := NewLog()

	first := l.Append(UserMessage("hola"))
	second := l.Append(TutorMessage("¡Hola! ¿Qué tal?", nil))

	if first.Seq != 1 {
		t.Errorf("first.Seq = %d, want 1", first.Seq)
	}
	if second.Seq != 2 {
		t.Errorf("second.Seq = %d, want 2", second.Seq)
	}
	if first.Time.IsZero() {
		t.Error("expected Append to stamp Time")
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestLog_AllPreservesInsertionOrder(t *testing.T) {
	l := NewLog()
	for i := range 20 {
		l.Append(UserMessage(fmt.Sprintf("msg-%d", i)))
	}

	i := 0
	for m := range l.All() {
		want := fmt.Sprintf("msg-%d", i)
		if m.Text != want {
			t.Errorf("message %d = %q, want %q", i, m.Text, want)
		}
		if m.Seq != i+1 {
			t.Errorf("message %d Seq = %d, want %d", i, m.Seq, i+1)
		}
		i++
	}
	if i != 20 {
		t.Errorf("iterated %d messages, want 20", i)
	}
}

func TestLog_AllIsRestartable(t *testing.T) {
	l := NewLog()
	l.Append(UserMessage("a"))
	l.Append(TutorMessage("b", nil))

	seq := l.All()
	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}

	if got := count(); got != 2 {
		t.Errorf("first pass = %d, want 2", got)
	}
	l.Append(UserMessage("c"))
	if got := count(); got != 3 {
		t.Errorf("second pass = %d, want 3 (sequence should see later appends)", got)
	}
}

func TestLog_AllEarlyBreak(t *testing.T) {
	l := NewLog()
	l.Append(UserMessage("a"))
	l.Append(UserMessage("b"))
	l.Append(UserMessage("c"))

	var seen []string
	for m := range l.All() {
		seen = append(seen, m.Text)
		if m.Text == "b" {
			break
		}
	}
	if len(seen) != 2 {
		t.Errorf("seen = %v, want [a b]", seen)
	}
}

func TestLog_AppendDuringIteration(t *testing.T) {
	l := NewLog()
	l.Append(UserMessage("a"))
	l.Append(UserMessage("b"))

	n := 0
	for range l.All() {
		l.Append(TutorMessage("reply", nil))
		n++
	}
	if n != 2 {
		t.Errorf("iterated %d messages, want 2 (snapshot taken at start)", n)
	}
	if l.Len() != 4 {
		t.Errorf("Len() = %d, want 4", l.Len())
	}
}

func TestLog_Last(t *testing.T) {
	l := NewLog()
	if _, ok := l.Last(); ok {
		t.Error("expected Last on empty log to report false")
	}

	l.Append(UserMessage("a"))
	l.Append(TutorMessage("b", &Feedback{IsCorrect: true}))

	last, ok := l.Last()
	if !ok {
		t.Fatal("expected Last to report true")
	}
	if last.Text != "b" || !last.Graded() {
		t.Errorf("Last() = %+v, want graded tutor message b", last)
	}
}

func TestLog_Recent(t *testing.T) {
	l := NewLog()
	l.Append(UserMessage("u1"))
	l.Append(TutorMessage("t1", nil))
	l.Append(ExerciseMessage("dog", "TRANSLATION", "Translate the word", []string{"perro"}))
	l.Append(UserMessage("u2"))
	l.Append(TutorMessage("t2", nil))

	conversational := func(m Message) bool { return !m.IsExercise() }

	got := l.Recent(3, conversational)
	want := []string{"t1", "u2", "t2"}
	if len(got) != len(want) {
		t.Fatalf("Recent returned %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Errorf("Recent[%d] = %q, want %q", i, got[i].Text, want[i])
		}
	}

	if got := l.Recent(0, nil); got != nil {
		t.Errorf("Recent(0) = %v, want nil", got)
	}
	if got := l.Recent(10, nil); len(got) != 5 {
		t.Errorf("Recent(10) returned %d messages, want 5", len(got))
	}
}

func TestLog_UsesInjectedClock(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l := NewLog()
	l.now = func() time.Time { return fixed }

	m := l.Append(UserMessage("a"))
	if !m.Time.Equal(fixed) {
		t.Errorf("Time = %v, want %v", m.Time, fixed)
	}
}

func TestExerciseMessage_CopiesTargets(t *testing.T) {
	targets := []string{"perro", "can"}
	m := ExerciseMessage("dog", "TRANSLATION", "Translate", targets)
	targets[0] = "gato"

	if m.TargetAnswers[0] != "perro" {
		t.Errorf("TargetAnswers[0] = %q, want perro (message must not alias caller slice)", m.TargetAnswers[0])
	}
	if !m.IsExercise() {
		t.Error("expected IsExercise to be true")
	}
}

func TestLog_ReadsDoNotAliasStoredMessages(t *testing.T) {
	l := NewLog()
	appended := l.Append(TutorMessage("¡Muy bien!", &Feedback{IsCorrect: true, CorrectAnswers: []string{"perro"}}))
	l.Append(ExerciseMessage("dog", "TRANSLATION", "Translate", []string{"perro"}))

	appended.Feedback.IsCorrect = false
	for m := range l.All() {
		if m.Graded() {
			m.Feedback.IsCorrect = false
			m.Feedback.CorrectAnswers[0] = "gato"
		}
		if m.IsExercise() {
			m.TargetAnswers[0] = "gato"
		}
	}
	last, _ := l.Last()
	last.TargetAnswers[0] = "gato"
	for _, m := range l.Recent(2, nil) {
		if m.Graded() {
			m.Feedback.IsCorrect = false
		}
	}

	stored := l.Recent(2, nil)
	if !stored[0].Feedback.IsCorrect {
		t.Error("Feedback.IsCorrect changed through a returned message")
	}
	if got := stored[0].Feedback.CorrectAnswers[0]; got != "perro" {
		t.Errorf("CorrectAnswers[0] = %q, want perro", got)
	}
	if got := stored[1].TargetAnswers[0]; got != "perro" {
		t.Errorf("TargetAnswers[0] = %q, want perro", got)
	}
}

func TestLog_AppendCopiesCallerMessage(t *testing.T) {
	l := NewLog()
	fb := &Feedback{IsCorrect: true, CorrectAnswers: []string{"perro"}}
	l.Append(TutorMessage("¡Muy bien!", fb))

	fb.IsCorrect = false
	fb.CorrectAnswers[0] = "gato"

	last, _ := l.Last()
	if !last.Feedback.IsCorrect || last.Feedback.CorrectAnswers[0] != "perro" {
		t.Errorf("stored feedback = %+v, want unchanged", *last.Feedback)
	}
}
