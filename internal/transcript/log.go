package transcript

import (
	"iter"
	"sync"
	"time"
)

// Log is the append-only, ordered record of a session's messages.
// Insertion order is display order; entries are never removed or reordered.
type Log struct {
	mu       sync.RWMutex
	messages []Message
	now      func() time.Time
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Append adds a copy of m to the end of the log, stamping its Seq and Time.
// The stamped copy is returned. Later changes to m do not reach the log.
func (l *Log) Append(m Message) Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	m = m.clone()
	m.Seq = len(l.messages) + 1
	m.Time = l.now()
	l.messages = append(l.messages, m)
	return m.clone()
}

// All returns a sequence over copies of the messages in insertion order.
// Each iteration sees the entries present when it starts; the sequence
// can be ranged over any number of times.
func (l *Log) All() iter.Seq[Message] {
	return func(yield func(Message) bool) {
		// Entries below len never change, so the slice header captured
		// here stays valid even if a later Append reallocates.
		l.mu.RLock()
		snapshot := l.messages
		l.mu.RUnlock()

		for _, m := range snapshot {
			if !yield(m.clone()) {
				return
			}
		}
	}
}

// Len returns the number of appended messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Last returns the most recently appended message.
func (l *Log) Last() (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1].clone(), true
}

// Recent returns up to n of the latest messages accepted by keep, oldest first.
// A nil keep accepts every message.
func (l *Log) Recent(n int, keep func(Message) bool) []Message {
	if n <= 0 {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var picked []Message
	for i := len(l.messages) - 1; i >= 0 && len(picked) < n; i-- {
		m := l.messages[i].clone()
		if keep == nil || keep(m) {
			picked = append(picked, m)
		}
	}

	// Reverse into chronological order.
	for i, j := 0, len(picked)-1; i < j; i, j = i+1, j-1 {
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked
}
