package progress

import (
	"math"
	"sync"
)

// Per-turn scores for graded answers.
const (
	ScoreCorrect   = 100
	ScoreIncorrect = 50
)

// Stats is the aggregate proficiency summary for a session.
type Stats struct {
	TotalSessions      int
	AverageScore       int // Running mean of per-turn scores, 0-100
	VocabularyMastered int
}

// Tracker aggregates correctness signals into Stats.
type Tracker struct {
	mu    sync.Mutex
	stats Stats
}

// NewTracker creates a Tracker with zeroed stats.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record folds one graded answer into the stats and returns the result.
//
// The average is recomputed incrementally using the count before this
// answer as the weight of the previous average, then the count is
// incremented. The read-modify-write happens under a single lock.
func (t *Tracker) Record(isCorrect bool) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	score := ScoreIncorrect
	if isCorrect {
		score = ScoreCorrect
		t.stats.VocabularyMastered++
	}

	n := t.stats.TotalSessions
	t.stats.AverageScore = int(math.Round(float64(t.stats.AverageScore*n+score) / float64(n+1)))
	t.stats.TotalSessions = n + 1

	return t.stats
}

// Stats returns a copy of the current stats.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Accuracy returns the share of graded answers that were correct (0.0-1.0).
func (s Stats) Accuracy() float64 {
	if s.TotalSessions == 0 {
		return 0
	}
	return float64(s.VocabularyMastered) / float64(s.TotalSessions)
}

// ScoreFraction returns AverageScore as a 0.0-1.0 fraction for progress bars.
func (s Stats) ScoreFraction() float64 {
	return float64(s.AverageScore) / 100
}
