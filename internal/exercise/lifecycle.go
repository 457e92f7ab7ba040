package exercise

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrActive is returned when an exercise is requested while another one is
// active or already being fetched.
var ErrActive = errors.New("an exercise is already active")

// Exercise is a single graded vocabulary prompt with a known answer set.
type Exercise struct {
	Content       string
	Type          string
	Instructions  string
	TargetAnswers []string
}

// Clone returns a copy that shares no memory with e.
func (e Exercise) Clone() Exercise {
	e.TargetAnswers = slices.Clone(e.TargetAnswers)
	return e
}

// Fetcher retrieves a new exercise for the given language and level.
type Fetcher interface {
	FetchExercise(ctx context.Context, language, level string) (Exercise, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, language, level string) (Exercise, error)

func (f FetcherFunc) FetchExercise(ctx context.Context, language, level string) (Exercise, error) {
	return f(ctx, language, level)
}

// Lifecycle holds at most one active exercise.
//
//	none --Request--> fetching --ok--> active --Resolve--> none
//	                           \--err--> none
type Lifecycle struct {
	mu       sync.Mutex
	fetcher  Fetcher
	current  *Exercise
	fetching bool
}

// NewLifecycle creates an empty Lifecycle backed by fetcher.
func NewLifecycle(fetcher Fetcher) *Lifecycle {
	return &Lifecycle{fetcher: fetcher}
}

// Request fetches and stores a new exercise. It returns ErrActive without
// calling the fetcher when an exercise is active or a fetch is in progress.
// On fetch failure no exercise is stored.
func (l *Lifecycle) Request(ctx context.Context, language, level string) (Exercise, error) {
	l.mu.Lock()
	if l.current != nil || l.fetching {
		l.mu.Unlock()
		return Exercise{}, ErrActive
	}
	l.fetching = true
	l.mu.Unlock()

	ex, err := l.fetcher.FetchExercise(ctx, language, level)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetching = false
	if err != nil {
		return Exercise{}, err
	}
	stored := ex.Clone()
	l.current = &stored
	return stored.Clone(), nil
}

// Resolve clears the active exercise. It is safe to call when none is active.
func (l *Lifecycle) Resolve() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = nil
}

// Active returns the active exercise, if any.
func (l *Lifecycle) Active() (Exercise, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return Exercise{}, false
	}
	return l.current.Clone(), true
}

// Busy reports whether an exercise is active or being fetched.
func (l *Lifecycle) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current != nil || l.fetching
}
