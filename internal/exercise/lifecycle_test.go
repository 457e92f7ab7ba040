package exercise

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTimeout = time.Second
	testTick    = 5 * time.Millisecond
)

// stubFetcher returns canned exercises in order and counts calls.
type stubFetcher struct {
	results []Exercise
	err     error
	calls   int
	block   chan struct{}
}

func (s *stubFetcher) FetchExercise(ctx context.Context, language, level string) (Exercise, error) {
	s.calls++
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return Exercise{}, s.err
	}
	ex := s.results[0]
	s.results = s.results[1:]
	return ex, nil
}

func translation(word string, targets ...string) Exercise {
	return Exercise{
		Content:       word,
		Type:          "TRANSLATION",
		Instructions:  "Translate the word into Spanish",
		TargetAnswers: targets,
	}
}

func TestLifecycle_RequestStoresExercise(t *testing.T) {
	f := &stubFetcher{results: []Exercise{translation("dog", "perro")}}
	l := NewLifecycle(f)

	ex, err := l.Request(context.Background(), "spanish", "novice")
	require.NoError(t, err)
	assert.Equal(t, "dog", ex.Content)

	active, ok := l.Active()
	require.True(t, ok)
	assert.Equal(t, []string{"perro"}, active.TargetAnswers)
	assert.True(t, l.Busy())
}

func TestLifecycle_RequestRejectedWhileActive(t *testing.T) {
	f := &stubFetcher{results: []Exercise{translation("dog", "perro"), translation("cat", "gato")}}
	l := NewLifecycle(f)

	_, err := l.Request(context.Background(), "spanish", "novice")
	require.NoError(t, err)

	_, err = l.Request(context.Background(), "spanish", "novice")
	assert.ErrorIs(t, err, ErrActive)
	assert.Equal(t, 1, f.calls, "rejected request must not reach the fetcher")

	active, _ := l.Active()
	assert.Equal(t, "dog", active.Content, "rejected request must not change state")
}

func TestLifecycle_ResolveAllowsNextRequest(t *testing.T) {
	f := &stubFetcher{results: []Exercise{translation("dog", "perro"), translation("cat", "gato")}}
	l := NewLifecycle(f)

	_, err := l.Request(context.Background(), "spanish", "novice")
	require.NoError(t, err)

	l.Resolve()
	_, ok := l.Active()
	assert.False(t, ok)

	ex, err := l.Request(context.Background(), "spanish", "novice")
	require.NoError(t, err)
	assert.Equal(t, "cat", ex.Content)
}

func TestLifecycle_ResolveWhenEmpty(t *testing.T) {
	l := NewLifecycle(&stubFetcher{})
	l.Resolve()
	assert.False(t, l.Busy())
}

func TestLifecycle_FetchFailureLeavesEmpty(t *testing.T) {
	boom := errors.New("backend down")
	l := NewLifecycle(&stubFetcher{err: boom})

	_, err := l.Request(context.Background(), "spanish", "novice")
	assert.ErrorIs(t, err, boom)

	_, ok := l.Active()
	assert.False(t, ok)
	assert.False(t, l.Busy(), "failed fetch must release the pending slot")
}

func TestLifecycle_RequestRejectedWhileFetching(t *testing.T) {
	f := &stubFetcher{results: []Exercise{translation("dog", "perro")}, block: make(chan struct{})}
	l := NewLifecycle(f)

	done := make(chan error, 1)
	go func() {
		_, err := l.Request(context.Background(), "spanish", "novice")
		done <- err
	}()

	// Wait until the first request holds the fetch slot.
	require.Eventually(t, l.Busy, testTimeout, testTick)

	_, err := l.Request(context.Background(), "spanish", "novice")
	assert.ErrorIs(t, err, ErrActive)

	close(f.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.calls)
}

func TestLifecycle_ActiveDoesNotAliasTargets(t *testing.T) {
	targets := []string{"perro"}
	f := &stubFetcher{results: []Exercise{translation("dog", targets...)}}
	l := NewLifecycle(f)

	_, err := l.Request(context.Background(), "spanish", "novice")
	require.NoError(t, err)
	targets[0] = "gato"

	active, _ := l.Active()
	assert.Equal(t, "perro", active.TargetAnswers[0])
}

func TestFetcherFunc(t *testing.T) {
	var gotLang, gotLevel string
	f := FetcherFunc(func(_ context.Context, language, level string) (Exercise, error) {
		gotLang, gotLevel = language, level
		return translation("house", "casa"), nil
	})

	ex, err := NewLifecycle(f).Request(context.Background(), "italian", "beginner")
	require.NoError(t, err)
	assert.Equal(t, "house", ex.Content)
	assert.Equal(t, "italian", gotLang)
	assert.Equal(t, "beginner", gotLevel)
}

func TestLifecycle_ReturnedExerciseDoesNotAliasStored(t *testing.T) {
	f := &stubFetcher{results: []Exercise{translation("dog", "perro")}}
	l := NewLifecycle(f)

	got, err := l.Request(context.Background(), "spanish", "novice")
	require.NoError(t, err)
	got.TargetAnswers[0] = "gato"

	active, _ := l.Active()
	active.TargetAnswers[0] = "gato"

	again, ok := l.Active()
	require.True(t, ok)
	assert.Equal(t, []string{"perro"}, again.TargetAnswers)
}
