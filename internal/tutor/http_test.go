package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captured holds what the fake service saw for one request.
type captured struct {
	method string
	path   string
	ctype  string
	body   map[string]any
}

func newServer(t *testing.T, status int, reply string) (*HTTPGateway, *captured) {
	t.Helper()
	seen := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.method = r.Method
		seen.path = r.URL.Path
		seen.ctype = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &seen.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	g, err := NewHTTPGateway(Config{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return g, seen
}

func TestNewHTTPGateway(t *testing.T) {
	g, err := NewHTTPGateway(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, g.BaseURL())

	g, err = NewHTTPGateway(Config{BaseURL: "https://tutor.example.com///"})
	require.NoError(t, err)
	assert.Equal(t, "https://tutor.example.com", g.BaseURL())

	_, err = NewHTTPGateway(Config{BaseURL: "ftp://tutor.example.com"})
	assert.Error(t, err)
}

func TestChat_Success(t *testing.T) {
	g, seen := newServer(t, http.StatusOK,
		`{"response":"¡Correcto!","feedback":{"is_correct":true,"correct_answers":["perro"]}}`)

	resp, err := g.Chat(context.Background(), ChatRequest{
		Text:           "perro",
		Language:       "spanish",
		Level:          "beginner",
		IsExercise:     true,
		EnableFeedback: true,
		TargetAnswers:  []string{"perro"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, seen.method)
	assert.Equal(t, EndpointChat, seen.path)
	assert.Equal(t, "application/json", seen.ctype)
	assert.Equal(t, "perro", seen.body["text"])
	assert.Equal(t, true, seen.body["is_exercise"])
	assert.Equal(t, []any{"perro"}, seen.body["target_answers"])

	assert.Equal(t, "¡Correcto!", resp.Response)
	correct, ok := resp.Correctness()
	assert.True(t, ok)
	assert.True(t, correct)
	assert.Equal(t, []string{"perro"}, resp.Feedback.CorrectAnswers)
}

func TestChat_RequestShape(t *testing.T) {
	g, seen := newServer(t, http.StatusOK, `{"response":"Hola"}`)

	resp, err := g.Chat(context.Background(), ChatRequest{Text: "hi", Language: "spanish", Level: "beginner"})
	require.NoError(t, err)

	// target_answers is always present, even when there are none.
	assert.Equal(t, []any{}, seen.body["target_answers"])
	_, hasContext := seen.body["context"]
	assert.False(t, hasContext)
	_, hasStart := seen.body["start_conversation"]
	assert.False(t, hasStart)

	_, ok := resp.Correctness()
	assert.False(t, ok)
}

func TestChat_StartConversationAndContext(t *testing.T) {
	g, seen := newServer(t, http.StatusOK, `{"response":"Hola","feedback":null}`)

	_, err := g.Chat(context.Background(), ChatRequest{
		Text:              "Start a conversation",
		StartConversation: true,
		Context:           []string{"hola", "¿qué tal?"},
	})
	require.NoError(t, err)
	assert.Equal(t, true, seen.body["start_conversation"])
	assert.Equal(t, []any{"hola", "¿qué tal?"}, seen.body["context"])
}

func TestChat_NonSuccessStatus(t *testing.T) {
	g, _ := newServer(t, http.StatusInternalServerError, `{"detail":"boom"}`)

	_, err := g.Chat(context.Background(), ChatRequest{Text: "hi"})
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusInternalServerError, netErr.StatusCode)
	assert.Equal(t, EndpointChat, netErr.Endpoint)
	assert.Contains(t, err.Error(), "boom")
}

func TestChat_MalformedBody(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", `<html>oops</html>`},
		{"missing response", `{"feedback":null}`},
		{"wrong type", `{"response":42}`},
		{"bad feedback", `{"response":"ok","feedback":{"is_correct":"yes"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newServer(t, http.StatusOK, tt.reply)
			_, err := g.Chat(context.Background(), ChatRequest{Text: "hi"})
			var protoErr *ProtocolError
			require.ErrorAs(t, err, &protoErr)
			assert.Equal(t, EndpointChat, protoErr.Endpoint)
		})
	}
}

func TestVocabExercise(t *testing.T) {
	g, seen := newServer(t, http.StatusOK,
		`{"content":"Translate: dog","type":"translation","instructions":"Type the word","target":["perro"],"raw":"..."}`)

	ex, err := g.VocabExercise(context.Background(), ExerciseRequest{Language: "spanish", Level: "beginner"})
	require.NoError(t, err)
	assert.Equal(t, EndpointVocabExercise, seen.path)
	assert.Equal(t, "spanish", seen.body["language"])
	assert.Equal(t, "beginner", seen.body["level"])
	assert.Equal(t, "Translate: dog", ex.Content)
	assert.Equal(t, "translation", ex.Type)
	assert.Equal(t, []string{"perro"}, ex.Target)
}

func TestVocabExercise_MissingField(t *testing.T) {
	g, _ := newServer(t, http.StatusOK, `{"content":"Translate: dog","type":"translation"}`)

	_, err := g.VocabExercise(context.Background(), ExerciseRequest{Language: "spanish", Level: "beginner"})
	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestRecordProgress(t *testing.T) {
	g, seen := newServer(t, http.StatusOK, `{"status":"ok"}`)

	err := g.RecordProgress(context.Background(), ProgressReport{
		UserID: "abc", Date: "2026-10-19", Score: 100, Language: "spanish", Level: "beginner",
	})
	require.NoError(t, err)
	assert.Equal(t, EndpointRecordProgress, seen.path)
	assert.Equal(t, "abc", seen.body["user_id"])
	assert.Equal(t, float64(100), seen.body["score"])
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g, err := NewHTTPGateway(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = g.Chat(context.Background(), ChatRequest{Text: "hi"})
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Zero(t, netErr.StatusCode)
}

func TestContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	g, err := NewHTTPGateway(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = g.Chat(ctx, ChatRequest{Text: "hi"})
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "empty body", summarize(nil))
	assert.Equal(t, "boom", summarize([]byte("  boom \n")))

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	got := summarize(long)
	assert.Len(t, got, 203)
}
