package tutor

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/lingo/internal/store"
)

// JournalGateway is a decorator that records every exchange in the request journal.
type JournalGateway struct {
	inner     Gateway
	repo      store.ExchangeRepo
	sessionID string
	log       *zap.Logger
}

// WithJournal wraps a Gateway so each exchange is appended to repo under sessionID.
// Journal failures are logged and never fail the request.
func WithJournal(g Gateway, repo store.ExchangeRepo, sessionID string, log *zap.Logger) Gateway {
	return &JournalGateway{inner: g, repo: repo, sessionID: sessionID, log: log}
}

func (j *JournalGateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	resp, err := j.inner.Chat(ctx, req)
	j.record(ctx, EndpointChat, start, req, resp, err)
	return resp, err
}

func (j *JournalGateway) VocabExercise(ctx context.Context, req ExerciseRequest) (*ExerciseResponse, error) {
	start := time.Now()
	resp, err := j.inner.VocabExercise(ctx, req)
	j.record(ctx, EndpointVocabExercise, start, req, resp, err)
	return resp, err
}

func (j *JournalGateway) RecordProgress(ctx context.Context, report ProgressReport) error {
	start := time.Now()
	err := j.inner.RecordProgress(ctx, report)
	j.record(ctx, EndpointRecordProgress, start, report, nil, err)
	return err
}

func (j *JournalGateway) record(ctx context.Context, endpoint string, start time.Time, req, resp any, err error) {
	data := store.ExchangeEventData{
		SessionID:   j.sessionID,
		Endpoint:    endpoint,
		RequestBody: marshalBody(req),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
	}
	if err == nil && resp != nil {
		data.ResponseBody = marshalBody(resp)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// The request context may already be done; the journal write should
	// still land.
	if appendErr := j.repo.AppendExchange(context.WithoutCancel(ctx), data); appendErr != nil {
		j.log.Warn("failed to journal tutor exchange",
			zap.String("endpoint", endpoint),
			zap.Error(appendErr),
		)
	}
}

func marshalBody(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
