package tutor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggingGateway is a decorator that logs every exchange with the service.
type LoggingGateway struct {
	inner Gateway
	log   *zap.Logger
}

// WithLogging wraps a Gateway with structured logging.
func WithLogging(g Gateway, log *zap.Logger) Gateway {
	return &LoggingGateway{inner: g, log: log.Named("tutor")}
}

func (l *LoggingGateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	resp, err := l.inner.Chat(ctx, req)

	fields := []zap.Field{
		zap.String("language", req.Language),
		zap.String("level", req.Level),
		zap.Bool("is_exercise", req.IsExercise),
		zap.Bool("start_conversation", req.StartConversation),
		zap.Int("context_len", len(req.Context)),
	}
	if correct, ok := resp.Correctness(); ok {
		fields = append(fields, zap.Bool("is_correct", correct))
	}
	l.done(EndpointChat, start, err, fields...)
	return resp, err
}

func (l *LoggingGateway) VocabExercise(ctx context.Context, req ExerciseRequest) (*ExerciseResponse, error) {
	start := time.Now()
	resp, err := l.inner.VocabExercise(ctx, req)

	fields := []zap.Field{
		zap.String("language", req.Language),
		zap.String("level", req.Level),
	}
	if resp != nil {
		fields = append(fields, zap.String("exercise_type", resp.Type), zap.Int("targets", len(resp.Target)))
	}
	l.done(EndpointVocabExercise, start, err, fields...)
	return resp, err
}

func (l *LoggingGateway) RecordProgress(ctx context.Context, report ProgressReport) error {
	start := time.Now()
	err := l.inner.RecordProgress(ctx, report)
	l.done(EndpointRecordProgress, start, err, zap.Int("score", report.Score))
	return err
}

func (l *LoggingGateway) done(endpoint string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("endpoint", endpoint),
		zap.Duration("latency", time.Since(start)),
	)
	if err != nil {
		l.log.Warn("tutor request failed", append(fields, zap.Error(err))...)
		return
	}
	l.log.Debug("tutor request", fields...)
}
