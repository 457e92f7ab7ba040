package session

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/lingo/internal/exercise"
	"github.com/abhisek/lingo/internal/progress"
	"github.com/abhisek/lingo/internal/transcript"
	"github.com/abhisek/lingo/internal/tutor"
)

// DefaultContextWindow is how many recent user/tutor texts accompany a message.
const DefaultContextWindow = 6

// Options configures a Controller.
type Options struct {
	// Config is the initial selection. The zero value means DefaultConfig().
	Config Config

	// ContextWindow is the number of recent texts sent with each message.
	// Zero disables context.
	ContextWindow int

	// ReportProgress posts every graded turn to the service.
	ReportProgress bool

	// SessionID identifies this session to the service. Generated when empty.
	SessionID string

	Logger *zap.Logger

	// Now overrides the clock used for progress report dates.
	Now func() time.Time
}

// Controller owns a tutoring session: its configuration, transcript,
// exercise lifecycle and progress. Operations block for the duration of
// the remote call; at most one request is in flight at a time.
type Controller struct {
	gateway    tutor.Gateway
	log        *zap.Logger
	transcript *transcript.Log
	tracker    *progress.Tracker
	exercises  *exercise.Lifecycle

	sessionID      string
	contextWindow  int
	reportProgress bool
	now            func() time.Time

	mu      sync.Mutex
	cfg     Config
	pending Request
	input   string
	notice  string

	obsMu     sync.Mutex
	observers map[int]func(State)
	nextObs   int
}

// NewController creates a session bound to gateway.
func NewController(gateway tutor.Gateway, opts Options) (*Controller, error) {
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.ContextWindow < 0 {
		return nil, fmt.Errorf("context window must be non-negative, got %d", opts.ContextWindow)
	}

	c := &Controller{
		gateway:        gateway,
		log:            opts.Logger,
		transcript:     transcript.NewLog(),
		tracker:        progress.NewTracker(),
		sessionID:      opts.SessionID,
		contextWindow:  opts.ContextWindow,
		reportProgress: opts.ReportProgress,
		now:            opts.Now,
		cfg:            cfg,
		observers:      make(map[int]func(State)),
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.log = c.log.Named("session").With(zap.String("session_id", c.sessionID))
	c.exercises = exercise.NewLifecycle(exercise.FetcherFunc(c.fetchExercise))
	return c, nil
}

// SessionID returns the session identifier.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// SetMode switches between conversation and exercises. The transcript,
// stats and any active exercise are kept.
func (c *Controller) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
	c.update(func() { c.cfg.Mode = m })
	c.log.Debug("mode changed", zap.String("mode", string(m)))
	return nil
}

// SetLanguage changes the target language for subsequent requests.
func (c *Controller) SetLanguage(l Language) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, l)
	}
	c.update(func() { c.cfg.Language = l })
	c.log.Debug("language changed", zap.String("language", string(l)))
	return nil
}

// SetLevel changes the proficiency level for subsequent requests.
func (c *Controller) SetLevel(l Level) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, l)
	}
	c.update(func() { c.cfg.Level = l })
	c.log.Debug("level changed", zap.String("level", string(l)))
	return nil
}

// SetFeedback turns grading feedback on or off.
func (c *Controller) SetFeedback(enabled bool) {
	c.update(func() { c.cfg.FeedbackEnabled = enabled })
}

// SetInput replaces the input buffer.
func (c *Controller) SetInput(s string) {
	c.update(func() { c.input = s })
}

// DismissNotice clears the failure notice.
func (c *Controller) DismissNotice() {
	c.update(func() { c.notice = "" })
}

// StartConversation asks the tutor to open a conversation.
func (c *Controller) StartConversation(ctx context.Context) error {
	cfg, err := c.begin(RequestStart, nil)
	if err != nil {
		return err
	}

	resp, err := c.gateway.Chat(ctx, tutor.ChatRequest{
		Text:              "",
		Language:          string(cfg.Language),
		Level:             string(cfg.Level),
		IsExercise:        false,
		EnableFeedback:    false,
		StartConversation: true,
	})
	if err != nil {
		return c.fail("start conversation", err)
	}

	c.finish(func() {
		c.transcript.Append(transcript.TutorMessage(resp.Response, nil))
	})
	c.log.Debug("conversation started")
	return nil
}

// Submit sends the current input buffer.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	text := c.input
	c.mu.Unlock()
	return c.SendMessage(ctx, text)
}

// SendMessage appends text to the transcript and sends it to the tutor.
// It is a no-op returning ErrEmptyInput for blank text and ErrBusy while
// another request is in flight.
//
// A successful reply ends the active exercise whether or not it was graded.
// On failure the exercise stays active so the answer can be resubmitted.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	var (
		history []string
		ex      exercise.Exercise
		active  bool
	)
	cfg, err := c.begin(RequestSend, func() {
		history = c.recentTexts()
		ex, active = c.exercises.Active()
		c.transcript.Append(transcript.UserMessage(text))
		c.input = ""
	})
	if err != nil {
		return err
	}

	req := tutor.ChatRequest{
		Text:           text,
		Language:       string(cfg.Language),
		Level:          string(cfg.Level),
		IsExercise:     cfg.Mode == ModeExercise,
		EnableFeedback: cfg.FeedbackEnabled,
		Context:        history,
	}
	// Targets and the exercise type only describe the turn when it answers
	// the active exercise in exercise mode.
	var exerciseType string
	if cfg.Mode == ModeExercise && active {
		req.TargetAnswers = ex.TargetAnswers
		exerciseType = ex.Type
	}

	resp, err := c.gateway.Chat(ctx, req)
	if err != nil {
		return c.fail("send message", err)
	}

	var fb *transcript.Feedback
	if correct, ok := resp.Correctness(); ok {
		stats := c.tracker.Record(correct)
		fb = &transcript.Feedback{IsCorrect: correct}
		if resp.Feedback.CorrectAnswers != nil {
			fb.CorrectAnswers = append([]string(nil), resp.Feedback.CorrectAnswers...)
		}
		c.log.Debug("turn graded",
			zap.Bool("correct", correct),
			zap.Int("total_sessions", stats.TotalSessions),
			zap.Int("average_score", stats.AverageScore),
		)
		if c.reportProgress {
			c.report(ctx, cfg, correct, exerciseType)
		}
	}

	c.finish(func() {
		c.transcript.Append(transcript.TutorMessage(resp.Response, fb))
		c.exercises.Resolve()
	})
	return nil
}

// GetExercise requests a new vocabulary exercise. It returns ErrBusy while
// a request is in flight and exercise.ErrActive while an exercise is
// active; neither changes state.
func (c *Controller) GetExercise(ctx context.Context) error {
	cfg, err := c.begin(RequestExercise, nil)
	if err != nil {
		return err
	}

	ex, err := c.exercises.Request(ctx, string(cfg.Language), string(cfg.Level))
	if err != nil {
		return c.fail("get exercise", err)
	}

	c.finish(func() {
		c.transcript.Append(transcript.ExerciseMessage(ex.Content, ex.Type, ex.Instructions, ex.TargetAnswers))
	})
	c.log.Debug("exercise issued",
		zap.String("type", ex.Type),
		zap.Int("targets", len(ex.TargetAnswers)),
	)
	return nil
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Messages returns the transcript in insertion order.
func (c *Controller) Messages() iter.Seq[transcript.Message] {
	return c.transcript.All()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change, outside any controller
// lock, so it may call back into the Controller.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.obsMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.obsMu.Lock()
			delete(c.observers, id)
			c.obsMu.Unlock()
		})
	}
}

// begin checks and sets the loading flag in one critical section, then
// runs prepare under the same lock.
func (c *Controller) begin(kind Request, prepare func()) (Config, error) {
	c.mu.Lock()
	if pending := c.pending; pending != RequestNone {
		c.mu.Unlock()
		c.log.Debug("request rejected", zap.Stringer("request", kind), zap.Stringer("pending", pending))
		return Config{}, ErrBusy
	}
	if kind == RequestExercise && c.exercises.Busy() {
		c.mu.Unlock()
		return Config{}, exercise.ErrActive
	}
	c.pending = kind
	c.notice = ""
	if prepare != nil {
		prepare()
	}
	cfg := c.cfg
	c.mu.Unlock()

	c.notify()
	return cfg, nil
}

// finish applies the success continuation and clears the loading flag.
func (c *Controller) finish(apply func()) {
	c.mu.Lock()
	apply()
	c.pending = RequestNone
	c.mu.Unlock()
	c.notify()
}

// fail clears the loading flag and raises a notice. Nothing is appended
// and the active exercise is left alone.
func (c *Controller) fail(op string, err error) error {
	c.mu.Lock()
	kind := c.pending
	c.pending = RequestNone
	c.notice = noticeFor(err)
	c.mu.Unlock()

	c.log.Warn("request failed", zap.Stringer("request", kind), zap.Error(err))
	c.notify()
	return fmt.Errorf("%s: %w", op, err)
}

func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	state := c.State()

	c.obsMu.Lock()
	fns := make([]func(State), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.obsMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// snapshot must be called with c.mu held.
func (c *Controller) snapshot() State {
	s := State{
		SessionID: c.sessionID,
		Config:    c.cfg,
		Pending:   c.pending,
		Stats:     c.tracker.Stats(),
		Messages:  c.transcript.Len(),
		Input:     c.input,
		Notice:    c.notice,
	}
	if ex, ok := c.exercises.Active(); ok {
		s.Exercise = &ex
	}
	return s
}

// recentTexts returns the texts of the latest user and tutor messages.
func (c *Controller) recentTexts() []string {
	msgs := c.transcript.Recent(c.contextWindow, func(m transcript.Message) bool {
		return m.Sender == transcript.SenderUser || m.Sender == transcript.SenderTutor
	})
	if len(msgs) == 0 {
		return nil
	}
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}
	return texts
}

func (c *Controller) fetchExercise(ctx context.Context, language, level string) (exercise.Exercise, error) {
	resp, err := c.gateway.VocabExercise(ctx, tutor.ExerciseRequest{Language: language, Level: level})
	if err != nil {
		return exercise.Exercise{}, err
	}
	return exercise.Exercise{
		Content:       resp.Content,
		Type:          resp.Type,
		Instructions:  resp.Instructions,
		TargetAnswers: resp.Target,
	}, nil
}

// report posts a graded turn. Failures are logged only.
func (c *Controller) report(ctx context.Context, cfg Config, correct bool, exerciseType string) {
	score := progress.ScoreIncorrect
	if correct {
		score = progress.ScoreCorrect
	}
	err := c.gateway.RecordProgress(ctx, tutor.ProgressReport{
		UserID:       c.sessionID,
		Date:         c.now().Format(time.DateOnly),
		Score:        score,
		Language:     string(cfg.Language),
		Level:        string(cfg.Level),
		ExerciseType: exerciseType,
	})
	if err != nil {
		c.log.Warn("progress report failed", zap.Error(err))
	}
}

// noticeFor turns a request failure into a short message for the learner.
func noticeFor(err error) string {
	var (
		netErr   *tutor.NetworkError
		protoErr *tutor.ProtocolError
	)
	switch {
	case errors.As(err, &netErr) && netErr.StatusCode != 0:
		return fmt.Sprintf("The tutor service returned an error (status %d). Please try again.", netErr.StatusCode)
	case errors.As(err, &netErr):
		return "Could not reach the tutor service. Please try again."
	case errors.As(err, &protoErr):
		return "The tutor service sent a reply that could not be read. Please try again."
	default:
		return "Something went wrong: " + err.Error()
	}
}
