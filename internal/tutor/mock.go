package tutor

import (
	"context"
	"errors"
	"sync"
)

// MockReply is a canned outcome for one MockGateway call.
type MockReply struct {
	Chat     *ChatResponse
	Exercise *ExerciseResponse
	Err      error

	// Wait, when non-nil, blocks the call until the channel is closed.
	Wait chan struct{}
}

// MockGateway is a deterministic Gateway for tests and offline demos.
// Chat and VocabExercise consume canned replies from separate FIFO queues
// and record every request.
type MockGateway struct {
	mu        sync.Mutex
	chat      []MockReply
	exercises []MockReply

	ChatCalls     []ChatRequest
	ExerciseCalls []ExerciseRequest
	Reports       []ProgressReport

	// ReportErr is returned by RecordProgress when set.
	ReportErr error
}

var _ Gateway = (*MockGateway)(nil)

// NewMockGateway creates an empty MockGateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// QueueChat appends canned replies for Chat.
func (m *MockGateway) QueueChat(replies ...MockReply) *MockGateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chat = append(m.chat, replies...)
	return m
}

// QueueExercise appends canned replies for VocabExercise.
func (m *MockGateway) QueueExercise(replies ...MockReply) *MockGateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exercises = append(m.exercises, replies...)
	return m
}

// Chat returns the next canned chat reply, or a NetworkError when the
// queue is empty.
func (m *MockGateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, req)
	reply, ok := pop(&m.chat)
	m.mu.Unlock()

	if err := wait(ctx, EndpointChat, reply, ok); err != nil {
		return nil, err
	}
	if reply.Chat == nil {
		return &ChatResponse{}, nil
	}
	return reply.Chat, nil
}

// VocabExercise returns the next canned exercise reply, or a NetworkError
// when the queue is empty.
func (m *MockGateway) VocabExercise(ctx context.Context, req ExerciseRequest) (*ExerciseResponse, error) {
	m.mu.Lock()
	m.ExerciseCalls = append(m.ExerciseCalls, req)
	reply, ok := pop(&m.exercises)
	m.mu.Unlock()

	if err := wait(ctx, EndpointVocabExercise, reply, ok); err != nil {
		return nil, err
	}
	if reply.Exercise == nil {
		return &ExerciseResponse{}, nil
	}
	return reply.Exercise, nil
}

// RecordProgress records the report and returns ReportErr.
func (m *MockGateway) RecordProgress(_ context.Context, report ProgressReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = append(m.Reports, report)
	return m.ReportErr
}

// ChatCallCount returns the number of Chat calls made.
func (m *MockGateway) ChatCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}

// ExerciseCallCount returns the number of VocabExercise calls made.
func (m *MockGateway) ExerciseCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ExerciseCalls)
}

// LastChat returns the most recent Chat request.
func (m *MockGateway) LastChat() (ChatRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ChatCalls) == 0 {
		return ChatRequest{}, false
	}
	return m.ChatCalls[len(m.ChatCalls)-1], true
}

func pop(queue *[]MockReply) (MockReply, bool) {
	if len(*queue) == 0 {
		return MockReply{}, false
	}
	r := (*queue)[0]
	*queue = (*queue)[1:]
	return r, true
}

func wait(ctx context.Context, endpoint string, reply MockReply, ok bool) error {
	if !ok {
		return &NetworkError{Endpoint: endpoint, Err: errors.New("mock: no canned reply")}
	}
	if reply.Wait != nil {
		select {
		case <-reply.Wait:
		case <-ctx.Done():
			return &NetworkError{Endpoint: endpoint, Err: ctx.Err()}
		}
	}
	return reply.Err
}

// Correct and Incorrect build graded chat replies.
func Correct(text string, answers ...string) *ChatResponse {
	return graded(text, true, answers)
}

func Incorrect(text string, answers ...string) *ChatResponse {
	return graded(text, false, answers)
}

// Reply builds an ungraded chat reply.
func Reply(text string) *ChatResponse {
	return &ChatResponse{Response: text}
}

func graded(text string, correct bool, answers []string) *ChatResponse {
	return &ChatResponse{
		Response: text,
		Feedback: &Feedback{IsCorrect: &correct, CorrectAnswers: answers},
	}
}
