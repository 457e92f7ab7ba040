package tutor

import "context"

// Endpoint paths of the tutoring service.
const (
	EndpointChat           = "/chat"
	EndpointVocabExercise  = "/vocab-exercise"
	EndpointRecordProgress = "/record-progress"
)

// Gateway is the transport boundary to the tutoring service.
// Implementations return *NetworkError or *ProtocolError on failure.
type Gateway interface {
	// Chat sends one conversational or exercise turn.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// VocabExercise asks the service to generate a vocabulary exercise.
	VocabExercise(ctx context.Context, req ExerciseRequest) (*ExerciseResponse, error)

	// RecordProgress reports a graded turn to the service.
	RecordProgress(ctx context.Context, report ProgressReport) error
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Text              string   `json:"text"`
	Language          string   `json:"language"`
	Level             string   `json:"level"`
	IsExercise        bool     `json:"is_exercise"`
	EnableFeedback    bool     `json:"enable_feedback"`
	TargetAnswers     []string `json:"target_answers"`
	StartConversation bool     `json:"start_conversation,omitempty"`

	// Context carries the texts of recent user/tutor messages, oldest first.
	Context []string `json:"context,omitempty"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Response string    `json:"response"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// Feedback is the grading block of a chat response.
type Feedback struct {
	IsCorrect      *bool    `json:"is_correct,omitempty"`
	CorrectAnswers []string `json:"correct_answers,omitempty"`
}

// Correctness returns the correctness signal and whether one was present.
func (r *ChatResponse) Correctness() (correct, ok bool) {
	if r == nil || r.Feedback == nil || r.Feedback.IsCorrect == nil {
		return false, false
	}
	return *r.Feedback.IsCorrect, true
}

// ExerciseRequest is the body of POST /vocab-exercise.
type ExerciseRequest struct {
	Language string `json:"language"`
	Level    string `json:"level"`
}

// ExerciseResponse is the body returned by POST /vocab-exercise.
type ExerciseResponse struct {
	Content      string   `json:"content"`
	Type         string   `json:"type"`
	Instructions string   `json:"instructions"`
	Target       []string `json:"target"`
}

// ProgressReport is the body of POST /record-progress.
type ProgressReport struct {
	UserID       string `json:"user_id"`
	Date         string `json:"date"`
	Score        int    `json:"score"`
	Language     string `json:"language"`
	Level        string `json:"level"`
	ExerciseType string `json:"exercise_type,omitempty"`
}
