package policy

import "context"

// Exchange is one question/answer pair as the policy engine sees it.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PromptContext carries everything the policy engine needs to produce the
// next question or the final assessment for a session.
type PromptContext struct {
	Skills         []string
	SeniorityLevel string
	FieldOfStudy   string

	History       []Exchange
	QuestionIndex int
	MaxQuestions  int
}

// Question is the policy engine's answer to a next-question request.
//
// Clarifying questions follow up on a vague answer and do not consume the
// question quota. Done signals the engine chose to end the interview early;
// ClosingMessage is the farewell delivered in that case.
type Question struct {
	Text           string
	Clarifying     bool
	Done           bool
	ClosingMessage string
}

// Evaluation scores a single answer. All dimensions are 0-1.
type Evaluation struct {
	Confidence float64 `json:"confidence"`
	Clarity    float64 `json:"clarity"`
	Relevance  float64 `json:"relevance"`
}

// Assessment is the overall interview outcome produced once per session.
type Assessment struct {
	Score           int      `json:"score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
	Summary         string   `json:"summary"`
}

// Engine is the external policy-engine collaborator contract. All methods are
// synchronous from the caller's point of view; timeout and retry policy is
// applied by the bridge, not by implementations.
type Engine interface {
	NextQuestion(ctx context.Context, promptCtx PromptContext) (Question, error)
	Evaluate(ctx context.Context, question string, answer string) (Evaluation, error)
	Summarize(ctx context.Context, promptCtx PromptContext) (Assessment, error)
}
