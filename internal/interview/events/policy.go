package events

import (
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/resume"
)

const (
	// KindContextLoaded identifies the result of resume-context priming.
	KindContextLoaded Kind = "session.context_loaded"
	// KindQuestionReady identifies a next-question result from the policy bridge.
	KindQuestionReady Kind = "policy.question_ready"
	// KindAnswerEvaluated identifies an answer-evaluation result from the policy bridge.
	KindAnswerEvaluated Kind = "policy.answer_evaluated"
	// KindAssessmentReady identifies the finalizer's terminal result.
	KindAssessmentReady Kind = "policy.assessment_ready"
)

// ContextLoaded reports the outcome of the one-time resume context load.
type ContextLoaded struct {
	Base
	Profile resume.Profile
	Err     error
}

// NewContextLoaded creates a context-loaded event.
func NewContextLoaded(profile resume.Profile, err error) ContextLoaded {
	return ContextLoaded{Base: NewBase(KindContextLoaded), Profile: profile, Err: err}
}

// QuestionReady carries the next question for the turn epoch it was requested
// under. Fallback marks a scripted question served after the policy engine
// exhausted its retries.
type QuestionReady struct {
	Base
	Epoch    int
	Question policy.Question
	Fallback bool
}

// NewQuestionReady creates a question-ready event.
func NewQuestionReady(epoch int, question policy.Question, fallback bool) QuestionReady {
	return QuestionReady{Base: NewBase(KindQuestionReady), Epoch: epoch, Question: question, Fallback: fallback}
}

// AnswerEvaluated carries a best-effort answer evaluation. Err leaves the
// exchange's evaluation unset; it never affects turn progression.
type AnswerEvaluated struct {
	Base
	Epoch      int
	Evaluation policy.Evaluation
	Err        error
}

// NewAnswerEvaluated creates an answer-evaluated event.
func NewAnswerEvaluated(epoch int, evaluation policy.Evaluation, err error) AnswerEvaluated {
	return AnswerEvaluated{Base: NewBase(KindAnswerEvaluated), Epoch: epoch, Evaluation: evaluation, Err: err}
}

// AssessmentReady carries the finalizer outcome. PersistencePending marks a
// completed session whose record could not be saved yet; Err marks an
// unrecoverable finalization failure.
type AssessmentReady struct {
	Base
	Assessment         policy.Assessment
	PersistencePending bool
	Err                error
}

// NewAssessmentReady creates an assessment-ready event.
func NewAssessmentReady(assessment policy.Assessment, persistencePending bool, err error) AssessmentReady {
	return AssessmentReady{Base: NewBase(KindAssessmentReady), Assessment: assessment, PersistencePending: persistencePending, Err: err}
}
