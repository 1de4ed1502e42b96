package interview

import (
	"time"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy"
)

// State is the session's lifecycle position. Transitions happen only on the
// session actor goroutine.
type State string

const (
	StateIdle               State = "idle"
	StatePriming            State = "priming"
	StateAskingQuestion     State = "asking_question"
	StateListeningForAnswer State = "listening_for_answer"
	StateEvaluatingAnswer   State = "evaluating_answer"
	StateClosing            State = "closing"
	StateCompleted          State = "completed"
	StateFailed             State = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// QAExchange is one completed question/answer pair in the session's
// append-only exchange log.
type QAExchange struct {
	QuestionIndex int                `json:"questionIndex"`
	Question      string             `json:"question"`
	Answer        string             `json:"answer"`
	AskedAt       time.Time          `json:"askedAt"`
	AnsweredAt    time.Time          `json:"answeredAt"`
	Evaluation    *policy.Evaluation `json:"evaluation,omitempty"`
}

// Snapshot is a point-in-time copy of session state, safe to hand outside
// the actor.
type Snapshot struct {
	SessionID          string        `json:"sessionId"`
	UserID             string        `json:"userId"`
	State              State         `json:"state"`
	Config             SessionConfig `json:"config"`
	QuestionIndex      int           `json:"questionIndex"`
	Exchanges          []QAExchange  `json:"exchanges"`
	StartedAt          time.Time     `json:"startedAt"`
	LastActivityAt     time.Time     `json:"lastActivityAt"`
	PersistencePending bool          `json:"persistencePending,omitempty"`
}

// OutboundKind tags events emitted to the client connection.
type OutboundKind string

const (
	// OutboundQuestion delivers the next question; QuestionIndex values are
	// strictly increasing with no gaps or repeats.
	OutboundQuestion OutboundKind = "question"
	// OutboundStatus delivers recoverable, informational updates (answer too
	// short, clarifying follow-up, closing notice, stream health).
	OutboundStatus OutboundKind = "status"
	// OutboundAssessment delivers the terminal assessment. Emitted at most
	// once per session, mutually exclusive with OutboundError.
	OutboundAssessment OutboundKind = "assessment"
	// OutboundError delivers the terminal failure. Emitted at most once per
	// session, mutually exclusive with OutboundAssessment.
	OutboundError OutboundKind = "error"
)

// Status codes carried on OutboundStatus events.
const (
	StatusAnswerTooShort        = "answer_too_short"
	StatusNoSpeechDetected      = "no_speech_detected"
	StatusClarify               = "clarify"
	StatusClosing               = "closing"
	StatusTranscriptionDegraded = "transcription_degraded"
	StatusTranscriptionRestored = "transcription_restored"
)

// Outbound is one event for the client connection.
type Outbound struct {
	Kind OutboundKind `json:"kind"`
	// QuestionIndex is set on question, clarify-status and answer-related
	// status events.
	QuestionIndex int `json:"questionIndex"`
	// Text carries the question, status message, closing message or error
	// message depending on Kind.
	Text string `json:"text,omitempty"`
	// Code is the machine-readable status/error code.
	Code string `json:"code,omitempty"`

	Assessment         *policy.Assessment `json:"assessment,omitempty"`
	PersistencePending bool               `json:"persistencePending,omitempty"`
}

// OutboundSink receives outbound events in emission order. Implementations
// must not block; the session actor calls them inline.
type OutboundSink func(Outbound)
