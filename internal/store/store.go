// Package store persists completed interview session records.
//
// Save is idempotent on session ID so the finalizer and the out-of-band retry
// sweep can both write the same record safely.
package store

import (
	"context"
	"time"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy"
)

// Exchange is one persisted question/answer pair.
type Exchange struct {
	QuestionIndex int                `json:"questionIndex"`
	Question      string             `json:"question"`
	Answer        string             `json:"answer"`
	AskedAt       time.Time          `json:"askedAt"`
	AnsweredAt    time.Time          `json:"answeredAt"`
	Evaluation    *policy.Evaluation `json:"evaluation,omitempty"`
}

// Record is the full persisted outcome of one interview session.
type Record struct {
	SessionID   string            `json:"sessionId"`
	UserID      string            `json:"userId"`
	StartedAt   time.Time         `json:"startedAt"`
	CompletedAt time.Time         `json:"completedAt"`
	Exchanges   []Exchange        `json:"exchanges"`
	Assessment  policy.Assessment `json:"assessment"`
}

// Store is the persistent store collaborator contract.
type Store interface {
	// Save writes the record, replacing any previous write for the same
	// session ID.
	Save(ctx context.Context, record Record) error
}
