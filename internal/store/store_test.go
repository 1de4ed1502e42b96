package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy"
)

func sampleRecord(sessionID string) Record {
	askedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return Record{
		SessionID:   sessionID,
		UserID:      "user-1",
		StartedAt:   askedAt,
		CompletedAt: askedAt.Add(10 * time.Minute),
		Exchanges: []Exchange{{
			QuestionIndex: 0,
			Question:      "Tell me about yourself.",
			Answer:        "I am an engineer.",
			AskedAt:       askedAt,
			AnsweredAt:    askedAt.Add(time.Minute),
			Evaluation:    &policy.Evaluation{Confidence: 0.9, Clarity: 0.8, Relevance: 0.7},
		}},
		Assessment: policy.Assessment{Score: 70, Summary: "fine"},
	}
}

func TestMemoryStoreSaveIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleRecord("a")))
	updated := sampleRecord("a")
	updated.Assessment.Score = 90
	require.NoError(t, s.Save(ctx, updated))

	assert.Equal(t, 1, s.Len())
	record, ok := s.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, 90, record.Assessment.Score)
}

// blockingStore fails until released, mimicking a database outage.
type blockingStore struct {
	mu        sync.Mutex
	available bool
	saved     []Record
}

func (s *blockingStore) Save(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return errors.New("database unavailable")
	}
	s.saved = append(s.saved, record)
	return nil
}

func (s *blockingStore) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = true
}

func TestPendingQueueFlush(t *testing.T) {
	queue := NewPendingQueue()
	db := &blockingStore{}
	ctx := context.Background()

	queue.Add(sampleRecord("a"))
	queue.Add(sampleRecord("b"))

	// The outage persists: everything stays queued.
	queue.Flush(ctx, db)
	assert.Equal(t, 2, queue.Len())

	db.release()
	queue.Flush(ctx, db)
	assert.Equal(t, 0, queue.Len())
	assert.Len(t, db.saved, 2)

	// A drained queue is a no-op.
	queue.Flush(ctx, db)
	assert.Len(t, db.saved, 2)
}
