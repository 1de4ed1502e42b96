package store

import (
	"context"
	"sync"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var pendingLogger = otelslog.NewLogger("github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/store")

// PendingQueue holds records whose persistence attempts were exhausted at
// finalization time. A periodic sweep drains it so a completed-but-flagged
// session eventually reaches durable storage.
type PendingQueue struct {
	mu      sync.Mutex
	records []Record
}

// NewPendingQueue creates an empty pending-persistence queue.
func NewPendingQueue() *PendingQueue {
	return &PendingQueue{}
}

// Add enqueues a record for out-of-band persistence retry.
func (q *PendingQueue) Add(record Record) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records = append(q.records, record)
}

// Len reports the number of queued records.
func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}

// Flush retries every queued record against the store. Records that still
// fail stay queued for the next sweep; Save's idempotency makes double writes
// harmless.
func (q *PendingQueue) Flush(ctx context.Context, s Store) {
	q.mu.Lock()
	pending := q.records
	q.records = nil
	q.mu.Unlock()

	var stillPending []Record
	for _, record := range pending {
		if err := s.Save(ctx, record); err != nil {
			pendingLogger.WarnContext(ctx, "pending record save failed, keeping queued",
				"session_id", record.SessionID, "error", err)
			stillPending = append(stillPending, record)
		}
	}

	if len(stillPending) > 0 {
		q.mu.Lock()
		q.records = append(stillPending, q.records...)
		q.mu.Unlock()
	}
}
