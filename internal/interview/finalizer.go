package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview/events"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/store"
)

const (
	persistAttempts       = 3
	persistAttemptBackoff = 500 * time.Millisecond
)

// finalizer produces the terminal assessment and persists the session record.
// It runs off the actor goroutine and reports back with a single
// AssessmentReady event. The session guarantees it is started at most once.
type finalizer struct {
	bridge  *policyBridge
	store   store.Store
	pending *store.PendingQueue
	post    func(events.Event)
}

func newFinalizer(bridge *policyBridge, st store.Store, pending *store.PendingQueue, post func(events.Event)) *finalizer {
	return &finalizer{bridge: bridge, store: st, pending: pending, post: post}
}

// Run summarizes the interview and saves the record. A summarization failure
// degrades to a neutral assessment rather than failing the session; a
// persistence failure flags the record and hands it to the pending queue for
// the out-of-band sweep.
func (f *finalizer) Run(ctx context.Context, record store.Record, promptCtx policy.PromptContext) {
	go func() {
		ctx, span := tracer.Start(ctx, "finalizer.Run")
		defer span.End()

		assessment, err := f.bridge.Summarize(ctx, promptCtx)
		if err != nil {
			logger.WarnContext(ctx, "assessment generation failed, using degraded assessment",
				"session_id", record.SessionID, "error", err)
			assessment = degradedAssessment(len(record.Exchanges))
		}
		record.Assessment = assessment
		record.CompletedAt = time.Now()

		persistencePending := false
		if err := f.persist(ctx, record); err != nil {
			logger.WarnContext(ctx, "record persistence exhausted, queueing for retry sweep",
				"session_id", record.SessionID, "error", err)
			f.pending.Add(record)
			persistencePending = true
		}

		f.post(events.NewAssessmentReady(assessment, persistencePending, nil))
	}()
}

func (f *finalizer) persist(ctx context.Context, record store.Record) error {
	var err error
	for attempt := 0; attempt < persistAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(persistAttemptBackoff << (attempt - 1)):
			}
		}
		if err = f.store.Save(ctx, record); err == nil {
			return nil
		}
	}
	return err
}

// degradedAssessment stands in when the policy engine cannot summarize. It is
// deliberately neutral and flags itself for human review.
func degradedAssessment(answered int) policy.Assessment {
	return policy.Assessment{
		Score: 50,
		Recommendations: []string{
			"Automated assessment was unavailable for this session; review the transcript manually.",
		},
		Summary: fmt.Sprintf(
			"The candidate answered %d question(s). A detailed automated assessment could not be generated.",
			answered),
	}
}
