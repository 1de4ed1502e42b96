package interview

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview/events"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy"
)

const (
	defaultPolicyTimeout = 8 * time.Second
	defaultPolicyBackoff = time.Second
)

// policyBridge decouples the session actor from policy engine latency. Every
// request runs on its own goroutine, applies a per-attempt timeout with one
// retry, and posts the outcome back to the actor's inbox as a correlated
// event. The actor never blocks on the engine.
type policyBridge struct {
	engine   policy.Engine
	fallback *policy.FallbackPool
	post     func(events.Event)

	timeout time.Duration
	backoff time.Duration
}

func newPolicyBridge(engine policy.Engine, fallback *policy.FallbackPool, post func(events.Event)) *policyBridge {
	return &policyBridge{
		engine:   engine,
		fallback: fallback,
		post:     post,
		timeout:  defaultPolicyTimeout,
		backoff:  defaultPolicyBackoff,
	}
}

// RequestNextQuestion asks the engine for the next question under the given
// turn epoch. If both attempts fail a scripted fallback question is served
// instead so the interview keeps moving.
func (b *policyBridge) RequestNextQuestion(ctx context.Context, epoch int, promptCtx policy.PromptContext) {
	go func() {
		ctx, span := tracer.Start(ctx, "policyBridge.RequestNextQuestion", trace.WithAttributes(
			attribute.Int("turn.epoch", epoch),
			attribute.Int("question.index", promptCtx.QuestionIndex),
		))
		defer span.End()

		var question policy.Question
		err := b.withRetry(ctx, func(attemptCtx context.Context) error {
			var attemptErr error
			question, attemptErr = b.engine.NextQuestion(attemptCtx, promptCtx)
			return attemptErr
		})
		if err == nil {
			b.post(events.NewQuestionReady(epoch, question, false))
			return
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "policy engine unavailable, serving fallback question")
		logger.WarnContext(ctx, "policy engine unavailable, serving fallback question", "error", err)

		remaining := promptCtx.MaxQuestions - promptCtx.QuestionIndex
		fallback := policy.Question{Text: b.fallback.QuestionFor(remaining)}
		b.post(events.NewQuestionReady(epoch, fallback, true))
	}()
}

// RequestEvaluation asks the engine to score an answer. Evaluation is
// best-effort: a failure is posted as-is and never blocks turn progression,
// so there is no fallback here.
func (b *policyBridge) RequestEvaluation(ctx context.Context, correlation int, question string, answer string) {
	go func() {
		ctx, span := tracer.Start(ctx, "policyBridge.RequestEvaluation", trace.WithAttributes(
			attribute.Int("exchange.index", correlation),
		))
		defer span.End()

		var evaluation policy.Evaluation
		err := b.withRetry(ctx, func(attemptCtx context.Context) error {
			var attemptErr error
			evaluation, attemptErr = b.engine.Evaluate(attemptCtx, question, answer)
			return attemptErr
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "answer evaluation failed")
		}
		b.post(events.NewAnswerEvaluated(correlation, evaluation, err))
	}()
}

// Summarize asks the engine for the final assessment, synchronously, with the
// bridge's timeout and retry policy. The finalizer calls this from its own
// goroutine.
func (b *policyBridge) Summarize(ctx context.Context, promptCtx policy.PromptContext) (policy.Assessment, error) {
	var assessment policy.Assessment
	err := b.withRetry(ctx, func(attemptCtx context.Context) error {
		var attemptErr error
		assessment, attemptErr = b.engine.Summarize(attemptCtx, promptCtx)
		return attemptErr
	})
	return assessment, err
}

func (b *policyBridge) withRetry(ctx context.Context, call func(context.Context) error) error {
	err := b.attempt(ctx, call)
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.backoff):
	}
	return b.attempt(ctx, call)
}

func (b *policyBridge) attempt(ctx context.Context, call func(context.Context) error) error {
	attemptCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return call(attemptCtx)
}
