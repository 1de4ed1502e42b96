package interview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview/events"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/resume"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/store"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/stt"
)

const waitTimeout = 2 * time.Second

// oneSecondOfAudio matches the default 16kHz 16-bit mono encoding.
const oneSecondOfAudio = 32000

type fakeStream struct {
	mu      sync.Mutex
	chunks  int
	sendErr error
	closed  bool
}

func (s *fakeStream) SendAudio(audio []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.chunks++
	return nil
}

func (s *fakeStream) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) failNextSend(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendErr = err
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeTranscriber struct {
	mu      sync.Mutex
	streams []*fakeStream
	opts    []stt.TranscriptionOptions
	openErr error

	dialing chan struct{}
	release chan struct{}
}

// gateDials makes subsequent Transcribe calls announce themselves on the
// returned channel and block until released, so a test can interleave other
// work with an in-flight dial.
func (t *fakeTranscriber) gateDials() (dialing <-chan struct{}, release func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dialing = make(chan struct{}, 1)
	t.release = make(chan struct{})
	return t.dialing, func() { close(t.release) }
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, opts ...stt.TranscriptionOption) (stt.Stream, error) {
	t.mu.Lock()
	dialing, release := t.dialing, t.release
	t.mu.Unlock()
	if dialing != nil {
		dialing <- struct{}{}
		<-release
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.openErr != nil {
		return nil, t.openErr
	}
	options := stt.TranscriptionOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	stream := &fakeStream{}
	t.streams = append(t.streams, stream)
	t.opts = append(t.opts, options)
	return stream, nil
}

func (t *fakeTranscriber) callbacks() stt.TranscriptionOptions {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opts[len(t.opts)-1]
}

func (t *fakeTranscriber) stream(i int) *fakeStream {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streams[i]
}

func (t *fakeTranscriber) setOpenErr(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.openErr = err
}

func (t *fakeTranscriber) opened() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.streams)
}

// stubEngine scripts the policy engine. The default behavior asks numbered
// questions, scores every answer the same, and summarizes with a fixed
// assessment.
type stubEngine struct {
	mu        sync.Mutex
	nextCalls int

	nextFn func(call int, promptCtx policy.PromptContext) (policy.Question, error)
	evalFn func(question, answer string) (policy.Evaluation, error)
	sumFn  func(promptCtx policy.PromptContext) (policy.Assessment, error)
}

func (e *stubEngine) NextQuestion(ctx context.Context, promptCtx policy.PromptContext) (policy.Question, error) {
	e.mu.Lock()
	call := e.nextCalls
	e.nextCalls++
	fn := e.nextFn
	e.mu.Unlock()

	if fn != nil {
		return fn(call, promptCtx)
	}
	return policy.Question{Text: fmt.Sprintf("question %d", call)}, nil
}

func (e *stubEngine) Evaluate(ctx context.Context, question, answer string) (policy.Evaluation, error) {
	e.mu.Lock()
	fn := e.evalFn
	e.mu.Unlock()

	if fn != nil {
		return fn(question, answer)
	}
	return policy.Evaluation{Confidence: 0.8, Clarity: 0.7, Relevance: 0.9}, nil
}

func (e *stubEngine) Summarize(ctx context.Context, promptCtx policy.PromptContext) (policy.Assessment, error) {
	e.mu.Lock()
	fn := e.sumFn
	e.mu.Unlock()

	if fn != nil {
		return fn(promptCtx)
	}
	return policy.Assessment{Score: 72, Summary: "solid interview"}, nil
}

type stubLoader struct {
	profile resume.Profile
	err     error
}

func (l *stubLoader) LoadContext(ctx context.Context, userID string) (resume.Profile, error) {
	return l.profile, l.err
}

// failingStore fails a configurable number of Save calls before succeeding.
type failingStore struct {
	mu       sync.Mutex
	failures int
	saves    int
}

func (s *failingStore) Save(ctx context.Context, record store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saves <= s.failures {
		return errors.New("store unavailable")
	}
	return nil
}

type harness struct {
	session     *Session
	transcriber *fakeTranscriber
	engine      *stubEngine
	loader      *stubLoader
	memstore    *store.MemoryStore
	pending     *store.PendingQueue
	out         chan Outbound

	nextSeq uint64
}

type harnessOption func(*harness)

func withStore(st store.Store) harnessOption {
	return func(h *harness) { h.session.deps.store = st; h.session.finalizer.store = st }
}

func newHarness(t *testing.T, config SessionConfig, opts ...harnessOption) *harness {
	t.Helper()

	h := &harness{
		transcriber: &fakeTranscriber{},
		engine:      &stubEngine{},
		loader: &stubLoader{profile: resume.Profile{
			Skills:         []string{"go", "distributed systems"},
			SeniorityLevel: "senior",
			FieldOfStudy:   "computer science",
		}},
		memstore: store.NewMemoryStore(),
		pending:  store.NewPendingQueue(),
		out:      make(chan Outbound, 64),
	}

	deps := sessionDeps{
		transcriber: h.transcriber,
		encoding:    stt.DefaultEncodingInfo(),
		engine:      h.engine,
		fallback:    policy.NewFallbackPool(),
		loader:      h.loader,
		store:       h.memstore,
		pending:     h.pending,
	}
	h.session = newSession("sess-test", "user-test", config, deps)

	// Shrink async budgets so failure paths resolve within test timeouts.
	h.session.bridge.timeout = 200 * time.Millisecond
	h.session.bridge.backoff = 10 * time.Millisecond
	h.session.ingest.backoff = []time.Duration{5 * time.Millisecond, 5 * time.Millisecond, 5 * time.Millisecond}

	for _, opt := range opts {
		opt(h)
	}

	h.session.AttachSink(func(out Outbound) { h.out <- out })
	t.Cleanup(h.session.Close)
	return h
}

func (h *harness) start() {
	h.session.Start()
}

func (h *harness) nextOutbound(t *testing.T) Outbound {
	t.Helper()
	select {
	case out := <-h.out:
		return out
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for outbound event")
		return Outbound{}
	}
}

func (h *harness) expectQuestion(t *testing.T, index int) Outbound {
	t.Helper()
	out := h.nextOutbound(t)
	if out.Kind != OutboundQuestion {
		t.Fatalf("expected question event, got %s (code %q)", out.Kind, out.Code)
	}
	if out.QuestionIndex != index {
		t.Fatalf("expected question index %d, got %d", index, out.QuestionIndex)
	}
	return out
}

func (h *harness) expectStatus(t *testing.T, code string) Outbound {
	t.Helper()
	out := h.nextOutbound(t)
	if out.Kind != OutboundStatus || out.Code != code {
		t.Fatalf("expected status %q, got kind %s code %q", code, out.Kind, out.Code)
	}
	return out
}

func (h *harness) waitState(t *testing.T, want State) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if h.session.Snapshot().State == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %s, still %s", want, h.session.Snapshot().State)
}

func (h *harness) submitAudio(t *testing.T, size int) {
	t.Helper()
	if err := h.session.SubmitAudio(h.nextSeq, make([]byte, size)); err != nil {
		t.Fatalf("submitting audio: %v", err)
	}
	h.nextSeq++
}

// speak drives one full answer: recording start, audio, a final transcript
// segment, recording stop.
func (h *harness) speak(t *testing.T, transcript string) {
	t.Helper()
	if err := h.session.Dispatch(events.NewRecordingStarted()); err != nil {
		t.Fatalf("dispatching recording start: %v", err)
	}
	h.waitState(t, StateListeningForAnswer)
	h.submitAudio(t, oneSecondOfAudio)
	h.transcriber.callbacks().TranscriptionCallback(transcript, 0.95)
	if err := h.session.Dispatch(events.NewRecordingStopped()); err != nil {
		t.Fatalf("dispatching recording stop: %v", err)
	}
}
