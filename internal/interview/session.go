package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jinzhu/copier"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview/events"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/resume"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/store"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/stt"
)

const (
	inboxSize   = 64
	controlSize = 4
)

type sessionDeps struct {
	transcriber stt.Transcriber
	encoding    stt.EncodingInfo
	engine      policy.Engine
	fallback    *policy.FallbackPool
	loader      resume.ContextLoader
	store       store.Store
	pending     *store.PendingQueue
}

// openTurn tracks the question currently awaiting an answer. A clarifying
// turn extends the answer of an already-recorded exchange instead of opening
// a new one.
type openTurn struct {
	question    string
	clarifying  bool
	exchangeIdx int
	askedAt     time.Time
}

// Session is one interview's state machine. All state transitions happen on
// the actor goroutine started by Start; collaborators report back by posting
// events into the inbox, and client controls arrive the same way. The only
// entry points that bypass the inbox are audio frames (SubmitAudio, which
// feeds the ingest buffer directly) and the read-only Snapshot.
type Session struct {
	ID     string
	UserID string

	config    SessionConfig
	deps      sessionDeps
	startedAt time.Time

	inbox   chan events.Event
	control chan events.Event
	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	closeOnce sync.Once

	lastActivity atomic.Int64
	snap         atomic.Pointer[Snapshot]

	sinkMu      sync.Mutex
	sink        OutboundSink
	sinkBacklog []Outbound

	ctx    context.Context
	cancel context.CancelFunc

	// actor-owned state below, touched only on the run goroutine
	state              State
	profile            resume.Profile
	maxQuestions       int
	questionIndex      int
	exchanges          []QAExchange
	turn               *openTurn
	turnEpoch          int
	agg                *utteranceAggregator
	closingMessage     string
	closingReason      string
	persistencePending bool
	terminalEmitted    bool
	finalizing         bool

	ingest    *ingestBuffer
	bridge    *policyBridge
	finalizer *finalizer
}

func newSession(id string, userID string, config SessionConfig, deps sessionDeps) *Session {
	s := &Session{
		ID:        id,
		UserID:    userID,
		config:    config.withDefaults(),
		deps:      deps,
		startedAt: time.Now(),
		inbox:     make(chan events.Event, inboxSize),
		control:   make(chan events.Event, controlSize),
		closeCh:   make(chan struct{}),
		done:      make(chan struct{}),
		state:     StateIdle,
		agg:       newUtteranceAggregator(),
	}
	s.lastActivity.Store(s.startedAt.UnixNano())
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.ingest = newIngestBuffer(deps.transcriber, deps.encoding, s.postEvent)
	s.bridge = newPolicyBridge(deps.engine, deps.fallback, s.postEvent)
	s.finalizer = newFinalizer(s.bridge, deps.store, deps.pending, s.postEvent)
	return s
}

// Start launches the actor. Safe to call more than once; only the first call
// has any effect.
func (s *Session) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

// Close shuts the actor down and waits for it to exit. Safe to call more
// than once, and safe on a session that was never started.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
	})
	// Consuming startOnce here keeps done from hanging when the actor never
	// ran, and keeps a later Start from launching it.
	s.startOnce.Do(func() {
		close(s.done)
	})
	<-s.done
}

// Done is closed once the actor goroutine has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Dispatch hands an event to the actor. End-interview commands travel on a
// priority lane so a close request is never stuck behind queued transcript
// traffic.
func (s *Session) Dispatch(ev events.Event) error {
	s.touch()
	lane := s.inbox
	if ev.Kind() == events.KindEndInterview {
		lane = s.control
	}
	select {
	case lane <- ev:
		return nil
	case <-s.closeCh:
		return ErrSessionClosed
	}
}

// SubmitAudio accepts one sequenced audio frame from the client connection.
// Audio bypasses the actor inbox entirely; only the resulting transcripts
// enter it.
func (s *Session) SubmitAudio(seq uint64, frame []byte) error {
	select {
	case <-s.closeCh:
		return ErrSessionClosed
	default:
	}
	s.touch()
	return s.ingest.Submit(seq, frame)
}

// AttachSink connects the client's outbound channel. Events emitted before a
// sink is attached are buffered and flushed here, so a reconnecting client
// does not lose its question.
func (s *Session) AttachSink(sink OutboundSink) {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	s.sink = sink
	for _, out := range s.sinkBacklog {
		sink(out)
	}
	s.sinkBacklog = nil
}

// Snapshot returns a point-in-time copy of the session's observable state.
func (s *Session) Snapshot() Snapshot {
	if snap := s.snap.Load(); snap != nil {
		return *snap
	}
	return Snapshot{
		SessionID:      s.ID,
		UserID:         s.UserID,
		State:          StateIdle,
		Config:         s.config,
		StartedAt:      s.startedAt,
		LastActivityAt: s.lastActivityTime(),
	}
}

// IdleFor reports how long the session has gone without client activity.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.lastActivityTime())
}

func (s *Session) lastActivityTime() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

func (s *Session) touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

func (s *Session) postEvent(ev events.Event) {
	select {
	case s.inbox <- ev:
	case <-s.closeCh:
	}
}

func (s *Session) emit(out Outbound) {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	if s.sink == nil {
		s.sinkBacklog = append(s.sinkBacklog, out)
		return
	}
	s.sink(out)
}

func (s *Session) run() {
	defer close(s.done)
	defer s.cancel()
	defer s.ingest.Close(context.Background())

	s.state = StatePriming
	s.publishSnapshot()
	go func() {
		profile, err := s.deps.loader.LoadContext(s.ctx, s.UserID)
		s.postEvent(events.NewContextLoaded(profile, err))
	}()

	for {
		// Drain the priority lane first so end-interview commands preempt
		// queued transcript traffic.
		select {
		case <-s.closeCh:
			return
		case ev := <-s.control:
			s.process(ev)
			continue
		default:
		}

		select {
		case <-s.closeCh:
			return
		case ev := <-s.control:
			s.process(ev)
		case ev := <-s.inbox:
			s.process(ev)
		}
	}
}

func (s *Session) process(ev events.Event) {
	if s.state.Terminal() {
		return
	}

	switch ev := ev.(type) {
	case events.ContextLoaded:
		s.handleContextLoaded(ev)
	case events.QuestionReady:
		s.handleQuestionReady(ev)
	case events.RecordingStarted:
		s.handleRecordingStarted()
	case events.RecordingStopped:
		s.handleRecordingStopped()
	case events.UserSpeechStarted:
		s.handleSpeechActivity("")
	case events.UserTranscriptPartial:
		s.handleSpeechActivity(ev.Transcript)
	case events.UserTranscriptSegment:
		s.handleTranscriptSegment(ev)
	case events.EndpointSilenceElapsed:
		s.handleEndpointElapsed(ev)
	case events.AnswerEvaluated:
		s.handleAnswerEvaluated(ev)
	case events.EndInterview:
		s.handleEndInterview(ev)
	case events.TranscriptionDown:
		s.handleTranscriptionDown(ev)
	case events.TranscriptionRestored:
		s.handleTranscriptionRestored()
	case events.AssessmentReady:
		s.handleAssessmentReady(ev)
	case events.UserSpeechEnded:
		// Endpointing keys off finalized segments and the silence timer, not
		// raw voice activity.
	default:
		logger.WarnContext(s.ctx, "unhandled session event", "kind", ev.Kind(), "session_id", s.ID)
	}

	s.publishSnapshot()
}

func (s *Session) handleContextLoaded(ev events.ContextLoaded) {
	if s.state != StatePriming {
		return
	}
	if ev.Err != nil {
		s.fail(fmt.Errorf("loading candidate context: %w", ev.Err))
		return
	}
	s.profile = ev.Profile

	s.maxQuestions = s.config.MaxQuestions
	if s.maxQuestions <= 0 {
		s.maxQuestions = maxQuestionsForSeniority(s.profile.SeniorityLevel)
	}

	if err := s.openStream(); err != nil {
		s.fail(fmt.Errorf("opening transcription stream: %w", err))
		return
	}

	s.state = StateAskingQuestion
	s.requestNextQuestion()
}

func (s *Session) openStream() error {
	return s.ingest.Open(s.ctx,
		stt.WithEncodingInfo(s.deps.encoding),
		stt.WithPartialTranscriptionCallback(func(transcript string) {
			s.postEvent(events.NewUserTranscriptPartial(transcript))
		}),
		stt.WithTranscriptionCallback(func(transcript string, confidence float64) {
			s.postEvent(events.NewUserTranscriptSegment(transcript, confidence))
		}),
		stt.WithSpeechStartedCallback(func() {
			s.postEvent(events.NewUserSpeechStarted())
		}),
		stt.WithSpeechEndedCallback(func() {
			s.postEvent(events.NewUserSpeechEnded())
		}),
		stt.WithErrorCallback(s.ingest.StreamFailed),
	)
}

func (s *Session) requestNextQuestion() {
	s.turnEpoch++
	s.bridge.RequestNextQuestion(s.ctx, s.turnEpoch, s.promptContext())
}

func (s *Session) handleQuestionReady(ev events.QuestionReady) {
	if ev.Epoch != s.turnEpoch {
		return
	}
	if s.state != StateAskingQuestion && s.state != StateEvaluatingAnswer {
		return
	}

	if ev.Question.Done {
		s.closingMessage = ev.Question.ClosingMessage
		s.enterClosing("interviewer_concluded")
		return
	}

	// The answer turn's transcript and audio clock start at question
	// delivery, not at the recording-start ack, so audio frames racing ahead
	// of the client's start control are still counted.
	s.agg.Reset()
	s.ingest.BeginTurn()

	now := time.Now()
	if ev.Question.Clarifying && len(s.exchanges) > 0 {
		idx := len(s.exchanges) - 1
		s.turn = &openTurn{
			question:    ev.Question.Text,
			clarifying:  true,
			exchangeIdx: idx,
			askedAt:     now,
		}
		s.state = StateAskingQuestion
		s.emit(Outbound{
			Kind:          OutboundStatus,
			Code:          StatusClarify,
			QuestionIndex: s.exchanges[idx].QuestionIndex,
			Text:          ev.Question.Text,
		})
		return
	}

	s.turn = &openTurn{
		question:    ev.Question.Text,
		exchangeIdx: s.questionIndex,
		askedAt:     now,
	}
	s.state = StateAskingQuestion
	s.emit(Outbound{
		Kind:          OutboundQuestion,
		QuestionIndex: s.questionIndex,
		Text:          ev.Question.Text,
	})
}

func (s *Session) handleRecordingStarted() {
	// A start while already listening is the client resuming a too-short
	// turn; accumulated transcript and the audio clock carry over.
	if s.state != StateAskingQuestion || s.turn == nil {
		return
	}
	s.state = StateListeningForAnswer
}

func (s *Session) handleSpeechActivity(transcript string) {
	if s.state != StateListeningForAnswer {
		return
	}
	s.agg.AddPartial(transcript)
}

func (s *Session) handleTranscriptSegment(ev events.UserTranscriptSegment) {
	if s.state != StateListeningForAnswer {
		return
	}
	epoch, accepted := s.agg.AddSegment(ev.Segment, ev.Confidence)
	if !accepted {
		return
	}
	time.AfterFunc(s.config.endpointSilence(), func() {
		s.postEvent(events.NewEndpointSilenceElapsed(epoch))
	})
}

func (s *Session) handleEndpointElapsed(ev events.EndpointSilenceElapsed) {
	if s.state != StateListeningForAnswer || !s.agg.EndpointReady(ev.Epoch) {
		return
	}
	if s.ingest.TurnAudioDuration() < s.config.minAnswerDuration() {
		return
	}
	s.finalizeAnswer()
}

func (s *Session) handleRecordingStopped() {
	if s.state != StateListeningForAnswer {
		return
	}
	// Rejections keep the session listening: the turn's transcript and audio
	// clock carry over when the client resumes recording.
	if s.ingest.TurnAudioDuration() < s.config.minAnswerDuration() {
		s.emit(Outbound{
			Kind:          OutboundStatus,
			Code:          StatusAnswerTooShort,
			QuestionIndex: s.turn.exchangeIdx,
			Text:          "your answer was too short, please continue speaking",
		})
		return
	}
	if s.agg.Empty() {
		s.emit(Outbound{
			Kind:          OutboundStatus,
			Code:          StatusNoSpeechDetected,
			QuestionIndex: s.turn.exchangeIdx,
			Text:          "no speech was detected, please answer again",
		})
		return
	}
	s.finalizeAnswer()
}

// finalizeAnswer closes the current turn: it records the answer, kicks off
// the best-effort evaluation, and either requests the next question or moves
// to closing when the question budget is spent.
func (s *Session) finalizeAnswer() {
	answer := s.agg.Text()
	now := time.Now()
	s.turnEpoch++

	var corr int
	var question string
	if s.turn.clarifying {
		ex := &s.exchanges[s.turn.exchangeIdx]
		ex.Answer = strings.TrimSpace(ex.Answer + " " + answer)
		ex.AnsweredAt = now
		corr = s.turn.exchangeIdx
		question = ex.Question
		answer = ex.Answer
	} else {
		s.exchanges = append(s.exchanges, QAExchange{
			QuestionIndex: s.questionIndex,
			Question:      s.turn.question,
			Answer:        answer,
			AskedAt:       s.turn.askedAt,
			AnsweredAt:    now,
		})
		corr = s.questionIndex
		question = s.turn.question
		s.questionIndex++
	}
	s.turn = nil

	s.state = StateEvaluatingAnswer
	s.bridge.RequestEvaluation(s.ctx, corr, question, answer)

	if s.questionIndex >= s.maxQuestions {
		s.enterClosing("question_budget_spent")
		return
	}
	s.requestNextQuestion()
}

func (s *Session) handleAnswerEvaluated(ev events.AnswerEvaluated) {
	if ev.Err != nil {
		logger.WarnContext(s.ctx, "answer evaluation failed", "session_id", s.ID, "error", ev.Err)
		return
	}
	if ev.Epoch < 0 || ev.Epoch >= len(s.exchanges) {
		return
	}
	evaluation := ev.Evaluation
	s.exchanges[ev.Epoch].Evaluation = &evaluation
}

func (s *Session) handleEndInterview(ev events.EndInterview) {
	if s.state == StateClosing {
		return
	}
	reason := ev.Reason
	if reason == "" {
		reason = "client_requested"
	}
	s.enterClosing(reason)
}

func (s *Session) handleTranscriptionDown(ev events.TranscriptionDown) {
	if !ev.Fatal {
		s.emit(Outbound{Kind: OutboundStatus, Code: StatusTranscriptionDegraded,
			Text: "transcription interrupted, reconnecting"})
		return
	}
	if s.state == StateClosing {
		return
	}
	s.fail(ErrTranscriptionUnavailable)
}

func (s *Session) handleTranscriptionRestored() {
	s.emit(Outbound{Kind: OutboundStatus, Code: StatusTranscriptionRestored,
		Text: "transcription restored"})
}

func (s *Session) enterClosing(reason string) {
	if s.finalizing {
		return
	}
	s.finalizing = true
	s.closingReason = reason
	s.turn = nil
	s.turnEpoch++
	s.state = StateClosing

	text := s.closingMessage
	if text == "" {
		text = "Thank you, that concludes the interview. Your assessment is being prepared."
	}
	s.emit(Outbound{Kind: OutboundStatus, Code: StatusClosing, Text: text})

	record := store.Record{
		SessionID: s.ID,
		UserID:    s.UserID,
		StartedAt: s.startedAt,
	}
	if err := copier.Copy(&record.Exchanges, s.exchanges); err != nil {
		logger.WarnContext(s.ctx, "copying exchanges for persistence", "session_id", s.ID, "error", err)
	}
	s.finalizer.Run(s.ctx, record, s.promptContext())
}

func (s *Session) handleAssessmentReady(ev events.AssessmentReady) {
	if s.state != StateClosing {
		return
	}
	if ev.Err != nil {
		s.fail(fmt.Errorf("finalizing session: %w", ev.Err))
		return
	}
	s.persistencePending = ev.PersistencePending
	s.state = StateCompleted
	assessment := ev.Assessment
	s.emitTerminal(Outbound{
		Kind:               OutboundAssessment,
		Assessment:         &assessment,
		PersistencePending: ev.PersistencePending,
	})
	logger.InfoContext(s.ctx, "session completed",
		"session_id", s.ID, "reason", s.closingReason,
		"exchanges", len(s.exchanges), "persistence_pending", ev.PersistencePending)
}

func (s *Session) fail(err error) {
	s.state = StateFailed
	s.emitTerminal(Outbound{Kind: OutboundError, Code: "session_failed", Text: err.Error()})
	logger.ErrorContext(s.ctx, "session failed", "session_id", s.ID, "error", err)
}

// emitTerminal guarantees at most one terminal outbound event per session.
func (s *Session) emitTerminal(out Outbound) {
	if s.terminalEmitted {
		return
	}
	s.terminalEmitted = true
	s.emit(out)
}

func (s *Session) promptContext() policy.PromptContext {
	history := make([]policy.Exchange, 0, len(s.exchanges))
	for _, ex := range s.exchanges {
		history = append(history, policy.Exchange{Question: ex.Question, Answer: ex.Answer})
	}
	return policy.PromptContext{
		Skills:         s.profile.Skills,
		SeniorityLevel: s.profile.SeniorityLevel,
		FieldOfStudy:   s.profile.FieldOfStudy,
		History:        history,
		QuestionIndex:  s.questionIndex,
		MaxQuestions:   s.maxQuestions,
	}
}

func (s *Session) publishSnapshot() {
	snap := &Snapshot{
		SessionID:          s.ID,
		UserID:             s.UserID,
		State:              s.state,
		Config:             s.config,
		QuestionIndex:      s.questionIndex,
		StartedAt:          s.startedAt,
		LastActivityAt:     s.lastActivityTime(),
		PersistencePending: s.persistencePending,
	}
	if err := copier.Copy(&snap.Exchanges, s.exchanges); err != nil {
		logger.WarnContext(s.ctx, "copying exchanges for snapshot", "session_id", s.ID, "error", err)
	}
	s.snap.Store(snap)
}
