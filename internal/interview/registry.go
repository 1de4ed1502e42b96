package interview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview/events"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/resume"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/store"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/stt"
)

const (
	defaultTerminalGrace = 2 * time.Minute
	janitorSchedule      = "@every 30s"
)

// ReasonIdleTimeout is the close reason the janitor injects into sessions
// that exceeded their idle timeout.
const ReasonIdleTimeout = "idle_timeout"

// Registry owns all live sessions. It creates them with a shared set of
// collaborators, finds them for dispatch, and runs the janitor that closes
// idle sessions, removes finished ones, and retries pending persistence.
type Registry struct {
	deps     sessionDeps
	defaults SessionConfig
	grace    time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	cron *cron.Cron
}

type RegistryOption func(*Registry)

func WithTranscriber(transcriber stt.Transcriber) RegistryOption {
	return func(r *Registry) { r.deps.transcriber = transcriber }
}

func WithEncoding(encoding stt.EncodingInfo) RegistryOption {
	return func(r *Registry) { r.deps.encoding = encoding }
}

func WithPolicyEngine(engine policy.Engine) RegistryOption {
	return func(r *Registry) { r.deps.engine = engine }
}

func WithFallbackPool(pool *policy.FallbackPool) RegistryOption {
	return func(r *Registry) { r.deps.fallback = pool }
}

func WithContextLoader(loader resume.ContextLoader) RegistryOption {
	return func(r *Registry) { r.deps.loader = loader }
}

func WithStore(st store.Store) RegistryOption {
	return func(r *Registry) { r.deps.store = st }
}

// WithSessionDefaults sets the config applied to sessions created without
// explicit overrides.
func WithSessionDefaults(config SessionConfig) RegistryOption {
	return func(r *Registry) { r.defaults = config }
}

// WithTerminalGrace sets how long a completed or failed session stays
// queryable before the janitor removes it.
func WithTerminalGrace(grace time.Duration) RegistryOption {
	return func(r *Registry) { r.grace = grace }
}

// NewRegistry builds a registry. Transcriber, policy engine, context loader
// and store are required; the fallback pool and encoding default to the
// compiled-in scripted pool and 16kHz linear PCM.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		grace:    defaultTerminalGrace,
		sessions: map[string]*Session{},
	}
	r.deps.encoding = stt.DefaultEncodingInfo()
	r.deps.fallback = policy.NewFallbackPool()
	r.deps.pending = store.NewPendingQueue()

	for _, opt := range opts {
		opt(r)
	}

	if r.deps.transcriber == nil {
		return nil, fmt.Errorf("registry requires a transcriber")
	}
	if r.deps.engine == nil {
		return nil, fmt.Errorf("registry requires a policy engine")
	}
	if r.deps.loader == nil {
		return nil, fmt.Errorf("registry requires a context loader")
	}
	if r.deps.store == nil {
		return nil, fmt.Errorf("registry requires a store")
	}
	return r, nil
}

// Create registers a new session for the user. Zero fields in the config
// override fall back to the registry defaults. The session is not started;
// the caller starts it when the client connection attaches.
func (r *Registry) Create(userID string, override SessionConfig) *Session {
	config := r.defaults
	if override.MinAnswerSeconds > 0 {
		config.MinAnswerSeconds = override.MinAnswerSeconds
	}
	if override.MaxQuestions > 0 {
		config.MaxQuestions = override.MaxQuestions
	}
	if override.IdleTimeoutSeconds > 0 {
		config.IdleTimeoutSeconds = override.IdleTimeoutSeconds
	}
	if override.EndpointSilenceMs > 0 {
		config.EndpointSilenceMs = override.EndpointSilenceMs
	}

	session := newSession(uuid.NewString(), userID, config, r.deps)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return session
}

// Get finds a live session by ID.
func (r *Registry) Get(sessionID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove drops the session from the registry and shuts its actor down.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if ok {
		session.Close()
	}
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// StartJanitor schedules the periodic sweep: idle sessions get an
// end-interview command, terminal sessions past the grace window are removed,
// and records whose persistence failed at finalization are retried.
func (r *Registry) StartJanitor() error {
	if r.cron != nil {
		return nil
	}
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(janitorSchedule, r.Sweep); err != nil {
		r.cron = nil
		return fmt.Errorf("scheduling registry janitor: %w", err)
	}
	r.cron.Start()
	return nil
}

// StopJanitor stops the sweep scheduler. Registered sessions are untouched.
func (r *Registry) StopJanitor() {
	if r.cron != nil {
		r.cron.Stop()
		r.cron = nil
	}
}

// Sweep runs one janitor pass.
func (r *Registry) Sweep() {
	now := time.Now()
	r.ReapIdle(now)
	r.deps.pending.Flush(context.Background(), r.deps.store)
}

// ReapIdle force-closes sessions idle past their timeout and removes terminal
// sessions whose grace window has expired.
func (r *Registry) ReapIdle(now time.Time) {
	r.mu.Lock()
	candidates := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		candidates = append(candidates, session)
	}
	r.mu.Unlock()

	for _, session := range candidates {
		idle := session.IdleFor(now)
		snap := session.Snapshot()

		switch {
		case snap.State.Terminal():
			if idle > r.grace {
				r.Remove(session.ID)
			}
		case snap.State == StateIdle:
			// Never attached; the actor is not running, remove directly.
			if idle > session.config.idleTimeout() {
				r.Remove(session.ID)
			}
		default:
			if idle > session.config.idleTimeout() {
				if err := session.Dispatch(events.NewEndInterview(ReasonIdleTimeout)); err != nil {
					logger.Warn("failed to close idle session", "session_id", session.ID, "error", err)
				}
			}
		}
	}
}

// PendingPersistence reports how many finished records still await durable
// storage.
func (r *Registry) PendingPersistence() int {
	return r.deps.pending.Len()
}
