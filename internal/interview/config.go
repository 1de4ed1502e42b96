package interview

import (
	"strings"
	"time"
)

// SessionConfig carries per-session tuning. Zero values are replaced with
// defaults when the session is created.
type SessionConfig struct {
	// MinAnswerSeconds is the minimum recorded duration for an answer to
	// count. Shorter recordings are rejected with ErrAnswerTooShort.
	MinAnswerSeconds int `json:"minAnswerSeconds"`
	// MaxQuestions caps the number of completed exchanges. When zero it is
	// derived from the candidate's seniority at priming time.
	MaxQuestions int `json:"maxQuestions"`
	// IdleTimeoutSeconds is how long a session may sit without activity
	// before the reaper force-closes it.
	IdleTimeoutSeconds int `json:"idleTimeoutSeconds"`
	// EndpointSilenceMs is how long to wait after a provider-final transcript
	// before treating the utterance as the complete answer.
	EndpointSilenceMs int `json:"endpointSilenceMs"`
}

const (
	defaultMinAnswerSeconds   = 4
	defaultMaxQuestions       = 5
	defaultIdleTimeoutSeconds = 300
	defaultEndpointSilenceMs  = 3000

	maxQuestionsCap = 5
)

func (c SessionConfig) withDefaults() SessionConfig {
	if c.MinAnswerSeconds <= 0 {
		c.MinAnswerSeconds = defaultMinAnswerSeconds
	}
	if c.IdleTimeoutSeconds <= 0 {
		c.IdleTimeoutSeconds = defaultIdleTimeoutSeconds
	}
	if c.EndpointSilenceMs <= 0 {
		c.EndpointSilenceMs = defaultEndpointSilenceMs
	}
	if c.MaxQuestions > maxQuestionsCap {
		c.MaxQuestions = maxQuestionsCap
	}
	return c
}

func (c SessionConfig) minAnswerDuration() time.Duration {
	return time.Duration(c.MinAnswerSeconds) * time.Second
}

func (c SessionConfig) idleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

func (c SessionConfig) endpointSilence() time.Duration {
	return time.Duration(c.EndpointSilenceMs) * time.Millisecond
}

// maxQuestionsForSeniority derives the question budget from the candidate's
// seniority when the session config leaves it unset. More senior candidates
// get longer interviews, up to the configured cap.
func maxQuestionsForSeniority(seniority string) int {
	switch strings.ToLower(strings.TrimSpace(seniority)) {
	case "fresher":
		return 3
	case "junior":
		return 4
	default:
		return defaultMaxQuestions
	}
}
