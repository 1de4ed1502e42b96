package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FallbackPool holds scripted questions used when the policy engine is
// unreachable. Questions are keyed by how many question slots remain in the
// session so a degraded interview still covers a sensible arc.
type FallbackPool struct {
	questions []string
}

// defaultFallbackQuestions covers the widest configured session (5 slots),
// ordered from opener to closer.
var defaultFallbackQuestions = []string{
	"To start, could you walk me through your background and the kind of work you enjoy most?",
	"Tell me about a project you are proud of. What was your role and what made it challenging?",
	"Describe a time something went wrong on a project. How did you handle it?",
	"How do you keep your skills current in your field?",
	"Is there anything about your experience we have not covered that you would like to highlight?",
}

// NewFallbackPool returns the compiled-in scripted pool.
func NewFallbackPool() *FallbackPool {
	return &FallbackPool{questions: defaultFallbackQuestions}
}

// LoadFallbackPool reads a scripted pool from a YAML file of the form:
//
//	questions:
//	  - "First question"
//	  - "Second question"
func LoadFallbackPool(path string) (*FallbackPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback pool: %w", err)
	}

	var parsed struct {
		Questions []string `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse fallback pool: %w", err)
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("fallback pool is empty")
	}

	return &FallbackPool{questions: parsed.Questions}, nil
}

// QuestionFor picks a scripted question given how many slots remain, counting
// the one being asked. A single remaining slot always draws the closer.
func (p *FallbackPool) QuestionFor(remainingSlots int) string {
	if remainingSlots <= 0 {
		remainingSlots = 1
	}
	idx := len(p.questions) - remainingSlots
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.questions) {
		idx = len(p.questions) - 1
	}
	return p.questions[idx]
}

// Size reports the number of scripted questions available.
func (p *FallbackPool) Size() int { return len(p.questions) }
