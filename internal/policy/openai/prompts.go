package openai

import (
	"fmt"
	"strings"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/policy"
)

const clarifyTag = "[CLARIFY]"

const interviewerSystemPrompt = `You are a professional technical interviewer conducting a spoken mock interview.
Ask exactly one question at a time, tailored to the candidate's skills and seniority.
Never repeat a topic already covered. Keep questions under 40 words so they read
naturally when spoken aloud.
If the previous answer was too vague to evaluate, prefix a short follow-up with ` + clarifyTag + `
instead of moving on; clarifying follow-ups do not count toward the question quota.`

const evaluatorSystemPrompt = `You grade one spoken interview answer. Score confidence, clarity and relevance,
each between 0 and 1. Judge only what the candidate actually said.`

const assessorSystemPrompt = `You produce the final assessment for a completed spoken interview.
Base every statement on the recorded answers. Be specific and constructive.`

// formatHistory renders the exchange log for the prompt with a rolling
// summary: the most recent exchanges verbatim, older ones compacted to their
// topics. Keeps prompt growth sublinear in interview length.
func formatHistory(history []policy.Exchange, keepRecent int) string {
	if len(history) == 0 {
		return "No previous conversation."
	}

	if len(history) <= keepRecent {
		return formatFullHistory(history)
	}

	older := history[:len(history)-keepRecent]
	recent := history[len(history)-keepRecent:]

	topics := make([]string, 0, len(older))
	for _, exchange := range older {
		topic := strings.TrimSpace(exchange.Question)
		if len(topic) > 40 {
			topic = topic[:40]
		}
		if topic != "" {
			topics = append(topics, topic+"...")
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[Earlier: %d questions covered topics: %s]\n\n", len(older), strings.Join(topics, ", "))
	sb.WriteString("RECENT EXCHANGES:\n")
	sb.WriteString(formatFullHistory(recent))
	return sb.String()
}

func formatFullHistory(history []policy.Exchange) string {
	var sb strings.Builder
	for i, exchange := range history {
		fmt.Fprintf(&sb, "Q%d: %s\n", i+1, exchange.Question)
		fmt.Fprintf(&sb, "A%d: %s\n\n", i+1, exchange.Answer)
	}
	return sb.String()
}

func formatCandidate(promptCtx policy.PromptContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Seniority: %s\n", promptCtx.SeniorityLevel)
	if promptCtx.FieldOfStudy != "" {
		fmt.Fprintf(&sb, "Field of study: %s\n", promptCtx.FieldOfStudy)
	}
	if len(promptCtx.Skills) > 0 {
		fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(promptCtx.Skills, ", "))
	}
	return sb.String()
}

func isClarifyingQuestion(question string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(question)), clarifyTag)
}

func stripClarifyTag(question string) string {
	trimmed := strings.TrimSpace(question)
	if isClarifyingQuestion(trimmed) {
		return strings.TrimSpace(trimmed[len(clarifyTag):])
	}
	return trimmed
}
