package interview

import "testing"

func TestSessionConfigDefaults(t *testing.T) {
	config := SessionConfig{}.withDefaults()

	if config.MinAnswerSeconds != defaultMinAnswerSeconds {
		t.Fatalf("unexpected min answer seconds: %d", config.MinAnswerSeconds)
	}
	if config.IdleTimeoutSeconds != defaultIdleTimeoutSeconds {
		t.Fatalf("unexpected idle timeout: %d", config.IdleTimeoutSeconds)
	}
	if config.EndpointSilenceMs != defaultEndpointSilenceMs {
		t.Fatalf("unexpected endpoint silence: %d", config.EndpointSilenceMs)
	}
	// Max questions stays unset so priming can derive it from seniority.
	if config.MaxQuestions != 0 {
		t.Fatalf("expected max questions to stay unset, got %d", config.MaxQuestions)
	}

	capped := SessionConfig{MaxQuestions: 12}.withDefaults()
	if capped.MaxQuestions != maxQuestionsCap {
		t.Fatalf("expected max questions capped at %d, got %d", maxQuestionsCap, capped.MaxQuestions)
	}
}

func TestMaxQuestionsForSeniority(t *testing.T) {
	cases := []struct {
		seniority string
		want      int
	}{
		{"fresher", 3},
		{"Fresher", 3},
		{"junior", 4},
		{"senior", 5},
		{"staff", 5},
		{"", 5},
	}
	for _, tc := range cases {
		if got := maxQuestionsForSeniority(tc.seniority); got != tc.want {
			t.Fatalf("seniority %q: expected %d questions, got %d", tc.seniority, tc.want, got)
		}
	}
}
