package resume

import "context"

// Profile is the candidate context produced by the resume collaborator.
type Profile struct {
	Skills         []string `json:"skills"`
	SeniorityLevel string   `json:"seniorityLevel"`
	FieldOfStudy   string   `json:"fieldOfStudy"`
}

// ContextLoader loads candidate context for a user. Called exactly once per
// session while the session is priming.
type ContextLoader interface {
	LoadContext(ctx context.Context, userID string) (Profile, error)
}
