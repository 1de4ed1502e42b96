package events

const (
	// KindUserSpeechStarted identifies start of candidate speech activity.
	KindUserSpeechStarted Kind = "user_input.speech_started"
	// KindUserSpeechEnded identifies end of candidate speech activity.
	KindUserSpeechEnded Kind = "user_input.speech_ended"
	// KindUserTranscriptPartial identifies a mutable interim transcript update.
	KindUserTranscriptPartial Kind = "user_input.transcript_partial"
	// KindUserTranscriptSegment identifies a provider-final transcript segment.
	KindUserTranscriptSegment Kind = "user_input.transcript_segment"
)

// UserSpeechStarted marks when candidate speech activity starts.
type UserSpeechStarted struct{ Base }

// NewUserSpeechStarted creates a speech started event.
func NewUserSpeechStarted() UserSpeechStarted {
	return UserSpeechStarted{Base: NewBase(KindUserSpeechStarted)}
}

// UserSpeechEnded marks when candidate speech activity ends.
type UserSpeechEnded struct{ Base }

// NewUserSpeechEnded creates a speech ended event.
func NewUserSpeechEnded() UserSpeechEnded {
	return UserSpeechEnded{Base: NewBase(KindUserSpeechEnded)}
}

// UserTranscriptPartial carries a mutable interim transcript snapshot for the
// utterance in progress. Partials overwrite each other and are never recorded.
type UserTranscriptPartial struct {
	Base
	Transcript string
}

// NewUserTranscriptPartial creates an interim transcript update event.
func NewUserTranscriptPartial(transcript string) UserTranscriptPartial {
	return UserTranscriptPartial{Base: NewBase(KindUserTranscriptPartial), Transcript: transcript}
}

// UserTranscriptSegment carries a provider-final, append-only transcript
// segment together with the provider's confidence for it.
type UserTranscriptSegment struct {
	Base
	Segment    string
	Confidence float64
}

// NewUserTranscriptSegment creates a provider-final transcript segment event.
func NewUserTranscriptSegment(segment string, confidence float64) UserTranscriptSegment {
	return UserTranscriptSegment{Base: NewBase(KindUserTranscriptSegment), Segment: segment, Confidence: confidence}
}
