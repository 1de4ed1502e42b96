package interview

import "errors"

var (
	// ErrOutOfOrder reports an audio frame whose sequence number is not the
	// expected next value. The client must resync; ingestion state is not
	// mutated by the rejected frame.
	ErrOutOfOrder = errors.New("audio frame out of order")

	// ErrAnswerTooShort reports a recording stopped before the minimum answer
	// duration. The turn stays open and the client resumes recording.
	ErrAnswerTooShort = errors.New("answer shorter than minimum duration")

	// ErrTranscriptionUnavailable reports an exhausted transcription stream
	// reconnect budget.
	ErrTranscriptionUnavailable = errors.New("transcription unavailable")

	// ErrSessionNotFound reports a dispatch against an unknown session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed reports a dispatch against a session whose actor has
	// already shut down.
	ErrSessionClosed = errors.New("session closed")
)
