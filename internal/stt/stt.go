// Package stt defines the streaming speech-to-text collaborator boundary.
//
// A Transcriber opens one Stream per interview session. The stream reports
// transcript activity through the callbacks registered at open time and may
// die at any point; the owning session re-establishes it through the same
// Transcriber.
package stt

import "context"

// Stream is one live transcription channel.
type Stream interface {
	// SendAudio forwards a raw audio chunk to the provider.
	SendAudio(audio []byte) error
	// Close tears the stream down. Safe to call more than once.
	Close(ctx context.Context) error
}

// Transcriber opens transcription streams.
type Transcriber interface {
	Transcribe(ctx context.Context, opts ...TranscriptionOption) (Stream, error)
}
