package deepgram

import (
	"os"
	"testing"
	"time"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/stt"
)

func newCallbackStream(options stt.TranscriptionOptions) *transcriptionStream {
	return &transcriptionStream{
		options:   options,
		lastMsgTs: time.Now(),
		closed:    make(chan struct{}),
	}
}

func TestProcessMessageFinalTranscript(t *testing.T) {
	var gotTranscript string
	var gotConfidence float64
	speechEnded := false

	stream := newCallbackStream(stt.TranscriptionOptions{
		TranscriptionCallback: func(transcript string, confidence float64) {
			gotTranscript = transcript
			gotConfidence = confidence
		},
		SpeechEndedCallback: func() { speechEnded = true },
	})

	stream.processMessage([]byte(`{
		"type": "Results",
		"is_final": true,
		"speech_final": true,
		"channel": {"alternatives": [{"transcript": " tell me more ", "confidence": 0.87}]}
	}`))

	if gotTranscript != "tell me more" {
		t.Fatalf("expected trimmed transcript, got %q", gotTranscript)
	}
	if gotConfidence != 0.87 {
		t.Fatalf("expected confidence 0.87, got %v", gotConfidence)
	}
	if !speechEnded {
		t.Fatal("speech_final must trigger the speech ended callback")
	}
}

func TestProcessMessageInterimTranscript(t *testing.T) {
	var partial string
	finalCalled := false

	stream := newCallbackStream(stt.TranscriptionOptions{
		PartialTranscriptionCallback: func(transcript string) { partial = transcript },
		TranscriptionCallback:        func(string, float64) { finalCalled = true },
	})

	stream.processMessage([]byte(`{
		"type": "Results",
		"is_final": false,
		"channel": {"alternatives": [{"transcript": "tell me", "confidence": 0.4}]}
	}`))

	if partial != "tell me" {
		t.Fatalf("expected the interim callback, got %q", partial)
	}
	if finalCalled {
		t.Fatal("an interim result must not fire the final callback")
	}
}

func TestProcessMessageIgnoresEmptyTranscripts(t *testing.T) {
	stream := newCallbackStream(stt.TranscriptionOptions{
		TranscriptionCallback: func(string, float64) {
			t.Fatal("empty transcripts must be dropped")
		},
	})

	stream.processMessage([]byte(`{
		"type": "Results",
		"is_final": true,
		"channel": {"alternatives": [{"transcript": "   ", "confidence": 0.9}]}
	}`))
	stream.processMessage([]byte(`{"type": "Results", "channel": {"alternatives": []}}`))
}

func TestProcessMessageUtteranceEnd(t *testing.T) {
	speechEnds := 0
	stream := newCallbackStream(stt.TranscriptionOptions{
		SpeechEndedCallback:   func() { speechEnds++ },
		SpeechStartedCallback: func() {},
	})

	// An utterance end without a preceding speech start is ignored.
	stream.processMessage([]byte(`{"type": "UtteranceEnd"}`))
	if speechEnds != 0 {
		t.Fatal("utterance end without an open segment must be ignored")
	}

	stream.processMessage([]byte(`{"type": "SpeechStarted"}`))
	stream.processMessage([]byte(`{"type": "UtteranceEnd"}`))
	if speechEnds != 1 {
		t.Fatalf("expected exactly one speech end, got %d", speechEnds)
	}

	// The segment is closed; a repeat fires nothing.
	stream.processMessage([]byte(`{"type": "UtteranceEnd"}`))
	if speechEnds != 1 {
		t.Fatalf("expected the segment to stay closed, got %d ends", speechEnds)
	}
}

func TestConvertEncoding(t *testing.T) {
	valid := []stt.EncodingInfo{
		{Encoding: "linear16", SampleRate: 16000},
		{Encoding: "linear16", SampleRate: 48000},
		{Encoding: "mulaw", SampleRate: 8000},
	}
	for _, encoding := range valid {
		if _, err := convertEncoding(encoding); err != nil {
			t.Fatalf("expected %v to be accepted: %v", encoding, err)
		}
	}

	invalid := []stt.EncodingInfo{
		{Encoding: "linear16", SampleRate: 44100},
		{Encoding: "mulaw", SampleRate: 16000},
		{Encoding: "opus", SampleRate: 16000},
	}
	for _, encoding := range invalid {
		if _, err := convertEncoding(encoding); err == nil {
			t.Fatalf("expected %v to be rejected", encoding)
		}
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	// Setenv first so the original value is restored after the test, then
	// unset to exercise the missing-key path.
	t.Setenv("DEEPGRAM_API_KEY", "placeholder")
	os.Unsetenv("DEEPGRAM_API_KEY")
	if _, err := NewClient(); err == nil {
		t.Fatal("expected an error without an API key")
	}

	t.Setenv("DEEPGRAM_API_KEY", "dg-test-key")
	client, err := NewClient(WithModel("nova-2"))
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	if client.model != "nova-2" {
		t.Fatalf("expected the model override, got %q", client.model)
	}
	if defaultClient, _ := NewClient(); defaultClient.model != "nova-2-conversationalai" {
		t.Fatalf("unexpected default model %q", defaultClient.model)
	}
}
