package interview

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview/events"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/stt"
)

func newTestIngest(t *testing.T) (*ingestBuffer, *fakeTranscriber, chan events.Event) {
	t.Helper()
	transcriber := &fakeTranscriber{}
	posted := make(chan events.Event, 16)
	buffer := newIngestBuffer(transcriber, stt.DefaultEncodingInfo(), func(ev events.Event) { posted <- ev })
	buffer.backoff = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	if err := buffer.Open(context.Background()); err != nil {
		t.Fatalf("opening ingest stream: %v", err)
	}
	return buffer, transcriber, posted
}

func waitEvent(t *testing.T, posted chan events.Event) events.Event {
	t.Helper()
	select {
	case ev := <-posted:
		return ev
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for ingest event")
		return nil
	}
}

func TestIngestRejectsOutOfOrderFrames(t *testing.T) {
	buffer, transcriber, _ := newTestIngest(t)

	if err := buffer.Submit(0, make([]byte, 100)); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if err := buffer.Submit(2, make([]byte, 100)); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
	// The rejection must not consume the sequence number or count audio.
	if err := buffer.Submit(1, make([]byte, 100)); err != nil {
		t.Fatalf("resumed frame: %v", err)
	}
	if got := transcriber.stream(0).chunks; got != 2 {
		t.Fatalf("expected 2 forwarded chunks, got %d", got)
	}
}

func TestIngestTracksTurnAudioDuration(t *testing.T) {
	buffer, _, _ := newTestIngest(t)

	buffer.BeginTurn()
	buffer.Submit(0, make([]byte, oneSecondOfAudio))
	buffer.Submit(1, make([]byte, oneSecondOfAudio/2))

	if got := buffer.TurnAudioDuration(); got != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s of audio, got %s", got)
	}

	// A new turn starts its clock from zero but keeps the sequence.
	buffer.BeginTurn()
	if got := buffer.TurnAudioDuration(); got != 0 {
		t.Fatalf("expected a fresh turn clock, got %s", got)
	}
	if err := buffer.Submit(2, make([]byte, 100)); err != nil {
		t.Fatalf("sequence must survive turn boundaries: %v", err)
	}
}

func TestIngestReconnectsAfterStreamFailure(t *testing.T) {
	buffer, transcriber, posted := newTestIngest(t)

	transcriber.stream(0).failNextSend(errors.New("connection reset"))
	if err := buffer.Submit(0, make([]byte, 100)); err != nil {
		t.Fatalf("frame during failure must be accepted: %v", err)
	}

	down, ok := waitEvent(t, posted).(events.TranscriptionDown)
	if !ok || down.Fatal {
		t.Fatalf("expected a non-fatal down event, got %#v", down)
	}
	if _, ok := waitEvent(t, posted).(events.TranscriptionRestored); !ok {
		t.Fatal("expected a restored event")
	}
	if transcriber.opened() != 2 {
		t.Fatalf("expected a replacement stream, got %d", transcriber.opened())
	}

	// Forwarding resumes on the new stream.
	if err := buffer.Submit(1, make([]byte, 100)); err != nil {
		t.Fatalf("frame after reconnect: %v", err)
	}
	if got := transcriber.stream(1).chunks; got != 1 {
		t.Fatalf("expected the new stream to receive the frame, got %d chunks", got)
	}
}

func TestIngestAbandonsReconnectAfterClose(t *testing.T) {
	buffer, transcriber, posted := newTestIngest(t)
	buffer.backoff = []time.Duration{50 * time.Millisecond}

	buffer.StreamFailed(errors.New("connection reset"))
	if down := waitEvent(t, posted).(events.TranscriptionDown); down.Fatal {
		t.Fatal("expected a non-fatal down event")
	}

	// Close lands while the reconnect is still backing off.
	if err := buffer.Close(context.Background()); err != nil {
		t.Fatalf("closing ingest: %v", err)
	}

	select {
	case ev := <-posted:
		t.Fatalf("no events expected after close, got %#v", ev)
	case <-time.After(150 * time.Millisecond):
	}
	if transcriber.opened() != 1 {
		t.Fatalf("reconnect must not dial after close, got %d streams", transcriber.opened())
	}
	if !transcriber.stream(0).isClosed() {
		t.Fatal("the original stream must be closed")
	}
}

func TestIngestDiscardsStreamDialedDuringClose(t *testing.T) {
	buffer, transcriber, posted := newTestIngest(t)
	dialing, release := transcriber.gateDials()

	buffer.StreamFailed(errors.New("connection reset"))
	if down := waitEvent(t, posted).(events.TranscriptionDown); down.Fatal {
		t.Fatal("expected a non-fatal down event")
	}

	// Wait for the reconnect dial to be in flight, shut down, then let the
	// provider recover.
	select {
	case <-dialing:
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for the reconnect dial")
	}
	if err := buffer.Close(context.Background()); err != nil {
		t.Fatalf("closing ingest: %v", err)
	}
	release()

	// The freshly dialed stream must be torn down, not installed.
	deadline := time.Now().Add(waitTimeout)
	for transcriber.opened() < 2 || !transcriber.stream(1).isClosed() {
		if time.Now().After(deadline) {
			t.Fatalf("stream dialed during close was left open, opened %d streams", transcriber.opened())
		}
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case ev := <-posted:
		t.Fatalf("no events expected after close, got %#v", ev)
	default:
	}
}

func TestIngestFatalAfterReconnectBudget(t *testing.T) {
	buffer, transcriber, posted := newTestIngest(t)

	transcriber.setOpenErr(errors.New("provider unreachable"))
	buffer.StreamFailed(errors.New("connection reset"))

	if down := waitEvent(t, posted).(events.TranscriptionDown); down.Fatal {
		t.Fatal("first down event should be non-fatal")
	}
	down, ok := waitEvent(t, posted).(events.TranscriptionDown)
	if !ok || !down.Fatal {
		t.Fatalf("expected a fatal down event, got %#v", down)
	}
	if !errors.Is(down.Err, ErrTranscriptionUnavailable) {
		t.Fatalf("unexpected fatal error: %v", down.Err)
	}

	// Frames are still accepted so the client is not broken mid-upload.
	if err := buffer.Submit(0, make([]byte, 100)); err != nil {
		t.Fatalf("frame after fatal: %v", err)
	}
}
