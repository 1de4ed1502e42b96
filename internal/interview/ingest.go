package interview

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview/events"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/stt"
)

var defaultReconnectBackoff = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// ingestBuffer owns the session's transcription stream. It validates frame
// ordering, forwards audio off the actor's critical path and transparently
// reconnects the stream when the provider drops it.
//
// Submit is called from the connection's read goroutine, everything else from
// the session actor. Internal state is guarded by mu.
type ingestBuffer struct {
	transcriber stt.Transcriber
	encoding    stt.EncodingInfo
	post        func(events.Event)
	backoff     []time.Duration

	mu          sync.Mutex
	stream      stt.Stream
	opts        []stt.TranscriptionOption
	ctx         context.Context
	expectedSeq uint64
	turnBytes   int
	down        bool
	fatal       bool
}

func newIngestBuffer(transcriber stt.Transcriber, encoding stt.EncodingInfo, post func(events.Event)) *ingestBuffer {
	return &ingestBuffer{
		transcriber: transcriber,
		encoding:    encoding,
		post:        post,
		backoff:     defaultReconnectBackoff,
	}
}

// Open establishes the transcription stream. The context and options are
// retained so a reconnect dials under the session's lifetime and re-arms the
// same callbacks.
func (b *ingestBuffer) Open(ctx context.Context, opts ...stt.TranscriptionOption) error {
	stream, err := b.transcriber.Transcribe(ctx, opts...)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.stream = stream
	b.opts = opts
	b.ctx = ctx
	return nil
}

// Submit accepts one sequenced audio frame. A frame whose sequence number is
// not the expected next value is rejected with ErrOutOfOrder and mutates
// nothing. Accepted frames advance the sequence and the turn's audio clock
// even while the stream is down; forwarding resumes when it reconnects.
func (b *ingestBuffer) Submit(seq uint64, frame []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if seq != b.expectedSeq {
		return ErrOutOfOrder
	}
	b.expectedSeq++
	b.turnBytes += len(frame)

	if b.down || b.fatal || b.stream == nil {
		return nil
	}
	if err := b.stream.SendAudio(frame); err != nil {
		b.markDownLocked(err)
	}
	return nil
}

// StreamFailed reports an asynchronous stream error, typically from the
// transcriber's error callback.
func (b *ingestBuffer) StreamFailed(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.markDownLocked(err)
}

func (b *ingestBuffer) markDownLocked(err error) {
	if b.down || b.fatal {
		return
	}
	b.down = true
	log.Println("transcription stream down:", err)
	b.post(events.NewTranscriptionDown(false, err))
	go b.reconnect()
}

func (b *ingestBuffer) reconnect() {
	b.mu.Lock()
	ctx := b.ctx
	b.mu.Unlock()

	for _, wait := range b.backoff {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		b.mu.Lock()
		if b.fatal {
			b.mu.Unlock()
			return
		}
		opts := b.opts
		b.mu.Unlock()

		stream, err := b.transcriber.Transcribe(ctx, opts...)
		if err != nil {
			log.Println("transcription reconnect failed:", err)
			continue
		}

		b.mu.Lock()
		// Close may have raced the dial; a stream installed now would leak.
		if b.fatal {
			b.mu.Unlock()
			stream.Close(context.Background())
			return
		}
		b.stream = stream
		b.down = false
		b.mu.Unlock()
		b.post(events.NewTranscriptionRestored())
		return
	}

	b.mu.Lock()
	if b.fatal {
		b.mu.Unlock()
		return
	}
	b.fatal = true
	b.mu.Unlock()
	b.post(events.NewTranscriptionDown(true, ErrTranscriptionUnavailable))
}

// BeginTurn resets the per-turn audio clock.
func (b *ingestBuffer) BeginTurn() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turnBytes = 0
}

// TurnAudioDuration reports how much audio the current turn has accepted,
// derived from the stream's encoding parameters.
func (b *ingestBuffer) TurnAudioDuration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	bytesPerSecond := b.encoding.SampleRate * b.encoding.Channels * b.encoding.BytesPerSample
	if bytesPerSecond <= 0 {
		return 0
	}
	return time.Duration(b.turnBytes) * time.Second / time.Duration(bytesPerSecond)
}

// Close tears down the stream if one is open.
func (b *ingestBuffer) Close(ctx context.Context) error {
	b.mu.Lock()
	stream := b.stream
	b.stream = nil
	b.fatal = true
	b.mu.Unlock()

	if stream == nil {
		return nil
	}
	return stream.Close(ctx)
}
