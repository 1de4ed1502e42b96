package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/stt"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/utils"
)

// Transcribe opens a live transcription stream for one session.
func (c *Client) Transcribe(ctx context.Context, opts ...stt.TranscriptionOption) (stt.Stream, error) {
	options := &stt.TranscriptionOptions{EncodingInfo: stt.DefaultEncodingInfo()}
	for _, opt := range opts {
		opt(options)
	}

	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		return nil, fmt.Errorf("invalid encoding: %w", err)
	}

	conn, err := c.connectWebsocket(connectionOptions{
		sampleRate: encoding.SampleRate,
		encoding:   encoding.Encoding,

		detectSpeechActivity: options.SpeechStartedCallback != nil || options.SpeechEndedCallback != nil,
		interimResults:       options.PartialTranscriptionCallback != nil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open websocket: %w", err)
	}

	stream := &transcriptionStream{
		conn:      conn,
		options:   *options,
		lastMsgTs: time.Now(),
		closed:    make(chan struct{}),
	}
	go stream.readAndProcessMessages(ctx, conn)

	return stream, nil
}

type connectionOptions struct {
	sampleRate int
	encoding   string

	detectSpeechActivity bool
	interimResults       bool
}

func (c *Client) connectWebsocket(options connectionOptions) (*websocket.Conn, error) {
	listenUrl, _ := url.Parse("wss://api.deepgram.com/v1/listen")
	queryParams := listenUrl.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", c.model)
	queryParams.Set("language", "en-US")
	queryParams.Set("smart_format", "true")
	queryParams.Set("utterance_end_ms", "2000")
	queryParams.Set("endpointing", "300")
	if options.interimResults {
		queryParams.Set("interim_results", "true")
	}
	if options.detectSpeechActivity {
		queryParams.Set("vad_events", "true")
	}

	listenUrl.RawQuery = queryParams.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(listenUrl.String(),
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, err
}

// transcriptionStream is one live Deepgram connection. SendAudio is safe for
// concurrent use; the read loop runs until the connection dies or Close is
// called.
type transcriptionStream struct {
	connMu sync.Mutex
	conn   *websocket.Conn

	options stt.TranscriptionOptions

	lastMsgTs      time.Time
	unendedSegment bool

	closeOnce sync.Once
	closed    chan struct{}
}

func (s *transcriptionStream) SendAudio(audio []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("transcription stream is closed")
	}

	s.lastMsgTs = time.Now()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

func (s *transcriptionStream) Close(_ context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)

		s.connMu.Lock()
		defer s.connMu.Unlock()
		if s.conn == nil {
			return
		}

		if writeErr := s.conn.WriteJSON(struct {
			Type string `json:"type"`
		}{Type: string(api.TypeCloseStreamResponse)}); writeErr != nil {
			err = fmt.Errorf("failed to close deepgram stream through websocket: %w", writeErr)
		}
		s.conn.Close()
		s.conn = nil
	})
	return err
}

func (s *transcriptionStream) sendKeepAlive() {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return
	}
	if err := s.conn.WriteJSON(
		struct {
			Type string `json:"type"`
		}{
			Type: "KeepAlive",
		}); err != nil {
		log.Println("Failed to write to deepgram client", "error", err)
	}
}

func (s *transcriptionStream) readAndProcessMessages(ctx context.Context, conn *websocket.Conn) {
	keepAliveCtx, keepAliveCancel := context.WithCancel(ctx)
	defer keepAliveCancel()

	go s.keepAliveLoop(keepAliveCtx)

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closed:
			default:
				if err.Error() != "websocket: close 1000 (normal)" {
					log.Println("Failed to read deepgram websocket message", "error", err)
					if s.options.ErrorCallback != nil {
						s.options.ErrorCallback(fmt.Errorf("deepgram stream failed: %w", err))
					}
				}
			}

			s.connMu.Lock()
			s.conn = nil
			s.connMu.Unlock()
			conn.Close()
			return
		}
		if msgType != websocket.BinaryMessage {
			s.processMessage(msg)
		}
	}
}

func (s *transcriptionStream) processMessage(msg []byte) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	err := json.Unmarshal(msg, &parsedMsg)
	if err != nil {
		log.Println("Failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}
		if len(msgResp.Channel.Alternatives) == 0 {
			return
		}

		alternative := msgResp.Channel.Alternatives[0]
		transcript := strings.TrimSpace(alternative.Transcript)
		if len(transcript) == 0 {
			return
		}

		if msgResp.IsFinal {
			if s.options.TranscriptionCallback != nil {
				s.options.TranscriptionCallback(transcript, alternative.Confidence)
			}
			if msgResp.SpeechFinal {
				s.onSpeechEnded()
			}
		} else if s.options.PartialTranscriptionCallback != nil {
			s.options.PartialTranscriptionCallback(transcript)
		}

	case api.TypeUtteranceEndResponse:
		var msgResp api.UtteranceEndResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}

		if s.unendedSegment {
			s.onSpeechEnded()
		}

	case api.TypeSpeechStartedResponse:
		var msgResp api.SpeechStartedResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", err)
			return
		}

		s.unendedSegment = true
		if s.options.SpeechStartedCallback != nil {
			s.options.SpeechStartedCallback()
		}
	}
}

func (s *transcriptionStream) onSpeechEnded() {
	s.unendedSegment = false
	if s.options.SpeechEndedCallback != nil {
		s.options.SpeechEndedCallback()
	}
}

// keepAliveLoop keeps the connection open while the candidate is thinking.
// Deepgram tears down streams after ~10s without traffic.
func (s *transcriptionStream) keepAliveLoop(ctx context.Context) {
	const checkInterval = time.Second
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	var lastKeepAliveTime *time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case <-ticker.C:
			s.connMu.Lock()
			idle := time.Since(s.lastMsgTs)
			s.connMu.Unlock()

			if idle < 3*time.Second {
				lastKeepAliveTime = nil
				continue
			}

			if lastKeepAliveTime == nil || time.Since(*lastKeepAliveTime) >= 5*time.Second {
				lastKeepAliveTime = utils.Ptr(time.Now())
				s.sendKeepAlive()
			}
		}
	}
}
