package gateway

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview"
	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/interview/events"
)

// Binary frames are an 8-byte big-endian sequence number followed by raw
// PCM audio.
const frameHeaderSize = 8

const (
	codeOutOfOrder     = "out_of_order"
	codeInvalidControl = "invalid_control"
	codeInvalidFrame   = "invalid_frame"
)

const (
	controlStart         = "start"
	controlStopRecording = "stop-recording"
	controlEndInterview  = "end-interview"
)

const (
	sendQueueSize = 64
	pingInterval  = 30 * time.Second
	writeTimeout  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browser origin policy is enforced by the CORS layer on the REST
	// surface; the websocket accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type controlMessage struct {
	Type string `json:"type"`
}

func decodeFrame(payload []byte) (uint64, []byte, error) {
	if len(payload) < frameHeaderSize {
		return 0, nil, fmt.Errorf("frame shorter than its %d byte header", frameHeaderSize)
	}
	return binary.BigEndian.Uint64(payload[:frameHeaderSize]), payload[frameHeaderSize:], nil
}

func encodeFrame(seq uint64, audio []byte) []byte {
	frame := make([]byte, frameHeaderSize+len(audio))
	binary.BigEndian.PutUint64(frame[:frameHeaderSize], seq)
	copy(frame[frameHeaderSize:], audio)
	return frame
}

func (s *Server) attachInterview(c *gin.Context) {
	session, err := s.registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "interview not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	send := make(chan interview.Outbound, sendQueueSize)
	stop := make(chan struct{})

	session.AttachSink(func(out interview.Outbound) {
		select {
		case send <- out:
		default:
			log.Println("outbound queue full, dropping event for session", session.ID)
		}
	})
	session.Start()

	go writePump(conn, send, stop)
	readLoop(session, conn, send)
	close(stop)
	conn.Close()
}

func readLoop(session *interview.Session, conn *websocket.Conn, send chan interview.Outbound) {
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			seq, audio, err := decodeFrame(payload)
			if err != nil {
				enqueue(send, interview.Outbound{
					Kind: interview.OutboundStatus, Code: codeInvalidFrame, Text: err.Error(),
				})
				continue
			}
			switch err := session.SubmitAudio(seq, audio); {
			case errors.Is(err, interview.ErrOutOfOrder):
				enqueue(send, interview.Outbound{
					Kind: interview.OutboundStatus, Code: codeOutOfOrder,
					Text: "audio frame out of order, resynchronize the sequence",
				})
			case errors.Is(err, interview.ErrSessionClosed):
				return
			}

		case websocket.TextMessage:
			var control controlMessage
			if err := json.Unmarshal(payload, &control); err != nil {
				enqueue(send, interview.Outbound{
					Kind: interview.OutboundStatus, Code: codeInvalidControl, Text: err.Error(),
				})
				continue
			}
			if err := dispatchControl(session, control.Type); err != nil {
				if errors.Is(err, interview.ErrSessionClosed) {
					return
				}
				enqueue(send, interview.Outbound{
					Kind: interview.OutboundStatus, Code: codeInvalidControl, Text: err.Error(),
				})
			}
		}
	}
}

func dispatchControl(session *interview.Session, controlType string) error {
	switch controlType {
	case controlStart:
		return session.Dispatch(events.NewRecordingStarted())
	case controlStopRecording:
		return session.Dispatch(events.NewRecordingStopped())
	case controlEndInterview:
		return session.Dispatch(events.NewEndInterview("client_requested"))
	default:
		return fmt.Errorf("unknown control type %q", controlType)
	}
}

func enqueue(send chan interview.Outbound, out interview.Outbound) {
	select {
	case send <- out:
	default:
	}
}

func writePump(conn *websocket.Conn, send chan interview.Outbound, stop chan struct{}) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case out := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}
