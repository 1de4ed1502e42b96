package deepgram

import (
	"fmt"
	"os"

	"github.com/dhruvarora12/ai-voice-to-voice-interviewer-with-LLM/internal/stt"
)

// Client opens Deepgram live transcription streams, one per interview
// session.
type Client struct {
	apiKey string
	model  string
}

type ClientOption func(*Client)

// WithModel overrides the transcription model. The default is tuned for
// conversational interviews.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// NewClient builds a Deepgram client from DEEPGRAM_API_KEY.
func NewClient(opts ...ClientOption) (*Client, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	c := &Client{apiKey: apiKey, model: "nova-2-conversationalai"}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func convertEncoding(encoding stt.EncodingInfo) (stt.EncodingInfo, error) {
	switch encoding.SampleRate {
	case 8000, 16000, 24000, 32000, 48000:
	default:
		return stt.EncodingInfo{}, fmt.Errorf("unsupported sample rate")
	}

	switch encoding.Encoding {
	case "linear16":
	case "alaw", "mulaw":
		if encoding.SampleRate != 8000 {
			return stt.EncodingInfo{}, fmt.Errorf("unsupported sample rate for %s encoding", encoding.Encoding)
		}
	default:
		return stt.EncodingInfo{}, fmt.Errorf("unsupported encoding")
	}

	return encoding, nil
}
