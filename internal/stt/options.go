package stt

// EncodingInfo describes the raw audio the client will stream.
type EncodingInfo struct {
	Encoding       string
	SampleRate     int
	Channels       int
	BytesPerSample int
}

// DefaultEncodingInfo is 16-bit linear PCM, 16kHz mono, matching what the
// browser capture pipeline produces.
func DefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{Encoding: "linear16", SampleRate: 16000, Channels: 1, BytesPerSample: 2}
}

type TranscriptionOptions struct {
	// PartialTranscriptionCallback receives mutable interim transcripts for
	// the utterance in progress.
	PartialTranscriptionCallback func(transcript string)
	// TranscriptionCallback receives provider-final transcript segments with
	// the provider's confidence for the segment.
	TranscriptionCallback func(transcript string, confidence float64)

	SpeechStartedCallback func()
	SpeechEndedCallback   func()

	// ErrorCallback receives stream-level failures; after it fires the stream
	// is dead and must be re-established.
	ErrorCallback func(err error)

	EncodingInfo EncodingInfo
}

type TranscriptionOption func(*TranscriptionOptions)

func WithPartialTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.PartialTranscriptionCallback = callback
	}
}

func WithTranscriptionCallback(callback func(transcript string, confidence float64)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TranscriptionCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.ErrorCallback = callback
	}
}

func WithEncodingInfo(encodingInfo EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}
