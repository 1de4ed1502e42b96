package events

const (
	// KindTranscriptionDown identifies a transcription stream failure.
	KindTranscriptionDown Kind = "ingest.transcription_down"
	// KindTranscriptionRestored identifies a successful stream re-establishment.
	KindTranscriptionRestored Kind = "ingest.transcription_restored"
	// KindEndpointSilenceElapsed identifies an endpointing silence timer fire.
	KindEndpointSilenceElapsed Kind = "timer.endpoint_silence_elapsed"
)

// TranscriptionDown reports a failed transcription stream. Fatal means the
// reconnect budget is exhausted and the session cannot continue.
type TranscriptionDown struct {
	Base
	Fatal bool
	Err   error
}

// NewTranscriptionDown creates a transcription-down event.
func NewTranscriptionDown(fatal bool, err error) TranscriptionDown {
	return TranscriptionDown{Base: NewBase(KindTranscriptionDown), Fatal: fatal, Err: err}
}

// TranscriptionRestored reports a re-established transcription stream.
type TranscriptionRestored struct{ Base }

// NewTranscriptionRestored creates a transcription-restored event.
func NewTranscriptionRestored() TranscriptionRestored {
	return TranscriptionRestored{Base: NewBase(KindTranscriptionRestored)}
}

// EndpointSilenceElapsed fires after the endpoint silence window passes with
// no further partials following a provider-final segment. Epoch ties the
// timer to the utterance generation that armed it.
type EndpointSilenceElapsed struct {
	Base
	Epoch int
}

// NewEndpointSilenceElapsed creates an endpoint silence timer event.
func NewEndpointSilenceElapsed(epoch int) EndpointSilenceElapsed {
	return EndpointSilenceElapsed{Base: NewBase(KindEndpointSilenceElapsed), Epoch: epoch}
}
