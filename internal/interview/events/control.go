package events

const (
	// KindRecordingStarted identifies the client's recording-started control,
	// which doubles as the question playback acknowledgement.
	KindRecordingStarted Kind = "control.recording_started"
	// KindRecordingStopped identifies the client's explicit stop-recording control.
	KindRecordingStopped Kind = "control.recording_stopped"
	// KindEndInterview identifies an explicit or implicit end-interview command.
	KindEndInterview Kind = "control.end_interview"
)

// RecordingStarted signals the client began capturing the answer for the
// current question.
type RecordingStarted struct{ Base }

// NewRecordingStarted creates a recording started control event.
func NewRecordingStarted() RecordingStarted {
	return RecordingStarted{Base: NewBase(KindRecordingStarted)}
}

// RecordingStopped signals the client explicitly stopped capturing.
type RecordingStopped struct{ Base }

// NewRecordingStopped creates a recording stopped control event.
func NewRecordingStopped() RecordingStopped {
	return RecordingStopped{Base: NewBase(KindRecordingStopped)}
}

// EndInterview commands the session to close from any non-terminal state.
// Idle-timeout reaping injects the same event with Reason set accordingly.
type EndInterview struct {
	Base
	Reason string
}

// NewEndInterview creates an end-interview control event.
func NewEndInterview(reason string) EndInterview {
	return EndInterview{Base: NewBase(KindEndInterview), Reason: reason}
}
