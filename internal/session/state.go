package session

import "time"

// Status models the dictation session lifecycle.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusRecording  Status = "recording"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// State is a snapshot of one dictation session. The transcript and
// soapContent strings are the authoritative store; every structured view
// (chat bubbles, note sections) is re-derived from them on read.
type State struct {
	ID                    string    `json:"id"`
	Status                Status    `json:"status"`
	StatusMessage         string    `json:"statusMessage"`
	Transcript            string    `json:"transcript"`
	SoapContent           string    `json:"soapContent"`
	RefinedTranscript     string    `json:"refinedTranscript,omitempty"`
	IsProcessing          bool      `json:"isProcessing"`
	IsProcessingDiagnosis bool      `json:"isProcessingDiagnosis"`
	IsRefining            bool      `json:"isRefining"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// EventSink receives session state changes, e.g. to push them to a UI over a
// websocket. Implementations must not call back into the controller.
type EventSink interface {
	StateChanged(state State)
}
