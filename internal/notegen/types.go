package notegen

import "fmt"

// ProcessAudioResult is the transcription collaborator's response: the raw
// dialogue transcript plus the generated S.O.A.P. note.
type ProcessAudioResult struct {
	Transcript  string `json:"transcript"`
	SoapContent string `json:"soapContent"`
}

type regenerateNoteRequest struct {
	Transcript string `json:"transcript"`
}

type regenerateNoteResponse struct {
	SoapContent string `json:"soapContent"`
}

type regenerateDiagnosisRequest struct {
	SoapContent string `json:"soapContent"`
}

type regenerateDiagnosisResponse struct {
	DiagnoseICD string `json:"diagnoseICD"`
}

type refineRequest struct {
	Transcript string `json:"transcript"`
}

type refineResponse struct {
	Transcript string `json:"transcript"`
}

// Non-2xx responses carry a plain error body.
type errorResponse struct {
	Error string `json:"error"`
}

// Error is a failed collaborator call. Message is safe to surface to the
// clinician as a status message.
type Error struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed with status %d", e.Operation, e.StatusCode)
}
