package transcript

import "strings"

// Speaker identifies who produced an utterance.
type Speaker string

const (
	SpeakerDoctor  Speaker = "doctor"
	SpeakerPatient Speaker = "patient"
)

// The transcription backend emits Indonesian speaker markers.
const (
	doctorMarker  = "dokter:"
	patientMarker = "pasien:"
)

// Utterance is one speaker turn recovered from a line-oriented transcript.
type Utterance struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Parse converts a raw dialogue transcript into ordered speaker-tagged
// utterances. A line whose trimmed form starts with "Dokter:" or "Pasien:"
// (case-insensitive) begins a new utterance; any other non-empty line is a
// continuation of the previous utterance, joined with a newline. Continuation
// lines seen before the first speaker marker are dropped. Parse never fails;
// blank or whitespace-only input yields an empty result.
func Parse(text string) []Utterance {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var utterances []Utterance
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, doctorMarker):
			utterances = append(utterances, Utterance{
				Speaker: SpeakerDoctor,
				Text:    strings.TrimSpace(trimmed[len(doctorMarker):]),
			})
		case strings.HasPrefix(lower, patientMarker):
			utterances = append(utterances, Utterance{
				Speaker: SpeakerPatient,
				Text:    strings.TrimSpace(trimmed[len(patientMarker):]),
			})
		case len(utterances) > 0:
			utterances[len(utterances)-1].Text += "\n" + trimmed
		}
	}
	return utterances
}
