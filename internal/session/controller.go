// Package session owns the authoritative transcript and S.O.A.P. strings of
// a dictation session, drives the status state machine and sequences the
// note-generation backend calls.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediscribe/scribe-gateway/internal/notegen"
	"github.com/mediscribe/scribe-gateway/internal/observability"
	"github.com/mediscribe/scribe-gateway/internal/refine"
	"github.com/mediscribe/scribe-gateway/internal/soap"
	"github.com/mediscribe/scribe-gateway/internal/transcript"
)

var (
	// ErrBusy is returned when an action collides with an in-flight
	// transcription or note regeneration.
	ErrBusy = errors.New("session is busy processing")

	// ErrDiagnosisBusy is returned when a diagnosis regeneration is already
	// in flight.
	ErrDiagnosisBusy = errors.New("diagnosis regeneration in progress")

	// ErrRefineBusy is returned when a transcript refinement is already in
	// flight.
	ErrRefineBusy = errors.New("transcript refinement in progress")

	// ErrRecordingActive is returned when a capture session is already open.
	ErrRecordingActive = errors.New("recording already active")

	// ErrNoRefiner is returned when no refinement strategy is configured.
	ErrNoRefiner = errors.New("no transcript refiner configured")
)

// failureMessage renders a collaborator error for the clinician-facing
// status message. Breaker rejections get the Indonesian unavailable text
// instead of the internal error string.
func failureMessage(err error) string {
	if errors.Is(err, notegen.ErrUnavailable) {
		return "Server sedang tidak tersedia, coba lagi nanti"
	}
	return err.Error()
}

// Backend is the note-generation collaborator the controller sequences.
// *notegen.Client satisfies it.
type Backend interface {
	ProcessAudio(ctx context.Context, audio []byte, filename, contentType string) (*notegen.ProcessAudioResult, error)
	RegenerateNote(ctx context.Context, transcript string) (string, error)
	RegenerateDiagnosis(ctx context.Context, noteBody string) (string, error)
}

// Controller serializes all mutations of one session. Remote calls run
// without the lock held; their guard flags are released on every exit path.
type Controller struct {
	backend Backend
	refiner refine.Refiner
	events  EventSink
	logger  zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewController creates an idle session.
func NewController(id string, backend Backend, refiner refine.Refiner, events EventSink) *Controller {
	c := &Controller{
		backend: backend,
		refiner: refiner,
		events:  events,
		logger:  observability.WithSession(id),
		state: State{
			ID:            id,
			Status:        StatusIdle,
			StatusMessage: "Siap untuk merekam atau mengunggah file audio",
			UpdatedAt:     time.Now(),
		},
	}
	return c
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages re-derives the chat-bubble projection from the current
// transcript. Nothing is cached; the raw text stays authoritative.
func (c *Controller) Messages() []transcript.Utterance {
	return transcript.Parse(c.Snapshot().Transcript)
}

// Sections re-derives the six note sections from the current S.O.A.P. text.
func (c *Controller) Sections() soap.Sections {
	return soap.Parse(c.Snapshot().SoapContent)
}

// StartRecording opens a capture session. Allowed from idle, complete and
// error; rejected while recording or processing.
func (c *Controller) StartRecording() error {
	c.mu.Lock()
	switch {
	case c.state.Status == StatusRecording:
		c.mu.Unlock()
		return ErrRecordingActive
	case c.state.IsProcessing || c.state.Status == StatusProcessing:
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.Status = StatusRecording
	c.state.StatusMessage = "Sedang merekam... Silakan berbicara dengan jelas"
	snap := c.touchLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// SubmitAudio sends captured or uploaded audio to the transcription backend
// and stores the returned transcript and note. The processing flag is
// released on every path.
func (c *Controller) SubmitAudio(ctx context.Context, audio []byte, filename, contentType string) error {
	c.mu.Lock()
	if c.state.IsProcessing {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.IsProcessing = true
	c.state.Status = StatusProcessing
	c.state.StatusMessage = "Mengunggah audio ke server..."
	snap := c.touchLocked()
	c.mu.Unlock()
	c.notify(snap)

	c.logger.Info().Int("audio_bytes", len(audio)).Str("content_type", contentType).Msg("Submitting audio for transcription")
	result, err := c.backend.ProcessAudio(ctx, audio, filename, contentType)

	c.mu.Lock()
	c.state.IsProcessing = false
	if err != nil {
		c.state.Status = StatusError
		c.state.StatusMessage = "Gagal memproses: " + failureMessage(err)
	} else {
		c.state.Transcript = result.Transcript
		c.state.SoapContent = result.SoapContent
		c.state.Status = StatusComplete
		c.state.StatusMessage = "Proses selesai! Silakan periksa dan edit hasil jika diperlukan."
	}
	snap = c.touchLocked()
	c.mu.Unlock()
	c.notify(snap)

	if err != nil {
		c.logger.Error().Err(err).Msg("Audio processing failed")
		observability.RecordError("remote", "session")
	}
	return err
}

// RegenerateNote re-generates the note from the current transcript. A blank
// transcript makes this a no-op.
func (c *Controller) RegenerateNote(ctx context.Context) error {
	c.mu.Lock()
	if strings.TrimSpace(c.state.Transcript) == "" {
		c.mu.Unlock()
		return nil
	}
	if c.state.IsProcessing {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.IsProcessing = true
	c.state.Status = StatusProcessing
	c.state.StatusMessage = "Membuat ulang catatan S.O.A.P..."
	current := c.state.Transcript
	snap := c.touchLocked()
	c.mu.Unlock()
	c.notify(snap)

	soapContent, err := c.backend.RegenerateNote(ctx, current)

	c.mu.Lock()
	c.state.IsProcessing = false
	if err != nil {
		c.state.Status = StatusError
		c.state.StatusMessage = "Gagal generate ulang: " + failureMessage(err)
	} else {
		c.state.SoapContent = soapContent
		c.state.Status = StatusComplete
		c.state.StatusMessage = "S.O.A.P. berhasil dibuat ulang!"
	}
	snap = c.touchLocked()
	c.mu.Unlock()
	c.notify(snap)

	if err != nil {
		c.logger.Error().Err(err).Msg("Note regeneration failed")
		observability.RecordError("remote", "session")
	}
	return err
}

// RegenerateDiagnosis re-generates the diagnosis and ICD-10 sections from
// the subjective-through-plan portion of the note. The diagnosis flag is
// orthogonal to the main processing flag. On failure the note is left
// untouched. An empty note makes this a no-op.
func (c *Controller) RegenerateDiagnosis(ctx context.Context) error {
	c.mu.Lock()
	if strings.TrimSpace(c.state.SoapContent) == "" {
		c.mu.Unlock()
		return nil
	}
	if c.state.IsProcessingDiagnosis {
		c.mu.Unlock()
		return ErrDiagnosisBusy
	}
	c.state.IsProcessingDiagnosis = true
	// A note without a diagnosis header yet yields the whole body; the
	// response is then appended as the first diagnosis.
	noteBody := soap.NoteBody(c.state.SoapContent)
	snap := c.touchLocked()
	c.mu.Unlock()
	c.notify(snap)

	diagnosis, err := c.backend.RegenerateDiagnosis(ctx, noteBody)

	c.mu.Lock()
	c.state.IsProcessingDiagnosis = false
	if err != nil {
		c.state.Status = StatusError
		c.state.StatusMessage = "Gagal generate diagnosa: " + failureMessage(err)
	} else {
		c.state.SoapContent = noteBody + "\n\n" + diagnosis
		c.state.Status = StatusComplete
		c.state.StatusMessage = "Diagnosis dan kode ICD-10 berhasil diperbarui!"
	}
	snap = c.touchLocked()
	c.mu.Unlock()
	c.notify(snap)

	if err != nil {
		c.logger.Error().Err(err).Msg("Diagnosis regeneration failed")
		observability.RecordError("remote", "session")
	}
	return err
}

// RefineTranscript runs the configured refinement strategy over the current
// transcript. The result is stored separately; when apply is true it also
// replaces the main transcript.
func (c *Controller) RefineTranscript(ctx context.Context, apply bool) (string, error) {
	if c.refiner == nil {
		return "", ErrNoRefiner
	}

	c.mu.Lock()
	if strings.TrimSpace(c.state.Transcript) == "" {
		c.mu.Unlock()
		return "", nil
	}
	if c.state.IsProcessing {
		c.mu.Unlock()
		return "", ErrBusy
	}
	if c.state.IsRefining {
		c.mu.Unlock()
		return "", ErrRefineBusy
	}
	c.state.IsRefining = true
	current := c.state.Transcript
	snap := c.touchLocked()
	c.mu.Unlock()
	c.notify(snap)

	refined, err := c.refiner.Refine(ctx, current)

	c.mu.Lock()
	c.state.IsRefining = false
	if err != nil {
		c.state.Status = StatusError
		c.state.StatusMessage = "Gagal memperbaiki transkrip: " + failureMessage(err)
	} else {
		c.state.RefinedTranscript = refined
		if apply {
			c.state.Transcript = refined
		}
	}
	snap = c.touchLocked()
	c.mu.Unlock()
	c.notify(snap)

	if err != nil {
		c.logger.Error().Err(err).Msg("Transcript refinement failed")
		observability.RecordError("remote", "session")
		return "", err
	}
	return refined, nil
}

// SetTranscript replaces the raw transcript. Rejected while a transcription
// or note regeneration is in flight; never changes the status.
func (c *Controller) SetTranscript(text string) error {
	c.mu.Lock()
	if c.state.IsProcessing {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.Transcript = text
	snap := c.touchLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// SetSoapContent replaces the whole note text. Rejected while either
// processing flag is set; never changes the status.
func (c *Controller) SetSoapContent(content string) error {
	c.mu.Lock()
	if c.state.IsProcessing {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state.IsProcessingDiagnosis {
		c.mu.Unlock()
		return ErrDiagnosisBusy
	}
	c.state.SoapContent = content
	snap := c.touchLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// UpdateSoapSection replaces one note section, preserving the others via the
// parse/serialize round trip.
func (c *Controller) UpdateSoapSection(section soap.Section, value string) error {
	c.mu.Lock()
	if c.state.IsProcessing {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state.IsProcessingDiagnosis {
		c.mu.Unlock()
		return ErrDiagnosisBusy
	}
	c.state.SoapContent = soap.UpdateSection(c.state.SoapContent, section, value)
	snap := c.touchLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

func (c *Controller) touchLocked() State {
	c.state.UpdatedAt = time.Now()
	return c.state
}

func (c *Controller) notify(snap State) {
	if c.events != nil {
		c.events.StateChanged(snap)
	}
}
