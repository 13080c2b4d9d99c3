// Package notegen is the HTTP client for the note-generation backend: audio
// transcription, S.O.A.P. regeneration, diagnosis/ICD-10 lookup and
// transcript refinement. Calls are guarded by a circuit breaker; failed
// calls are never retried automatically, the clinician re-triggers them.
package notegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediscribe/scribe-gateway/internal/config"
	"github.com/mediscribe/scribe-gateway/internal/observability"
	"github.com/mediscribe/scribe-gateway/internal/resilience"
)

// ErrUnavailable is returned while the circuit breaker is rejecting calls.
var ErrUnavailable = resilience.ErrCircuitOpen

// Client talks to the note-generation backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
	logger     zerolog.Logger
}

// NewClient creates a backend client from config.
func NewClient(cfg *config.Config) *Client {
	breaker := resilience.NewCircuitBreaker(
		"notegen",
		cfg.CircuitBreakerMaxFailures,
		time.Duration(cfg.CircuitBreakerResetTimeout)*time.Second,
	)

	return &Client{
		baseURL:    strings.TrimRight(cfg.BackendURL, "/"),
		httpClient: &http.Client{Timeout: cfg.BackendTimeoutDuration()},
		breaker:    breaker,
		logger:     observability.GetLogger().With().Str("component", "notegen").Logger(),
	}
}

// ProcessAudio uploads recorded audio as the multipart form field "audio" and
// returns the transcript plus generated note.
func (c *Client) ProcessAudio(ctx context.Context, audio []byte, filename, contentType string) (*ProcessAudioResult, error) {
	if filename == "" {
		filename = "recording.wav"
	}
	if contentType == "" {
		contentType = "audio/wav"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build audio form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to build audio form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build audio form: %w", err)
	}

	observability.RecordAudioBytes(int64(len(audio)))

	var result ProcessAudioResult
	if err := c.post(ctx, "process_audio", "/process-audio", writer.FormDataContentType(), body.Bytes(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RegenerateNote re-generates the S.O.A.P. note from the current transcript.
func (c *Client) RegenerateNote(ctx context.Context, transcript string) (string, error) {
	payload, err := json.Marshal(regenerateNoteRequest{Transcript: transcript})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var result regenerateNoteResponse
	if err := c.post(ctx, "regenerate_note", "/regenerate-soap-stream", "application/json", payload, &result); err != nil {
		return "", err
	}
	return result.SoapContent, nil
}

// RegenerateDiagnosis generates fresh diagnosis and ICD-10 sections from the
// subjective-through-plan portion of the note.
func (c *Client) RegenerateDiagnosis(ctx context.Context, noteBody string) (string, error) {
	payload, err := json.Marshal(regenerateDiagnosisRequest{SoapContent: noteBody})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var result regenerateDiagnosisResponse
	if err := c.post(ctx, "regenerate_diagnosis", "/regenerate-diagnose-icd10", "application/json", payload, &result); err != nil {
		return "", err
	}
	return result.DiagnoseICD, nil
}

// Refine asks the backend to clean up a raw transcript. Client satisfies
// refine.Refiner.
func (c *Client) Refine(ctx context.Context, transcript string) (string, error) {
	payload, err := json.Marshal(refineRequest{Transcript: transcript})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	var result refineResponse
	if err := c.post(ctx, "refine_transcript", "/refine-transcript", "application/json", payload, &result); err != nil {
		return "", err
	}
	return result.Transcript, nil
}

// Ping probes the backend for readiness. Any HTTP response counts as
// reachable; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (c *Client) post(ctx context.Context, operation, path, contentType string, payload []byte, out any) error {
	start := time.Now()

	err := c.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("backend request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return c.asError(operation, resp)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode backend response: %w", err)
		}
		return nil
	})

	observability.ObserveBackendCall(operation, start, err)
	observability.UpdateCircuitBreakerState(c.breaker.Name(), int(c.breaker.GetState()))

	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			observability.IncrementCircuitBreakerFailures(c.breaker.Name())
		}
		observability.RecordError("remote", "notegen")
		c.logger.Error().Err(err).Str("operation", operation).Msg("Backend call failed")
		return err
	}

	c.logger.Debug().
		Str("operation", operation).
		Dur("duration", time.Since(start)).
		Msg("Backend call completed")
	return nil
}

func (c *Client) asError(operation string, resp *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	message := body.Error
	if message == "" {
		message = "terjadi kesalahan pada server"
	}
	return &Error{Operation: operation, StatusCode: resp.StatusCode, Message: message}
}
