// Package httpapi exposes the dictation sessions over a JSON HTTP API plus a
// websocket event stream.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/mediscribe/scribe-gateway/internal/config"
	"github.com/mediscribe/scribe-gateway/internal/observability"
	"github.com/mediscribe/scribe-gateway/internal/session"
)

// Server wires the session manager to HTTP routes.
type Server struct {
	cfg      *config.Config
	sessions *session.Manager
	hub      *EventHub
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewServer creates the API server.
func NewServer(cfg *config.Config, sessions *session.Manager, hub *EventHub) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		hub:      hub,
		validate: validator.New(),
		logger:   observability.GetLogger().With().Str("component", "httpapi").Logger(),
	}
}

// Register attaches all session routes to the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/recording", s.handleStartRecording)
	mux.HandleFunc("POST /api/v1/sessions/{id}/audio", s.handleSubmitAudio)
	mux.HandleFunc("PUT /api/v1/sessions/{id}/transcript", s.handleUpdateTranscript)
	mux.HandleFunc("POST /api/v1/sessions/{id}/transcript/refine", s.handleRefineTranscript)
	mux.HandleFunc("GET /api/v1/sessions/{id}/messages", s.handleMessages)
	mux.HandleFunc("PUT /api/v1/sessions/{id}/soap", s.handleUpdateSoap)
	mux.HandleFunc("PUT /api/v1/sessions/{id}/soap/section", s.handleUpdateSoapSection)
	mux.HandleFunc("GET /api/v1/sessions/{id}/soap/sections", s.handleSections)
	mux.HandleFunc("POST /api/v1/sessions/{id}/soap/regenerate", s.handleRegenerateNote)
	mux.HandleFunc("POST /api/v1/sessions/{id}/diagnosis/regenerate", s.handleRegenerateDiagnosis)
	mux.HandleFunc("GET /api/v1/sessions/{id}/print", s.handlePrint)
	mux.HandleFunc("GET /api/v1/sessions/{id}/events", s.handleEvents)
}

// Handler wraps the registered routes with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return s.RequestLogger(mux)
}

// RequestLogger logs every request with a correlation ID.
func (s *Server) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = observability.NewCorrelationID()
		}
		w.Header().Set("X-Correlation-ID", correlationID)

		next.ServeHTTP(w, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("correlation_id", correlationID).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
