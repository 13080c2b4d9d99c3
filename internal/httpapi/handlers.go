package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/mediscribe/scribe-gateway/internal/notegen"
	"github.com/mediscribe/scribe-gateway/internal/printview"
	"github.com/mediscribe/scribe-gateway/internal/session"
	"github.com/mediscribe/scribe-gateway/internal/soap"
)

type updateTranscriptRequest struct {
	Transcript string `json:"transcript"`
}

type updateSoapRequest struct {
	SoapContent string `json:"soapContent"`
}

type updateSectionRequest struct {
	Section string `json:"section" validate:"required,oneof=subjective objective assessment plan diagnosis icd10"`
	Value   string `json:"value"`
}

type refineTranscriptRequest struct {
	Apply bool `json:"apply"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	controller := s.sessions.Create()
	respondJSON(w, http.StatusCreated, controller.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, controller.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.sessions.Delete(id)
	s.hub.CloseSession(id)
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleStartRecording(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := controller.StartRecording(); err != nil {
		s.respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, controller.Snapshot())
}

func (s *Server) handleSubmitAudio(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "File audio terlalu besar")
			return
		}
		respondError(w, http.StatusBadRequest, "Silakan pilih file audio yang valid")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Silakan pilih file audio yang valid")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio/") {
		respondError(w, http.StatusBadRequest, "Silakan pilih file audio yang valid")
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Gagal membaca file audio")
		return
	}

	if err := controller.SubmitAudio(r.Context(), audio, header.Filename, contentType); err != nil {
		s.respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, controller.Snapshot())
}

func (s *Server) handleUpdateTranscript(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req updateTranscriptRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := controller.SetTranscript(req.Transcript); err != nil {
		s.respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, controller.Snapshot())
}

func (s *Server) handleRefineTranscript(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req refineTranscriptRequest
	if !s.decode(w, r, &req) {
		return
	}
	refined, err := controller.RefineTranscript(r.Context(), req.Apply)
	if err != nil {
		s.respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"refinedTranscript": refined,
		"applied":           req.Apply,
	})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": controller.Messages()})
}

func (s *Server) handleUpdateSoap(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req updateSoapRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := controller.SetSoapContent(req.SoapContent); err != nil {
		s.respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, controller.Snapshot())
}

func (s *Server) handleUpdateSoapSection(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req updateSectionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, strings.Join(formatValidationErrors(err), "; "))
		return
	}

	section, ok := soap.SectionFromKey(req.Section)
	if !ok {
		respondError(w, http.StatusBadRequest, "Bagian catatan tidak dikenal: "+req.Section)
		return
	}
	if err := controller.UpdateSoapSection(section, req.Value); err != nil {
		s.respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, controller.Snapshot())
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}

	sections := controller.Sections()
	wordCounts := make(map[string]int, len(soap.SectionOrder))
	for _, section := range soap.SectionOrder {
		wordCounts[string(section)] = soap.SectionWordCount(sections, section)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sections":   sections,
		"wordCounts": wordCounts,
		"totalWords": soap.WordCount(sections),
	})
}

func (s *Server) handleRegenerateNote(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := controller.RegenerateNote(r.Context()); err != nil {
		s.respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, controller.Snapshot())
}

func (s *Server) handleRegenerateDiagnosis(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := controller.RegenerateDiagnosis(r.Context()); err != nil {
		s.respondControllerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, controller.Snapshot())
}

func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}

	soapContent := controller.Snapshot().SoapContent
	if strings.TrimSpace(soapContent) == "" {
		respondError(w, http.StatusNotFound, "Belum ada catatan untuk dicetak")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := printview.Render(w, soapContent); err != nil {
		s.logger.Error().Err(err).Msg("Print view rendering failed")
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	controller, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.hub.Subscribe(w, r, r.PathValue("id"), controller.Snapshot())
}

// lookup resolves the session from the path, writing a 404 when missing.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	controller, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		respondError(w, http.StatusNotFound, "Sesi tidak ditemukan")
		return nil, false
	}
	return controller, true
}

// decode parses a JSON request body, writing a 400 on malformed input.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		respondError(w, http.StatusBadRequest, "Permintaan tidak valid")
		return false
	}
	return true
}

// respondControllerError maps controller and backend errors to HTTP status
// codes. Remote failures surface the backend message so the UI can show it.
func (s *Server) respondControllerError(w http.ResponseWriter, err error) {
	var backendErr *notegen.Error
	switch {
	case errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrDiagnosisBusy),
		errors.Is(err, session.ErrRefineBusy),
		errors.Is(err, session.ErrRecordingActive):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNoRefiner):
		respondError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, notegen.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "Server sedang tidak tersedia, coba lagi nanti")
	case errors.As(err, &backendErr):
		respondError(w, http.StatusBadGateway, backendErr.Error())
	default:
		respondError(w, http.StatusBadGateway, err.Error())
	}
}
