package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pabu-app/focusd/internal/project"
	"github.com/pabu-app/focusd/internal/session"
	"github.com/pabu-app/focusd/internal/storage"
)

type sessionResponse struct {
	Session      *storage.Session `json:"session"`
	ElapsedMS    int64            `json:"elapsedMs"`
	Elapsed      string           `json:"elapsed"`
	IdleAdvisory bool             `json:"idleAdvisory"`
}

func (s *Server) sessionState() sessionResponse {
	elapsed := s.engine.Elapsed()
	return sessionResponse{
		Session:      s.engine.Snapshot(),
		ElapsedMS:    elapsed.Milliseconds(),
		Elapsed:      session.FormatElapsed(elapsed),
		IdleAdvisory: s.engine.IdleAdvisory(),
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessionState())
}

type startSessionRequest struct {
	ProjectID string `json:"projectId"`
	URL       string `json:"url"`
	Title     string `json:"title"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	p, err := s.projects.Get(r.Context(), req.ProjectID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		s.logger.Error().Err(err).Str("project_id", req.ProjectID).Msg("Failed to load project")
		writeError(w, http.StatusInternalServerError, "Failed to load project")
		return
	}
	if !p.IsApproved {
		writeError(w, http.StatusForbidden, "Project is not approved")
		return
	}

	s.engine.Start(p, req.URL, req.Title)
	writeJSON(w, http.StatusCreated, s.sessionState())
}

func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	s.engine.Pause()
	writeJSON(w, http.StatusOK, s.sessionState())
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	s.engine.Resume()
	writeJSON(w, http.StatusOK, s.sessionState())
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	entry := s.engine.End()
	if entry == nil {
		writeError(w, http.StatusNotFound, "No active session")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type locationRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

func (s *Server) handleReportLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	s.engine.ReportLocation(req.URL, req.Title)
	writeJSON(w, http.StatusOK, s.sessionState())
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.engine.History(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load session history")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve session history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"count":   len(history),
	})
}
