package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pabu-app/focusd/internal/project"
)

// pinHeader carries the guardian PIN for gated operations.
const pinHeader = "X-Guardian-Pin"

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	filter := project.Filter(r.URL.Query().Get("filter"))
	search := r.URL.Query().Get("q")

	projects, err := s.projects.List(r.Context(), filter, search)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list projects")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve projects")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"count":    len(projects),
	})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	p, err := s.projects.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		s.logger.Error().Err(err).Str("id", id).Msg("Failed to get project")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve project")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProposeProject(w http.ResponseWriter, r *http.Request) {
	var input project.ProposalInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// A valid guardian PIN in the header creates the project pre-approved.
	approved := false
	if pin := r.Header.Get(pinHeader); pin != "" {
		approved = s.settings.VerifyPin(r.Context(), pin)
	}

	p, err := s.projects.Propose(r.Context(), input, approved)
	if err != nil {
		if errors.Is(err, project.ErrMissingFields) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error().Err(err).Msg("Failed to create project")
		writeError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleApproveProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	p, err := s.projects.Approve(r.Context(), id, r.Header.Get(pinHeader))
	if err != nil {
		switch {
		case errors.Is(err, project.ErrPinRejected):
			writeError(w, http.StatusForbidden, "Invalid PIN")
		case errors.Is(err, project.ErrNotFound):
			writeError(w, http.StatusNotFound, "Project not found")
		default:
			s.logger.Error().Err(err).Str("id", id).Msg("Failed to approve project")
			writeError(w, http.StatusInternalServerError, "Failed to approve project")
		}
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := s.projects.Delete(r.Context(), id, r.Header.Get(pinHeader))
	if err != nil {
		switch {
		case errors.Is(err, project.ErrPinRejected):
			writeError(w, http.StatusForbidden, "Invalid PIN")
		case errors.Is(err, project.ErrNotFound):
			writeError(w, http.StatusNotFound, "Project not found")
		default:
			s.logger.Error().Err(err).Str("id", id).Msg("Failed to delete project")
			writeError(w, http.StatusInternalServerError, "Failed to delete project")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	p, err := s.projects.ToggleFavorite(r.Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		s.logger.Error().Err(err).Str("id", id).Msg("Failed to toggle favorite")
		writeError(w, http.StatusInternalServerError, "Failed to update project")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	p, err := s.projects.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		s.logger.Error().Err(err).Str("id", id).Msg("Failed to get project")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve project")
		return
	}

	force := r.URL.Query().Get("refresh") == "true"
	recs := s.recommend.ForProject(r.Context(), p, force)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recs,
		"count":           len(recs),
	})
}

type chatRequest struct {
	Message string   `json:"message"`
	History []string `json:"history"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "Chat assistant is not configured")
		return
	}

	id := mux.Vars(r)["id"]

	p, err := s.projects.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		s.logger.Error().Err(err).Str("id", id).Msg("Failed to get project")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve project")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := s.assistant.Reply(r.Context(), p, req.History, req.Message)
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
