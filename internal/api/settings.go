package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pabu-app/focusd/internal/settings"
	"github.com/pabu-app/focusd/internal/storage"
)

// settingsView is the settings payload with the PIN redacted.
type settingsView struct {
	ChildName             string                        `json:"childName"`
	Notifications         bool                          `json:"notifications"`
	SoundEffects          bool                          `json:"soundEffects"`
	TimeRestrictions      bool                          `json:"timeRestrictions"`
	MaxSessionTime        int                           `json:"maxSessionTime"`
	NotificationEmail     string                        `json:"notification_email"`
	NotificationFrequency storage.NotificationFrequency `json:"notification_frequency"`
}

func viewOf(s storage.Settings) settingsView {
	return settingsView{
		ChildName:             s.ChildName,
		Notifications:         s.Notifications,
		SoundEffects:          s.SoundEffects,
		TimeRestrictions:      s.TimeRestrictions,
		MaxSessionTime:        s.MaxSessionTime,
		NotificationEmail:     s.NotificationEmail,
		NotificationFrequency: s.NotificationFrequency,
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(s.settings.Load(r.Context())))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var view settingsView
	if err := json.NewDecoder(r.Body).Decode(&view); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The PIN is managed through its own endpoint and never mass-assigned.
	current := s.settings.Load(r.Context())
	current.ChildName = view.ChildName
	current.Notifications = view.Notifications
	current.SoundEffects = view.SoundEffects
	current.TimeRestrictions = view.TimeRestrictions
	current.MaxSessionTime = view.MaxSessionTime
	current.NotificationEmail = view.NotificationEmail
	current.NotificationFrequency = view.NotificationFrequency

	if err := s.settings.Save(r.Context(), current); err != nil {
		s.logger.Error().Err(err).Msg("Failed to save settings")
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, viewOf(current))
}

type updatePinRequest struct {
	NewPin     string `json:"newPin"`
	ConfirmPin string `json:"confirmPin"`
}

func (s *Server) handleUpdatePin(w http.ResponseWriter, r *http.Request) {
	var req updatePinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.settings.UpdatePin(r.Context(), req.NewPin, req.ConfirmPin); err != nil {
		if errors.Is(err, settings.ErrMalformedPin) || errors.Is(err, settings.ErrPinMismatch) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error().Err(err).Msg("Failed to update PIN")
		writeError(w, http.StatusInternalServerError, "Failed to update PIN")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type verifyPinRequest struct {
	Pin string `json:"pin"`
}

func (s *Server) handleVerifyPin(w http.ResponseWriter, r *http.Request) {
	var req verifyPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"valid": s.settings.VerifyPin(r.Context(), req.Pin)})
}
