// Package api exposes the focus daemon over a local HTTP API: session
// control, the project catalogue, recommendations, chat, and settings.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pabu-app/focusd/internal/assistant"
	"github.com/pabu-app/focusd/internal/project"
	"github.com/pabu-app/focusd/internal/recommend"
	"github.com/pabu-app/focusd/internal/session"
	"github.com/pabu-app/focusd/internal/settings"
)

// Config holds API server settings.
type Config struct {
	ListenAddr string
}

// Server is the HTTP API server.
type Server struct {
	config    Config
	router    *mux.Router
	server    *http.Server
	listener  net.Listener
	engine    *session.Engine
	projects  *project.Service
	settings  *settings.Service
	recommend *recommend.Service
	assistant *assistant.Assistant
	logger    zerolog.Logger
}

// NewServer creates the API server. assistant may be nil when chat is not
// configured.
func NewServer(cfg Config, engine *session.Engine, projects *project.Service, settingsSvc *settings.Service, recommendSvc *recommend.Service, chat *assistant.Assistant, logger zerolog.Logger) *Server {
	s := &Server{
		config:    cfg,
		router:    mux.NewRouter(),
		engine:    engine,
		projects:  projects,
		settings:  settingsSvc,
		recommend: recommendSvc,
		assistant: chat,
		logger:    logger.With().Str("component", "api").Logger(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(MetricsMiddleware())

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/api/session", s.handleGetSession).Methods("GET")
	s.router.HandleFunc("/api/session/start", s.handleStartSession).Methods("POST")
	s.router.HandleFunc("/api/session/pause", s.handlePauseSession).Methods("POST")
	s.router.HandleFunc("/api/session/resume", s.handleResumeSession).Methods("POST")
	s.router.HandleFunc("/api/session/end", s.handleEndSession).Methods("POST")
	s.router.HandleFunc("/api/session/location", s.handleReportLocation).Methods("POST")
	s.router.HandleFunc("/api/session/history", s.handleSessionHistory).Methods("GET")

	s.router.HandleFunc("/api/projects", s.handleListProjects).Methods("GET")
	s.router.HandleFunc("/api/projects", s.handleProposeProject).Methods("POST")
	s.router.HandleFunc("/api/projects/{id}", s.handleGetProject).Methods("GET")
	s.router.HandleFunc("/api/projects/{id}", s.handleDeleteProject).Methods("DELETE")
	s.router.HandleFunc("/api/projects/{id}/approve", s.handleApproveProject).Methods("POST")
	s.router.HandleFunc("/api/projects/{id}/favorite", s.handleToggleFavorite).Methods("POST")
	s.router.HandleFunc("/api/projects/{id}/recommendations", s.handleRecommendations).Methods("GET")
	s.router.HandleFunc("/api/projects/{id}/chat", s.handleChat).Methods("POST")

	s.router.HandleFunc("/api/settings", s.handleGetSettings).Methods("GET")
	s.router.HandleFunc("/api/settings", s.handleUpdateSettings).Methods("PUT")
	s.router.HandleFunc("/api/settings/pin", s.handleUpdatePin).Methods("POST")
	s.router.HandleFunc("/api/settings/verify-pin", s.handleVerifyPin).Methods("POST")
}

// SetListener provides a pre-bound listener, typically from socket
// activation. Must be called before Start.
func (s *Server) SetListener(l net.Listener) {
	s.listener = l
}

// Handler returns the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	if s.listener == nil {
		l, err := net.Listen("tcp", s.config.ListenAddr)
		if err != nil {
			return err
		}
		s.listener = l
	}

	s.logger.Info().Str("addr", s.listener.Addr().String()).Msg("API server listening")

	go func() {
		if err := s.server.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		http.Error(w, `{"error":"Internal Server Error","message":"Failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}
