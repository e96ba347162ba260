package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Session metrics
	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focusd_sessions_started_total",
			Help: "Total focus sessions started",
		},
	)

	SessionsEnded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focusd_sessions_ended_total",
			Help: "Total focus sessions ended",
		},
	)

	SessionPauses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focusd_session_pauses_total",
			Help: "Total pause transitions",
		},
	)

	SessionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "focusd_session_duration_seconds",
			Help:    "Active session duration in seconds, pauses excluded",
			Buckets: []float64{60, 300, 600, 1200, 1800, 2700, 3600, 7200},
		},
	)

	SessionElapsedSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "focusd_session_elapsed_seconds",
			Help: "Elapsed active time of the current session, zero when none",
		},
	)

	PagesVisited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focusd_pages_visited_total",
			Help: "Total page visits tracked across sessions",
		},
	)

	// Notification metrics
	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusd_notifications_sent_total",
			Help: "Session summary email attempts by result",
		},
		[]string{"result"},
	)

	// Recommendation metrics
	RecommendationCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focusd_recommendation_cache_hits_total",
			Help: "Recommendation cache hits",
		},
	)

	RecommendationCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focusd_recommendation_cache_misses_total",
			Help: "Recommendation cache misses, including expired entries",
		},
	)

	RecommendationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focusd_recommendation_fallbacks_total",
			Help: "Times the static fallback recommendation list was served",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusd_api_requests_total",
			Help: "Total API requests processed",
		},
		[]string{"method", "route", "code"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "focusd_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(
		SessionsStarted,
		SessionsEnded,
		SessionPauses,
		SessionDuration,
		SessionElapsedSeconds,
		PagesVisited,
		NotificationsSent,
		RecommendationCacheHits,
		RecommendationCacheMisses,
		RecommendationFallbacks,
		APIRequestsTotal,
		APIRequestDuration,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		var err error
		if s.listener != nil {
			s.logger.Debug().Msg("Using systemd socket-activated metrics listener")
			err = s.server.Serve(s.listener)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
