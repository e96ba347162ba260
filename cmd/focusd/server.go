package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pabu-app/focusd/internal/api"
	"github.com/pabu-app/focusd/internal/assistant"
	"github.com/pabu-app/focusd/internal/config"
	"github.com/pabu-app/focusd/internal/images"
	"github.com/pabu-app/focusd/internal/metrics"
	"github.com/pabu-app/focusd/internal/notify"
	"github.com/pabu-app/focusd/internal/project"
	"github.com/pabu-app/focusd/internal/recommend"
	"github.com/pabu-app/focusd/internal/session"
	"github.com/pabu-app/focusd/internal/settings"
	"github.com/pabu-app/focusd/internal/storage"
	"github.com/pabu-app/focusd/internal/storage/bolt"
	"github.com/pabu-app/focusd/internal/storage/redis"
	"github.com/pabu-app/focusd/internal/systemd"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the focusd daemon",
	Long:  `Start the focus session daemon with the local HTTP API and metrics endpoints.`,
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting focusd")

	// Check for systemd socket activation
	sdListeners, err := systemd.GetListeners()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to get systemd listeners")
	}
	if sdListeners.Activated {
		logger.Info().Msg("Running with systemd socket activation")
	}

	// Initialize storage
	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	logger.Info().
		Str("type", cfg.Storage.Type).
		Str("path", cfg.Storage.Path).
		Msg("Storage initialized")

	// Settings and notifications
	settingsSvc := settings.NewService(store.Settings(), logger)

	notifier := notify.NewEmailClient(notify.Config{
		BaseURL:    cfg.Email.BaseURL,
		ServiceID:  cfg.Email.ServiceID,
		TemplateID: cfg.Email.TemplateID,
		PublicKey:  cfg.Email.PublicKey,
		PrivateKey: cfg.Email.PrivateKey,
		Timeout:    parseDuration(cfg.Email.Timeout, 30*time.Second),
	}, logger)

	// Project catalogue with image lookup
	imageFinder := images.NewClient(images.Config{
		APIKey:  cfg.Images.APIKey,
		BaseURL: cfg.Images.BaseURL,
	}, logger)

	projectSvc := project.NewService(store.Projects(), settingsSvc, imageFinder, logger)
	if err := projectSvc.EnsureSeed(cmd.Context()); err != nil {
		return fmt.Errorf("failed to seed project catalogue: %w", err)
	}

	// Session engine
	engine := session.NewEngine(store.Sessions(), settingsSvc, notifier, session.RealClock{}, session.Config{
		IdlePauseTimeout: parseDuration(cfg.Session.IdlePauseTimeout, session.DefaultIdlePauseTimeout),
	}, logger)

	// Recommendations
	cache := recommend.NewCache(store.Recommendations(), parseDuration(cfg.Recommender.CacheTTL, recommend.DefaultCacheTTL), logger)
	finder := recommend.NewFinder(recommend.FinderConfig{
		APIKey:     cfg.Recommender.APIKey,
		BaseURL:    cfg.Recommender.BaseURL,
		Model:      cfg.Recommender.Model,
		MinResults: cfg.Recommender.MinResults,
	})
	if finder == nil {
		logger.Warn().Msg("No recommender API key configured, serving curated fallback lists")
	}
	recommendSvc := recommend.NewService(cache, finder, logger)

	// Chat assistant
	chat := assistant.New(assistant.Config{
		APIKey:      cfg.Assistant.APIKey,
		Model:       cfg.Assistant.Model,
		MaxTokens:   cfg.Assistant.MaxTokens,
		Temperature: cfg.Assistant.Temperature,
	}, logger)
	if chat == nil {
		logger.Warn().Msg("No assistant API key configured, chat endpoint disabled")
	}

	// API server
	apiAddr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.APIPort)
	apiServer := api.NewServer(api.Config{ListenAddr: apiAddr}, engine, projectSvc, settingsSvc, recommendSvc, chat, logger)
	if sdListeners.API != nil {
		apiServer.SetListener(sdListeners.API)
	}
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	// Metrics server
	metricsAddr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.MetricsPort)
	metricsServer := metrics.NewServer(metricsAddr, logger)
	if sdListeners.Metrics != nil {
		metricsServer.SetListener(sdListeners.Metrics)
	}
	if err := metricsServer.Start(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	// Notify systemd that we're ready
	if err := systemd.NotifyReady(); err != nil {
		logger.Warn().Err(err).Msg("Failed to notify systemd readiness")
	}

	logger.Info().
		Str("api", apiAddr).
		Str("metrics", metricsAddr).
		Msg("focusd is running")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info().Str("signal", sig.String()).Msg("Shutting down")

	if err := systemd.NotifyStopping(); err != nil {
		logger.Warn().Err(err).Msg("Failed to notify systemd stopping")
	}

	// An in-flight session survives restarts through the persisted snapshot;
	// it is not ended here.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to stop API server")
	}
	if err := metricsServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop metrics server")
	}

	logger.Info().Msg("Shutdown complete")
	return nil
}

// openStorage creates the configured storage backend.
func openStorage(cfg config.StorageConfig) (storage.Store, error) {
	storageType := cfg.Type
	if storageType == "" {
		storageType = "bolt"
	}

	switch storageType {
	case "bolt":
		return bolt.Open(cfg.Path)
	case "redis":
		return redis.Open(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Set output format
	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Default to JSON
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
