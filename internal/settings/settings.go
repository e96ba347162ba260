// Package settings provides the typed settings service: user preferences with
// explicit per-field defaults, PIN management, and the email notification
// settings consumed by the session engine at session end.
package settings

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/pabu-app/focusd/internal/storage"
	"github.com/rs/zerolog"
)

var (
	// ErrMalformedPin is returned when a PIN is not 4 to 8 digits.
	ErrMalformedPin = errors.New("settings: pin must be 4 to 8 digits")
	// ErrPinMismatch is returned when the new PIN and its confirmation differ.
	ErrPinMismatch = errors.New("settings: new pin and confirmation don't match")
)

var pinPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

// Service reads and writes application settings. Storage read failures are
// logged and degrade to the defaults, never surfaced as errors.
type Service struct {
	store  storage.SettingsStore
	logger zerolog.Logger
}

// NewService creates a settings service over the given store.
func NewService(store storage.SettingsStore, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "settings").Logger(),
	}
}

// Load returns the current settings. When nothing has been saved, or the
// stored snapshot cannot be read, the defaults are returned.
func (s *Service) Load(ctx context.Context) storage.Settings {
	stored, err := s.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("Failed to load settings, using defaults")
		}
		return storage.DefaultSettings()
	}
	return *stored
}

// Save persists the settings.
func (s *Service) Save(ctx context.Context, settings storage.Settings) error {
	return s.store.Put(ctx, settings)
}

// UpdatePin validates and persists a new PIN. Nothing is mutated when
// validation fails.
func (s *Service) UpdatePin(ctx context.Context, newPin, confirmPin string) error {
	newPin = strings.TrimSpace(newPin)
	if !pinPattern.MatchString(newPin) {
		return ErrMalformedPin
	}
	if newPin != strings.TrimSpace(confirmPin) {
		return ErrPinMismatch
	}

	settings := s.Load(ctx)
	settings.SavedPin = newPin
	return s.Save(ctx, settings)
}

// VerifyPin reports whether the given PIN matches the saved one. This is a UX
// gate, not an access-control boundary.
func (s *Service) VerifyPin(ctx context.Context, pin string) bool {
	return strings.TrimSpace(pin) == s.Load(ctx).SavedPin
}

// EmailSettings returns the notification destination and frequency.
func (s *Service) EmailSettings(ctx context.Context) (string, storage.NotificationFrequency) {
	settings := s.Load(ctx)
	return settings.NotificationEmail, settings.NotificationFrequency
}

// EmailNotificationEnabled reports whether summary emails are enabled at all.
func (s *Service) EmailNotificationEnabled(ctx context.Context) bool {
	email, frequency := s.EmailSettings(ctx)
	return frequency != storage.FrequencyOff && email != ""
}
