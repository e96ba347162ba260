package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pabu-app/focusd/internal/storage"
	"github.com/pabu-app/focusd/internal/storage/bolt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	store, err := bolt.Open(filepath.Join(t.TempDir(), "focusd.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewService(store.Settings(), zerolog.Nop())
}

func TestLoadReturnsDefaultsWhenEmpty(t *testing.T) {
	svc := newTestService(t)

	got := svc.Load(context.Background())
	want := storage.DefaultSettings()

	if got.ChildName != want.ChildName {
		t.Errorf("ChildName = %q, want %q", got.ChildName, want.ChildName)
	}
	if got.SavedPin != "1234" {
		t.Errorf("SavedPin = %q, want %q", got.SavedPin, "1234")
	}
	if !got.Notifications || !got.SoundEffects {
		t.Error("Expected notifications and sound effects enabled by default")
	}
	if got.MaxSessionTime != 60 {
		t.Errorf("MaxSessionTime = %d, want 60", got.MaxSessionTime)
	}
	if got.NotificationFrequency != storage.FrequencyOff {
		t.Errorf("NotificationFrequency = %q, want %q", got.NotificationFrequency, storage.FrequencyOff)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	settings := svc.Load(ctx)
	settings.ChildName = "Riley"
	settings.MaxSessionTime = 45
	settings.NotificationEmail = "parent@example.com"
	settings.NotificationFrequency = storage.FrequencyAfterEachSession

	if err := svc.Save(ctx, settings); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := svc.Load(ctx)
	if got.ChildName != "Riley" {
		t.Errorf("ChildName = %q, want %q", got.ChildName, "Riley")
	}
	if got.MaxSessionTime != 45 {
		t.Errorf("MaxSessionTime = %d, want 45", got.MaxSessionTime)
	}
	if got.NotificationEmail != "parent@example.com" {
		t.Errorf("NotificationEmail = %q, want %q", got.NotificationEmail, "parent@example.com")
	}
}

func TestUpdatePinValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		pin     string
		confirm string
		wantErr error
	}{
		{"too short", "123", "123", ErrMalformedPin},
		{"too long", "123456789", "123456789", ErrMalformedPin},
		{"non-digits", "12ab", "12ab", ErrMalformedPin},
		{"empty", "", "", ErrMalformedPin},
		{"mismatch", "4321", "4322", ErrPinMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.UpdatePin(ctx, tt.pin, tt.confirm); !errors.Is(err, tt.wantErr) {
				t.Errorf("UpdatePin(%q, %q) = %v, want %v", tt.pin, tt.confirm, err, tt.wantErr)
			}
		})
	}

	// Failed updates must not touch the saved PIN.
	if !svc.VerifyPin(ctx, "1234") {
		t.Error("Default PIN no longer verifies after rejected updates")
	}
}

func TestUpdatePinPersists(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.UpdatePin(ctx, "  4321 ", "4321"); err != nil {
		t.Fatalf("UpdatePin failed: %v", err)
	}

	if !svc.VerifyPin(ctx, "4321") {
		t.Error("New PIN does not verify")
	}
	if svc.VerifyPin(ctx, "1234") {
		t.Error("Old PIN still verifies")
	}
}

func TestVerifyPinTrimsInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if !svc.VerifyPin(ctx, " 1234 ") {
		t.Error("Expected whitespace-padded PIN to verify")
	}
	if svc.VerifyPin(ctx, "0000") {
		t.Error("Wrong PIN verified")
	}
}

func TestEmailNotificationEnabled(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if svc.EmailNotificationEnabled(ctx) {
		t.Error("Notifications enabled with default settings")
	}

	settings := svc.Load(ctx)
	settings.NotificationEmail = "parent@example.com"
	settings.NotificationFrequency = storage.FrequencyAfterEachSession
	if err := svc.Save(ctx, settings); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !svc.EmailNotificationEnabled(ctx) {
		t.Error("Notifications disabled with email and frequency set")
	}

	email, frequency := svc.EmailSettings(ctx)
	if email != "parent@example.com" || frequency != storage.FrequencyAfterEachSession {
		t.Errorf("EmailSettings = (%q, %q), want configured values", email, frequency)
	}
}
