package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/pabu-app/focusd/internal/config"
	"github.com/pabu-app/focusd/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	mr := miniredis.RunT(t)

	cfg := config.RedisConfig{
		Host:         mr.Addr(), // full "host:port" address
		Port:         0,         // not used when host contains the port
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  "5s",
		ReadTimeout:  "3s",
		WriteTimeout: "3s",
	}

	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open Redis store: %v", err)
	}

	return store
}

func TestSessionStoreActiveRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	sessions := store.Sessions()

	if _, err := sessions.GetActive(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	session := storage.Session{
		ID:          "session-1",
		ProjectID:   "project-1",
		ProjectName: "Space Explorers",
		StartTime:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Status:      storage.StatusActive,
		URLHistory:  []storage.VisitEntry{},
	}
	if err := sessions.PutActive(ctx, session); err != nil {
		t.Fatalf("PutActive failed: %v", err)
	}

	loaded, err := sessions.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if loaded.ID != "session-1" || loaded.Status != storage.StatusActive {
		t.Fatalf("unexpected session: %+v", loaded)
	}

	if err := sessions.ClearActive(ctx); err != nil {
		t.Fatalf("ClearActive failed: %v", err)
	}
	if _, err := sessions.GetActive(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestSessionStoreHistoryOrder(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	sessions := store.Sessions()

	for _, id := range []string{"old", "new"} {
		entry := storage.SessionHistoryEntry{ID: id, ProjectName: "Space Explorers"}
		if err := sessions.AppendHistory(ctx, entry); err != nil {
			t.Fatalf("AppendHistory failed: %v", err)
		}
	}

	history, err := sessions.History(ctx)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 || history[0].ID != "new" {
		t.Fatalf("history not newest first: %+v", history)
	}
}

func TestSettingsStoreDefaultsMerge(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	if err := store.client.Set(ctx, keyAppSettings, `{"childName":"Robin"}`, 0).Err(); err != nil {
		t.Fatalf("seed sparse settings: %v", err)
	}

	loaded, err := store.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.ChildName != "Robin" {
		t.Fatalf("stored key not applied: %q", loaded.ChildName)
	}
	if loaded.SavedPin != "1234" || loaded.NotificationFrequency != storage.FrequencyOff {
		t.Fatalf("defaults not merged: %+v", loaded)
	}
}

func TestRecommendationStoreRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	recs := store.Recommendations()

	entry := storage.RecommendationCacheEntry{
		Recommendations: []storage.Recommendation{
			{Title: "NASA Kids' Club", Domain: "nasa.gov", URL: "https://www.nasa.gov/kidsclub"},
		},
		Timestamp: time.Now().UTC(),
	}
	if err := recs.Put(ctx, "project-1", entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	loaded, err := recs.Get(ctx, "project-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(loaded.Recommendations) != 1 || loaded.Recommendations[0].Domain != "nasa.gov" {
		t.Fatalf("unexpected entry: %+v", loaded)
	}

	if err := recs.Delete(ctx, "project-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := recs.Get(ctx, "project-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
