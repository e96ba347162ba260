package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// Store represents the root storage interface. Two backends exist: bolt
// (default, single file on disk) and redis.
type Store interface {
	Close() error
	Sessions() SessionStore
	Projects() ProjectStore
	Settings() SettingsStore
	Recommendations() RecommendationStore
}

// SessionStore manages the active session snapshot and the session history.
type SessionStore interface {
	// GetActive returns the persisted active session, or ErrNotFound when no
	// session is in progress.
	GetActive(ctx context.Context) (*Session, error)
	// PutActive writes the full session snapshot. Called on every mutation
	// (write-through).
	PutActive(ctx context.Context, session Session) error
	// ClearActive removes the active session key. Not an error if absent.
	ClearActive(ctx context.Context) error
	// History returns all archived sessions, newest first. Empty slice when
	// none exist.
	History(ctx context.Context) ([]SessionHistoryEntry, error)
	// AppendHistory prepends an entry to the history collection. The history
	// is persisted as a whole array (read-modify-write, last write wins).
	AppendHistory(ctx context.Context, entry SessionHistoryEntry) error
}

// ProjectStore manages the project catalog. Projects are persisted as a whole
// array under a single key, matching the presentation layer's storage contract.
type ProjectStore interface {
	// List returns all projects, or ErrNotFound when the catalog has never
	// been written.
	List(ctx context.Context) ([]Project, error)
	// Replace overwrites the whole catalog.
	Replace(ctx context.Context, projects []Project) error
}

// SettingsStore manages the persisted application settings.
type SettingsStore interface {
	// Get returns the stored settings merged field-by-field over the
	// defaults, or ErrNotFound when never saved.
	Get(ctx context.Context) (*Settings, error)
	Put(ctx context.Context, settings Settings) error
}

// RecommendationStore manages per-project recommendation cache entries.
type RecommendationStore interface {
	Get(ctx context.Context, projectID string) (*RecommendationCacheEntry, error)
	Put(ctx context.Context, projectID string, entry RecommendationCacheEntry) error
	Delete(ctx context.Context, projectID string) error
}
