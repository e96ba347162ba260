package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pabu-app/focusd/internal/storage"
	"github.com/redis/go-redis/v9"
)

type sessionStore struct {
	client *redis.Client
}

func (s *sessionStore) GetActive(ctx context.Context) (*storage.Session, error) {
	return getJSON[storage.Session](ctx, s.client, keyActiveSession)
}

func (s *sessionStore) PutActive(ctx context.Context, session storage.Session) error {
	return setJSON(ctx, s.client, keyActiveSession, session)
}

func (s *sessionStore) ClearActive(ctx context.Context) error {
	if err := s.client.Del(ctx, keyActiveSession).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", keyActiveSession, err)
	}
	return nil
}

func (s *sessionStore) History(ctx context.Context) ([]storage.SessionHistoryEntry, error) {
	history, err := getJSON[[]storage.SessionHistoryEntry](ctx, s.client, keySessionHistory)
	if errors.Is(err, storage.ErrNotFound) {
		return []storage.SessionHistoryEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return *history, nil
}

func (s *sessionStore) AppendHistory(ctx context.Context, entry storage.SessionHistoryEntry) error {
	history, err := s.History(ctx)
	if err != nil {
		return err
	}
	updated := append([]storage.SessionHistoryEntry{entry}, history...)
	return setJSON(ctx, s.client, keySessionHistory, updated)
}

type projectStore struct {
	client *redis.Client
}

func (s *projectStore) List(ctx context.Context) ([]storage.Project, error) {
	projects, err := getJSON[[]storage.Project](ctx, s.client, keyProjects)
	if err != nil {
		return nil, err
	}
	return *projects, nil
}

func (s *projectStore) Replace(ctx context.Context, projects []storage.Project) error {
	return setJSON(ctx, s.client, keyProjects, projects)
}

type settingsStore struct {
	client *redis.Client
}

func (s *settingsStore) Get(ctx context.Context) (*storage.Settings, error) {
	data, err := s.client.Get(ctx, keyAppSettings).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", keyAppSettings, err)
	}
	// Overlay the stored JSON on the defaults so keys missing from older
	// snapshots keep their default values.
	merged := storage.DefaultSettings()
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", keyAppSettings, err)
	}
	return &merged, nil
}

func (s *settingsStore) Put(ctx context.Context, settings storage.Settings) error {
	return setJSON(ctx, s.client, keyAppSettings, settings)
}

type recommendationStore struct {
	client *redis.Client
}

func (s *recommendationStore) Get(ctx context.Context, projectID string) (*storage.RecommendationCacheEntry, error) {
	return getJSON[storage.RecommendationCacheEntry](ctx, s.client, keyRecommendationPrefix+projectID)
}

func (s *recommendationStore) Put(ctx context.Context, projectID string, entry storage.RecommendationCacheEntry) error {
	return setJSON(ctx, s.client, keyRecommendationPrefix+projectID, entry)
}

func (s *recommendationStore) Delete(ctx context.Context, projectID string) error {
	if err := s.client.Del(ctx, keyRecommendationPrefix+projectID).Err(); err != nil {
		return fmt.Errorf("redis del recommendations %s: %w", projectID, err)
	}
	return nil
}
