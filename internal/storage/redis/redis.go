package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pabu-app/focusd/internal/config"
	"github.com/pabu-app/focusd/internal/storage"
	"github.com/redis/go-redis/v9"
)

const (
	keyActiveSession        = "focusd:active_session"
	keySessionHistory       = "focusd:session_history"
	keyProjects             = "focusd:projects"
	keyAppSettings          = "focusd:appSettings"
	keyRecommendationPrefix = "focusd:project_recommendations_"
)

// Store implements the storage.Store interface using Redis
type Store struct {
	client *redis.Client
}

// Open creates a new Redis-backed storage instance
func Open(cfg config.RedisConfig) (*Store, error) {
	dialTimeout, err := time.ParseDuration(cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid dial_timeout: %w", err)
	}

	readTimeout, err := time.ParseDuration(cfg.ReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid read_timeout: %w", err)
	}

	writeTimeout, err := time.ParseDuration(cfg.WriteTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid write_timeout: %w", err)
	}

	addr := cfg.Host
	if cfg.Port > 0 {
		addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Sessions returns the SessionStore implementation
func (s *Store) Sessions() storage.SessionStore {
	return &sessionStore{client: s.client}
}

// Projects returns the ProjectStore implementation
func (s *Store) Projects() storage.ProjectStore {
	return &projectStore{client: s.client}
}

// Settings returns the SettingsStore implementation
func (s *Store) Settings() storage.SettingsStore {
	return &settingsStore{client: s.client}
}

// Recommendations returns the RecommendationStore implementation
func (s *Store) Recommendations() storage.RecommendationStore {
	return &recommendationStore{client: s.client}
}

func getJSON[T any](ctx context.Context, client *redis.Client, key string) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return &value, nil
}

func setJSON(ctx context.Context, client *redis.Client, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
